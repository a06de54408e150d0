package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/abhisek/mathsheet/internal/batch"
	"github.com/abhisek/mathsheet/internal/config"
	"github.com/abhisek/mathsheet/internal/sheet"
	"github.com/abhisek/mathsheet/internal/store"
	"github.com/abhisek/mathsheet/internal/worksheet"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a worksheet",
	Example: `  mathsheet generate --max-number 50 --operators all --num-problems 20
  mathsheet generate --problem-type find_missing_number --num-operands 3 --op-mode sequential
  mathsheet generate --preset times --seed 42 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		presetName, _ := cmd.Flags().GetString("preset")
		spec, err := specFromFlags(ctx, cmd.Flags(), cfg, s.PresetRepo(), presetName)
		if err != nil {
			return err
		}

		req := batch.Request{Spec: spec, Preset: presetName, Source: "cli"}
		if cmd.Flags().Changed("seed") {
			seed, _ := cmd.Flags().GetUint64("seed")
			req.Seed = &seed
		}

		svc := batch.NewService(cfg.WorksheetConfig(), s.EventRepo(), nil)
		b, err := svc.Generate(ctx, req)
		if err != nil {
			return err
		}

		if save, _ := cmd.Flags().GetString("save"); save != "" {
			if err := s.PresetRepo().Save(ctx, store.Preset{Name: save, Spec: spec}); err != nil {
				return fmt.Errorf("save preset: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Saved preset %q.\n", save)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeBatchJSON(b)
		}

		opts := sheet.DefaultOptions()
		if c, _ := cmd.Flags().GetInt("columns"); c > 0 {
			opts.Columns = c
		}
		if noNum, _ := cmd.Flags().GetBool("no-numbers"); noNum {
			opts.Number = false
		}
		if err := sheet.Write(os.Stdout, b.Spec, b.Problems, opts); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "\nbatch %s  seed %d  %d attempts\n", b.ID, b.Seed, b.Stats.Attempts)
		return nil
	},
}

func init() {
	addSpecFlags(generateCmd.Flags())
	generateCmd.Flags().String("preset", "", "Start from a saved preset; explicit flags override its fields")
	generateCmd.Flags().Uint64("seed", 0, "Random seed for a reproducible worksheet")
	generateCmd.Flags().Bool("json", false, "Print the batch as JSON")
	generateCmd.Flags().Int("columns", 0, "Problems per row (default 2)")
	generateCmd.Flags().Bool("no-numbers", false, "Omit problem numbers")
	generateCmd.Flags().String("save", "", "Also save the resolved settings as a preset with this name")
}

// addSpecFlags registers one flag per worksheet parameter. Unset flags fall
// back to the preset or the configured defaults.
func addSpecFlags(fs *pflag.FlagSet) {
	fs.String("problem-type", "", "simple_calculation or find_missing_number")
	fs.Int("max-number", 0, "Largest operand and result")
	fs.Int("num-operands", 0, "Operands per problem")
	fs.String("operators", "", "add_subtract, multiply_divide or all")
	fs.Int("num-problems", 0, "Problems in the batch")
	fs.String("op-mode", "", "mixed or sequential")
}

func paramsFromFlags(fs *pflag.FlagSet) worksheet.Params {
	var p worksheet.Params
	p.ProblemType, _ = fs.GetString("problem-type")
	p.MaxNumber, _ = fs.GetInt("max-number")
	p.NumOperands, _ = fs.GetInt("num-operands")
	p.Operators, _ = fs.GetString("operators")
	p.NumProblems, _ = fs.GetInt("num-problems")
	p.OpMode, _ = fs.GetString("op-mode")
	return p
}

// specFromFlags layers the flags over the named preset, or over the
// configured defaults when presetName is empty.
func specFromFlags(ctx context.Context, fs *pflag.FlagSet, cfg config.Config, presets store.PresetRepo, presetName string) (worksheet.BatchSpec, error) {
	base := cfg.Defaults.WithDefaults(worksheet.DefaultSpec().Params())
	if presetName != "" {
		p, err := presets.Get(ctx, presetName)
		if errors.Is(err, store.ErrNotFound) {
			return worksheet.BatchSpec{}, fmt.Errorf("preset %q not found", presetName)
		}
		if err != nil {
			return worksheet.BatchSpec{}, fmt.Errorf("load preset: %w", err)
		}
		base = p.Spec.Params()
	}
	return paramsFromFlags(fs).WithDefaults(base).Spec()
}

type batchJSON struct {
	ID       string           `json:"id"`
	Seed     uint64           `json:"seed"`
	Title    string           `json:"title"`
	Spec     worksheet.Params `json:"spec"`
	Problems []problemJSON    `json:"problems"`
}

type problemJSON struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

func writeBatchJSON(b *batch.Batch) error {
	out := batchJSON{
		ID:       b.ID,
		Seed:     b.Seed,
		Title:    sheet.Title(b.Spec),
		Spec:     b.Spec.Params(),
		Problems: make([]problemJSON, len(b.Problems)),
	}
	for i, p := range b.Problems {
		out.Problems[i] = problemJSON{Index: p.Index, Text: p.Text}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
