package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/mathsheet/internal/sheet"
	"github.com/abhisek/mathsheet/internal/store"
	"github.com/spf13/cobra"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage saved worksheet presets",
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save worksheet settings under a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		spec, err := specFromFlags(ctx, cmd.Flags(), cfg, s.PresetRepo(), "")
		if err != nil {
			return err
		}
		if err := s.PresetRepo().Save(ctx, store.Preset{Name: args[0], Spec: spec}); err != nil {
			return fmt.Errorf("save preset: %w", err)
		}
		fmt.Printf("Saved preset %q: %s\n", args[0], sheet.Title(spec))
		return nil
	},
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		presets, err := s.PresetRepo().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list presets: %w", err)
		}
		if len(presets) == 0 {
			fmt.Println("No presets saved.")
			return nil
		}

		fmt.Printf("%-20s  %-19s  %s\n", "Name", "Updated", "Worksheet")
		fmt.Println(strings.Repeat("─", 90))
		for _, p := range presets {
			fmt.Printf("%-20s  %-19s  %s\n",
				p.Name,
				p.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
				sheet.Title(p.Spec))
		}
		return nil
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the settings of a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		p, err := s.PresetRepo().Get(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("preset %q not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("get preset: %w", err)
		}

		params := p.Spec.Params()
		fmt.Printf("Name:          %s\n", p.Name)
		fmt.Printf("Title:         %s\n", sheet.Title(p.Spec))
		fmt.Printf("Problem type:  %s\n", params.ProblemType)
		fmt.Printf("Max number:    %d\n", params.MaxNumber)
		fmt.Printf("Operands:      %d\n", params.NumOperands)
		fmt.Printf("Operators:     %s\n", params.Operators)
		fmt.Printf("Problems:      %d\n", params.NumProblems)
		fmt.Printf("Mode:          %s\n", params.OpMode)
		fmt.Printf("Created:       %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Updated:       %s\n", p.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		return nil
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		err = s.PresetRepo().Delete(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("preset %q not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("delete preset: %w", err)
		}
		fmt.Printf("Deleted preset %q.\n", args[0])
		return nil
	},
}

func init() {
	addSpecFlags(presetSaveCmd.Flags())

	presetCmd.AddCommand(presetSaveCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetShowCmd)
	presetCmd.AddCommand(presetDeleteCmd)
}
