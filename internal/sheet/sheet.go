// Package sheet lays out a generated batch as a plain-text worksheet.
package sheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/abhisek/mathsheet/internal/worksheet"
)

// Options controls the text layout.
type Options struct {
	// Title is printed above the problems. Empty means Title(spec).
	Title string

	// Columns is the number of problems per row. Default: 2.
	Columns int

	// Gap is the number of spaces between columns. Default: 6.
	Gap int

	// Number prefixes each problem with its 1-based position.
	Number bool
}

// DefaultOptions matches the two-column layout of the printed worksheet.
func DefaultOptions() Options {
	return Options{Columns: 2, Gap: 6, Number: true}
}

// Title describes a batch, e.g. "Within 20 · Add & Subtract · 2 operands · Compute".
func Title(spec worksheet.BatchSpec) string {
	parts := []string{fmt.Sprintf("Within %d", spec.MaxNumber)}

	// Chains of additions and subtractions are titled by how the operators
	// are composed; everything else by the operator category.
	if spec.NumOperands > 2 && spec.Category == worksheet.CategoryAddSub {
		parts = append(parts, modeTitle(spec.Mode))
	} else {
		parts = append(parts, categoryTitle(spec.Category))
	}
	parts = append(parts, fmt.Sprintf("%d operands", spec.NumOperands), kindTitle(spec.Kind))
	return strings.Join(parts, " · ")
}

func kindTitle(k worksheet.ProblemKind) string {
	switch k {
	case worksheet.KindFindMissing:
		return "Find the Missing Number"
	default:
		return "Compute"
	}
}

func categoryTitle(c worksheet.OperatorCategory) string {
	switch c {
	case worksheet.CategoryMulDiv:
		return "Multiply & Divide"
	case worksheet.CategoryAll:
		return "Four Operations"
	default:
		return "Add & Subtract"
	}
}

func modeTitle(m worksheet.CompositionMode) string {
	if m == worksheet.ModeSequential {
		return "Sequential Operations"
	}
	return "Mixed Operations"
}

// Write renders problems as rows of opts.Columns cells, each cell padded
// to the widest problem so the columns line up.
func Write(w io.Writer, spec worksheet.BatchSpec, problems []worksheet.Problem, opts Options) error {
	if opts.Columns <= 0 {
		opts.Columns = DefaultOptions().Columns
	}
	if opts.Gap <= 0 {
		opts.Gap = DefaultOptions().Gap
	}
	title := opts.Title
	if title == "" {
		title = Title(spec)
	}

	cells := make([]string, len(problems))
	width := 0
	numWidth := len(fmt.Sprint(len(problems)))
	for i, p := range problems {
		cell := p.Text
		if opts.Number {
			cell = fmt.Sprintf("%*d. %s", numWidth, i+1, cell)
		}
		cells[i] = cell
		width = max(width, runewidth.StringWidth(cell))
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", runewidth.StringWidth(title)))
	b.WriteString("\n\n")

	for i, cell := range cells {
		last := i%opts.Columns == opts.Columns-1 || i == len(cells)-1
		if last {
			b.WriteString(strings.TrimRight(cell, " "))
			b.WriteString("\n")
			continue
		}
		b.WriteString(runewidth.FillRight(cell, width+opts.Gap))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
