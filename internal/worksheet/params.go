package worksheet

// Params is the wire form of a BatchSpec, named after the query parameters
// of the worksheet endpoint. It is used by the HTTP API, the CLI and the
// preset store.
type Params struct {
	ProblemType string `json:"problem_type" yaml:"problem_type"`
	MaxNumber   int    `json:"max_number" yaml:"max_number"`
	NumOperands int    `json:"num_operands" yaml:"num_operands"`
	Operators   string `json:"operators" yaml:"operators"`
	NumProblems int    `json:"num_problems" yaml:"num_problems"`
	OpMode      string `json:"op_mode" yaml:"op_mode"`
}

// Params converts s to its wire form.
func (s BatchSpec) Params() Params {
	return Params{
		ProblemType: s.Kind.String(),
		MaxNumber:   s.MaxNumber,
		NumOperands: s.NumOperands,
		Operators:   s.Category.String(),
		NumProblems: s.NumProblems,
		OpMode:      s.Mode.String(),
	}
}

// Spec parses and validates p.
func (p Params) Spec() (BatchSpec, error) {
	kind, err := ParseProblemKind(p.ProblemType)
	if err != nil {
		return BatchSpec{}, err
	}
	cat, err := ParseOperatorCategory(p.Operators)
	if err != nil {
		return BatchSpec{}, err
	}
	mode, err := ParseCompositionMode(p.OpMode)
	if err != nil {
		return BatchSpec{}, err
	}
	spec := BatchSpec{
		Kind:        kind,
		MaxNumber:   p.MaxNumber,
		NumOperands: p.NumOperands,
		Category:    cat,
		NumProblems: p.NumProblems,
		Mode:        mode,
	}
	if err := spec.Validate(); err != nil {
		return BatchSpec{}, err
	}
	return spec, nil
}

// WithDefaults fills zero-valued fields of p from def.
func (p Params) WithDefaults(def Params) Params {
	if p.ProblemType == "" {
		p.ProblemType = def.ProblemType
	}
	if p.MaxNumber == 0 {
		p.MaxNumber = def.MaxNumber
	}
	if p.NumOperands == 0 {
		p.NumOperands = def.NumOperands
	}
	if p.Operators == "" {
		p.Operators = def.Operators
	}
	if p.NumProblems == 0 {
		p.NumProblems = def.NumProblems
	}
	if p.OpMode == "" {
		p.OpMode = def.OpMode
	}
	return p
}
