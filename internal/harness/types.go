package harness

// TraceStep records one proposal made during a run.
type TraceStep struct {
	// Step is the 1-based index of the event in the expanded sequence.
	Step     int    `json:"step"`
	Kind     string `json:"kind"`
	EvType   string `json:"ev_type"`
	Delta    int64  `json:"delta"`
	Phase    string `json:"phase"`
	TimedOut bool   `json:"timed_out"`
	Position int64  `json:"position"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Trace contains every proposal in order.
	Trace []TraceStep `json:"trace"`

	// Errors contains failed expectations and assertions.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final state after the last event.
	Position     int64   `json:"position"`
	Phase        string  `json:"phase"`
	Translations []int64 `json:"translations"`
	Timeouts     int64   `json:"timeouts"`
	Messages     int64   `json:"messages"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceStep{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a proposal to the trace.
func (r *Result) AddTrace(step TraceStep) {
	r.Trace = append(r.Trace, step)
}
