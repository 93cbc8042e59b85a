package batch

import (
	"log/slog"
)

type Failure struct {
	InputPath string
	Format    string
	Err       error
}

// Report aggregates the outcome of a run per output format.
type Report struct {
	Total     int
	Formats   []string
	Succeeded map[string]int
	Failed    map[string]int
	Skipped   map[string]int
	Failures  []Failure
}

func newReport(formats []string) *Report {
	return &Report{
		Formats:   formats,
		Succeeded: map[string]int{},
		Failed:    map[string]int{},
		Skipped:   map[string]int{},
	}
}

func (r *Report) addFailure(inputPath, format string, err error) {
	r.Failed[format]++
	r.Failures = append(r.Failures, Failure{InputPath: inputPath, Format: format, Err: err})
}

func (r *Report) HasFailures() bool {
	return len(r.Failures) > 0
}

// LogAttrs renders the per-format counters as grouped slog attributes.
func (r *Report) LogAttrs() []any {
	attrs := []any{slog.Int("total", r.Total)}
	for _, format := range r.Formats {
		attrs = append(attrs, slog.Group(format,
			slog.Int("succeeded", r.Succeeded[format]),
			slog.Int("failed", r.Failed[format]),
			slog.Int("skipped", r.Skipped[format]),
		))
	}
	return attrs
}
