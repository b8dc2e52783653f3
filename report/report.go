// Package report formats eclipse results for people and for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/echoflaresat/eclipses/eclipse"
)

// TimeLayout is how instants are displayed. Instants are Terrestrial Time.
const TimeLayout = "2006-01-02 15:04:05"

// WriteTable writes one aligned row per result.
func WriteTable(w io.Writer, results []eclipse.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME (TT)\tTYPE\tMAGNITUDE\tOBSCURITY\tNOTE")
	for _, r := range results {
		note := ""
		if r.Err != nil {
			note = r.Err.Error()
		}
		mag, obs := "-", "-"
		if r.Kind != eclipse.None && r.Err == nil {
			mag = fmt.Sprintf("%.4f", r.Magnitude)
			obs = fmt.Sprintf("%.4f", r.Obscurity)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Instant.UTC().Format(TimeLayout), r.Kind, mag, obs, note)
	}
	return tw.Flush()
}

// WriteSummary writes the counts by classification.
func WriteSummary(w io.Writer, s eclipse.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range eclipse.Kinds {
		fmt.Fprintf(tw, "%s\t%d\n", k, s.Counts[k])
	}
	fmt.Fprintf(tw, "errors\t%d\n", s.Errors)
	fmt.Fprintf(tw, "candidates\t%d\n", s.Total)
	return tw.Flush()
}

// Export is the JSON-serializable form of a run.
type Export struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Eclipses    []RecordExport  `json:"eclipses"`
	Summary     map[string]int  `json:"summary"`
	Failures    []FailureExport `json:"failures,omitempty"`
}

// RecordExport is one eclipse.
type RecordExport struct {
	Instant   time.Time    `json:"instant"`
	Kind      eclipse.Kind `json:"type"`
	Magnitude float64      `json:"magnitude"`
	Obscurity float64      `json:"obscurity"`
}

// FailureExport is one instant that could not be evaluated.
type FailureExport struct {
	Instant time.Time    `json:"instant"`
	Kind    eclipse.Kind `json:"type"`
	Error   string       `json:"error"`
}

// NewExport converts results. Clean None results are left out.
func NewExport(results []eclipse.Result, generatedAt time.Time) *Export {
	s := eclipse.Summarize(results)
	e := &Export{
		GeneratedAt: generatedAt,
		Eclipses:    []RecordExport{},
		Summary:     make(map[string]int, len(eclipse.Kinds)+1),
	}
	for _, k := range eclipse.Kinds {
		e.Summary[k.String()] = s.Counts[k]
	}
	e.Summary["errors"] = s.Errors

	for _, r := range results {
		switch {
		case r.Err != nil:
			e.Failures = append(e.Failures, FailureExport{
				Instant: r.Instant.UTC(),
				Kind:    r.Kind,
				Error:   r.Err.Error(),
			})
		case r.Kind != eclipse.None:
			e.Eclipses = append(e.Eclipses, RecordExport{
				Instant:   r.Instant.UTC(),
				Kind:      r.Kind,
				Magnitude: r.Magnitude,
				Obscurity: r.Obscurity,
			})
		}
	}
	return e
}

// WriteJSON writes the export as indented JSON.
func (e *Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
