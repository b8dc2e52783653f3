package eclipse

// Summary counts results by classification.
type Summary struct {
	Counts map[Kind]int
	Errors int
	Total  int
}

// Summarize aggregates results. Results carrying an error are counted in
// Errors and not by kind.
func Summarize(results []Result) Summary {
	s := Summary{Counts: make(map[Kind]int, len(Kinds)), Total: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Errors++
			continue
		}
		s.Counts[r.Kind]++
	}
	return s
}

// Eclipses returns the number of error-free non-None results.
func (s Summary) Eclipses() int {
	return s.Counts[Partial] + s.Counts[TotalOrHybrid] + s.Counts[Annular]
}

// Filter keeps eclipses and failed instants, dropping clean None results.
func Filter(results []Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Err != nil || r.Kind != None {
			out = append(out, r)
		}
	}
	return out
}
