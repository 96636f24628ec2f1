package harness

import (
	"fmt"
	"slices"
	"strings"
)

// EvaluateExpectations checks a result against the expected outcome and
// returns one message per failed expectation.
func EvaluateExpectations(r *Result, expect Expect) []string {
	var errs []string

	if expect.Error != "" {
		switch {
		case r.SearchError == "":
			errs = append(errs, fmt.Sprintf("expected search error containing %q, search succeeded", expect.Error))
		case !strings.Contains(r.SearchError, expect.Error):
			errs = append(errs, fmt.Sprintf("expected search error containing %q, got %q", expect.Error, r.SearchError))
		}
	} else if r.SearchError != "" {
		errs = append(errs, fmt.Sprintf("unexpected search error: %s", r.SearchError))
	}

	if expect.Count != nil && *expect.Count != len(r.Matches) {
		errs = append(errs, fmt.Sprintf("expected %d matches, got %d", *expect.Count, len(r.Matches)))
	}

	if expect.Matches != nil {
		got := r.MatchEdges()
		for i, want := range expect.Matches {
			if i >= len(got) {
				errs = append(errs, fmt.Sprintf("match %d: expected %s, missing", i+1, formatEdges(want)))
				continue
			}
			if !slices.Equal(want, got[i]) {
				errs = append(errs, fmt.Sprintf("match %d: expected %s, got %s", i+1, formatEdges(want), formatEdges(got[i])))
			}
		}
		for i := len(expect.Matches); i < len(got); i++ {
			errs = append(errs, fmt.Sprintf("match %d: unexpected %s", i+1, formatEdges(got[i])))
		}
	}

	return errs
}

func formatEdges(names []string) string {
	return "[" + strings.Join(names, " ") + "]"
}
