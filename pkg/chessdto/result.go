package chessdto

// AggregateResult is the outcome of a full history fetch. Months and Errors
// partition Archives: every archive URL that survived the month filter shows
// up in exactly one of the two.
type AggregateResult struct {
	Username string                   `json:"username"`
	Archives []string                 `json:"archives"`
	Months   map[string]*MonthPayload `json:"months"`
	Errors   map[string]string        `json:"errors"`
	From     string                   `json:"from,omitempty"` // RFC3339 UTC, empty when unbounded
	To       string                   `json:"to,omitempty"`
}

// PartiallyFailed reports whether at least one monthly archive fetch failed
// while the overall operation still produced a result.
func (r *AggregateResult) PartiallyFailed() bool {
	return r != nil && len(r.Errors) > 0
}
