package domain

// Reason records which step of the matcher produced the decision.
type Reason string

const (
	ReasonExact          Reason = "exact"
	ReasonContainment    Reason = "containment"
	ReasonSimilarity     Reason = "similarity"
	ReasonBelowThreshold Reason = "below_threshold"
)

// MatchResult holds the outcome of a filename match.
type MatchResult struct {
	// Requested and Actual are the canonical forms that were compared.
	Requested string  `json:"requested"`
	Actual    string  `json:"actual"`
	Score     float64 `json:"score"`
	Passed    bool    `json:"passed"`
	Reason    Reason  `json:"reason"`
	Threshold float64 `json:"threshold"`
}

// Hit is a candidate that matched a query.
type Hit struct {
	Candidate string      `json:"candidate"`
	Index     int         `json:"index"`
	Line      int         `json:"line,omitempty"`
	Result    MatchResult `json:"result"`
}
