package domain

import "time"

// Stage is the phase of the current round.
type Stage int

const (
	// StageSubmission accepts contribution submissions.
	StageSubmission Stage = iota
	// StageRanking accepts peer rankings.
	StageRanking
)

// String implements fmt.Stringer.
func (s Stage) String() string {
	switch s {
	case StageSubmission:
		return "submission"
	case StageRanking:
		return "ranking"
	}
	return "unknown"
}

// Group is a fixed-size peer-review group. Immutable once finalized.
type Group struct {
	Members   []string `json:"members"`
	Finalized bool     `json:"finalized"`
}

// Contains reports whether the member belongs to the group.
func (g Group) Contains(memberID string) bool {
	for _, id := range g.Members {
		if id == memberID {
			return true
		}
	}
	return false
}

// Contribution is one member's submission for a round.
type Contribution struct {
	Items []string `json:"items"`
	Links []string `json:"links"`
}

// Round is one Submission+Ranking cycle. Per-round ledgers are cleared when
// the next round opens.
type Round struct {
	Number   uint64    `json:"number"`
	Stage    Stage     `json:"stage"`
	Deadline time.Time `json:"deadline"`

	Groups []Group `json:"groups"`

	Contributions map[string]Contribution `json:"contributions"`
	Rankings      map[string][]string     `json:"rankings"`
}

// NewRound opens a round in the submission stage.
func NewRound(number uint64, deadline time.Time) Round {
	return Round{
		Number:        number,
		Stage:         StageSubmission,
		Deadline:      deadline,
		Contributions: make(map[string]Contribution),
		Rankings:      make(map[string][]string),
	}
}

// GroupOf returns the index of the group the member belongs to.
func (r *Round) GroupOf(memberID string) (int, bool) {
	for i, g := range r.Groups {
		if g.Contains(memberID) {
			return i, true
		}
	}
	return 0, false
}

// HasSubmitted reports whether the member already submitted a contribution.
func (r *Round) HasSubmitted(memberID string) bool {
	_, ok := r.Contributions[memberID]
	return ok
}

// HasRanked reports whether the member already submitted a ranking.
func (r *Round) HasRanked(memberID string) bool {
	_, ok := r.Rankings[memberID]
	return ok
}

// RoundResult is one member's outcome for a finished round. Retained so
// read models can serve results without recomputing scores.
type RoundResult struct {
	Group   int     `json:"group"`
	Rank    int     `json:"rank"`
	Score   float64 `json:"score"`
	Respect uint64  `json:"respect"`
}
