package domain

import (
	"sort"
	"time"
)

// SwitchPhase identifies which half of a stage transition is in flight.
type SwitchPhase int

const (
	// PhaseIdle means no transition is in progress.
	PhaseIdle SwitchPhase = iota
	// PhaseGrouping means the submission->ranking partition is mid-batch.
	PhaseGrouping
	// PhaseScoring means the ranking->submission payout is mid-batch.
	PhaseScoring
)

// String implements fmt.Stringer.
func (p SwitchPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseGrouping:
		return "grouping"
	case PhaseScoring:
		return "scoring"
	}
	return "unknown"
}

// SwitchProgress is the resumable cursor for batched stage transitions.
// Re-invoking switchStage while InProgress continues the unfinished batch;
// every other mutating entry point rejects until the transition completes.
type SwitchProgress struct {
	InProgress bool        `json:"in_progress"`
	Phase      SwitchPhase `json:"phase"`

	// Contributors is the shuffled eligible set snapshotted when the
	// grouping phase starts.
	Contributors []string `json:"contributors,omitempty"`

	// Grouped counts members already placed into groups.
	Grouped int `json:"grouped"`
	// Scored counts groups already scored and paid.
	Scored int `json:"scored"`
}

// GameState is the single owned aggregate holding all engine state. Every
// operation mutates it under the service's single-writer lock and persists
// it atomically.
type GameState struct {
	Params Params `json:"params"`

	// Owner may update parameters and bind the executor.
	Owner string `json:"owner"`

	Members     map[string]*Member `json:"members"`
	JoinOrder   []string           `json:"join_order"`
	NextJoinSeq uint64             `json:"next_join_seq"`

	Round  Round          `json:"round"`
	Switch SwitchProgress `json:"switch"`

	// Halted is set when a progress cursor is found corrupted. A halted
	// engine refuses every mutation rather than risk double rewards.
	Halted bool `json:"halted"`

	Proposals      map[uint64]*Proposal `json:"proposals"`
	ProposalOrder  []uint64             `json:"proposal_order"`
	NextProposalID uint64               `json:"next_proposal_id"`

	// LastResults holds per-member outcomes of the most recently finished
	// round, keyed by member ID.
	LastResults      map[string]RoundResult `json:"last_results,omitempty"`
	LastResultsRound uint64                 `json:"last_results_round"`
}

// NewGameState opens round 1 in the submission stage.
func NewGameState(owner string, params Params, now time.Time) *GameState {
	return &GameState{
		Params:    params,
		Owner:     owner,
		Members:   make(map[string]*Member),
		Round:     NewRound(1, now.Add(params.SubmissionLength)),
		Proposals: make(map[uint64]*Proposal),
	}
}

// Member looks up a member by ID.
func (s *GameState) Member(id string) (*Member, bool) {
	m, ok := s.Members[id]
	return m, ok
}

// ApprovedCount counts approved, unbanned members.
func (s *GameState) ApprovedCount() int {
	count := 0
	for _, m := range s.Members {
		if m.Approved && !m.Banned {
			count++
		}
	}
	return count
}

// TopMembers returns up to n member IDs ordered by descending average
// respect, join order breaking ties. Banned and unapproved members are
// excluded. The result is a pure, order-deterministic function of the
// aggregate.
func (s *GameState) TopMembers(n int) []string {
	eligible := make([]*Member, 0, len(s.JoinOrder))
	for _, id := range s.JoinOrder {
		m := s.Members[id]
		if m == nil || !m.Approved || m.Banned {
			continue
		}
		eligible = append(eligible, m)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		ai, aj := eligible[i].AverageRespect(), eligible[j].AverageRespect()
		if ai != aj {
			return ai > aj
		}
		return eligible[i].JoinSeq < eligible[j].JoinSeq
	})

	if n > len(eligible) {
		n = len(eligible)
	}
	top := make([]string, 0, n)
	for _, m := range eligible[:n] {
		top = append(top, m.ID)
	}
	return top
}

// DeepCopy clones the aggregate. The service applies every operation to a
// copy and swaps it in only after persistence succeeds.
func (s *GameState) DeepCopy() *GameState {
	cp := &GameState{
		Params:           s.Params,
		Owner:            s.Owner,
		NextJoinSeq:      s.NextJoinSeq,
		Halted:           s.Halted,
		NextProposalID:   s.NextProposalID,
		LastResultsRound: s.LastResultsRound,
	}

	cp.Params.RespectDistribution = append([]uint64(nil), s.Params.RespectDistribution...)

	cp.Members = make(map[string]*Member, len(s.Members))
	for id, m := range s.Members {
		mc := *m
		mc.History.Amounts = append([]uint64(nil), m.History.Amounts...)
		cp.Members[id] = &mc
	}
	cp.JoinOrder = append([]string(nil), s.JoinOrder...)

	cp.Round = s.Round
	cp.Round.Groups = make([]Group, len(s.Round.Groups))
	for i, g := range s.Round.Groups {
		cp.Round.Groups[i] = Group{
			Members:   append([]string(nil), g.Members...),
			Finalized: g.Finalized,
		}
	}
	cp.Round.Contributions = make(map[string]Contribution, len(s.Round.Contributions))
	for id, c := range s.Round.Contributions {
		cp.Round.Contributions[id] = Contribution{
			Items: append([]string(nil), c.Items...),
			Links: append([]string(nil), c.Links...),
		}
	}
	cp.Round.Rankings = make(map[string][]string, len(s.Round.Rankings))
	for id, ordered := range s.Round.Rankings {
		cp.Round.Rankings[id] = append([]string(nil), ordered...)
	}

	cp.Switch = s.Switch
	cp.Switch.Contributors = append([]string(nil), s.Switch.Contributors...)

	cp.Proposals = make(map[uint64]*Proposal, len(s.Proposals))
	for id, p := range s.Proposals {
		pc := *p
		pc.Voters = append([]string(nil), p.Voters...)
		pc.Voted = make(map[string]bool, len(p.Voted))
		for voter, v := range p.Voted {
			pc.Voted[voter] = v
		}
		pc.Transactions = make([]Transaction, len(p.Transactions))
		for i, tx := range p.Transactions {
			pc.Transactions[i] = Transaction{
				Target: tx.Target,
				Value:  tx.Value,
				Data:   append([]byte(nil), tx.Data...),
			}
		}
		cp.Proposals[id] = &pc
	}
	cp.ProposalOrder = append([]uint64(nil), s.ProposalOrder...)

	if s.LastResults != nil {
		cp.LastResults = make(map[string]RoundResult, len(s.LastResults))
		for id, r := range s.LastResults {
			cp.LastResults[id] = r
		}
	}

	return cp
}
