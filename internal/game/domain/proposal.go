package domain

import "time"

// ProposalType distinguishes governance proposal kinds.
type ProposalType int

const (
	// ProposalBan flags a member as banned.
	ProposalBan ProposalType = iota + 1
	// ProposalApproveMember approves a pending member.
	ProposalApproveMember
	// ProposalExecuteTransactions dispatches value/call transactions to the
	// executor collaborator.
	ProposalExecuteTransactions
)

// String implements fmt.Stringer.
func (t ProposalType) String() string {
	switch t {
	case ProposalBan:
		return "ban"
	case ProposalApproveMember:
		return "approve_member"
	case ProposalExecuteTransactions:
		return "execute_transactions"
	}
	return "unknown"
}

// ProposalStatus is the proposal lifecycle state.
type ProposalStatus int

const (
	// ProposalPending accepts votes.
	ProposalPending ProposalStatus = iota
	// ProposalApproved reached the threshold; execution follows immediately.
	ProposalApproved
	// ProposalRejected can no longer reach the threshold.
	ProposalRejected
	// ProposalExpired outlived its voting period.
	ProposalExpired
	// ProposalExecuted had its effects applied.
	ProposalExecuted
)

// String implements fmt.Stringer.
func (s ProposalStatus) String() string {
	switch s {
	case ProposalPending:
		return "pending"
	case ProposalApproved:
		return "approved"
	case ProposalRejected:
		return "rejected"
	case ProposalExpired:
		return "expired"
	case ProposalExecuted:
		return "executed"
	}
	return "unknown"
}

// Transaction is one external effect of an execute-transactions proposal.
type Transaction struct {
	Target string `json:"target"`
	Value  uint64 `json:"value"`
	Data   []byte `json:"data"`
}

// Proposal is a governance proposal with a creation-time voter snapshot.
type Proposal struct {
	ID           uint64        `json:"id"`
	Type         ProposalType  `json:"type"`
	Proposer     string        `json:"proposer"`
	TargetMember string        `json:"target_member,omitempty"`
	Transactions []Transaction `json:"transactions,omitempty"`
	Description  string        `json:"description"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// Voters is the top-N set snapshotted at creation time. Round
	// progression cannot add or remove eligibility mid-vote.
	Voters       []string        `json:"voters"`
	Voted        map[string]bool `json:"voted"`
	VotesFor     int             `json:"votes_for"`
	VotesAgainst int             `json:"votes_against"`

	Status ProposalStatus `json:"status"`
}

// Threshold is the affirmative vote count that triggers execution:
// ceil(2N/3) over the snapshotted voter set.
func (p *Proposal) Threshold() int {
	return (2*len(p.Voters) + 2) / 3
}

// Eligible reports whether the member is in the voter snapshot.
func (p *Proposal) Eligible(memberID string) bool {
	for _, id := range p.Voters {
		if id == memberID {
			return true
		}
	}
	return false
}

// Terminal reports whether the proposal accepts no further votes.
func (p *Proposal) Terminal() bool {
	switch p.Status {
	case ProposalRejected, ProposalExpired, ProposalExecuted:
		return true
	}
	return false
}
