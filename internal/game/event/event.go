// Package event defines the outbound events emitted by the engine. Each
// event carries enough data for a read-model mirror to reconstruct state
// without recomputing scores.
package event

import "time"

// Type identifies the type of an engine event.
type Type string

// Membership events.
const (
	// TypeMemberJoined records a member registration.
	TypeMemberJoined Type = "member.joined"
	// TypeMemberApproved records a governance approval.
	TypeMemberApproved Type = "member.approved"
	// TypeMemberBanned records a governance ban.
	TypeMemberBanned Type = "member.banned"
)

// Round events.
const (
	// TypeContributionSubmitted records a contribution submission.
	TypeContributionSubmitted Type = "round.contribution_submitted"
	// TypeRankingSubmitted records a peer-ranking submission.
	TypeRankingSubmitted Type = "round.ranking_submitted"
	// TypeGroupsCreated records the finalized peer groups for a round.
	TypeGroupsCreated Type = "round.groups_created"
	// TypeRespectDistributed records one member's reward for a round.
	TypeRespectDistributed Type = "round.respect_distributed"
	// TypeStageSwitched records a completed stage transition.
	TypeStageSwitched Type = "round.stage_switched"
)

// Governance events.
const (
	// TypeProposalCreated records a new proposal.
	TypeProposalCreated Type = "governance.proposal_created"
	// TypeProposalVoted records a cast vote.
	TypeProposalVoted Type = "governance.proposal_voted"
	// TypeProposalExecuted records an executed proposal.
	TypeProposalExecuted Type = "governance.proposal_executed"
)

// Event is a fact the engine emits after an operation commits.
//
// Seq is assigned by the journal on append. Payload holds one of the typed
// payload structs in this package; events loaded back from a journal carry
// the payload as raw JSON instead.
type Event struct {
	Seq       uint64    `json:"seq"`
	Type      Type      `json:"type"`
	Round     uint64    `json:"round"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// New builds an unsequenced event.
func New(t Type, round uint64, ts time.Time, payload any) Event {
	return Event{
		Type:      t,
		Round:     round,
		Timestamp: ts.UTC(),
		Payload:   payload,
	}
}
