package event

import "time"

// MemberJoinedPayload captures the payload for member.joined events.
type MemberJoinedPayload struct {
	MemberID     string `json:"member_id"`
	Name         string `json:"name"`
	ProfileURL   string `json:"profile_url"`
	Description  string `json:"description"`
	Handle       string `json:"handle"`
	AutoApproved bool   `json:"auto_approved"`
}

// MemberApprovedPayload captures the payload for member.approved events.
type MemberApprovedPayload struct {
	MemberID   string `json:"member_id"`
	ProposalID uint64 `json:"proposal_id"`
}

// MemberBannedPayload captures the payload for member.banned events.
type MemberBannedPayload struct {
	MemberID   string `json:"member_id"`
	ProposalID uint64 `json:"proposal_id"`
}

// ContributionSubmittedPayload captures the payload for
// round.contribution_submitted events.
type ContributionSubmittedPayload struct {
	MemberID string   `json:"member_id"`
	Items    []string `json:"items"`
	Links    []string `json:"links"`
}

// RankingSubmittedPayload captures the payload for round.ranking_submitted
// events.
type RankingSubmittedPayload struct {
	MemberID string   `json:"member_id"`
	GroupID  int      `json:"group_id"`
	Ordered  []string `json:"ordered"` // best first
}

// GroupsCreatedPayload captures the payload for round.groups_created events.
type GroupsCreatedPayload struct {
	Groups   [][]string `json:"groups"`
	Excluded []string   `json:"excluded,omitempty"`
}

// RespectDistributedPayload captures the payload for
// round.respect_distributed events. NewAverage lets mirrors track rolling
// averages without replaying reward history.
type RespectDistributedPayload struct {
	MemberID   string `json:"member_id"`
	GroupID    int    `json:"group_id"`
	Rank       int    `json:"rank"`
	Amount     uint64 `json:"amount"`
	NewAverage uint64 `json:"new_average"`
}

// StageSwitchedPayload captures the payload for round.stage_switched events.
type StageSwitchedPayload struct {
	Stage    string    `json:"stage"`
	Deadline time.Time `json:"deadline"`
}

// ProposalTransaction mirrors a proposal transaction for event consumers.
type ProposalTransaction struct {
	Target string `json:"target"`
	Value  uint64 `json:"value"`
	Data   []byte `json:"data,omitempty"`
}

// ProposalCreatedPayload captures the payload for
// governance.proposal_created events.
type ProposalCreatedPayload struct {
	ProposalID   uint64                `json:"proposal_id"`
	Type         string                `json:"type"`
	Proposer     string                `json:"proposer"`
	TargetMember string                `json:"target_member,omitempty"`
	Transactions []ProposalTransaction `json:"transactions,omitempty"`
	Description  string                `json:"description"`
	Voters       []string              `json:"voters"`
	ExpiresAt    time.Time             `json:"expires_at"`
}

// ProposalVotedPayload captures the payload for governance.proposal_voted
// events.
type ProposalVotedPayload struct {
	ProposalID   uint64 `json:"proposal_id"`
	Voter        string `json:"voter"`
	Support      bool   `json:"support"`
	VotesFor     int    `json:"votes_for"`
	VotesAgainst int    `json:"votes_against"`
	Status       string `json:"status"`
}

// ProposalExecutedPayload captures the payload for
// governance.proposal_executed events.
type ProposalExecutedPayload struct {
	ProposalID uint64 `json:"proposal_id"`
	Type       string `json:"type"`
}
