// Package governance implements threshold voting by the top members:
// proposal creation, voting, and effect application.
//
// Voter eligibility is snapshotted when a proposal is created, so round
// progression cannot shift who may vote mid-proposal. A proposal passes
// when affirmative votes reach ceil(2N/3) of the snapshot and is rejected
// as soon as that threshold becomes unreachable.
package governance

import (
	"context"
	"time"

	apperr "github.com/respectgame/engine/internal/errors"
	"github.com/respectgame/engine/internal/game/domain"
	"github.com/respectgame/engine/internal/game/registry"
)

// Executor dispatches the transactions of a passed execute-transactions
// proposal to the outside world.
type Executor interface {
	Execute(ctx context.Context, txs []domain.Transaction) error
}

// CreateBan opens a proposal to ban a member.
func CreateBan(s *domain.GameState, proposer, target, description string, now time.Time) (*domain.Proposal, error) {
	m, ok := s.Members[target]
	if !ok {
		return nil, apperr.New(apperr.CodeNotMember, "ban target is not registered")
	}
	if m.Banned {
		return nil, apperr.New(apperr.CodeMemberBanned, "ban target is already banned")
	}

	p, err := newProposal(s, domain.ProposalBan, proposer, description, now)
	if err != nil {
		return nil, err
	}
	p.TargetMember = target
	return p, nil
}

// CreateApproveMember opens a proposal to approve a pending member.
func CreateApproveMember(s *domain.GameState, proposer, target, description string, now time.Time) (*domain.Proposal, error) {
	m, ok := s.Members[target]
	if !ok {
		return nil, apperr.New(apperr.CodeNotMember, "approval target is not registered")
	}
	if m.Banned {
		return nil, apperr.New(apperr.CodeMemberBanned, "approval target is banned")
	}
	if m.Approved {
		return nil, apperr.New(apperr.CodeAlreadyMember, "approval target is already approved")
	}

	p, err := newProposal(s, domain.ProposalApproveMember, proposer, description, now)
	if err != nil {
		return nil, err
	}
	p.TargetMember = target
	return p, nil
}

// CreateExecuteTransactions opens a proposal to dispatch transactions
// through the bound executor.
func CreateExecuteTransactions(s *domain.GameState, proposer string, txs []domain.Transaction, description string, now time.Time) (*domain.Proposal, error) {
	if len(txs) == 0 {
		return nil, apperr.New(apperr.CodeNoTransactions, "proposal carries no transactions")
	}

	p, err := newProposal(s, domain.ProposalExecuteTransactions, proposer, description, now)
	if err != nil {
		return nil, err
	}
	p.Transactions = make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		p.Transactions[i] = domain.Transaction{
			Target: tx.Target,
			Value:  tx.Value,
			Data:   append([]byte(nil), tx.Data...),
		}
	}
	return p, nil
}

func newProposal(s *domain.GameState, typ domain.ProposalType, proposer, description string, now time.Time) (*domain.Proposal, error) {
	voters := s.TopMembers(s.Params.TopMemberCount)
	if !contains(voters, proposer) {
		return nil, apperr.New(apperr.CodeNotTopMember, "only top members may open proposals")
	}

	p := &domain.Proposal{
		ID:          s.NextProposalID,
		Type:        typ,
		Proposer:    proposer,
		Description: description,
		CreatedAt:   now.UTC(),
		ExpiresAt:   now.UTC().Add(s.Params.VotingPeriod),
		Voters:      voters,
		Voted:       make(map[string]bool),
		Status:      domain.ProposalPending,
	}
	s.Proposals[p.ID] = p
	s.ProposalOrder = append(s.ProposalOrder, p.ID)
	s.NextProposalID++
	return p, nil
}

// Outcome reports what a vote did to its proposal.
type Outcome struct {
	Proposal *domain.Proposal
	// Passed means this vote pushed the proposal over the threshold. Ban
	// and approval effects are already applied; execute-transactions
	// proposals await the executor.
	Passed bool
	// EffectApplied means the membership effect actually changed the
	// target. False when the target already satisfied the effect by the
	// time the deciding vote landed.
	EffectApplied bool
}

// Vote casts one snapshot member's vote. The first vote past the
// threshold applies membership effects immediately; a vote that makes the
// threshold unreachable rejects the proposal. Voting on a proposal past
// its expiry flips it to expired and fails.
func Vote(s *domain.GameState, proposalID uint64, voter string, support bool, now time.Time) (*Outcome, error) {
	p, ok := s.Proposals[proposalID]
	if !ok {
		return nil, apperr.New(apperr.CodeProposalNotFound, "proposal does not exist")
	}
	if p.Status != domain.ProposalPending {
		return nil, apperr.New(apperr.CodeProposalNotPending, "proposal no longer accepts votes")
	}
	if now.After(p.ExpiresAt) {
		p.Status = domain.ProposalExpired
		return &Outcome{Proposal: p}, apperr.New(apperr.CodeProposalExpired, "voting period has ended")
	}
	if !p.Eligible(voter) {
		return nil, apperr.New(apperr.CodeNotEligibleVoter, "voter is not in the proposal snapshot")
	}
	if p.Voted[voter] {
		return nil, apperr.New(apperr.CodeAlreadyVoted, "voter already voted on this proposal")
	}

	p.Voted[voter] = true
	if support {
		p.VotesFor++
	} else {
		p.VotesAgainst++
	}

	outcome := &Outcome{Proposal: p}

	switch {
	case p.VotesFor >= p.Threshold():
		p.Status = domain.ProposalApproved
		outcome.Passed = true
		applyMembershipEffect(s, p, outcome)
	case p.VotesFor+remainingVotes(p) < p.Threshold():
		p.Status = domain.ProposalRejected
	}
	return outcome, nil
}

func remainingVotes(p *domain.Proposal) int {
	return len(p.Voters) - len(p.Voted)
}

// applyMembershipEffect applies ban and approval proposals in place.
// Targets can change between creation and the deciding vote: an effect
// already satisfied finalizes without reapplying, and an approval whose
// target was banned in the meantime flips the proposal to rejected, so a
// stale proposal never wedges pending until expiry. Execute-transactions
// proposals stay approved until the executor runs.
func applyMembershipEffect(s *domain.GameState, p *domain.Proposal, o *Outcome) {
	switch p.Type {
	case domain.ProposalBan:
		if registry.Ban(s, p.TargetMember) == nil {
			o.EffectApplied = true
		}
		p.Status = domain.ProposalExecuted
	case domain.ProposalApproveMember:
		m, ok := s.Members[p.TargetMember]
		if !ok || m.Banned {
			p.Status = domain.ProposalRejected
			o.Passed = false
			return
		}
		if registry.Approve(s, p.TargetMember) == nil {
			o.EffectApplied = true
		}
		p.Status = domain.ProposalExecuted
	case domain.ProposalExecuteTransactions:
	}
}

// MarkExecuted finalizes an approved execute-transactions proposal after
// the executor ran its transactions.
func MarkExecuted(s *domain.GameState, proposalID uint64) error {
	p, ok := s.Proposals[proposalID]
	if !ok {
		return apperr.New(apperr.CodeProposalNotFound, "proposal does not exist")
	}
	if p.Status != domain.ProposalApproved {
		return apperr.New(apperr.CodeProposalNotPending, "proposal is not awaiting execution")
	}
	p.Status = domain.ProposalExecuted
	return nil
}

// ExpireDue flips every pending proposal past its expiry and returns
// their IDs. Called on the daemon tick so stale proposals do not linger
// as pending forever.
func ExpireDue(s *domain.GameState, now time.Time) []uint64 {
	var expired []uint64
	for _, id := range s.ProposalOrder {
		p := s.Proposals[id]
		if p == nil || p.Status != domain.ProposalPending {
			continue
		}
		if now.After(p.ExpiresAt) {
			p.Status = domain.ProposalExpired
			expired = append(expired, id)
		}
	}
	return expired
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
