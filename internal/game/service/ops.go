package service

import (
	"context"
	"time"

	apperr "github.com/respectgame/engine/internal/errors"
	"github.com/respectgame/engine/internal/game/domain"
	"github.com/respectgame/engine/internal/game/event"
	"github.com/respectgame/engine/internal/game/governance"
	"github.com/respectgame/engine/internal/game/registry"
	"github.com/respectgame/engine/internal/game/rounds"
	"github.com/respectgame/engine/internal/game/scheduler"
	"github.com/respectgame/engine/internal/id"
	"github.com/respectgame/engine/internal/random"
)

// JoinResult reports a completed registration.
type JoinResult struct {
	MemberID     string
	AutoApproved bool
}

// Join registers a new member. An empty memberID asks the engine to mint
// one; callers integrating an external identity pass their own.
func (s *Service) Join(ctx context.Context, memberID string, p registry.Profile) (*JoinResult, error) {
	if memberID == "" {
		minted, err := id.New()
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeUnknown, "mint member id", err)
		}
		memberID = minted
	}

	var res JoinResult
	err := s.apply(ctx, mutation{op: "join"}, func(st *domain.GameState, now time.Time) ([]event.Event, error) {
		auto, err := registry.Join(st, memberID, p)
		if err != nil {
			return nil, err
		}
		res = JoinResult{MemberID: memberID, AutoApproved: auto}
		return []event.Event{
			event.New(event.TypeMemberJoined, st.Round.Number, now, event.MemberJoinedPayload{
				MemberID:     memberID,
				Name:         p.Name,
				ProfileURL:   p.ProfileURL,
				Description:  p.Description,
				Handle:       p.Handle,
				AutoApproved: auto,
			}),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// SubmitContribution records the caller's contribution for the current
// round.
func (s *Service) SubmitContribution(ctx context.Context, memberID string, c domain.Contribution) error {
	return s.apply(ctx, mutation{op: "submit_contribution"}, func(st *domain.GameState, now time.Time) ([]event.Event, error) {
		if err := rounds.SubmitContribution(st, memberID, c); err != nil {
			return nil, err
		}
		return []event.Event{
			event.New(event.TypeContributionSubmitted, st.Round.Number, now, event.ContributionSubmittedPayload{
				MemberID: memberID,
				Items:    c.Items,
				Links:    c.Links,
			}),
		}, nil
	})
}

// SubmitRanking records the caller's ordering of their group, best first.
func (s *Service) SubmitRanking(ctx context.Context, memberID string, ordered []string) error {
	return s.apply(ctx, mutation{op: "submit_ranking"}, func(st *domain.GameState, now time.Time) ([]event.Event, error) {
		groupID, err := rounds.SubmitRanking(st, memberID, ordered)
		if err != nil {
			return nil, err
		}
		return []event.Event{
			event.New(event.TypeRankingSubmitted, st.Round.Number, now, event.RankingSubmittedPayload{
				MemberID: memberID,
				GroupID:  groupID,
				Ordered:  ordered,
			}),
		}, nil
	})
}

// SwitchStage advances the round once its deadline passes. Large
// communities need several calls; the returned result's Done field says
// whether the transition finished. The daemon calls this on a ticker, but
// any caller may drive it.
func (s *Service) SwitchStage(ctx context.Context) (*scheduler.Result, error) {
	var res *scheduler.Result
	err := s.apply(ctx, mutation{op: "switch_stage", allowDuringSwitch: true}, func(st *domain.GameState, now time.Time) ([]event.Event, error) {
		seed, err := s.newSeed()
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeUnknown, "generate shuffle seed", err)
		}

		round := st.Round.Number
		res, err = scheduler.SwitchStage(st, now, random.NewPerm(seed))
		if err != nil {
			return nil, err
		}

		var events []event.Event
		if res.Groups != nil {
			events = append(events, event.New(event.TypeGroupsCreated, round, now, event.GroupsCreatedPayload{
				Groups:   res.Groups,
				Excluded: res.Excluded,
			}))
		}
		for _, p := range res.Payouts {
			events = append(events, event.New(event.TypeRespectDistributed, round, now, event.RespectDistributedPayload{
				MemberID:   p.MemberID,
				GroupID:    p.Group,
				Rank:       p.Rank,
				Amount:     p.Amount,
				NewAverage: p.NewAverage,
			}))
		}
		if res.Done {
			events = append(events, event.New(event.TypeStageSwitched, res.RoundNumber, now, event.StageSwitchedPayload{
				Stage:    res.Stage.String(),
				Deadline: res.Deadline,
			}))
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ProposeBan opens a ban proposal against a member.
func (s *Service) ProposeBan(ctx context.Context, proposer, target, description string) (*domain.Proposal, error) {
	return s.propose(ctx, "propose_ban", func(st *domain.GameState, now time.Time) (*domain.Proposal, error) {
		return governance.CreateBan(st, proposer, target, description, now)
	})
}

// ProposeApproveMember opens an approval proposal for a pending member.
func (s *Service) ProposeApproveMember(ctx context.Context, proposer, target, description string) (*domain.Proposal, error) {
	return s.propose(ctx, "propose_approve_member", func(st *domain.GameState, now time.Time) (*domain.Proposal, error) {
		return governance.CreateApproveMember(st, proposer, target, description, now)
	})
}

// ProposeExecuteTransactions opens a proposal to dispatch transactions
// through the bound executor. Rejected outright when no executor is bound,
// so proposals cannot pass into a void.
func (s *Service) ProposeExecuteTransactions(ctx context.Context, proposer string, txs []domain.Transaction, description string) (*domain.Proposal, error) {
	s.mu.Lock()
	bound := s.executor != nil
	s.mu.Unlock()
	if !bound {
		return nil, apperr.New(apperr.CodeNoExecutor, "no executor is bound")
	}
	return s.propose(ctx, "propose_execute_transactions", func(st *domain.GameState, now time.Time) (*domain.Proposal, error) {
		return governance.CreateExecuteTransactions(st, proposer, txs, description, now)
	})
}

func (s *Service) propose(ctx context.Context, op string, create func(st *domain.GameState, now time.Time) (*domain.Proposal, error)) (*domain.Proposal, error) {
	var created *domain.Proposal
	err := s.apply(ctx, mutation{op: op}, func(st *domain.GameState, now time.Time) ([]event.Event, error) {
		p, err := create(st, now)
		if err != nil {
			return nil, err
		}
		created = cloneProposal(p)

		txs := make([]event.ProposalTransaction, 0, len(p.Transactions))
		for _, tx := range p.Transactions {
			txs = append(txs, event.ProposalTransaction{Target: tx.Target, Value: tx.Value, Data: tx.Data})
		}
		return []event.Event{
			event.New(event.TypeProposalCreated, st.Round.Number, now, event.ProposalCreatedPayload{
				ProposalID:   p.ID,
				Type:         p.Type.String(),
				Proposer:     p.Proposer,
				TargetMember: p.TargetMember,
				Transactions: txs,
				Description:  p.Description,
				Voters:       p.Voters,
				ExpiresAt:    p.ExpiresAt,
			}),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// VoteResult reports a counted vote.
type VoteResult struct {
	Status domain.ProposalStatus
	// Passed means this vote pushed the proposal over the threshold.
	Passed bool
	// ExecutionErr is set when a passed execute-transactions proposal
	// failed at the executor. The vote itself stands and the proposal
	// remains approved for a retry.
	ExecutionErr error
}

// Vote casts one top member's vote on a pending proposal. A vote that
// passes a ban or approval proposal applies the effect in the same commit.
// A passed execute-transactions proposal dispatches to the executor after
// the vote commits; executor failure leaves it approved for RetryExecution.
func (s *Service) Vote(ctx context.Context, proposalID uint64, voter string, support bool) (*VoteResult, error) {
	var (
		res       VoteResult
		execTxs   []domain.Transaction
		execAfter bool
	)
	err := s.apply(ctx, mutation{op: "vote"}, func(st *domain.GameState, now time.Time) ([]event.Event, error) {
		outcome, err := governance.Vote(st, proposalID, voter, support, now)
		if err != nil {
			return nil, err
		}
		p := outcome.Proposal
		res = VoteResult{Status: p.Status, Passed: outcome.Passed}

		events := []event.Event{
			event.New(event.TypeProposalVoted, st.Round.Number, now, event.ProposalVotedPayload{
				ProposalID:   p.ID,
				Voter:        voter,
				Support:      support,
				VotesFor:     p.VotesFor,
				VotesAgainst: p.VotesAgainst,
				Status:       p.Status.String(),
			}),
		}

		if outcome.Passed {
			switch p.Type {
			case domain.ProposalBan:
				if outcome.EffectApplied {
					events = append(events, event.New(event.TypeMemberBanned, st.Round.Number, now, event.MemberBannedPayload{
						MemberID:   p.TargetMember,
						ProposalID: p.ID,
					}))
				}
				events = append(events, event.New(event.TypeProposalExecuted, st.Round.Number, now, event.ProposalExecutedPayload{
					ProposalID: p.ID,
					Type:       p.Type.String(),
				}))
			case domain.ProposalApproveMember:
				if outcome.EffectApplied {
					events = append(events, event.New(event.TypeMemberApproved, st.Round.Number, now, event.MemberApprovedPayload{
						MemberID:   p.TargetMember,
						ProposalID: p.ID,
					}))
				}
				events = append(events, event.New(event.TypeProposalExecuted, st.Round.Number, now, event.ProposalExecutedPayload{
					ProposalID: p.ID,
					Type:       p.Type.String(),
				}))
			case domain.ProposalExecuteTransactions:
				execAfter = true
				execTxs = append([]domain.Transaction(nil), p.Transactions...)
			}
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	if execAfter {
		if execErr := s.executeProposal(ctx, proposalID, execTxs); execErr != nil {
			res.ExecutionErr = execErr
			res.Status = domain.ProposalApproved
		} else {
			res.Status = domain.ProposalExecuted
		}
	}
	return &res, nil
}

// RetryExecution re-dispatches an approved execute-transactions proposal
// whose previous executor run failed.
func (s *Service) RetryExecution(ctx context.Context, proposalID uint64) error {
	s.mu.Lock()
	p, ok := s.state.Proposals[proposalID]
	if !ok {
		s.mu.Unlock()
		return apperr.New(apperr.CodeProposalNotFound, "proposal does not exist")
	}
	if p.Status != domain.ProposalApproved || p.Type != domain.ProposalExecuteTransactions {
		s.mu.Unlock()
		return apperr.New(apperr.CodeProposalNotPending, "proposal is not awaiting execution")
	}
	txs := append([]domain.Transaction(nil), p.Transactions...)
	s.mu.Unlock()

	return s.executeProposal(ctx, proposalID, txs)
}

// executeProposal runs the executor outside the state lock, then records
// the completed execution. A per-proposal guard keeps a concurrent retry
// from dispatching the same transactions twice.
func (s *Service) executeProposal(ctx context.Context, proposalID uint64, txs []domain.Transaction) error {
	s.mu.Lock()
	exec := s.executor
	if exec == nil {
		s.mu.Unlock()
		return apperr.New(apperr.CodeNoExecutor, "no executor is bound")
	}
	if s.executing[proposalID] {
		s.mu.Unlock()
		return apperr.New(apperr.CodeExecutionInProgress, "proposal execution already in flight")
	}
	s.executing[proposalID] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.executing, proposalID)
		s.mu.Unlock()
	}()

	if err := exec.Execute(ctx, txs); err != nil {
		s.log.Error().Err(err).Uint64("proposal_id", proposalID).Msg("executor failed, proposal stays approved")
		return apperr.Wrap(apperr.CodeExecutionFailed, "executor failed", err)
	}

	return s.apply(ctx, mutation{op: "mark_executed", allowDuringSwitch: true}, func(st *domain.GameState, now time.Time) ([]event.Event, error) {
		if err := governance.MarkExecuted(st, proposalID); err != nil {
			return nil, err
		}
		p := st.Proposals[proposalID]
		return []event.Event{
			event.New(event.TypeProposalExecuted, st.Round.Number, now, event.ProposalExecutedPayload{
				ProposalID: proposalID,
				Type:       p.Type.String(),
			}),
		}, nil
	})
}

// ExpireProposals sweeps pending proposals past their voting period.
// Called on the daemon tick.
func (s *Service) ExpireProposals(ctx context.Context) ([]uint64, error) {
	var expired []uint64
	err := s.apply(ctx, mutation{op: "expire_proposals", allowDuringSwitch: true}, func(st *domain.GameState, now time.Time) ([]event.Event, error) {
		expired = governance.ExpireDue(st, now)
		if len(expired) == 0 {
			return nil, errNothingExpired
		}
		return nil, nil
	})
	if err == errNothingExpired {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return expired, nil
}

var errNothingExpired = apperr.New(apperr.CodeNotFound, "no proposals due for expiry")

// UpdateParams replaces the game configuration. Owner only. The new
// parameters apply from the next operation; round deadlines already set
// keep their original stage lengths.
func (s *Service) UpdateParams(ctx context.Context, callerID string, params domain.Params) error {
	return s.apply(ctx, mutation{op: "update_params"}, func(st *domain.GameState, now time.Time) ([]event.Event, error) {
		if callerID != st.Owner || st.Owner == "" {
			return nil, apperr.New(apperr.CodeNotOwner, "only the owner may update parameters")
		}
		if err := params.Validate(); err != nil {
			return nil, err
		}
		st.Params = params
		return nil, nil
	})
}

// SetExecutor binds the executor collaborator at runtime. Owner only.
func (s *Service) SetExecutor(callerID string, exec governance.Executor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if callerID != s.state.Owner || s.state.Owner == "" {
		return apperr.New(apperr.CodeNotOwner, "only the owner may bind the executor")
	}
	s.executor = exec
	return nil
}
