package service

import (
	"context"
	"sort"
	"time"

	apperr "github.com/respectgame/engine/internal/errors"
	"github.com/respectgame/engine/internal/game/domain"
	"github.com/respectgame/engine/internal/game/event"
)

// MemberView is a read-model snapshot of one member.
type MemberView struct {
	ID             string
	Name           string
	ProfileURL     string
	Description    string
	Handle         string
	Approved       bool
	Banned         bool
	TotalRespect   uint64
	AverageRespect uint64
	RoundsPlayed   uint64
}

func memberView(m *domain.Member) MemberView {
	return MemberView{
		ID:             m.ID,
		Name:           m.Name,
		ProfileURL:     m.ProfileURL,
		Description:    m.Description,
		Handle:         m.Handle,
		Approved:       m.Approved,
		Banned:         m.Banned,
		TotalRespect:   m.TotalRespect,
		AverageRespect: m.AverageRespect(),
		RoundsPlayed:   m.History.Rounds,
	}
}

// GetMember returns one member's snapshot.
func (s *Service) GetMember(ctx context.Context, memberID string) (*MemberView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.state.Member(memberID)
	if !ok {
		return nil, apperr.New(apperr.CodeNotMember, "member not registered")
	}
	v := memberView(m)
	return &v, nil
}

// ListMembers returns every member in join order.
func (s *Service) ListMembers(ctx context.Context) []MemberView {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MemberView, 0, len(s.state.JoinOrder))
	for _, id := range s.state.JoinOrder {
		if m, ok := s.state.Member(id); ok {
			out = append(out, memberView(m))
		}
	}
	return out
}

// TopMembers returns the current governance council snapshot.
func (s *Service) TopMembers(ctx context.Context) []MemberView {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.state.TopMembers(s.state.Params.TopMemberCount)
	out := make([]MemberView, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.state.Member(id); ok {
			out = append(out, memberView(m))
		}
	}
	return out
}

// Stats summarizes the community for dashboards.
type Stats struct {
	Members  int
	Approved int
	Banned   int
}

// CommunityStats counts registered, approved and banned members.
func (s *Service) CommunityStats(ctx context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st Stats
	for _, m := range s.state.Members {
		st.Members++
		if m.Banned {
			st.Banned++
			continue
		}
		if m.Approved {
			st.Approved++
		}
	}
	return st
}

// RoundView is a read-model snapshot of the current round.
type RoundView struct {
	Number       uint64
	Stage        domain.Stage
	Deadline     time.Time
	Groups       [][]string
	Submitted    []string
	Ranked       []string
	SwitchParked bool
	Halted       bool
}

// CurrentRound returns the live round snapshot.
func (s *Service) CurrentRound(ctx context.Context) RoundView {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.state.Round
	v := RoundView{
		Number:       r.Number,
		Stage:        r.Stage,
		Deadline:     r.Deadline,
		SwitchParked: s.state.Switch.InProgress,
		Halted:       s.state.Halted,
	}
	v.Groups = make([][]string, len(r.Groups))
	for i, g := range r.Groups {
		v.Groups[i] = append([]string(nil), g.Members...)
	}
	for id := range r.Contributions {
		v.Submitted = append(v.Submitted, id)
	}
	sort.Strings(v.Submitted)
	for id := range r.Rankings {
		v.Ranked = append(v.Ranked, id)
	}
	sort.Strings(v.Ranked)
	return v
}

// GroupOf returns the caller's group for the current round.
func (s *Service) GroupOf(ctx context.Context, memberID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.state.Round.GroupOf(memberID)
	if !ok {
		return nil, apperr.New(apperr.CodeNotInGroup, "member is not in a group this round")
	}
	return append([]string(nil), s.state.Round.Groups[idx].Members...), nil
}

// LastResults returns the retained per-member outcomes of the most
// recently finished round.
func (s *Service) LastResults(ctx context.Context) (round uint64, results map[string]domain.RoundResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results = make(map[string]domain.RoundResult, len(s.state.LastResults))
	for id, r := range s.state.LastResults {
		results[id] = r
	}
	return s.state.LastResultsRound, results
}

// GetProposal returns one proposal's snapshot.
func (s *Service) GetProposal(ctx context.Context, proposalID uint64) (*domain.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.state.Proposals[proposalID]
	if !ok {
		return nil, apperr.New(apperr.CodeProposalNotFound, "proposal does not exist")
	}
	return cloneProposal(p), nil
}

// ListProposals returns proposals in creation order. pendingOnly filters
// to proposals still accepting votes.
func (s *Service) ListProposals(ctx context.Context, pendingOnly bool) []*domain.Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Proposal, 0, len(s.state.ProposalOrder))
	for _, pid := range s.state.ProposalOrder {
		p, ok := s.state.Proposals[pid]
		if !ok {
			continue
		}
		if pendingOnly && p.Status != domain.ProposalPending {
			continue
		}
		out = append(out, cloneProposal(p))
	}
	return out
}

// Params returns the live game configuration.
func (s *Service) Params(ctx context.Context) domain.Params {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.state.Params
	p.RespectDistribution = append([]uint64(nil), p.RespectDistribution...)
	return p
}

// Events pages through the persisted journal.
func (s *Service) Events(ctx context.Context, after uint64, limit int) ([]event.Event, error) {
	return s.store.Events(ctx, after, limit)
}

func cloneProposal(p *domain.Proposal) *domain.Proposal {
	cp := *p
	cp.Voters = append([]string(nil), p.Voters...)
	cp.Voted = make(map[string]bool, len(p.Voted))
	for voter, v := range p.Voted {
		cp.Voted[voter] = v
	}
	cp.Transactions = make([]domain.Transaction, len(p.Transactions))
	for i, tx := range p.Transactions {
		cp.Transactions[i] = domain.Transaction{
			Target: tx.Target,
			Value:  tx.Value,
			Data:   append([]byte(nil), tx.Data...),
		}
	}
	return &cp
}
