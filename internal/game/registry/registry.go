// Package registry implements membership: joining, approval and bans.
package registry

import (
	apperr "github.com/respectgame/engine/internal/errors"
	"github.com/respectgame/engine/internal/game/domain"
)

// Profile carries the public fields a joining member supplies.
type Profile struct {
	Name        string
	ProfileURL  string
	Description string
	Handle      string
}

// Join registers a new member. While the community is below the
// auto-approval threshold the member is approved immediately; afterwards
// they wait for an approval proposal to pass. Returns whether the member
// was auto-approved.
func Join(s *domain.GameState, id string, p Profile) (autoApproved bool, err error) {
	if p.Name == "" {
		return false, apperr.New(apperr.CodeEmptyName, "member name is required")
	}
	if _, ok := s.Members[id]; ok {
		return false, apperr.New(apperr.CodeAlreadyMember, "member already registered")
	}

	autoApproved = s.ApprovedCount() < s.Params.MembersWithoutApproval

	s.Members[id] = &domain.Member{
		ID:          id,
		Name:        p.Name,
		ProfileURL:  p.ProfileURL,
		Description: p.Description,
		Handle:      p.Handle,
		Approved:    autoApproved,
		JoinSeq:     s.NextJoinSeq,
	}
	s.JoinOrder = append(s.JoinOrder, id)
	s.NextJoinSeq++
	return autoApproved, nil
}

// Approve marks a registered member as approved. Approving an already
// approved member is a no-op error so governance double-execution is
// visible.
func Approve(s *domain.GameState, id string) error {
	m, ok := s.Members[id]
	if !ok {
		return apperr.New(apperr.CodeNotMember, "member not registered")
	}
	if m.Banned {
		return apperr.New(apperr.CodeMemberBanned, "member is banned")
	}
	if m.Approved {
		return apperr.New(apperr.CodeAlreadyMember, "member already approved")
	}
	m.Approved = true
	return nil
}

// Ban excludes a member from the game. Their accumulated reward history is
// cleared so the rolling average reads zero and they drop out of every
// top-member computation permanently.
func Ban(s *domain.GameState, id string) error {
	m, ok := s.Members[id]
	if !ok {
		return apperr.New(apperr.CodeNotMember, "member not registered")
	}
	if m.Banned {
		return apperr.New(apperr.CodeMemberBanned, "member already banned")
	}
	m.Banned = true
	m.History.Reset()
	return nil
}

// Eligible reports whether the member may act in rounds: registered,
// approved, not banned.
func Eligible(s *domain.GameState, id string) error {
	m, ok := s.Members[id]
	if !ok {
		return apperr.New(apperr.CodeNotMember, "member not registered")
	}
	if m.Banned {
		return apperr.New(apperr.CodeMemberBanned, "member is banned")
	}
	if !m.Approved {
		return apperr.New(apperr.CodeNotApproved, "member awaiting approval")
	}
	return nil
}
