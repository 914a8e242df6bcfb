// Package rounds implements the per-round member operations: contribution
// submission and peer ranking.
package rounds

import (
	apperr "github.com/respectgame/engine/internal/errors"
	"github.com/respectgame/engine/internal/game/domain"
	"github.com/respectgame/engine/internal/game/registry"
)

// SubmitContribution records a member's contribution for the current round.
// One submission per member per round; submissions close when the stage
// flips to ranking.
func SubmitContribution(s *domain.GameState, memberID string, c domain.Contribution) error {
	if err := registry.Eligible(s, memberID); err != nil {
		return err
	}
	if s.Round.Stage != domain.StageSubmission {
		return apperr.New(apperr.CodeNotSubmissionStage, "round is not accepting contributions")
	}
	if s.Round.HasSubmitted(memberID) {
		return apperr.New(apperr.CodeAlreadySubmitted, "contribution already submitted this round")
	}
	if len(c.Items) == 0 {
		return apperr.New(apperr.CodeEmptyContribution, "contribution must list at least one item")
	}
	if len(c.Items) != len(c.Links) {
		return apperr.New(apperr.CodeLengthMismatch, "contribution items and links must pair up")
	}
	if len(c.Items) > s.Params.MaxContributionItems {
		return apperr.New(apperr.CodeTooManyItems, "contribution exceeds the item limit")
	}

	s.Round.Contributions[memberID] = domain.Contribution{
		Items: append([]string(nil), c.Items...),
		Links: append([]string(nil), c.Links...),
	}
	return nil
}

// SubmitRanking records a member's ordering of their own group, best first.
// The ordering must be an exact permutation of the group, the ranker
// included.
func SubmitRanking(s *domain.GameState, memberID string, ordered []string) (groupID int, err error) {
	if err := registry.Eligible(s, memberID); err != nil {
		return 0, err
	}
	if s.Round.Stage != domain.StageRanking {
		return 0, apperr.New(apperr.CodeNotRankingStage, "round is not accepting rankings")
	}

	groupID, ok := s.Round.GroupOf(memberID)
	if !ok {
		return 0, apperr.New(apperr.CodeNotInGroup, "member is not in a group this round")
	}
	if s.Round.HasRanked(memberID) {
		return 0, apperr.New(apperr.CodeAlreadyRanked, "ranking already submitted this round")
	}

	group := s.Round.Groups[groupID]
	if !isPermutation(ordered, group.Members) {
		return 0, apperr.New(apperr.CodeNotPermutation, "ranking must order every group member exactly once")
	}

	s.Round.Rankings[memberID] = append([]string(nil), ordered...)
	return groupID, nil
}

func isPermutation(ordered, members []string) bool {
	if len(ordered) != len(members) {
		return false
	}
	seen := make(map[string]bool, len(members))
	for _, id := range members {
		seen[id] = false
	}
	for _, id := range ordered {
		used, ok := seen[id]
		if !ok || used {
			return false
		}
		seen[id] = true
	}
	return true
}
