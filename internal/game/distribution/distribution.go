// Package distribution converts finishing positions into respect rewards.
package distribution

import (
	"github.com/respectgame/engine/internal/game/domain"
)

// RewardFor maps a zero-based finishing position within a group to its
// reward amount. Positions beyond the configured distribution earn nothing.
func RewardFor(params domain.Params, position int) uint64 {
	if position < 0 || position >= len(params.RespectDistribution) {
		return 0
	}
	return params.RespectDistribution[position]
}

// Credit pays a member their reward for a round: the amount joins the
// lifetime total and the rolling history window. Zero rewards are still
// pushed so the rolling average reflects rounds the member lost or sat
// out after grouping.
func Credit(s *domain.GameState, memberID string, amount uint64) (newAverage uint64, ok bool) {
	m, found := s.Members[memberID]
	if !found {
		return 0, false
	}
	m.TotalRespect += amount
	m.History.Push(amount, s.Params.PeriodsForAverage)
	return m.AverageRespect(), true
}

// RecordResult retains one member's outcome for the finished round so
// reads can serve results without recomputing scores. The retention map
// is reset when a new round's results start arriving.
func RecordResult(s *domain.GameState, round uint64, memberID string, result domain.RoundResult) {
	if s.LastResults == nil || s.LastResultsRound != round {
		s.LastResults = make(map[string]domain.RoundResult)
		s.LastResultsRound = round
	}
	s.LastResults[memberID] = result
}
