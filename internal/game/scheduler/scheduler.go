// Package scheduler drives stage transitions. A transition can span many
// calls: grouping and scoring both run in bounded batches behind a
// resumable cursor, so a community of thousands never needs a single
// unbounded pass.
package scheduler

import (
	"time"

	apperr "github.com/respectgame/engine/internal/errors"
	"github.com/respectgame/engine/internal/game/distribution"
	"github.com/respectgame/engine/internal/game/domain"
	"github.com/respectgame/engine/internal/game/partition"
	"github.com/respectgame/engine/internal/game/scoring"
	"github.com/respectgame/engine/internal/random"
)

// Payout is one member's reward applied during a scoring batch.
type Payout struct {
	MemberID   string
	Group      int
	Rank       int
	Score      float64
	Amount     uint64
	NewAverage uint64
}

// Result reports what one SwitchStage call did.
type Result struct {
	// Done means the transition completed this call. When false the cursor
	// advanced and the caller should invoke SwitchStage again.
	Done bool
	// Phase is the transition half that ran.
	Phase domain.SwitchPhase

	// RoundSkipped means too few members contributed, so the round was
	// abandoned and a fresh submission round opened.
	RoundSkipped bool

	// Stage and Deadline describe the round after a completed transition.
	Stage    domain.Stage
	Deadline time.Time
	// RoundNumber is the round the engine is in after this call.
	RoundNumber uint64

	// Groups and Excluded are set when the grouping phase completes.
	Groups   [][]string
	Excluded []string

	// Payouts lists the rewards applied by this call's scoring batch.
	Payouts []Payout
}

// SwitchStage advances the round past its deadline. From the submission
// stage it shuffles contributors and builds peer groups; from the ranking
// stage it scores groups and pays rewards, then opens the next round. Both
// halves process at most one configured batch per call and park a cursor
// in between, during which every other mutation is rejected.
//
// perm is only consulted when a grouping phase starts; resumed calls reuse
// the snapshotted shuffle.
func SwitchStage(s *domain.GameState, now time.Time, perm random.Perm) (*Result, error) {
	if s.Halted {
		return nil, apperr.New(apperr.CodeStateCorrupted, "engine is halted")
	}

	if !s.Switch.InProgress {
		if now.Before(s.Round.Deadline) {
			return nil, apperr.New(apperr.CodeTooEarly, "round deadline has not passed")
		}
		if err := begin(s, perm); err != nil {
			return nil, err
		}
	}

	switch s.Switch.Phase {
	case domain.PhaseGrouping:
		return groupBatch(s, now)
	case domain.PhaseScoring:
		return scoreBatch(s, now)
	}

	s.Halted = true
	return nil, apperr.New(apperr.CodeStateCorrupted, "switch cursor holds an unknown phase")
}

// begin opens a transition for the current stage and snapshots whatever
// the batches need.
func begin(s *domain.GameState, perm random.Perm) error {
	switch s.Round.Stage {
	case domain.StageSubmission:
		s.Switch = domain.SwitchProgress{
			InProgress:   true,
			Phase:        domain.PhaseGrouping,
			Contributors: partition.Shuffle(eligibleContributors(s), perm),
		}
	case domain.StageRanking:
		s.Switch = domain.SwitchProgress{
			InProgress: true,
			Phase:      domain.PhaseScoring,
		}
	default:
		s.Halted = true
		return apperr.New(apperr.CodeStateCorrupted, "round holds an unknown stage")
	}
	return nil
}

// eligibleContributors lists members who submitted this round and are still
// allowed to play, in join order. The shuffle randomizes from there.
func eligibleContributors(s *domain.GameState) []string {
	out := make([]string, 0, len(s.Round.Contributions))
	for _, id := range s.JoinOrder {
		if !s.Round.HasSubmitted(id) {
			continue
		}
		m := s.Members[id]
		if m == nil || !m.Approved || m.Banned {
			continue
		}
		out = append(out, id)
	}
	return out
}

func groupBatch(s *domain.GameState, now time.Time) (*Result, error) {
	res := &Result{Phase: domain.PhaseGrouping, RoundNumber: s.Round.Number}

	groupSize := s.Params.GroupSize
	total := partition.GroupedTotal(len(s.Switch.Contributors), groupSize)

	// Too few contributors to fill even one group: abandon the round and
	// open a fresh submission window.
	if err := partition.Validate(len(s.Switch.Contributors), groupSize); err != nil {
		openNextRound(s, now)
		res.Done = true
		res.RoundSkipped = true
		res.Stage = s.Round.Stage
		res.Deadline = s.Round.Deadline
		res.RoundNumber = s.Round.Number
		return res, nil
	}

	cursor := s.Switch.Grouped
	if cursor < 0 || cursor > total || cursor%groupSize != 0 || cursor != len(s.Round.Groups)*groupSize {
		s.Halted = true
		return nil, apperr.New(apperr.CodeStateCorrupted, "grouping cursor does not match built groups")
	}

	batch, cursor := partition.Batch(s.Switch.Contributors, cursor, s.Params.GroupingBatchSize, groupSize)
	for _, members := range batch {
		s.Round.Groups = append(s.Round.Groups, domain.Group{Members: members})
	}
	s.Switch.Grouped = cursor

	if cursor < total {
		return res, nil
	}

	// All groups built; finalize them and open the ranking window.
	for i := range s.Round.Groups {
		s.Round.Groups[i].Finalized = true
	}
	excluded := partition.Excluded(s.Switch.Contributors, groupSize)

	s.Round.Stage = domain.StageRanking
	s.Round.Deadline = now.Add(s.Params.RankingLength)
	s.Switch = domain.SwitchProgress{}

	res.Done = true
	res.Stage = s.Round.Stage
	res.Deadline = s.Round.Deadline
	res.Groups = groupMembers(s.Round.Groups)
	res.Excluded = excluded
	return res, nil
}

func scoreBatch(s *domain.GameState, now time.Time) (*Result, error) {
	res := &Result{Phase: domain.PhaseScoring, RoundNumber: s.Round.Number}

	cursor := s.Switch.Scored
	if cursor < 0 || cursor > len(s.Round.Groups) {
		s.Halted = true
		return nil, apperr.New(apperr.CodeStateCorrupted, "scoring cursor is outside the group list")
	}

	end := cursor + s.Params.ScoringBatchSize
	if end > len(s.Round.Groups) {
		end = len(s.Round.Groups)
	}

	for ; cursor < end; cursor++ {
		res.Payouts = append(res.Payouts, settleGroup(s, cursor)...)
	}
	s.Switch.Scored = cursor

	if cursor < len(s.Round.Groups) {
		return res, nil
	}

	openNextRound(s, now)
	res.Done = true
	res.Stage = s.Round.Stage
	res.Deadline = s.Round.Deadline
	res.RoundNumber = s.Round.Number
	return res, nil
}

// settleGroup scores one group and applies its rewards. A group nobody
// ranked pays nothing, but every member still gets a zero pushed into
// their history so the rolling average reflects the lost round.
func settleGroup(s *domain.GameState, groupID int) []Payout {
	group := s.Round.Groups[groupID]

	rankings := make(map[string][]string)
	for _, id := range group.Members {
		if ordered, ok := s.Round.Rankings[id]; ok {
			rankings[id] = ordered
		}
	}

	tieSeq := make(map[string]uint64, len(group.Members))
	for _, id := range group.Members {
		if m, ok := s.Members[id]; ok {
			tieSeq[id] = m.JoinSeq
		}
	}

	scores := scoring.ScoreGroup(group.Members, rankings, tieSeq)
	ranked := len(rankings) > 0

	payouts := make([]Payout, 0, len(scores))
	for i, sc := range scores {
		var amount uint64
		if ranked {
			amount = distribution.RewardFor(s.Params, i)
		}
		avg, ok := distribution.Credit(s, sc.MemberID, amount)
		if !ok {
			continue
		}
		distribution.RecordResult(s, s.Round.Number, sc.MemberID, domain.RoundResult{
			Group:   groupID,
			Rank:    i + 1,
			Score:   sc.Score,
			Respect: amount,
		})
		payouts = append(payouts, Payout{
			MemberID:   sc.MemberID,
			Group:      groupID,
			Rank:       i + 1,
			Score:      sc.Score,
			Amount:     amount,
			NewAverage: avg,
		})
	}
	return payouts
}

func openNextRound(s *domain.GameState, now time.Time) {
	s.Round = domain.NewRound(s.Round.Number+1, now.Add(s.Params.SubmissionLength))
	s.Switch = domain.SwitchProgress{}
}

func groupMembers(groups []domain.Group) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		out[i] = append([]string(nil), g.Members...)
	}
	return out
}
