package domain

import (
	"time"

	apperr "github.com/respectgame/engine/internal/errors"
)

// Params is the game configuration. It is settable only through the
// administrative path, never by arbitrary callers.
type Params struct {
	// MembersWithoutApproval is how many members join auto-approved before
	// governance approval kicks in.
	MembersWithoutApproval int `json:"members_without_approval"`
	// PeriodsForAverage is the reward-history window used for averageRespect.
	PeriodsForAverage int `json:"periods_for_average"`
	// RespectDistribution maps finishing position to reward amount.
	// Positions beyond the list earn 0.
	RespectDistribution []uint64 `json:"respect_distribution"`
	// SubmissionLength and RankingLength are the stage durations.
	SubmissionLength time.Duration `json:"submission_length"`
	RankingLength    time.Duration `json:"ranking_length"`
	// GroupSize is the exact size of every peer-review group.
	GroupSize int `json:"group_size"`
	// TopMemberCount is the governance council size.
	TopMemberCount int `json:"top_member_count"`
	// VotingPeriod is how long a proposal stays open before expiring.
	VotingPeriod time.Duration `json:"voting_period"`
	// GroupingBatchSize bounds members partitioned per switchStage call.
	GroupingBatchSize int `json:"grouping_batch_size"`
	// ScoringBatchSize bounds groups scored per switchStage call.
	ScoringBatchSize int `json:"scoring_batch_size"`
	// MaxContributionItems bounds a single contribution submission.
	MaxContributionItems int `json:"max_contribution_items"`
}

// DefaultParams returns the stock weekly-game configuration.
func DefaultParams() Params {
	return Params{
		MembersWithoutApproval: 10,
		PeriodsForAverage:      12,
		RespectDistribution:    []uint64{210000, 130000, 80000, 50000, 30000},
		SubmissionLength:       7 * 24 * time.Hour,
		RankingLength:          7 * 24 * time.Hour,
		GroupSize:              5,
		TopMemberCount:         6,
		VotingPeriod:           7 * 24 * time.Hour,
		GroupingBatchSize:      400,
		ScoringBatchSize:       20,
		MaxContributionItems:   20,
	}
}

// Validate checks that the configuration is usable.
func (p Params) Validate() error {
	switch {
	case p.MembersWithoutApproval < 0:
		return apperr.New(apperr.CodeInvalidParams, "members without approval must not be negative")
	case p.PeriodsForAverage < 1:
		return apperr.New(apperr.CodeInvalidParams, "periods for average must be at least 1")
	case len(p.RespectDistribution) == 0:
		return apperr.New(apperr.CodeInvalidParams, "respect distribution must not be empty")
	case p.SubmissionLength <= 0 || p.RankingLength <= 0:
		return apperr.New(apperr.CodeInvalidParams, "stage lengths must be positive")
	case p.GroupSize < 2:
		return apperr.New(apperr.CodeInvalidParams, "group size must be at least 2")
	case p.TopMemberCount < 1:
		return apperr.New(apperr.CodeInvalidParams, "top member count must be at least 1")
	case p.VotingPeriod <= 0:
		return apperr.New(apperr.CodeInvalidParams, "voting period must be positive")
	case p.GroupingBatchSize < 1 || p.ScoringBatchSize < 1:
		return apperr.New(apperr.CodeInvalidParams, "batch sizes must be at least 1")
	case p.MaxContributionItems < 1:
		return apperr.New(apperr.CodeInvalidParams, "max contribution items must be at least 1")
	}
	return nil
}
