// Package respectd wires and runs the engine daemon: it opens storage,
// restores or initializes the game, and drives stage transitions and
// proposal expiry on a ticker.
package respectd

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	apperr "github.com/respectgame/engine/internal/errors"
	"github.com/respectgame/engine/internal/game/domain"
	"github.com/respectgame/engine/internal/game/service"
	"github.com/respectgame/engine/internal/platform/config"
	"github.com/respectgame/engine/internal/platform/logging"
	otelsetup "github.com/respectgame/engine/internal/platform/otel"
	"github.com/respectgame/engine/internal/storage/sqlite"
)

// Config is the daemon's environment configuration. Game parameter
// overrides left at zero keep their defaults.
type Config struct {
	DBPath     string `env:"RESPECT_DB_PATH" envDefault:"respect.db"`
	LogLevel   string `env:"RESPECT_LOG_LEVEL" envDefault:"info"`
	LogConsole bool   `env:"RESPECT_LOG_CONSOLE" envDefault:"false"`

	// Owner is the administrative caller ID, used when initializing a
	// fresh database.
	Owner string `env:"RESPECT_OWNER"`

	// TickInterval is how often the daemon checks deadlines and expiry.
	TickInterval time.Duration `env:"RESPECT_TICK_INTERVAL" envDefault:"30s"`

	GroupSize        int           `env:"RESPECT_GROUP_SIZE"`
	TopMemberCount   int           `env:"RESPECT_TOP_MEMBER_COUNT"`
	SubmissionLength time.Duration `env:"RESPECT_SUBMISSION_LENGTH"`
	RankingLength    time.Duration `env:"RESPECT_RANKING_LENGTH"`
	VotingPeriod     time.Duration `env:"RESPECT_VOTING_PERIOD"`
}

// ParseConfig loads the daemon configuration from the environment.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Params merges the config's overrides onto the default game parameters.
func (c Config) Params() domain.Params {
	p := domain.DefaultParams()
	if c.GroupSize > 0 {
		p.GroupSize = c.GroupSize
	}
	if c.TopMemberCount > 0 {
		p.TopMemberCount = c.TopMemberCount
	}
	if c.SubmissionLength > 0 {
		p.SubmissionLength = c.SubmissionLength
	}
	if c.RankingLength > 0 {
		p.RankingLength = c.RankingLength
	}
	if c.VotingPeriod > 0 {
		p.VotingPeriod = c.VotingPeriod
	}
	return p
}

// Run starts the daemon and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	logger := logging.New("respectd", cfg.LogLevel, cfg.LogConsole)

	shutdownTracing, err := otelsetup.Setup(ctx, "respectd")
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, err := service.New(ctx, service.Config{
		Store:  store,
		Owner:  cfg.Owner,
		Params: cfg.Params(),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	logger.Info().
		Str("db", cfg.DBPath).
		Dur("tick", cfg.TickInterval).
		Msg("engine daemon started")

	round := svc.CurrentRound(ctx)
	logger.Info().
		Uint64("round", round.Number).
		Stringer("stage", round.Stage).
		Time("deadline", round.Deadline).
		Msg("current round")

	return tickLoop(ctx, svc, cfg.TickInterval, logging.Component(logger, "ticker"))
}

// tickLoop drives deadline-based work: stage switches once a deadline
// passes (resuming parked transitions to completion) and proposal expiry.
func tickLoop(ctx context.Context, svc *service.Service, interval time.Duration, logger zerolog.Logger) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("engine daemon stopping")
			return nil
		case <-ticker.C:
			tick(ctx, svc, logger)
		}
	}
}

func tick(ctx context.Context, svc *service.Service, logger zerolog.Logger) {
	if expired, err := svc.ExpireProposals(ctx); err != nil {
		logger.Error().Err(err).Msg("proposal expiry sweep failed")
	} else if len(expired) > 0 {
		logger.Info().Int("count", len(expired)).Msg("proposals expired")
	}

	for {
		res, err := svc.SwitchStage(ctx)
		switch {
		case apperr.IsCode(err, apperr.CodeTooEarly):
			return
		case apperr.IsCode(err, apperr.CodeStateCorrupted):
			logger.Error().Err(err).Msg("engine halted; manual intervention required")
			return
		case err != nil:
			logger.Error().Err(err).Msg("stage switch failed")
			return
		}

		if res.RoundSkipped {
			logger.Warn().Uint64("round", res.RoundNumber).Msg("round skipped, too few contributors")
		}
		if res.Done {
			logger.Info().
				Uint64("round", res.RoundNumber).
				Stringer("stage", res.Stage).
				Time("deadline", res.Deadline).
				Msg("stage switched")
			return
		}
		logger.Debug().Stringer("phase", res.Phase).Msg("stage switch batch applied")
	}
}
