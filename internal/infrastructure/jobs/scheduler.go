package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	defaultSpec = "@hourly"
	jobTimeout  = time.Minute
)

// Purger removes expired identity records.
type Purger interface {
	Purge(ctx context.Context) (sessions, resets int64, err error)
}

// IdlePruner drops in-memory client states nobody has touched for a while.
type IdlePruner interface {
	PruneIdle(idle time.Duration) int
}

// Scheduler runs the periodic housekeeping jobs.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	purger  Purger
	states  IdlePruner
	idleTTL time.Duration
	log     zerolog.Logger
}

// NewScheduler builds the scheduler. spec is a standard cron expression or
// descriptor such as "@hourly"; states may be nil.
func NewScheduler(spec string, purger Purger, states IdlePruner, idleTTL time.Duration, log zerolog.Logger) *Scheduler {
	if spec == "" {
		spec = defaultSpec
	}
	return &Scheduler{
		cron:    cron.New(),
		spec:    spec,
		purger:  purger,
		states:  states,
		idleTTL: idleTTL,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("spec", s.spec).Msg("housekeeping scheduled")
	return nil
}

// Stop waits for a running job to finish, up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("housekeeping still running at shutdown")
	}
}

// RunOnce performs one housekeeping pass.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	sessions, resets, err := s.purger.Purge(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("purge expired identity records failed")
	} else {
		s.log.Info().Int64("sessions", sessions).Int64("reset_tokens", resets).Msg("expired identity records purged")
	}

	if s.states != nil && s.idleTTL > 0 {
		if n := s.states.PruneIdle(s.idleTTL); n > 0 {
			s.log.Debug().Int("clients", n).Msg("idle session states pruned")
		}
	}
}
