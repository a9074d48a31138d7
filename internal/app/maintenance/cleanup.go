package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/anhhh1801/Capstone-ECM/internal/services"
	"github.com/anhhh1801/Capstone-ECM/pkg/logger"
)

// Cleanup policies for abandoned registrations.
const (
	// PolicyDelete removes accounts whose verification code has expired.
	PolicyDelete = "delete"
	// PolicyRetain removes unverified accounts older than the retention window.
	PolicyRetain = "retain"
)

const (
	defaultSchedule  = "@hourly"
	defaultRetention = 24 * time.Hour
)

// Cleaner periodically purges abandoned teacher registrations.
type Cleaner struct {
	accounts  *services.AccountService
	cron      *cron.Cron
	log       *zap.Logger
	schedule  string
	policy    string
	retention time.Duration
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithSchedule overrides the cron specification for the purge job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// WithPolicy selects the purge policy.
func WithPolicy(policy string) Option {
	return func(cleaner *Cleaner) {
		if policy == PolicyDelete || policy == PolicyRetain {
			cleaner.policy = policy
		}
	}
}

// WithRetention adjusts the retention window used by the retain policy.
func WithRetention(d time.Duration) Option {
	return func(cleaner *Cleaner) {
		if d > 0 {
			cleaner.retention = d
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil account
// service disables the purge job.
func NewCleaner(accounts *services.AccountService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		accounts:  accounts,
		schedule:  defaultSchedule,
		policy:    PolicyDelete,
		retention: defaultRetention,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the purge job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.accounts == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("registration purge failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes the purge once with the configured policy. Used by the
// scheduled job, during graceful shutdown and in tests.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.accounts == nil {
		return nil
	}

	var errs error
	switch c.policy {
	case PolicyRetain:
		if _, err := c.accounts.PurgeStale(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		}
	default:
		if _, err := c.accounts.PurgeUnverified(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
