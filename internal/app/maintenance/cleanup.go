package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/soiree/internal/cache"
	"github.com/charlesng35/soiree/pkg/logger"
)

const defaultPurgeSpec = "@every 15m"

// Cleaner periodically purges expired entries from the key-value stores that
// back login throttling.
type Cleaner struct {
	purgers []cache.Purger
	cron    *cron.Cron
	log     *zap.Logger
	spec    string
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

// WithPurgeSchedule overrides the cron schedule of the purge job.
func WithPurgeSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.spec = spec
		}
	}
}

// NewCleaner constructs a Cleaner. Nil purgers are ignored; with none left
// Start is a no-op.
func NewCleaner(purgers []cache.Purger, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		spec: defaultPurgeSpec,
		log:  logger.WithModule("maintenance"),
	}
	for _, p := range purgers {
		if p != nil {
			cleaner.purgers = append(cleaner.purgers, p)
		}
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the purge job and launches the scheduler.
func (c *Cleaner) Start() error {
	if len(c.purgers) == 0 {
		return nil
	}

	if _, err := c.cron.AddFunc(c.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := c.RunOnce(ctx); err != nil {
			c.log.Warn("cache purge failed", zap.Error(err))
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

// RunOnce purges every store sequentially and combines their errors.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		errs  error
		total int64
	)
	for _, p := range c.purgers {
		n, err := p.PurgeExpired(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		total += n
	}

	if total > 0 {
		c.log.Debug("purged expired cache entries", zap.Int64("count", total))
	}
	return errs
}
