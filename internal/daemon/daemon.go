package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/username/daybook/internal/store"
	"github.com/username/daybook/pkg/dateutil"
)

// Source produces the full entry set for a reload
type Source interface {
	Load(ctx context.Context, now time.Time) ([]store.Entry, error)
}

// Daemon keeps a store in sync with its source on a cron schedule and logs
// the agenda of the current day after every reload.
type Daemon struct {
	store    *store.Store
	source   Source
	schedule string
	dateCtx  dateutil.Context
	logger   *zap.Logger
	cron     *cron.Cron
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex // serializes all store access
	lastRunTime time.Time
	lastError   error
	reloads     int
}

// New creates a daemon. The schedule is a standard five-field cron
// expression evaluated in the calendar timezone.
func New(st *store.Store, source Source, schedule string, dateCtx dateutil.Context, logger *zap.Logger) (*Daemon, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid daemon schedule %q: %w", schedule, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	loc := dateCtx.Location
	if loc == nil {
		loc = time.UTC
	}

	return &Daemon{
		store:    st,
		source:   source,
		schedule: schedule,
		dateCtx:  dateCtx,
		logger:   logger,
		cron:     cron.New(cron.WithLocation(loc)),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start runs an initial reload, then reloads on schedule until Stop is
// called or SIGINT/SIGTERM arrives.
func (d *Daemon) Start() error {
	d.logger.Info("Daemon started",
		zap.String("schedule", d.schedule),
		zap.String("timezone", d.dateCtx.In(d.now()).Location().String()))

	unsubscribe := d.store.Subscribe(func(c store.Change) {
		d.logger.Debug("Store changed",
			zap.Stringer("kind", c.Kind),
			zap.Uint64("version", c.Version))
	})
	defer unsubscribe()

	if err := d.RunOnce(); err != nil {
		d.logger.Error("Initial reload failed", zap.Error(err))
	}

	if _, err := d.cron.AddFunc(d.schedule, d.runScheduled); err != nil {
		return fmt.Errorf("add reload job: %w", err)
	}
	d.cron.Start()
	d.logNextRun()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-d.ctx.Done():
	case sig := <-sigChan:
		d.logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		d.Stop()
	}

	<-d.cron.Stop().Done()
	d.logger.Info("Daemon stopped")
	return nil
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

func (d *Daemon) runScheduled() {
	if err := d.RunOnce(); err != nil {
		d.logger.Error("Reload failed", zap.Error(err))
	}
	d.logNextRun()
}

// RunOnce reloads the store from the source and logs today's agenda. It
// returns an error instead of waiting when the store is busy.
func (d *Daemon) RunOnce() error {
	if !d.mu.TryLock() {
		d.logger.Warn("Reload already running, skipping concurrent execution")
		return fmt.Errorf("reload already in progress")
	}
	defer d.mu.Unlock()

	now := d.now()
	entries, err := d.source.Load(d.ctx, now)
	if err != nil {
		d.lastError = err
		return fmt.Errorf("failed to load entries: %w", err)
	}

	skipped := d.store.Replace(entries)
	d.lastRunTime = now
	d.lastError = nil
	d.reloads++

	d.logger.Info("Reload completed",
		zap.Int("entries", d.store.Len()),
		zap.Int("skipped", skipped),
		zap.Uint64("version", d.store.Version()))

	d.logAgenda(now)
	return nil
}

func (d *Daemon) logAgenda(now time.Time) {
	today := d.store.EntriesOn(now, d.dateCtx)
	if len(today) == 0 {
		d.logger.Info("Nothing scheduled today",
			zap.String("date", dateutil.FormatISO8601(d.dateCtx.StartOfDay(now))))
		return
	}

	for _, e := range today {
		d.logger.Info("Today",
			zap.String("title", e.Title),
			zap.Time("start", d.dateCtx.In(e.Start)),
			zap.Time("end", d.dateCtx.In(e.End)))
	}
}

func (d *Daemon) logNextRun() {
	entries := d.cron.Entries()
	if len(entries) == 0 {
		return
	}
	next := entries[0].Next
	d.logger.Info("Next reload scheduled",
		zap.Time("next_run", next),
		zap.Duration("wait_duration", time.Until(next)))
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := map[string]interface{}{
		"schedule": d.schedule,
		"reloads":  d.reloads,
		"entries":  d.store.Len(),
		"version":  d.store.Version(),
	}
	if !d.lastRunTime.IsZero() {
		status["last_run"] = d.lastRunTime.Format(time.RFC3339)
	}
	if d.lastError != nil {
		status["last_error"] = d.lastError.Error()
	}
	return status
}
