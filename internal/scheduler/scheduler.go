// Package scheduler drives refresh cycles. In one-shot mode it refreshes
// once; in listen mode it refreshes again whenever the device source reports
// a change or the refresh interval elapses without one, until cancelled.
// The scheduler does NOT format JSON itself; it hands each matching device
// to the Waybar writer.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/powerbar/internal/collector"
	"github.com/Guliveer/powerbar/internal/config"
	"github.com/Guliveer/powerbar/internal/models"
	"github.com/Guliveer/powerbar/internal/waybar"
)

// Refresh triggers, reported to the OnRefresh callback.
const (
	TriggerInitial = "initial"
	TriggerSignal  = "signal"
	TriggerTimer   = "timer"
)

// Scheduler runs refresh cycles against a device source.
type Scheduler struct {
	src    collector.Source
	cfg    *config.Config
	out    *waybar.Writer
	logger *zap.Logger

	onRefresh func(trigger string, snapshots []models.DeviceSnapshot, err error)
}

// New creates a new Scheduler. A nil logger disables logging.
func New(src collector.Source, cfg *config.Config, out *waybar.Writer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		src:    src,
		cfg:    cfg,
		out:    out,
		logger: logger,
	}
}

// OnRefresh sets a callback invoked after every refresh cycle with what
// triggered it, the matched devices, and the cycle error if any.
func (s *Scheduler) OnRefresh(fn func(trigger string, snapshots []models.DeviceSnapshot, err error)) {
	s.onRefresh = fn
}

// Run refreshes once, or listens until ctx is cancelled when the
// configuration enables listen mode.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.cfg.Listen {
		return s.Refresh(ctx, TriggerInitial)
	}
	return s.Listen(ctx)
}

// Refresh performs one cycle: collect the matching devices and write one
// line per device, or a single blank line when nothing matched. Nothing is
// written if collection fails.
func (s *Scheduler) Refresh(ctx context.Context, trigger string) error {
	start := time.Now()
	snapshots, err := collector.Collect(ctx, s.src, s.cfg.Kinds)
	if err == nil {
		err = s.emit(snapshots)
	}
	if s.onRefresh != nil {
		s.onRefresh(trigger, snapshots, err)
	}
	if err != nil {
		return err
	}

	s.logger.Debug("Refreshed devices",
		zap.String("trigger", trigger),
		zap.Int("matched", len(snapshots)),
		zap.Duration("took", time.Since(start)))
	return nil
}

func (s *Scheduler) emit(snapshots []models.DeviceSnapshot) error {
	if len(snapshots) == 0 {
		return s.out.Blank()
	}
	for _, snap := range snapshots {
		out := waybar.Format(snap.Percentage, snap.Model, s.cfg.LowPercentage, s.cfg.LowClass)
		if err := s.out.Write(out); err != nil {
			return err
		}
	}
	return nil
}

// Listen runs the initial cycle and then waits for whichever comes first: a
// change notification, the refresh interval, or cancellation of ctx. The
// interval is re-armed after every cycle, so it measures idle time. A cycle
// that has started always runs to completion. Any cycle error ends the loop.
func (s *Scheduler) Listen(ctx context.Context) error {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := s.src.Subscribe(subCtx)
	if err != nil {
		return err
	}

	cycleCtx := context.WithoutCancel(ctx)
	if err := s.Refresh(cycleCtx, TriggerInitial); err != nil {
		return err
	}

	s.logger.Info("Listening for device changes",
		zap.String("source", s.src.Name()),
		zap.Duration("refresh", s.cfg.Refresh.Duration))

	for {
		timer := time.NewTimer(s.cfg.Refresh.Duration)

		var trigger string
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Stopped listening", zap.Error(ctx.Err()))
			return nil
		case _, ok := <-events:
			timer.Stop()
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("%w: %s notification stream closed", collector.ErrSourceUnavailable, s.src.Name())
			}
			trigger = TriggerSignal
		case <-timer.C:
			trigger = TriggerTimer
		}

		if err := s.Refresh(cycleCtx, trigger); err != nil {
			return err
		}
		drain(events)
	}
}

// drain discards notifications that queued up while a cycle was running so
// a burst of signals costs one refresh. A change that lands mid-cycle is
// picked up by the next timer refresh at the latest.
func drain(events <-chan struct{}) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
