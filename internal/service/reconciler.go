package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

const (
	defaultReconcileInterval    = 1 * time.Hour
	defaultReconcileConcurrency = 4
	reconcileRunTimeout         = 5 * time.Minute
)

// ReconcilerService periodically rebuilds every owner's derived profile
// rollups from event history.
type ReconcilerService struct {
	profiles     domain.ProfileStore
	predictions  *PredictionService
	deescalation *DeEscalationService
	beliefs      *BeliefService
	logger       *zap.Logger

	interval    time.Duration
	concurrency int
	stopCh      chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewReconcilerService(ps domain.ProfileStore, predictions *PredictionService, deescalation *DeEscalationService, beliefs *BeliefService, logger *zap.Logger) *ReconcilerService {
	return &ReconcilerService{
		profiles:     ps,
		predictions:  predictions,
		deescalation: deescalation,
		beliefs:      beliefs,
		logger:       logger,
		interval:     defaultReconcileInterval,
		concurrency:  defaultReconcileConcurrency,
		stopCh:       make(chan struct{}),
	}
}

func (s *ReconcilerService) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

func (s *ReconcilerService) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// Start runs the reconciler on a periodic schedule in a background goroutine.
func (s *ReconcilerService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("rollup reconciler started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), reconcileRunTimeout)
				if err := s.RunOnce(ctx); err != nil {
					s.logger.Warn("rollup reconcile incomplete", zap.Error(err))
				}
				cancel()
			case <-s.stopCh:
				s.logger.Info("rollup reconciler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the reconciler. Calling it more than once is safe.
func (s *ReconcilerService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

// RunOnce reconciles every owner. A failing owner is logged and does not
// stop the others; the returned error reports how many failed.
func (s *ReconcilerService) RunOnce(ctx context.Context) error {
	ids, err := s.profiles.ListIDs(ctx)
	if err != nil {
		return err
	}

	var failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := s.ReconcileOwner(ctx, id); err != nil {
				failed.Add(1)
				s.logger.Warn("failed to reconcile owner",
					zap.String("owner_id", id.String()),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("rollups reconciled",
		zap.Int("owners", len(ids)),
		zap.Int64("failed", failed.Load()))
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("reconcile failed for %d of %d owners", n, len(ids))
	}
	return nil
}

// ReconcileOwner recomputes the calibration, calm and views-changed rollups
// of one owner.
func (s *ReconcilerService) ReconcileOwner(ctx context.Context, owner uuid.UUID) error {
	if _, err := s.predictions.RecomputeCalibration(ctx, owner); err != nil {
		return err
	}
	if _, err := s.deescalation.RecomputeCalm(ctx, owner); err != nil {
		return err
	}
	_, err := s.beliefs.RecomputeViewsChanged(ctx, owner)
	return err
}
