package sync

import (
	"context"
	"time"

	"gameverse-sync-go/internal/session"

	"go.uber.org/zap"
)

// Refresher periodically reloads the snapshot and the session's native
// balance while a session is active. One Refresher drives one Synchronizer.
type Refresher struct {
	synchronizer *Synchronizer
	session      *session.Session
	interval     time.Duration

	stopChan chan struct{}
	doneChan chan struct{}

	// OnRefresh, when set, runs after every successful reload.
	OnRefresh func()
}

func NewRefresher(synchronizer *Synchronizer, sess *session.Session, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Refresher{
		synchronizer: synchronizer,
		session:      sess,
		interval:     interval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start launches the refresh loop.
func (r *Refresher) Start(ctx context.Context) {
	go r.refreshLoop(ctx)
	zap.L().Info("Snapshot refresher started", zap.Duration("interval", r.interval))
}

// Stop gracefully stops the refresh loop.
func (r *Refresher) Stop() {
	zap.L().Info("Stopping snapshot refresher")
	close(r.stopChan)
	<-r.doneChan
	zap.L().Info("Snapshot refresher stopped")
}

func (r *Refresher) refreshLoop(ctx context.Context) {
	defer close(r.doneChan)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.refresh(ctx)
		case <-r.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if !r.session.IsConnected() {
		return
	}

	if err := r.session.RefreshNativeBalance(ctx); err != nil {
		zap.L().Warn("Native balance refresh failed", zap.Error(err))
	}

	if _, err := r.synchronizer.Load(ctx); err != nil {
		zap.L().Warn("Periodic reload failed", zap.Error(err))
		return
	}

	if r.OnRefresh != nil {
		r.OnRefresh()
	}
}
