package biz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ashmara/imagevault/internal/platform/types"
)

// SyncLoopConfig controls the reconciliation schedule.
type SyncLoopConfig struct {
	Interval time.Duration
	LockTTL  time.Duration
}

// SyncLoop periodically reconciles every linked credential. A short-TTL
// distributed lock per credential keeps concurrent instances from running
// the same credential twice; a held lock means "skip", not "wait".
type SyncLoop struct {
	cfg         SyncLoopConfig
	credentials CredentialRepo
	reconcilers map[types.Platform]Reconciler
	locker      Locker
	logger      *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewSyncLoop(
	cfg SyncLoopConfig,
	credentials CredentialRepo,
	reconcilers []Reconciler,
	locker Locker,
	logger *zap.Logger,
) *SyncLoop {
	byPlatform := make(map[types.Platform]Reconciler, len(reconcilers))
	for _, r := range reconcilers {
		byPlatform[r.Platform()] = r
	}
	return &SyncLoop{
		cfg:         cfg,
		credentials: credentials,
		reconcilers: byPlatform,
		locker:      locker,
		logger:      logger,
	}
}

// Start launches the loop. It runs one pass immediately, then one per
// interval. Calling Start on a running loop is an error.
func (l *SyncLoop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return fmt.Errorf("sync loop already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.running = true

	l.wg.Add(1)
	go l.run(ctx)

	l.logger.Info("sync loop started", zap.Duration("interval", l.cfg.Interval))
	return nil
}

// Stop cancels the loop and waits for the in-flight pass to finish.
func (l *SyncLoop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	cancel := l.cancel
	l.mu.Unlock()

	cancel()
	l.wg.Wait()
	l.logger.Info("sync loop stopped")
}

func (l *SyncLoop) run(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	l.runPass(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.runPass(ctx)
		}
	}
}

func (l *SyncLoop) runPass(ctx context.Context) {
	creds, err := l.credentials.ListAll(ctx)
	if err != nil {
		l.logger.Error("failed to list credentials", zap.Error(err))
		return
	}
	if len(creds) == 0 {
		l.logger.Debug("no credentials linked, skipping pass")
		return
	}

	for _, cred := range creds {
		if ctx.Err() != nil {
			return
		}
		l.reconcileOne(ctx, cred)
	}
}

func (l *SyncLoop) reconcileOne(ctx context.Context, cred *types.Credential) {
	if cred.Expired(time.Now().UTC()) {
		l.logger.Warn("credential access token expired, skipping",
			zap.String("credential_id", cred.ID),
			zap.String("platform", string(cred.Platform)),
		)
		return
	}

	reconciler, ok := l.reconcilers[cred.Platform]
	if !ok {
		l.logger.Warn("no reconciler for platform",
			zap.String("platform", string(cred.Platform)),
			zap.String("credential_id", cred.ID),
		)
		return
	}

	key := "sync:credential:" + cred.ID
	token, acquired, err := l.locker.TryLock(ctx, key, l.cfg.LockTTL)
	if err != nil {
		l.logger.Error("failed to acquire sync lock",
			zap.String("credential_id", cred.ID),
			zap.Error(err),
		)
		return
	}
	if !acquired {
		l.logger.Debug("credential already being reconciled elsewhere",
			zap.String("credential_id", cred.ID),
		)
		return
	}
	defer func() {
		if err := l.locker.Unlock(ctx, key, token); err != nil {
			l.logger.Warn("failed to release sync lock",
				zap.String("credential_id", cred.ID),
				zap.Error(err),
			)
		}
	}()

	if err := reconciler.Reconcile(ctx, cred); err != nil {
		l.logger.Error("reconciliation pass failed",
			zap.String("credential_id", cred.ID),
			zap.String("platform", string(cred.Platform)),
			zap.Error(err),
		)
	}
}
