package job

import (
	"Larder/internal/pkg/consts"
	"Larder/internal/pkg/logger"
	"Larder/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

const reconcileLockTTL = 30 * time.Minute

// Locker 多实例部署时保证同一时刻只有一个实例在跑
type Locker interface {
	TryLock(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	UnLock(ctx context.Context, key string, value interface{})
}

// AggregateReconcileJob 定时对账 recipe 评分、review 点赞数、用户关注数
type AggregateReconcileJob struct {
	reconcileSvc service.ReconcileService
	locker       Locker
}

func NewAggregateReconcileJob(reconcileSvc service.ReconcileService, locker Locker) *AggregateReconcileJob {
	return &AggregateReconcileJob{
		reconcileSvc: reconcileSvc,
		locker:       locker,
	}
}

func (s *AggregateReconcileJob) Run() {
	traceID := "job-" + uuid.NewString()
	ctx := logger.WithTraceID(context.Background(), traceID)
	ctx, cancel := context.WithTimeout(ctx, reconcileLockTTL)
	defer cancel()

	if s.locker != nil {
		ok, err := s.locker.TryLock(ctx, consts.AggregateReconcileLock, traceID, reconcileLockTTL)
		if err != nil {
			log.ErrorContext(ctx, "acquire reconcile lock error", "err", err)
			return
		}
		if !ok {
			log.InfoContext(ctx, "reconcile already running elsewhere, skip")
			return
		}
		defer s.locker.UnLock(context.Background(), consts.AggregateReconcileLock, traceID)
	}

	start := time.Now()
	steps := []struct {
		name string
		fn   func(context.Context) (*service.ReconcileReport, error)
	}{
		{"recipes", s.reconcileSvc.ReconcileRecipes},
		{"reviews", s.reconcileSvc.ReconcileReviews},
		{"users", s.reconcileSvc.ReconcileUsers},
	}
	for _, step := range steps {
		report, err := step.fn(ctx)
		if err != nil {
			log.ErrorContext(ctx, "reconcile error", "target", step.name, "err", err)
			continue
		}
		log.InfoContext(ctx, "reconcile done", "target", step.name, "checked", report.Checked, "repaired", report.Repaired)
	}

	log.InfoContext(ctx, "aggregate reconcile finished", "latency", time.Since(start))
}
