package service

import (
	"Larder/internal/pkg/consts"
	"Larder/internal/pkg/dbctx"
	"Larder/internal/repository"
	"context"
	log "log/slog"
)

// ReconcileReport counts the rows a sweep looked at and the ones whose stored
// counters had drifted from their edges.
type ReconcileReport struct {
	Checked  int
	Repaired int
}

// ReconcileService audits the derived columns and rewrites drifted ones. Each
// row is repaired in its own transaction.
type ReconcileService interface {
	ReconcileRecipes(ctx context.Context) (*ReconcileReport, error)
	ReconcileReviews(ctx context.Context) (*ReconcileReport, error)
	ReconcileUsers(ctx context.Context) (*ReconcileReport, error)
}

type ReconcileServiceImpl struct {
	base       BaseDeps
	userRepo   repository.UserRepo
	recipeRepo repository.RecipeRepo
	reviewRepo repository.ReviewRepo
	maintainer *AggregateMaintainer
	batchSize  int
}

func NewReconcileService(
	base BaseDeps,
	userRepo repository.UserRepo,
	recipeRepo repository.RecipeRepo,
	reviewRepo repository.ReviewRepo,
	maintainer *AggregateMaintainer,
) ReconcileService {
	return &ReconcileServiceImpl{
		base:       base.withDefaults(),
		userRepo:   userRepo,
		recipeRepo: recipeRepo,
		reviewRepo: reviewRepo,
		maintainer: maintainer,
		batchSize:  consts.ReconcileBatchSize,
	}
}

type idPageFunc func(dbc dbctx.Context, afterID uint64, limit int) ([]uint64, error)
type repairFunc func(dbc dbctx.Context, id uint64) (bool, error)

func (s *ReconcileServiceImpl) ReconcileRecipes(ctx context.Context) (*ReconcileReport, error) {
	return s.sweep(ctx, "reconcile.recipe", s.recipeRepo.GetRecipeIDsAfter, func(dbc dbctx.Context, id uint64) (bool, error) {
		before, err := s.recipeRepo.GetRecipeForUpdate(dbc, id)
		if err != nil || before == nil {
			return false, err
		}
		agg, err := s.maintainer.RefreshRecipeAggregate(dbc, id)
		if err != nil {
			return false, err
		}
		return before.ReviewCount != agg.Count || !sameRating(before.AggregatedRating, agg.Rating), nil
	})
}

func (s *ReconcileServiceImpl) ReconcileReviews(ctx context.Context) (*ReconcileReport, error) {
	return s.sweep(ctx, "reconcile.review", s.reviewRepo.GetReviewIDsAfter, func(dbc dbctx.Context, id uint64) (bool, error) {
		before, err := s.reviewRepo.GetReview(dbc, id)
		if err != nil || before == nil {
			return false, err
		}
		count, err := s.maintainer.RefreshReviewLikeCount(dbc, id)
		if err != nil {
			return false, err
		}
		return before.LikeCount != count, nil
	})
}

func (s *ReconcileServiceImpl) ReconcileUsers(ctx context.Context) (*ReconcileReport, error) {
	return s.sweep(ctx, "reconcile.user", s.userRepo.GetUserIDsAfter, func(dbc dbctx.Context, id uint64) (bool, error) {
		locked, err := s.userRepo.LockUsers(dbc, []uint64{id})
		if err != nil || len(locked) == 0 {
			return false, err
		}
		before := locked[0]
		follower, following, err := s.maintainer.RefreshUserFollowCounts(dbc, id)
		if err != nil {
			return false, err
		}
		return before.FollowerCount != follower || before.FollowingCount != following, nil
	})
}

func (s *ReconcileServiceImpl) sweep(ctx context.Context, op string, next idPageFunc, repair repairFunc) (*ReconcileReport, error) {
	report := &ReconcileReport{}
	var after uint64
	for {
		ids, err := next(readCtx(ctx), after, s.batchSize)
		if err != nil {
			return report, MapError(op, err)
		}
		if len(ids) == 0 {
			return report, nil
		}

		for _, id := range ids {
			var drifted bool
			err = executeWrite(ctx, s.base, op, func(dbc dbctx.Context) error {
				var err error
				drifted, err = repair(dbc, id)
				return err
			})
			if err != nil {
				return report, err
			}
			report.Checked++
			if drifted {
				report.Repaired++
				log.WarnContext(ctx, "derived counter drift repaired", "op", op, "id", id)
			}
		}
		after = ids[len(ids)-1]
	}
}

func sameRating(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	// stored as decimal(3,2)
	return int64(*a*100+0.5) == int64(*b*100+0.5)
}
