package service

import (
	"Larder/internal/pkg/dbctx"
	"Larder/internal/repository"
)

// RecipeAggregate is the derived rating state of a recipe. Rating is nil iff
// Count is zero.
type RecipeAggregate struct {
	Rating *float64
	Count  int64
}

type AggregateMaintainer struct {
	recipeRepo     repository.RecipeRepo
	reviewRepo     repository.ReviewRepo
	reviewLikeRepo repository.ReviewLikeRepo
	userRepo       repository.UserRepo
	userFollowRepo repository.UserFollowRepo
}

func NewAggregateMaintainer(
	recipeRepo repository.RecipeRepo,
	reviewRepo repository.ReviewRepo,
	reviewLikeRepo repository.ReviewLikeRepo,
	userRepo repository.UserRepo,
	userFollowRepo repository.UserFollowRepo,
) *AggregateMaintainer {
	return &AggregateMaintainer{
		recipeRepo:     recipeRepo,
		reviewRepo:     reviewRepo,
		reviewLikeRepo: reviewLikeRepo,
		userRepo:       userRepo,
		userFollowRepo: userFollowRepo,
	}
}

// RefreshRecipeAggregate recomputes aggregatedRating and reviewCount from the
// recipe's reviews and writes both in the caller's transaction. The recipe row
// is locked first so concurrent recomputes for one recipe serialize.
func (m *AggregateMaintainer) RefreshRecipeAggregate(dbc dbctx.Context, recipeID uint64) (*RecipeAggregate, error) {
	recipe, err := m.recipeRepo.GetRecipeForUpdate(dbc, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, ErrRecipeNotFound
	}

	totals, err := m.reviewRepo.GetRatingTotals(dbc, recipeID)
	if err != nil {
		return nil, err
	}
	agg := computeAggregate(totals.Count, totals.Sum)
	if err = m.recipeRepo.UpdateRecipeAggregate(dbc, recipeID, agg.Rating, agg.Count); err != nil {
		return nil, err
	}
	return agg, nil
}

// RefreshReviewLikeCount rewrites reviews.like_count from the like edges.
func (m *AggregateMaintainer) RefreshReviewLikeCount(dbc dbctx.Context, reviewID uint64) (int64, error) {
	count, err := m.reviewLikeRepo.GetReviewLikeCount(dbc, reviewID)
	if err != nil {
		return 0, err
	}
	if err = m.reviewRepo.UpdateLikeCount(dbc, reviewID, count); err != nil {
		return 0, err
	}
	return count, nil
}

// RefreshUserFollowCounts rewrites both follow counters of a user from the edges.
func (m *AggregateMaintainer) RefreshUserFollowCounts(dbc dbctx.Context, userID uint64) (follower, following int64, err error) {
	if follower, err = m.userFollowRepo.GetUserFollowerCount(dbc, userID); err != nil {
		return 0, 0, err
	}
	if following, err = m.userFollowRepo.GetUserFollowingCount(dbc, userID); err != nil {
		return 0, 0, err
	}
	if err = m.userRepo.UpdateUserFollowCount(dbc, userID, follower, following); err != nil {
		return 0, 0, err
	}
	return follower, following, nil
}

// computeAggregate rounds sum/count half-up to two decimals using integer
// hundredths, so x.xx5 never drifts through binary floating point.
func computeAggregate(count, sum int64) *RecipeAggregate {
	if count <= 0 {
		return &RecipeAggregate{Rating: nil, Count: 0}
	}
	hundredths := (sum*200 + count) / (2 * count)
	rating := float64(hundredths) / 100
	return &RecipeAggregate{Rating: &rating, Count: count}
}
