package service

import (
	"Larder/internal/model"
	"Larder/internal/pkg/util"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileRepairsDriftedCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	recipeID := f.createRecipe(t, alice, "bread")
	reviewID := f.addReview(t, bob, recipeID, 4)
	_, err := f.users.ToggleFollow(ctx, cred(alice), bob)
	require.NoError(t, err)
	_, err = f.reviews.ToggleLike(ctx, cred(alice), reviewID)
	require.NoError(t, err)

	report, err := f.reconcile.ReconcileUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Zero(t, report.Repaired)

	require.NoError(t, f.db.Model(&model.User{}).Where("id = ?", bob).Update("follower_count", 9).Error)
	require.NoError(t, f.db.Model(&model.Review{}).Where("id = ?", reviewID).Update("like_count", 0).Error)
	require.NoError(t, f.db.Model(&model.Recipe{}).Where("id = ?", recipeID).
		Updates(map[string]interface{}{"review_count": 0, "aggregated_rating": nil}).Error)

	report, err = f.reconcile.ReconcileUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, &ReconcileReport{Checked: 2, Repaired: 1}, report)
	assert.Equal(t, int64(1), f.user(t, bob).FollowerCount)

	report, err = f.reconcile.ReconcileReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, &ReconcileReport{Checked: 1, Repaired: 1}, report)
	assert.Equal(t, int64(1), f.review(t, reviewID).LikeCount)

	report, err = f.reconcile.ReconcileRecipes(ctx)
	require.NoError(t, err)
	assert.Equal(t, &ReconcileReport{Checked: 1, Repaired: 1}, report)
	requireAggregate(t, f.recipe(t, recipeID), util.PtrFloat64(4.0), 1)
}

func TestReconcilePagesThroughBatches(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.register(t, "user")
	}
	svc := f.reconcile.(*ReconcileServiceImpl)
	svc.batchSize = 2

	report, err := svc.ReconcileUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, report.Checked)
}

func TestSameRating(t *testing.T) {
	assert.True(t, sameRating(nil, nil))
	assert.False(t, sameRating(nil, util.PtrFloat64(1)))
	assert.True(t, sameRating(util.PtrFloat64(3.33), util.PtrFloat64(3.3300000001)))
	assert.False(t, sameRating(util.PtrFloat64(3.33), util.PtrFloat64(3.34)))
}
