package service

import (
	"Larder/internal/model"
	"Larder/internal/pkg/dbctx"
	"Larder/internal/repository"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// racedFollowRepo lets a concurrent follower win between the remove and the
// insert of a toggle: the remove finds nothing, but the edge exists by the time
// the insert runs.
type racedFollowRepo struct {
	repository.UserFollowRepo
}

func (r *racedFollowRepo) DeleteUserFollow(dbc dbctx.Context, followerID, followingID uint64) (bool, error) {
	edge := &model.UserFollow{FollowerID: followerID, FollowingID: followingID}
	if _, err := r.UserFollowRepo.CreateUserFollow(dbc, edge); err != nil {
		return false, err
	}
	return false, nil
}

type racedLikeRepo struct {
	repository.ReviewLikeRepo
}

func (r *racedLikeRepo) DeleteReviewLike(dbc dbctx.Context, userID, reviewID uint64) (bool, error) {
	if _, err := r.ReviewLikeRepo.CreateReviewLike(dbc, &model.ReviewLike{UserID: userID, ReviewID: reviewID}); err != nil {
		return false, err
	}
	return false, nil
}

func TestToggleFollowAbsorbsRacedInsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	svc := NewUserService(f.base, f.userRepo, &racedFollowRepo{f.userFollowRepo}, f.auth.hasher, f.auth, f.ids)

	res, err := svc.ToggleFollow(ctx, cred(alice), bob)
	require.NoError(t, err)
	assert.Equal(t, ToggleAdded, res.State)

	// one edge; the counters belong to whoever inserted it
	assert.Equal(t, int64(1), f.count(t, &model.UserFollow{}, "follower_id = ? AND following_id = ?", alice, bob))
	assert.Zero(t, f.user(t, bob).FollowerCount)
	assert.Zero(t, f.user(t, alice).FollowingCount)
}

func TestToggleLikeAbsorbsRacedInsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner")
	alice := f.register(t, "alice")
	recipeID := f.createRecipe(t, owner, "tart")
	reviewID := f.addReview(t, alice, recipeID, 4)

	svc := NewReviewService(f.base, f.userRepo, f.recipeRepo, f.reviewRepo, &racedLikeRepo{f.reviewLikeRepo}, f.auth, f.ids, f.maintainer)

	res, err := svc.ToggleLike(ctx, cred(owner), reviewID)
	require.NoError(t, err)
	assert.Equal(t, ToggleAdded, res.State)
	assert.Equal(t, int64(1), f.count(t, &model.ReviewLike{}, "review_id = ?", reviewID))
	assert.Zero(t, f.review(t, reviewID).LikeCount)
}

// Concurrent toggles on one pair are serialized by row locks, so they behave
// exactly like the same calls made in sequence.
func TestConcurrentFollowTogglesApplyInTurn(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	states := runConcurrently(t, 2, func() (*ToggleResult, error) {
		return f.users.ToggleFollow(context.Background(), cred(alice), bob)
	})
	assert.ElementsMatch(t, []ToggleState{ToggleAdded, ToggleRemoved}, states)

	assert.Zero(t, f.count(t, &model.UserFollow{}, "1 = 1"))
	assert.Zero(t, f.user(t, bob).FollowerCount)
	assert.Zero(t, f.user(t, alice).FollowingCount)
}

func TestConcurrentLikeTogglesApplyInTurn(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "owner")
	alice := f.register(t, "alice")
	recipeID := f.createRecipe(t, owner, "tart")
	reviewID := f.addReview(t, alice, recipeID, 4)

	states := runConcurrently(t, 3, func() (*ToggleResult, error) {
		return f.reviews.ToggleLike(context.Background(), cred(owner), reviewID)
	})
	assert.ElementsMatch(t, []ToggleState{ToggleAdded, ToggleRemoved, ToggleAdded}, states)

	assert.Equal(t, int64(1), f.count(t, &model.ReviewLike{}, "review_id = ?", reviewID))
	assert.Equal(t, int64(1), f.review(t, reviewID).LikeCount)
}

func runConcurrently(t *testing.T, n int, fn func() (*ToggleResult, error)) []ToggleState {
	t.Helper()
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		states []ToggleState
		errs   []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := fn()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			states = append(states, res.State)
		}()
	}
	wg.Wait()
	require.Empty(t, errs)
	return states
}
