package service

import (
	"Larder/internal/model"
	"Larder/internal/pkg/dbctx"
	"Larder/internal/repository"
	"time"
)

type ToggleState int

const (
	ToggleAdded ToggleState = iota + 1
	ToggleRemoved
)

func (s ToggleState) String() string {
	switch s {
	case ToggleAdded:
		return "added"
	case ToggleRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// ToggleResult is what a follow or like toggle reports back: the resulting
// state and the target's counter after the transaction.
type ToggleResult struct {
	State ToggleState
	Count int64
}

// EdgeSet is one unique (subject, object) relation with counters derived
// from it.
type EdgeSet[S comparable, O comparable] interface {
	// Eligible runs on both paths: self checks and existence of the object.
	Eligible(dbc dbctx.Context, subject S, object O) error
	// CanAdd runs only before an insert.
	CanAdd(dbc dbctx.Context, subject S, object O) error
	Remove(dbc dbctx.Context, subject S, object O) (bool, error)
	// Insert must not fail on a duplicate; it reports false instead.
	Insert(dbc dbctx.Context, subject S, object O) (bool, error)
	OnAdded(dbc dbctx.Context, subject S, object O) error
	OnRemoved(dbc dbctx.Context, subject S, object O) error
}

// Toggle flips the edge between subject and object. A remove that deletes
// nothing falls through to an insert; an insert absorbed by the uniqueness
// constraint means a concurrent caller already added the edge, which is
// reported as ToggleAdded with no counter change.
func Toggle[S comparable, O comparable](dbc dbctx.Context, set EdgeSet[S, O], subject S, object O) (ToggleState, error) {
	if err := set.Eligible(dbc, subject, object); err != nil {
		return 0, err
	}

	removed, err := set.Remove(dbc, subject, object)
	if err != nil {
		return 0, err
	}
	if removed {
		if err = set.OnRemoved(dbc, subject, object); err != nil {
			return 0, err
		}
		return ToggleRemoved, nil
	}

	if err = set.CanAdd(dbc, subject, object); err != nil {
		return 0, err
	}
	inserted, err := set.Insert(dbc, subject, object)
	if err != nil {
		return 0, err
	}
	if inserted {
		if err = set.OnAdded(dbc, subject, object); err != nil {
			return 0, err
		}
	}
	return ToggleAdded, nil
}

// followEdges is the user → user follow relation. Its users must already be
// locked by the caller.
type followEdges struct {
	userRepo       repository.UserRepo
	userFollowRepo repository.UserFollowRepo
	now            time.Time

	target *model.User
}

func (e *followEdges) Eligible(dbc dbctx.Context, followerID, followingID uint64) error {
	if followerID == followingID {
		return ErrUserFollowSelf
	}
	target, err := e.userRepo.GetUserById(dbc, followingID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	e.target = target
	return nil
}

func (e *followEdges) CanAdd(_ dbctx.Context, _, _ uint64) error {
	if e.target.IsDeleted {
		return ErrTargetUserInvalid
	}
	return nil
}

func (e *followEdges) Remove(dbc dbctx.Context, followerID, followingID uint64) (bool, error) {
	return e.userFollowRepo.DeleteUserFollow(dbc, followerID, followingID)
}

func (e *followEdges) Insert(dbc dbctx.Context, followerID, followingID uint64) (bool, error) {
	return e.userFollowRepo.CreateUserFollow(dbc, &model.UserFollow{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   e.now,
	})
}

func (e *followEdges) OnAdded(dbc dbctx.Context, followerID, followingID uint64) error {
	return e.adjust(dbc, followerID, followingID, 1)
}

func (e *followEdges) OnRemoved(dbc dbctx.Context, followerID, followingID uint64) error {
	return e.adjust(dbc, followerID, followingID, -1)
}

// adjust touches the two user rows in ascending id order.
func (e *followEdges) adjust(dbc dbctx.Context, followerID, followingID uint64, delta int64) error {
	if followerID < followingID {
		if err := e.userRepo.AddFollowCounts(dbc, followerID, 0, delta); err != nil {
			return err
		}
		return e.userRepo.AddFollowCounts(dbc, followingID, delta, 0)
	}
	if err := e.userRepo.AddFollowCounts(dbc, followingID, delta, 0); err != nil {
		return err
	}
	return e.userRepo.AddFollowCounts(dbc, followerID, 0, delta)
}

// likeEdges is the user → review like relation. Eligible locks the review row,
// so toggles on one review and deletes of it run one after another.
type likeEdges struct {
	userRepo       repository.UserRepo
	reviewRepo     repository.ReviewRepo
	reviewLikeRepo repository.ReviewLikeRepo
	now            time.Time

	review *model.Review
}

func (e *likeEdges) Eligible(dbc dbctx.Context, likerID, reviewID uint64) error {
	review, err := e.reviewRepo.GetReviewForUpdate(dbc, reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrReviewNotFound
	}
	if review.AuthorID == likerID {
		return ErrReviewLikeSelf
	}
	e.review = review
	return nil
}

func (e *likeEdges) CanAdd(dbc dbctx.Context, _, _ uint64) error {
	author, err := e.userRepo.GetUserById(dbc, e.review.AuthorID)
	if err != nil {
		return err
	}
	if author == nil || author.IsDeleted {
		return ErrTargetUserInvalid
	}
	return nil
}

func (e *likeEdges) Remove(dbc dbctx.Context, likerID, reviewID uint64) (bool, error) {
	return e.reviewLikeRepo.DeleteReviewLike(dbc, likerID, reviewID)
}

func (e *likeEdges) Insert(dbc dbctx.Context, likerID, reviewID uint64) (bool, error) {
	return e.reviewLikeRepo.CreateReviewLike(dbc, &model.ReviewLike{
		ReviewID:  reviewID,
		UserID:    likerID,
		CreatedAt: e.now,
	})
}

func (e *likeEdges) OnAdded(dbc dbctx.Context, _, reviewID uint64) error {
	return e.reviewRepo.AddLikeCount(dbc, reviewID, 1)
}

func (e *likeEdges) OnRemoved(dbc dbctx.Context, _, reviewID uint64) error {
	return e.reviewRepo.AddLikeCount(dbc, reviewID, -1)
}
