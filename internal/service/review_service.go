package service

import (
	"Larder/internal/api/dto"
	"Larder/internal/model"
	"Larder/internal/pkg/consts"
	"Larder/internal/pkg/dbctx"
	"Larder/internal/pkg/util"
	"Larder/internal/repository"
	"context"
	"strconv"
	"strings"

	"github.com/jinzhu/copier"
)

type ReviewService interface {
	AddReview(ctx context.Context, cred Credential, recipeID uint64, req *dto.AddReviewDTO) (uint64, error)
	EditReview(ctx context.Context, cred Credential, recipeID, reviewID uint64, req *dto.EditReviewDTO) error
	DeleteReview(ctx context.Context, cred Credential, recipeID, reviewID uint64) error
	ToggleLike(ctx context.Context, cred Credential, reviewID uint64) (*ToggleResult, error)
	RefreshRecipeAggregate(ctx context.Context, recipeID uint64) (*RecipeAggregate, error)
	GetReview(ctx context.Context, reviewID uint64) (*dto.ReviewDTO, error)
	GetReviewLikeCount(ctx context.Context, reviewID uint64) (int64, error)
}

type ReviewServiceImpl struct {
	base           BaseDeps
	userRepo       repository.UserRepo
	recipeRepo     repository.RecipeRepo
	reviewRepo     repository.ReviewRepo
	reviewLikeRepo repository.ReviewLikeRepo
	auth           *AuthGate
	ids            *IdAllocator
	maintainer     *AggregateMaintainer
}

func NewReviewService(
	base BaseDeps,
	userRepo repository.UserRepo,
	recipeRepo repository.RecipeRepo,
	reviewRepo repository.ReviewRepo,
	reviewLikeRepo repository.ReviewLikeRepo,
	auth *AuthGate,
	ids *IdAllocator,
	maintainer *AggregateMaintainer,
) ReviewService {
	return &ReviewServiceImpl{
		base:           base.withDefaults(),
		userRepo:       userRepo,
		recipeRepo:     recipeRepo,
		reviewRepo:     reviewRepo,
		reviewLikeRepo: reviewLikeRepo,
		auth:           auth,
		ids:            ids,
		maintainer:     maintainer,
	}
}

func checkRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrRatingOutOfRange
	}
	return nil
}

func checkText(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrReviewTextEmpty
	}
	return nil
}

func (s *ReviewServiceImpl) AddReview(ctx context.Context, cred Credential, recipeID uint64, req *dto.AddReviewDTO) (uint64, error) {
	const op = "review.add"
	if recipeID == 0 || req == nil {
		return 0, validationFailed(ctx, op, ErrParamInvalid)
	}
	if err := checkRating(req.Rating); err != nil {
		return 0, validationFailed(ctx, op, err)
	}
	if err := checkText(req.Content); err != nil {
		return 0, validationFailed(ctx, op, err)
	}
	if err := util.ValidateDTO(req); err != nil {
		return 0, validationFailed(ctx, op, err)
	}

	var id uint64
	err := executeWrite(ctx, s.base, op, func(dbc dbctx.Context) error {
		user, err := s.auth.Authenticate(dbc, cred)
		if err != nil {
			return err
		}
		recipe, err := s.recipeRepo.GetRecipeForUpdate(dbc, recipeID)
		if err != nil {
			return err
		}
		if recipe == nil {
			return ErrRecipeNotFound
		}

		newID, err := s.ids.NextID(dbc, ScopeReviews)
		if err != nil {
			return err
		}
		now := s.base.now()
		review := &model.Review{
			ID:          newID,
			RecipeID:    recipe.ID,
			AuthorID:    user.ID,
			Rating:      req.Rating,
			Content:     req.Content,
			SubmittedAt: now,
			ModifiedAt:  now,
		}
		if err = s.reviewRepo.CreateReview(dbc, review); err != nil {
			return err
		}
		if _, err = s.maintainer.RefreshRecipeAggregate(dbc, recipe.ID); err != nil {
			return err
		}
		id = newID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.evictRecipe(ctx, recipeID)
	return id, nil
}

// EditReview changes rating and/or text of a review on recipeID. The aggregate
// is recomputed only when the rating changed.
func (s *ReviewServiceImpl) EditReview(ctx context.Context, cred Credential, recipeID, reviewID uint64, req *dto.EditReviewDTO) error {
	const op = "review.edit"
	if recipeID == 0 || reviewID == 0 || req == nil || (req.Rating == nil && req.Content == nil) {
		return validationFailed(ctx, op, ErrParamInvalid)
	}
	if req.Rating != nil {
		if err := checkRating(*req.Rating); err != nil {
			return validationFailed(ctx, op, err)
		}
	}
	if req.Content != nil {
		if err := checkText(*req.Content); err != nil {
			return validationFailed(ctx, op, err)
		}
	}
	if err := util.ValidateDTO(req); err != nil {
		return validationFailed(ctx, op, err)
	}

	err := executeWrite(ctx, s.base, op, func(dbc dbctx.Context) error {
		review, err := s.loadOwnedReview(dbc, cred, recipeID, reviewID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"modified_at": s.base.now()}
		if req.Content != nil {
			updates["content"] = *req.Content
		}
		ratingChanged := req.Rating != nil && *req.Rating != review.Rating
		if req.Rating != nil {
			updates["rating"] = *req.Rating
		}
		if err = s.reviewRepo.UpdateReview(dbc, review.ID, updates); err != nil {
			return err
		}
		if ratingChanged {
			if _, err = s.maintainer.RefreshRecipeAggregate(dbc, recipeID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.evictRecipe(ctx, recipeID)
	return nil
}

// DeleteReview removes the review with its likes and recomputes the recipe.
func (s *ReviewServiceImpl) DeleteReview(ctx context.Context, cred Credential, recipeID, reviewID uint64) error {
	const op = "review.delete"
	if recipeID == 0 || reviewID == 0 {
		return validationFailed(ctx, op, ErrParamInvalid)
	}

	err := executeWrite(ctx, s.base, op, func(dbc dbctx.Context) error {
		review, err := s.loadOwnedReview(dbc, cred, recipeID, reviewID)
		if err != nil {
			return err
		}
		if err = s.reviewLikeRepo.DeleteLikesByReview(dbc, review.ID); err != nil {
			return err
		}
		if err = s.reviewRepo.DeleteReview(dbc, review.ID); err != nil {
			return err
		}
		_, err = s.maintainer.RefreshRecipeAggregate(dbc, recipeID)
		return err
	})
	if err != nil {
		return err
	}

	s.evictRecipe(ctx, recipeID)
	s.base.Cache.Evict(ctx, consts.ReviewLikeCountKey+strconv.FormatUint(reviewID, 10))
	return nil
}

// loadOwnedReview authenticates the caller, locks the recipe and then the
// review, and checks that the review sits on that recipe and that the caller
// wrote it.
func (s *ReviewServiceImpl) loadOwnedReview(dbc dbctx.Context, cred Credential, recipeID, reviewID uint64) (*model.Review, error) {
	user, err := s.auth.Authenticate(dbc, cred)
	if err != nil {
		return nil, err
	}
	recipe, err := s.recipeRepo.GetRecipeForUpdate(dbc, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, ErrRecipeNotFound
	}
	review, err := s.reviewRepo.GetReviewForUpdate(dbc, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil || review.RecipeID != recipe.ID {
		return nil, ErrReviewNotFound
	}
	if err = s.auth.Authorize(user.ID, review.AuthorID); err != nil {
		return nil, err
	}
	return review, nil
}

// ToggleLike likes the review, or unlikes it when the like exists. The
// returned count is the review's like count.
func (s *ReviewServiceImpl) ToggleLike(ctx context.Context, cred Credential, reviewID uint64) (*ToggleResult, error) {
	const op = "review.toggle_like"
	if reviewID == 0 {
		return nil, validationFailed(ctx, op, ErrParamInvalid)
	}

	var result *ToggleResult
	err := executeWrite(ctx, s.base, op, func(dbc dbctx.Context) error {
		user, err := s.auth.Authenticate(dbc, cred)
		if err != nil {
			return err
		}
		edges := &likeEdges{
			userRepo:       s.userRepo,
			reviewRepo:     s.reviewRepo,
			reviewLikeRepo: s.reviewLikeRepo,
			now:            s.base.now(),
		}
		state, err := Toggle[uint64, uint64](dbc, edges, user.ID, reviewID)
		if err != nil {
			return err
		}
		review, err := s.reviewRepo.GetReview(dbc, reviewID)
		if err != nil {
			return err
		}
		result = &ToggleResult{State: state, Count: review.LikeCount}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.base.Cache.Evict(ctx, consts.ReviewLikeCountKey+strconv.FormatUint(reviewID, 10))
	return result, nil
}

func (s *ReviewServiceImpl) RefreshRecipeAggregate(ctx context.Context, recipeID uint64) (*RecipeAggregate, error) {
	const op = "review.refresh_aggregate"
	if recipeID == 0 {
		return nil, validationFailed(ctx, op, ErrParamInvalid)
	}

	var agg *RecipeAggregate
	err := executeWrite(ctx, s.base, op, func(dbc dbctx.Context) error {
		var err error
		agg, err = s.maintainer.RefreshRecipeAggregate(dbc, recipeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.evictRecipe(ctx, recipeID)
	return agg, nil
}

// GetReview returns the review with the ids of its likers in ascending order.
func (s *ReviewServiceImpl) GetReview(ctx context.Context, reviewID uint64) (*dto.ReviewDTO, error) {
	const op = "review.get"
	review, err := s.reviewRepo.GetReview(readCtx(ctx), reviewID)
	if err != nil {
		return nil, MapError(op, err)
	}
	if review == nil {
		return nil, MapError(op, ErrReviewNotFound)
	}
	reviewDTO := &dto.ReviewDTO{}
	if err = copier.Copy(reviewDTO, review); err != nil {
		return nil, MapError(op, err)
	}
	if reviewDTO.Likers, err = s.reviewLikeRepo.GetLikerIDs(readCtx(ctx), reviewID); err != nil {
		return nil, MapError(op, err)
	}
	return reviewDTO, nil
}

func (s *ReviewServiceImpl) GetReviewLikeCount(ctx context.Context, reviewID uint64) (int64, error) {
	const op = "review.like_count"
	key := consts.ReviewLikeCountKey + strconv.FormatUint(reviewID, 10)
	if count, ok := s.base.Cache.GetCount(ctx, key); ok {
		return count, nil
	}

	review, err := s.reviewRepo.GetReview(readCtx(ctx), reviewID)
	if err != nil {
		return 0, MapError(op, err)
	}
	if review == nil {
		return 0, MapError(op, ErrReviewNotFound)
	}
	s.base.Cache.SetCount(ctx, key, review.LikeCount)
	return review.LikeCount, nil
}

func (s *ReviewServiceImpl) evictRecipe(ctx context.Context, recipeID uint64) {
	s.base.Cache.Evict(ctx, consts.RecipeReviewCountKey+strconv.FormatUint(recipeID, 10))
}
