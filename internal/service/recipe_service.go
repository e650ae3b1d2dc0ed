package service

import (
	"Larder/internal/api/dto"
	"Larder/internal/model"
	"Larder/internal/pkg/consts"
	"Larder/internal/pkg/dbctx"
	"Larder/internal/pkg/util"
	"Larder/internal/repository"
	"context"
	"math"
	"strconv"
)

type RecipeService interface {
	CreateRecipe(ctx context.Context, cred Credential, req *dto.CreateRecipeDTO) (uint64, error)
	UpdateRecipe(ctx context.Context, cred Credential, recipeID uint64, req *dto.UpdateRecipeDTO) error
	DeleteRecipe(ctx context.Context, cred Credential, recipeID uint64) error
	GetRecipe(ctx context.Context, recipeID uint64) (*dto.RecipeDTO, error)
	GetReviewCount(ctx context.Context, recipeID uint64) (int64, error)
	GetClosestCaloriePair(ctx context.Context) (*dto.CaloriePairDTO, error)
	GetTopComplexRecipes(ctx context.Context) ([]*dto.RecipeComplexityDTO, error)
}

type RecipeServiceImpl struct {
	base           BaseDeps
	recipeRepo     repository.RecipeRepo
	reviewRepo     repository.ReviewRepo
	reviewLikeRepo repository.ReviewLikeRepo
	auth           *AuthGate
	ids            *IdAllocator
}

func NewRecipeService(
	base BaseDeps,
	recipeRepo repository.RecipeRepo,
	reviewRepo repository.ReviewRepo,
	reviewLikeRepo repository.ReviewLikeRepo,
	auth *AuthGate,
	ids *IdAllocator,
) RecipeService {
	return &RecipeServiceImpl{
		base:           base.withDefaults(),
		recipeRepo:     recipeRepo,
		reviewRepo:     reviewRepo,
		reviewLikeRepo: reviewLikeRepo,
		auth:           auth,
		ids:            ids,
	}
}

func (s *RecipeServiceImpl) CreateRecipe(ctx context.Context, cred Credential, req *dto.CreateRecipeDTO) (uint64, error) {
	const op = "recipe.create"
	if req == nil {
		return 0, validationFailed(ctx, op, ErrParamInvalid)
	}
	if err := util.ValidateDTO(req); err != nil {
		return 0, validationFailed(ctx, op, err)
	}
	totalTime, err := util.SumISODurations(req.CookTime, req.PrepTime)
	if err != nil {
		return 0, validationFailed(ctx, op, ErrDurationInvalid)
	}
	parts := util.NormalizeParts(req.Ingredients)

	var id uint64
	err = executeWrite(ctx, s.base, op, func(dbc dbctx.Context) error {
		user, err := s.auth.Authenticate(dbc, cred)
		if err != nil {
			return err
		}
		newID, err := s.ids.NextID(dbc, ScopeRecipes)
		if err != nil {
			return err
		}

		now := s.base.now()
		recipe := &model.Recipe{
			ID:                  newID,
			AuthorID:            user.ID,
			Name:                req.Name,
			Description:         req.Description,
			Category:            req.Category,
			CookTime:            req.CookTime,
			PrepTime:            req.PrepTime,
			TotalTime:           totalTime,
			DatePublished:       now,
			Calories:            req.Calories,
			FatContent:          req.FatContent,
			SaturatedFatContent: req.SaturatedFatContent,
			CholesterolContent:  req.CholesterolContent,
			SodiumContent:       req.SodiumContent,
			CarbohydrateContent: req.CarbohydrateContent,
			FiberContent:        req.FiberContent,
			SugarContent:        req.SugarContent,
			ProteinContent:      req.ProteinContent,
			Servings:            req.Servings,
			UpdatedAt:           now,
		}
		if err = s.recipeRepo.CreateRecipe(dbc, recipe, parts); err != nil {
			return err
		}
		id = newID
		return nil
	})
	return id, err
}

// UpdateRecipe edits the owner-editable fields. A changed cook or prep time
// recomputes totalTime from the merged values.
func (s *RecipeServiceImpl) UpdateRecipe(ctx context.Context, cred Credential, recipeID uint64, req *dto.UpdateRecipeDTO) error {
	const op = "recipe.update"
	if recipeID == 0 || req == nil {
		return validationFailed(ctx, op, ErrParamInvalid)
	}
	if req.Name == nil && req.Description == nil && req.Category == nil && req.CookTime == nil && req.PrepTime == nil {
		return validationFailed(ctx, op, ErrParamInvalid)
	}
	if err := util.ValidateDTO(req); err != nil {
		return validationFailed(ctx, op, err)
	}
	for _, raw := range []*string{req.CookTime, req.PrepTime} {
		if raw == nil {
			continue
		}
		if _, err := util.ParseISODuration(*raw); err != nil {
			return validationFailed(ctx, op, ErrDurationInvalid)
		}
	}

	return executeWrite(ctx, s.base, op, func(dbc dbctx.Context) error {
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
		if err = s.auth.Authorize(user.ID, recipe.AuthorID); err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_at": s.base.now()}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Category != nil {
			updates["category"] = *req.Category
		}
		if req.CookTime != nil || req.PrepTime != nil {
			cook, prep := recipe.CookTime, recipe.PrepTime
			if req.CookTime != nil {
				cook = req.CookTime
				updates["cook_time"] = *req.CookTime
			}
			if req.PrepTime != nil {
				prep = req.PrepTime
				updates["prep_time"] = *req.PrepTime
			}
			total, err := util.SumISODurations(cook, prep)
			if err != nil {
				return ErrDurationInvalid
			}
			updates["total_time"] = total
		}
		return s.recipeRepo.UpdateRecipe(dbc, recipeID, updates)
	})
}

// DeleteRecipe removes the recipe with its likes, reviews and ingredients.
func (s *RecipeServiceImpl) DeleteRecipe(ctx context.Context, cred Credential, recipeID uint64) error {
	const op = "recipe.delete"
	if recipeID == 0 {
		return validationFailed(ctx, op, ErrParamInvalid)
	}

	var reviewIDs []uint64
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
		if err = s.auth.Authorize(user.ID, recipe.AuthorID); err != nil {
			return err
		}

		// reviews before likes, the same order a like toggle locks in
		if reviewIDs, err = s.reviewRepo.LockReviewIDsByRecipe(dbc, recipeID); err != nil {
			return err
		}
		if err = s.reviewLikeRepo.DeleteLikesByRecipe(dbc, recipeID); err != nil {
			return err
		}
		if err = s.reviewRepo.DeleteReviewsByRecipe(dbc, recipeID); err != nil {
			return err
		}
		return s.recipeRepo.DeleteRecipe(dbc, recipeID)
	})
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(reviewIDs)+1)
	keys = append(keys, consts.RecipeReviewCountKey+strconv.FormatUint(recipeID, 10))
	for _, id := range reviewIDs {
		keys = append(keys, consts.ReviewLikeCountKey+strconv.FormatUint(id, 10))
	}
	s.base.Cache.Evict(ctx, keys...)
	return nil
}

func (s *RecipeServiceImpl) GetRecipe(ctx context.Context, recipeID uint64) (*dto.RecipeDTO, error) {
	const op = "recipe.get"
	recipe, err := s.recipeRepo.GetRecipeWithIngredients(readCtx(ctx), recipeID)
	if err != nil {
		return nil, MapError(op, err)
	}
	if recipe == nil {
		return nil, MapError(op, ErrRecipeNotFound)
	}
	return toRecipeDTO(recipe), nil
}

// GetReviewCount reads through the counter cache.
func (s *RecipeServiceImpl) GetReviewCount(ctx context.Context, recipeID uint64) (int64, error) {
	const op = "recipe.review_count"
	key := consts.RecipeReviewCountKey + strconv.FormatUint(recipeID, 10)
	if count, ok := s.base.Cache.GetCount(ctx, key); ok {
		return count, nil
	}

	recipe, err := s.recipeRepo.GetRecipe(readCtx(ctx), recipeID)
	if err != nil {
		return 0, MapError(op, err)
	}
	if recipe == nil {
		return 0, MapError(op, ErrRecipeNotFound)
	}
	s.base.Cache.SetCount(ctx, key, recipe.ReviewCount)
	return recipe.ReviewCount, nil
}

// GetClosestCaloriePair returns the two recipes whose calories differ least,
// or nil when fewer than two recipes carry calories. Ties go to the pair with
// the smaller ids.
func (s *RecipeServiceImpl) GetClosestCaloriePair(ctx context.Context) (*dto.CaloriePairDTO, error) {
	rows, err := s.recipeRepo.GetRecipeCalories(readCtx(ctx))
	if err != nil {
		return nil, MapError("recipe.closest_calorie_pair", err)
	}
	return closestCaloriePair(rows), nil
}

// closestCaloriePair scans rows sorted by calories; the closest pair is always
// adjacent in that order.
func closestCaloriePair(rows []repository.RecipeCalories) *dto.CaloriePairDTO {
	var best *dto.CaloriePairDTO
	for i := 1; i < len(rows); i++ {
		a, b := rows[i-1], rows[i]
		if a.ID > b.ID {
			a, b = b, a
		}
		// calories are stored with two decimals
		diff := math.Round(math.Abs(b.Calories-a.Calories)*100) / 100
		if best != nil {
			if diff > best.Difference {
				continue
			}
			if diff == best.Difference && (a.ID > best.RecipeA || (a.ID == best.RecipeA && b.ID > best.RecipeB)) {
				continue
			}
		}
		best = &dto.CaloriePairDTO{
			RecipeA:    a.ID,
			RecipeB:    b.ID,
			CaloriesA:  a.Calories,
			CaloriesB:  b.Calories,
			Difference: diff,
		}
	}
	return best
}

func (s *RecipeServiceImpl) GetTopComplexRecipes(ctx context.Context) ([]*dto.RecipeComplexityDTO, error) {
	rows, err := s.recipeRepo.GetTopIngredientCounts(readCtx(ctx), consts.ComplexRecipeLimit)
	if err != nil {
		return nil, MapError("recipe.top_complex", err)
	}
	result := make([]*dto.RecipeComplexityDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, &dto.RecipeComplexityDTO{
			RecipeID:        row.RecipeID,
			Name:            row.Name,
			IngredientCount: row.IngredientCount,
		})
	}
	return result, nil
}

func toRecipeDTO(recipe *model.Recipe) *dto.RecipeDTO {
	parts := make([]string, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		parts = append(parts, ing.Part)
	}
	return &dto.RecipeDTO{
		ID:               recipe.ID,
		AuthorID:         recipe.AuthorID,
		Name:             recipe.Name,
		Description:      recipe.Description,
		Category:         recipe.Category,
		CookTime:         recipe.CookTime,
		PrepTime:         recipe.PrepTime,
		TotalTime:        recipe.TotalTime,
		DatePublished:    recipe.DatePublished,
		Servings:         recipe.Servings,
		AggregatedRating: recipe.AggregatedRating,
		ReviewCount:      recipe.ReviewCount,
		Ingredients:      parts,
		NutritionDTO: dto.NutritionDTO{
			Calories:            recipe.Calories,
			FatContent:          recipe.FatContent,
			SaturatedFatContent: recipe.SaturatedFatContent,
			CholesterolContent:  recipe.CholesterolContent,
			SodiumContent:       recipe.SodiumContent,
			CarbohydrateContent: recipe.CarbohydrateContent,
			FiberContent:        recipe.FiberContent,
			SugarContent:        recipe.SugarContent,
			ProteinContent:      recipe.ProteinContent,
		},
	}
}
