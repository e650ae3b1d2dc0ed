package service

import (
	"Larder/internal/api/dto"
	"Larder/internal/model"
	"Larder/internal/pkg/util"
	"Larder/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	id, err := f.recipes.CreateRecipe(ctx, cred(alice), &dto.CreateRecipeDTO{
		Name:        "pancakes",
		Category:    "breakfast",
		CookTime:    util.PtrString("PT10M"),
		PrepTime:    util.PtrString("PT5M"),
		Servings:    util.PtrInt(4),
		Ingredients: []string{"flour", " milk ", "flour", "", "eggs"},
		NutritionDTO: dto.NutritionDTO{
			Calories: util.PtrFloat64(250),
		},
	})
	require.NoError(t, err)

	got, err := f.recipes.GetRecipe(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, alice, got.AuthorID)
	assert.Equal(t, "pancakes", got.Name)
	assert.ElementsMatch(t, []string{"eggs", "flour", "milk"}, got.Ingredients)
	require.NotNil(t, got.TotalTime)
	total, err := util.ParseISODuration(*got.TotalTime)
	require.NoError(t, err)
	assert.Equal(t, "15m0s", total.String())
	require.NotNil(t, got.Calories)
	assert.InDelta(t, 250, *got.Calories, 1e-9)
	assert.Nil(t, got.AggregatedRating)
	assert.Zero(t, got.ReviewCount)
	assert.True(t, f.clock.now.Equal(got.DatePublished))
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	_, err := f.recipes.CreateRecipe(ctx, cred(alice), &dto.CreateRecipeDTO{Name: ""})
	assert.True(t, IsKind(err, KindValidation), "got %v", err)

	_, err = f.recipes.CreateRecipe(ctx, cred(alice), &dto.CreateRecipeDTO{Name: "x", CookTime: util.PtrString("ten minutes")})
	assert.ErrorIs(t, err, ErrDurationInvalid)

	_, err = f.recipes.CreateRecipe(ctx, cred(alice), &dto.CreateRecipeDTO{
		Name:         "x",
		NutritionDTO: dto.NutritionDTO{SugarContent: util.PtrFloat64(-1)},
	})
	assert.True(t, IsKind(err, KindValidation), "got %v", err)

	assert.Zero(t, f.count(t, &model.Recipe{}, "1 = 1"))
}

func TestUpdateRecipeRecomputesTotalTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	id, err := f.recipes.CreateRecipe(ctx, cred(alice), &dto.CreateRecipeDTO{
		Name:     "roast",
		CookTime: util.PtrString("PT1H"),
		PrepTime: util.PtrString("PT20M"),
	})
	require.NoError(t, err)

	err = f.recipes.UpdateRecipe(ctx, cred(alice), id, &dto.UpdateRecipeDTO{
		Name:     util.PtrString("slow roast"),
		CookTime: util.PtrString("PT3H"),
	})
	require.NoError(t, err)

	recipe := f.recipe(t, id)
	assert.Equal(t, "slow roast", recipe.Name)
	require.NotNil(t, recipe.TotalTime)
	total, err := util.ParseISODuration(*recipe.TotalTime)
	require.NoError(t, err)
	assert.Equal(t, "3h20m0s", total.String())

	err = f.recipes.UpdateRecipe(ctx, cred(bob), id, &dto.UpdateRecipeDTO{Name: util.PtrString("stolen")})
	assert.True(t, IsKind(err, KindPermission), "got %v", err)

	err = f.recipes.UpdateRecipe(ctx, cred(alice), id, &dto.UpdateRecipeDTO{PrepTime: util.PtrString("-PT5M")})
	assert.ErrorIs(t, err, ErrDurationInvalid)

	err = f.recipes.UpdateRecipe(ctx, cred(alice), 9999, &dto.UpdateRecipeDTO{Name: util.PtrString("x")})
	assert.True(t, IsKind(err, KindNotFound), "got %v", err)

	assert.Equal(t, "slow roast", f.recipe(t, id).Name)
}

func TestDeleteRecipeCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")
	recipeID := f.createRecipe(t, alice, "bread")
	keptID := f.createRecipe(t, alice, "butter")
	reviewID := f.addReview(t, bob, recipeID, 4)
	keptReviewID := f.addReview(t, bob, keptID, 5)
	for _, id := range []uint64{reviewID, keptReviewID} {
		_, err := f.reviews.ToggleLike(ctx, cred(carol), id)
		require.NoError(t, err)
	}

	err := f.recipes.DeleteRecipe(ctx, cred(bob), recipeID)
	assert.True(t, IsKind(err, KindPermission), "got %v", err)
	assert.Equal(t, int64(1), f.count(t, &model.Recipe{}, "id = ?", recipeID))

	require.NoError(t, f.recipes.DeleteRecipe(ctx, cred(alice), recipeID))

	assert.Zero(t, f.count(t, &model.Recipe{}, "id = ?", recipeID))
	assert.Zero(t, f.count(t, &model.RecipeIngredient{}, "recipe_id = ?", recipeID))
	assert.Zero(t, f.count(t, &model.Review{}, "recipe_id = ?", recipeID))
	assert.Zero(t, f.count(t, &model.ReviewLike{}, "review_id = ?", reviewID))

	assert.Equal(t, int64(1), f.count(t, &model.Review{}, "id = ?", keptReviewID))
	assert.Equal(t, int64(1), f.count(t, &model.ReviewLike{}, "review_id = ?", keptReviewID))
	assert.Equal(t, int64(2), f.count(t, &model.RecipeIngredient{}, "recipe_id = ?", keptID))

	_, err = f.recipes.GetRecipe(ctx, recipeID)
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	err = f.recipes.DeleteRecipe(ctx, cred(alice), recipeID)
	assert.True(t, IsKind(err, KindNotFound), "got %v", err)
}

func (f *fixture) createRecipeWith(t *testing.T, authorID uint64, req *dto.CreateRecipeDTO) uint64 {
	t.Helper()
	id, err := f.recipes.CreateRecipe(context.Background(), cred(authorID), req)
	require.NoError(t, err)
	return id
}

func TestGetClosestCaloriePair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chef := f.register(t, "chef")

	got, err := f.recipes.GetClosestCaloriePair(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	withCalories := func(name string, kcal *float64) uint64 {
		return f.createRecipeWith(t, chef, &dto.CreateRecipeDTO{Name: name, NutritionDTO: dto.NutritionDTO{Calories: kcal}})
	}
	soup := withCalories("soup", util.PtrFloat64(300))
	withCalories("water", nil)

	got, err = f.recipes.GetClosestCaloriePair(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "one recipe with calories is not a pair")

	cake := withCalories("cake", util.PtrFloat64(520.5))
	salad := withCalories("salad", util.PtrFloat64(120))
	bread := withCalories("bread", util.PtrFloat64(310))
	pie := withCalories("pie", util.PtrFloat64(510.5))

	got, err = f.recipes.GetClosestCaloriePair(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, soup, got.RecipeA)
	assert.Equal(t, bread, got.RecipeB)
	assert.InDelta(t, 300, got.CaloriesA, 1e-9)
	assert.InDelta(t, 310, got.CaloriesB, 1e-9)
	assert.InDelta(t, 10, got.Difference, 1e-9)
	assert.NotContains(t, []uint64{got.RecipeA, got.RecipeB}, salad)
	assert.NotContains(t, []uint64{got.RecipeA, got.RecipeB}, cake)
	assert.NotContains(t, []uint64{got.RecipeA, got.RecipeB}, pie)
}

func TestClosestCaloriePairTieBreak(t *testing.T) {
	rows := []repository.RecipeCalories{
		{ID: 7, Calories: 100},
		{ID: 4, Calories: 110},
		{ID: 2, Calories: 120},
		{ID: 9, Calories: 130.3},
		{ID: 1, Calories: 140.3},
	}
	got := closestCaloriePair(rows)
	require.NotNil(t, got)
	// three neighbour pairs differ by 10; (1, 9) has the smallest first id
	assert.Equal(t, uint64(1), got.RecipeA)
	assert.Equal(t, uint64(9), got.RecipeB)
	assert.InDelta(t, 140.3, got.CaloriesA, 1e-9)
	assert.InDelta(t, 10, got.Difference, 1e-9)

	assert.Nil(t, closestCaloriePair(nil))
}

func TestGetTopComplexRecipes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chef := f.register(t, "chef")

	got, err := f.recipes.GetTopComplexRecipes(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	withParts := func(name string, parts ...string) uint64 {
		return f.createRecipeWith(t, chef, &dto.CreateRecipeDTO{Name: name, Ingredients: parts})
	}
	toast := withParts("toast", "bread")
	stew := withParts("stew", "beef", "carrot", "onion", "stock")
	salad := withParts("salad", "lettuce", "tomato")
	curry := withParts("curry", "chicken", "rice", "spice", "onion")
	withParts("ice", "water")
	withParts("air")

	got, err = f.recipes.GetTopComplexRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, stew, got[0].RecipeID)
	assert.Equal(t, "stew", got[0].Name)
	assert.Equal(t, int64(4), got[0].IngredientCount)
	assert.Equal(t, curry, got[1].RecipeID)
	assert.Equal(t, salad, got[2].RecipeID)
	assert.Equal(t, int64(2), got[2].IngredientCount)
	assert.NotEqual(t, toast, got[2].RecipeID)
}
