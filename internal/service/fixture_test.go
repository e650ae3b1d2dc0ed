package service

import (
	"Larder/internal/api/dto"
	"Larder/internal/model"
	"Larder/internal/pkg/database"
	"Larder/internal/pkg/logger"
	"Larder/internal/pkg/security"
	"Larder/internal/repository"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testPassword = "password1"

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	db    *gorm.DB
	clock *fakeClock

	userRepo       repository.UserRepo
	userFollowRepo repository.UserFollowRepo
	recipeRepo     repository.RecipeRepo
	reviewRepo     repository.ReviewRepo
	reviewLikeRepo repository.ReviewLikeRepo
	idSequenceRepo repository.IdSequenceRepo

	base       BaseDeps
	auth       *AuthGate
	ids        *IdAllocator
	maintainer *AggregateMaintainer

	users     UserService
	recipes   RecipeService
	reviews   ReviewService
	reconcile ReconcileService
}

// newTestDB opens a file-backed SQLite database with a single connection, so
// a write transaction sees its own rows and nothing else runs beside it.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "larder.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.NewGormLoggerWithLevel(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:    newTestDB(t),
		clock: &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.userRepo = repository.NewUserRepo(f.db)
	f.userFollowRepo = repository.NewUserFollowRepo(f.db)
	f.recipeRepo = repository.NewRecipeRepo(f.db)
	f.reviewRepo = repository.NewReviewRepo(f.db)
	f.reviewLikeRepo = repository.NewReviewLikeRepo(f.db)
	f.idSequenceRepo = repository.NewIdSequenceRepo(f.db)

	f.base = BaseDeps{DB: f.db, Clock: f.clock.Now}
	f.auth = NewAuthGate(f.userRepo, security.NewBcryptHasher(bcrypt.MinCost))
	f.ids = NewIdAllocator(f.idSequenceRepo)
	f.maintainer = NewAggregateMaintainer(f.recipeRepo, f.reviewRepo, f.reviewLikeRepo, f.userRepo, f.userFollowRepo)

	f.users = NewUserService(f.base, f.userRepo, f.userFollowRepo, security.NewBcryptHasher(bcrypt.MinCost), f.auth, f.ids)
	f.recipes = NewRecipeService(f.base, f.recipeRepo, f.reviewRepo, f.reviewLikeRepo, f.auth, f.ids)
	f.reviews = f.newReviewService(f.maintainer)
	f.reconcile = NewReconcileService(f.base, f.userRepo, f.recipeRepo, f.reviewRepo, f.maintainer)
	return f
}

func (f *fixture) newReviewService(maintainer *AggregateMaintainer) ReviewService {
	return NewReviewService(f.base, f.userRepo, f.recipeRepo, f.reviewRepo, f.reviewLikeRepo, f.auth, f.ids, maintainer)
}

func cred(id uint64) Credential {
	return Credential{UserID: id, Password: testPassword}
}

func (f *fixture) register(t *testing.T, name string) uint64 {
	t.Helper()
	id, err := f.users.Register(context.Background(), &dto.RegisterDTO{
		Name:     name,
		Gender:   "female",
		Age:      30,
		Password: testPassword,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) createRecipe(t *testing.T, authorID uint64, name string) uint64 {
	t.Helper()
	id, err := f.recipes.CreateRecipe(context.Background(), cred(authorID), &dto.CreateRecipeDTO{
		Name:        name,
		Ingredients: []string{"flour", "water"},
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) addReview(t *testing.T, authorID, recipeID uint64, rating int) uint64 {
	t.Helper()
	id, err := f.reviews.AddReview(context.Background(), cred(authorID), recipeID, &dto.AddReviewDTO{
		Rating:  rating,
		Content: "tasty",
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) recipe(t *testing.T, id uint64) *model.Recipe {
	t.Helper()
	var recipe model.Recipe
	require.NoError(t, f.db.First(&recipe, id).Error)
	return &recipe
}

func (f *fixture) user(t *testing.T, id uint64) *model.User {
	t.Helper()
	var user model.User
	require.NoError(t, f.db.First(&user, id).Error)
	return &user
}

func (f *fixture) review(t *testing.T, id uint64) *model.Review {
	t.Helper()
	var review model.Review
	require.NoError(t, f.db.First(&review, id).Error)
	return &review
}

func (f *fixture) count(t *testing.T, value interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(value).Where(query, args...).Count(&n).Error)
	return n
}
