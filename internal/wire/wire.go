package wire

import (
	"Larder/internal/api"
	"Larder/internal/api/config"
	"Larder/internal/api/handler"
	"Larder/internal/job"
	"Larder/internal/pkg/cron"
	"Larder/internal/pkg/kafka"
	"Larder/internal/pkg/redis"
	"Larder/internal/pkg/security"
	"Larder/internal/repository"
	"Larder/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

// Services 服务层实例，测试中可以单独构建
type Services struct {
	User      service.UserService
	Recipe    service.RecipeService
	Review    service.ReviewService
	Reconcile service.ReconcileService
}

// BuildServices cache 为 nil 时不使用计数缓存
func BuildServices(db *gorm.DB, cache service.CounterCache, hasher security.PasswordHasher) *Services {
	userRepo := repository.NewUserRepo(db)
	userFollowRepo := repository.NewUserFollowRepo(db)
	recipeRepo := repository.NewRecipeRepo(db)
	reviewRepo := repository.NewReviewRepo(db)
	reviewLikeRepo := repository.NewReviewLikeRepo(db)
	idSequenceRepo := repository.NewIdSequenceRepo(db)

	base := service.BaseDeps{DB: db, Cache: cache}
	auth := service.NewAuthGate(userRepo, hasher)
	ids := service.NewIdAllocator(idSequenceRepo)
	maintainer := service.NewAggregateMaintainer(recipeRepo, reviewRepo, reviewLikeRepo, userRepo, userFollowRepo)

	return &Services{
		User:      service.NewUserService(base, userRepo, userFollowRepo, hasher, auth, ids),
		Recipe:    service.NewRecipeService(base, recipeRepo, reviewRepo, reviewLikeRepo, auth, ids),
		Review:    service.NewReviewService(base, userRepo, recipeRepo, reviewRepo, reviewLikeRepo, auth, ids, maintainer),
		Reconcile: service.NewReconcileService(base, userRepo, recipeRepo, reviewRepo, maintainer),
	}
}

// BuildRouter 根据服务层构建路由
func BuildRouter(svcs *Services, cfg *config.Config) *gin.Engine {
	handlers := &api.HandlersGroup{
		UserHandler:   handler.NewUserHandler(svcs.User),
		RecipeHandler: handler.NewRecipeHandler(svcs.Recipe, svcs.Review),
		ReviewHandler: handler.NewReviewHandler(svcs.Review),
	}
	return api.SetupRouter(handlers, cfg)
}

// BuildApplication rdb 为 nil 时关闭缓存、分布式锁和 binlog 消费
func BuildApplication(db *gorm.DB, rdb *redisv9.Client, cfg *config.Config) (*ApplicationContainer, error) {
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)

	var counterCache *redis.CounterCache
	var cache service.CounterCache
	var locker job.Locker
	if rdb != nil {
		counterCache = redis.NewCounterCache(rdb, time.Duration(cfg.Redis.CounterTTLSecond)*time.Second)
		cache = counterCache
		locker = counterCache
	}

	svcs := BuildServices(db, cache, hasher)
	router := BuildRouter(svcs, cfg)

	reconcileJob := job.NewAggregateReconcileJob(svcs.Reconcile, locker)
	cronMgr := cron.NewCronManager(cfg.Cron.ReconcileSpec, reconcileJob)

	var kafkaMgr *kafka.ConsumerManager
	if cfg.KafkaCanalConsumer.Enable && counterCache != nil {
		var err error
		kafkaMgr, err = kafka.NewConsumerManager(cfg, counterCache)
		if err != nil {
			return nil, err
		}
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}
