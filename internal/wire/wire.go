package wire

import (
	"Plume/internal/api"
	"Plume/internal/api/config"
	"Plume/internal/api/handler"
	"Plume/internal/job"
	"Plume/internal/pkg/aggregate"
	"Plume/internal/pkg/cron"
	"Plume/internal/pkg/kafka"
	plumemongo "Plume/internal/pkg/mongo"
	"Plume/internal/repository"
	"Plume/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	DashboardSvc service.DashboardService
	CronMgr      *cron.Manager
	// KafkaManager 未启用 Kafka 时为 nil
	KafkaManager *kafka.ConsumerManager
}

// BuildDashboardService 组装引擎、身份解析与看板服务，mongoDB 可为 nil
func BuildDashboardService(db *gorm.DB, mongoDB *mongo.Database, cfg *config.Config) (service.DashboardService, error) {
	accounting, err := cfg.Accounting.Engine()
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepo(db)
	campaignRepo := repository.NewCampaignRepository(db)
	identityRepo := repository.NewIdentityRepository(db)
	postRepo := repository.NewPostRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	var historical aggregate.HistoricalSource
	if mongoDB != nil {
		historical = plumemongo.NewHistoricalRepo(mongoDB, cfg.Mongo)
	}

	engine := aggregate.NewEngine(postRepo, snapshotRepo, historical)
	resolver := service.NewIdentityResolver(identityRepo, userRepo)

	return service.NewDashboardService(engine, resolver, userRepo, campaignRepo, service.DashboardOptions{
		Accounting:       accounting,
		DefaultRangeDays: cfg.Accounting.DefaultRangeDays,
		CacheEnabled:     cfg.Cache.Enable,
	}), nil
}

func BuildApplication(db *gorm.DB, mongoDB *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	dashboardSvc, err := BuildDashboardService(db, mongoDB, cfg)
	if err != nil {
		return nil, err
	}

	handlers := &api.HandlersGroup{
		DashboardHandler: handler.NewDashboardHandler(dashboardSvc),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(cfg.Cache.BumpSpec, job.NewDashboardCacheJob())

	var kafkaMgr *kafka.ConsumerManager
	if cfg.Kafka.Enable {
		kafkaMgr, err = kafka.NewConsumerManager(cfg)
		if err != nil {
			return nil, err
		}
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		DashboardSvc: dashboardSvc,
		CronMgr:      cronMgr,
		KafkaManager: kafkaMgr,
	}, nil
}
