package wire

import (
	"DevNest/internal/api"
	"DevNest/internal/api/config"
	"DevNest/internal/api/handler"
	"DevNest/internal/job"
	"DevNest/internal/pkg/cron"
	"DevNest/internal/pkg/es"
	"DevNest/internal/pkg/kafka"
	"DevNest/internal/repository"
	"DevNest/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager
	Producer     *kafka.EngagementProducer
}

// BuildApplication Kafka 未启用时 KafkaManager 与 Producer 为 nil，互动事件直接写入 Redis；
// Elasticsearch 未启用时列表关键字查询走 SQL LIKE
func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepo(db)
	postRepo := repository.NewPostRepository(db)
	tagRepo := repository.NewTagRepository(db)
	metricRepo := repository.NewPostMetricRepository(db)
	commentRepo := repository.NewCommentRepo(db)
	reactionRepo := repository.NewReactionRepo(db)

	app := &ApplicationContainer{DB: db}

	var notifier service.EngagementNotifier = service.NewDirtySetNotifier()
	if cfg.Kafka.Enable {
		producer, err := kafka.NewEngagementProducer(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		kafkaMgr, err := kafka.NewConsumerManager(cfg.Kafka)
		if err != nil {
			_ = producer.Close()
			return nil, err
		}
		notifier = producer
		app.Producer = producer
		app.KafkaManager = kafkaMgr
	}

	var searcher service.PostSearcher
	if cfg.Elastic.Enable {
		client, err := es.NewClient(cfg.Elastic)
		if err != nil {
			app.closeKafka()
			return nil, err
		}
		searcher = es.NewPostRepo(client, cfg.Elastic.PostIndex)
	}

	engagementSvc := service.NewEngagementService(tx, metricRepo, commentRepo, reactionRepo, notifier)
	postSvc := service.NewPostService(tx, postRepo, userRepo, metricRepo, reactionRepo,
		service.NewTagResolver(tagRepo), searcher, engagementSvc, cfg.Engagement)
	commentSvc := service.NewCommentService(commentRepo, postRepo, userRepo, reactionRepo, engagementSvc)

	handlers := &api.HandlersGroup{
		PostHandler:    handler.NewPostHandler(postSvc),
		CommentHandler: handler.NewCommentHandler(commentSvc),
	}
	app.Router = api.SetupRouter(handlers, cfg.Logstash.Index)

	app.CronMgr = cron.NewCronManager(cfg.Engagement.ReconcileCron,
		job.NewPostMetricsJob(engagementSvc),
		job.NewCommentLikesJob(engagementSvc))

	return app, nil
}

func (app *ApplicationContainer) closeKafka() {
	if app.Producer != nil {
		_ = app.Producer.Close()
	}
	if app.KafkaManager != nil {
		_ = app.KafkaManager.Close()
	}
}
