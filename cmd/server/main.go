package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aryasetiadi/cv-evaluator/internal/config"
	"github.com/aryasetiadi/cv-evaluator/internal/contextstore"
	"github.com/aryasetiadi/cv-evaluator/internal/domain/fiber/handler"
	"github.com/aryasetiadi/cv-evaluator/internal/logger"
	"github.com/aryasetiadi/cv-evaluator/internal/middleware"
	"github.com/aryasetiadi/cv-evaluator/internal/model"
	"github.com/aryasetiadi/cv-evaluator/internal/pipeline"
	"github.com/aryasetiadi/cv-evaluator/internal/queue"
	"github.com/aryasetiadi/cv-evaluator/internal/repository"
	"github.com/aryasetiadi/cv-evaluator/internal/service"
	"github.com/aryasetiadi/cv-evaluator/internal/usecase"
	"github.com/aryasetiadi/cv-evaluator/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	pipelineConfig := config.LoadPipelineConfig()

	zlog, err := logger.New(appConfig.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	if err := os.MkdirAll(appConfig.UploadDir, 0o755); err != nil {
		zlog.Fatal("could not create upload directory", zap.Error(err))
	}

	db := connectDB(zlog)

	taskRepo := repository.NewEvaluationRepository(db)

	gemini, err := service.NewGeminiService(ctx)
	if err != nil {
		zlog.Fatal("could not initialize gemini service", zap.Error(err))
	}

	var generator service.Generator = gemini
	if os.Getenv("AI_PROVIDER") == "openrouter" {
		generator = service.NewOpenRouterService()
		zlog.Info("using openrouter generation backend")
	}
	gateway := service.NewGateway(generator, pipelineConfig, zlog)

	retriever, err := buildRetriever(ctx, db, gemini, zlog)
	if err != nil {
		zlog.Fatal("could not initialize context store", zap.Error(err))
	}

	evalPipeline := pipeline.New(gateway, retriever, zlog)
	uc := usecase.NewEvaluationUsecase(taskRepo, evalPipeline, util.ExtractText, pipelineConfig, zlog)

	taskQueue := queue.NewTaskQueue(uc, 4, 100, zlog)
	defer taskQueue.Close()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(healthcheck.New())
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	h := handler.NewEvaluateHandler(uc, taskQueue, appConfig.UploadDir)
	h.RegisterRoutes(app)

	zlog.Info("server running", zap.String("port", appConfig.Port))
	if err := app.Listen(appConfig.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

// buildRetriever selects the retrieval backend: the in-memory keyword store
// by default, the pgvector-backed semantic store when RETRIEVER=semantic.
// Both are seeded with the fixed default corpus.
func buildRetriever(ctx context.Context, db *gorm.DB, embedder contextstore.Embedder, zlog *zap.Logger) (contextstore.Retriever, error) {
	if os.Getenv("RETRIEVER") == "semantic" {
		docRepo := repository.NewContextDocumentRepository(db)
		semantic := contextstore.NewSemanticStore(docRepo, embedder)
		if err := semantic.Index(ctx, contextstore.DefaultCorpus()); err != nil {
			return nil, err
		}
		zlog.Info("semantic context store initialized")
		return semantic, nil
	}

	store := contextstore.NewStore()
	contextstore.Seed(store)
	zlog.Info("in-memory context store initialized", zap.Int("documents", store.Len()))
	return store, nil
}

func connectDB(zlog *zap.Logger) *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		zlog.Fatal("could not connect to database", zap.Error(err))
	}
	pgDB, err := db.DB()
	if err != nil {
		zlog.Fatal("could not get database instance", zap.Error(err))
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&model.EvaluationTask{}, &model.ContextDocument{}); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}
	return db
}
