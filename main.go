package main

import (
	"context"
	"log"
	"time"

	"lms/cache"
	"lms/config"
	controllers "lms/controllers/course"
	"lms/database"
	appLogger "lms/logger"
	"lms/repository"
	courseRoutes "lms/routers/courseRoutes"
	"lms/services/certificate"
	"lms/services/events"
	"lms/services/grading"
	"lms/services/notification"
	"lms/services/progress"
	"lms/services/render"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	zl, err := appLogger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	database.ConnectDb()
	db := database.Database.Db

	enrollments := repository.NewEnrollmentRepository(db)
	lessonProgress := repository.NewLessonProgressRepository(db)
	courses := repository.NewCourseRepository(db)
	certificates := repository.NewCertificateRepository(db)
	users := repository.NewUserRepository(db)

	var mailer notification.Mailer
	if cfg.SendgridAPIKey != "" {
		mailer = utils.SendEmail
	}
	notifier := notification.NewDispatcher(users, mailer, zl.Named("notification"))

	var verifyCache cache.VerificationCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Warn("redis unreachable, verification lookups are uncached until it recovers", zap.Error(err))
		}
		cancel()
		verifyCache = cache.NewRedisVerificationCache(rdb, cfg.VerificationCacheTTL, zl.Named("cache"))
	}

	renderer := render.NewHTTPRenderer(render.Options{
		ServiceURL:    cfg.RenderServiceURL,
		VerifyBaseURL: cfg.CertificateBaseURL,
		AssetDir:      cfg.AssetDir,
		AssetBaseURL:  cfg.AssetBaseURL,
		Timeout:       cfg.RenderTimeout,
	}, zl.Named("render"))

	certificateService := certificate.NewService(
		certificates,
		enrollments,
		users,
		courses,
		grading.NewGradeCalculator(lessonProgress),
		grading.NewDurationEstimator(courses),
		renderer,
		verifyCache,
		certificate.Options{RenderMissingOnReissue: cfg.ReissueRenderMissingAssets},
		zl.Named("certificate"),
	)

	// Issuance subscribes before the notifier so the notification can link the certificate
	bus := events.NewBus(zl.Named("events"))
	bus.Subscribe(events.TypeCourseCompleted, "certificate-issuer", certificateService.HandleCourseCompleted)
	bus.Subscribe(events.TypeCourseCompleted, "completion-notifier",
		certificate.NewCompletionNotifier(certificates, courses, notifier, cfg.CertificateBaseURL).HandleCourseCompleted)

	tracker := progress.NewTracker(enrollments, lessonProgress, courses, bus, notifier, cfg.AssessmentPassScore, zl.Named("progress"))

	scheduler, err := utils.InitializeCertificateScheduler(cfg.ReissueCron, time.Hour, func(ctx context.Context) error {
		_, err := certificateService.ReissueCompleted(ctx)
		return err
	})
	if err != nil {
		log.Fatalf("Failed to start certificate scheduler: %v", err)
	}
	defer scheduler.Stop()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	handler := controllers.NewHandler(tracker, certificateService, zl.Named("http"))
	courseRoutes.SetupCourseRoutes(app, handler)
	courseRoutes.SetupAdminCourseRoutes(app, handler)

	// Rendered certificate files; registered after the API so /certificates/verify wins
	app.Static(cfg.AssetBaseURL, cfg.AssetDir)

	zl.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
	log.Fatal(app.Listen(":" + cfg.Port))
}
