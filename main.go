// Package main provides the main entry point for the LMS job scheduling service
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/app/handlers"
	"github.com/RehanRiaz5383/lms-v2-sub002/app/middleware"
	"github.com/RehanRiaz5383/lms-v2-sub002/app/router"
	"github.com/RehanRiaz5383/lms-v2-sub002/app/scheduler"
	"github.com/RehanRiaz5383/lms-v2-sub002/app/services"
	businessflow "github.com/RehanRiaz5383/lms-v2-sub002/business_flow"
	"github.com/RehanRiaz5383/lms-v2-sub002/config"
	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/repository"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting LMS job scheduling service...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Setup graceful shutdown
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if client == nil {
		return cancel
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeEmailProvider selects the outgoing mail transport from config
func initializeEmailProvider(cfg config.EmailConfig) services.EmailProvider {
	if cfg.Username == "" || cfg.Password == "" {
		return services.NewMockEmailProvider()
	}
	return services.NewSMTPEmailProvider(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.FromEmail)
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
	stopFuncs = append(stopFuncs, cancel)

	// Initialize repositories
	jobRepo := repository.NewScheduledJobRepository(db)
	logRepo := repository.NewJobLogRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	reminderRepo := repository.NewTaskReminderLogRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	queuedEmailRepo := repository.NewQueuedEmailRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Seed the built-in job definitions if they are missing
	if err := ensureDefaultJobs(jobRepo); err != nil {
		return nil, err
	}

	// Initialize services
	notifier := services.NewNotificationSink(notificationRepo)
	emailQueue := services.NewEmailQueue(queuedEmailRepo, cfg.Email.CCAddresses)
	emailWorker := services.NewEmailWorker(queuedEmailRepo, initializeEmailProvider(cfg.Email), log.Default(), time.Minute)
	stopFuncs = append(stopFuncs, emailWorker.Start(context.Background()))

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Register job handlers
	registry := scheduler.NewRegistry()
	if err := registry.Register(models.JobClassTaskReminder,
		scheduler.NewTaskReminderJob(taskRepo, studentRepo, reminderRepo, notifier, emailQueue, db, cfg.Jobs.ReminderLeadHours)); err != nil {
		return nil, err
	}
	if err := registry.Register(models.JobClassVoucherGeneration,
		scheduler.NewVoucherGenerationJob(studentRepo, voucherRepo, notifier, db, cfg.Jobs.VoucherLeadDays)); err != nil {
		return nil, err
	}
	if err := registry.Register(models.JobClassVoucherOverdue,
		scheduler.NewVoucherOverdueJob(voucherRepo, notifier)); err != nil {
		return nil, err
	}
	if err := registry.Register(models.JobClassVoucherAutoBlock,
		scheduler.NewVoucherAutoBlockJob(voucherRepo, studentRepo, notifier, db, cfg.Jobs.AutoBlockAfterDays, cfg.Jobs.BlockReason)); err != nil {
		return nil, err
	}

	// Start the dispatcher loop
	dispatcher := scheduler.NewDispatcher(jobRepo, logRepo, registry, rc, cfg.Jobs.TriggerInterval, cfg.Jobs.DispatchLockTTL)
	stopFuncs = append(stopFuncs, dispatcher.Start(context.Background()))

	// Initialize flows
	jobFlow := businessflow.NewScheduledJobFlow(jobRepo, logRepo, db)
	jobLogFlow := businessflow.NewJobLogFlow(logRepo, jobRepo, db)
	adminAuthFlow := businessflow.NewAdminAuthFlow(adminRepo, tokenService)

	// Initialize handlers
	adminHandler := handlers.NewAdminHandler(adminAuthFlow)
	jobHandler := handlers.NewScheduledJobHandler(jobFlow, dispatcher)
	jobLogHandler := handlers.NewJobLogHandler(jobLogFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		adminHandler,
		jobHandler,
		jobLogHandler,
		authMiddleware,
	)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}

// defaultJobSeed describes one built-in scheduled job created on first boot
type defaultJobSeed struct {
	name         string
	description  string
	jobClass     models.JobClass
	scheduleType models.ScheduleType
	config       models.ScheduleConfig
}

var defaultJobSeeds = []defaultJobSeed{
	{
		name:         "Task Deadline Reminder",
		description:  "Reminds students about tasks expiring within the lead window",
		jobClass:     models.JobClassTaskReminder,
		scheduleType: models.ScheduleTypeHourly,
	},
	{
		name:         "Monthly Voucher Generation",
		description:  "Issues monthly fee vouchers ahead of each student's promise day",
		jobClass:     models.JobClassVoucherGeneration,
		scheduleType: models.ScheduleTypeDaily,
		config:       models.ScheduleConfig{TimeOfDay: "06:00"},
	},
	{
		name:         "Voucher Overdue Notification",
		description:  "Notifies students whose vouchers passed their due date unpaid",
		jobClass:     models.JobClassVoucherOverdue,
		scheduleType: models.ScheduleTypeDaily,
		config:       models.ScheduleConfig{TimeOfDay: "08:00"},
	},
	{
		name:         "Voucher Auto Block",
		description:  "Blocks students whose vouchers stayed unpaid past the grace period",
		jobClass:     models.JobClassVoucherAutoBlock,
		scheduleType: models.ScheduleTypeDaily,
		config:       models.ScheduleConfig{TimeOfDay: "02:00"},
	},
}

// ensureDefaultJobs creates the built-in job definitions when absent so a
// fresh deployment dispatches without manual setup. Existing rows are never
// touched; operators own them once created.
func ensureDefaultJobs(jobRepo repository.ScheduledJobRepository) error {
	now := utils.UTCNow()
	for _, seed := range defaultJobSeeds {
		existing, err := jobRepo.ByName(context.Background(), seed.name)
		if err != nil {
			return fmt.Errorf("lookup default job %q: %w", seed.name, err)
		}
		if existing != nil {
			continue
		}

		next, err := scheduler.NextRunAt(seed.scheduleType, seed.config, now)
		if err != nil {
			return fmt.Errorf("compute first run for %q: %w", seed.name, err)
		}

		cfgJSON, err := json.Marshal(seed.config)
		if err != nil {
			return err
		}

		job := models.ScheduledJob{
			Name:           seed.name,
			Description:    utils.ToPtr(seed.description),
			JobClass:       seed.jobClass,
			ScheduleType:   seed.scheduleType,
			ScheduleConfig: cfgJSON,
			Enabled:        utils.ToPtr(true),
			NextRunAt:      &next,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := jobRepo.Save(context.Background(), &job); err != nil {
			return fmt.Errorf("seed default job %q: %w", seed.name, err)
		}
		log.Printf("Seeded default scheduled job %q (%s)", seed.name, seed.jobClass)
	}
	return nil
}
