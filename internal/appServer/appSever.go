package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akulinichev/reminderhub/config"
	repository "github.com/akulinichev/reminderhub/internal/database/postgres"
	"github.com/akulinichev/reminderhub/internal/hub"
	"github.com/akulinichev/reminderhub/internal/scheduler"
	"github.com/akulinichev/reminderhub/internal/service"
	"github.com/akulinichev/reminderhub/internal/transport"

	"github.com/akulinichev/reminderhub/pkg/postgres"
	"github.com/akulinichev/reminderhub/pkg/queue"
	"github.com/akulinichev/reminderhub/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12}, // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Missing credentials with Basic auth enabled is a startup error, not
	// something to discover on the first dashboard request.
	if cfg.Dashboard.Enabled && cfg.Dashboard.EnableBasicAuth &&
		(cfg.Dashboard.Username == "" || cfg.Dashboard.Password == "") {
		logrus.Fatal("Dashboard basic auth enabled but credentials are not configured")
	}

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories and services
	accountRepo := repository.NewAccountRepository(db)
	reminderService := service.NewReminderService(accountRepo, cfg.Reminder.WarningRatio)
	accountService := service.NewAccountService(accountRepo)

	// Initialize notification hub
	bus := hub.NewHub()

	// Initialize Redis-backed job queues
	redisClient := redis.NewRedisClient(&cfg.Redis)
	defer redisClient.Close()

	queueConfig := queue.DefaultRedisQueueConfig()
	if cfg.Scheduler.QueuePrefix != "" {
		queueConfig.Prefix = cfg.Scheduler.QueuePrefix
	}

	dlqHandler := queue.NewDefaultDLQHandler(redisClient, queueConfig.Prefix+":dlq")
	jobQueue, err := queue.NewRedisQueue(redisClient, queueConfig, nil, dlqHandler)
	if err != nil {
		logrus.Fatalf("Failed to initialize job queue: %v", err)
	}

	// Initialize scheduler and register jobs. Registration failures are
	// configuration errors: the application must not start with a broken
	// scheduler.
	loc := time.Local
	if cfg.Scheduler.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Scheduler.Timezone)
		if err != nil {
			logrus.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
		}
	}

	jobScheduler := scheduler.NewScheduler(jobQueue, loc)

	reminderJob := scheduler.NewReminderCheckJob(reminderService, bus, cfg.Reminder.GroupName, cfg.Reminder.BatchSize)
	if err := jobScheduler.Register(reminderJob, scheduler.WithCron(cfg.Scheduler.ReminderCron)); err != nil {
		logrus.Fatalf("Failed to register reminder job: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := jobScheduler.Start(ctx); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	logrus.Info("Reminder scheduler started")

	// Initialize handlers
	reminderHandler := transport.NewReminderHandler(reminderService)
	accountHandler := transport.NewAccountHandler(accountService)
	dashboardHandler := transport.NewDashboardHandler(jobScheduler, bus, dlqHandler)

	// Setup HTTP server
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		routes := transport.InitRoutes(cfg, reminderHandler, accountHandler, dashboardHandler, bus)
		if err := srv.Run(cfg, routes); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	jobScheduler.Stop()
}
