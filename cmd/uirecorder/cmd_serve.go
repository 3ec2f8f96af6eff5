package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"uirecorder/internal/api/handlers"
	"uirecorder/internal/api/routes"
	"uirecorder/internal/capture"
	"uirecorder/internal/config"
	"uirecorder/internal/recorder"
	"uirecorder/internal/services"
	"uirecorder/internal/session"
	"uirecorder/internal/stream"
	"uirecorder/internal/users"
	"uirecorder/pkg/auth"
	"uirecorder/pkg/chrome"
	"uirecorder/pkg/database"
	"uirecorder/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

var serveFlags struct {
	envFile  string
	inMemory bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the recording API server",
	Long: `Starts the HTTP API. Recording sessions open a Chrome window on the requested
page; recorded steps are stored in MySQL and streamed to websocket subscribers.

With --in-memory no database is used and everything is lost on exit.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.envFile, "env-file", ".env", "dotenv file applied before reading the environment")
	f.BoolVar(&serveFlags.inMemory, "in-memory", false, "keep users and sessions in memory instead of MySQL")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(serveFlags.envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	var (
		repo  session.Repository
		store users.Store
	)
	if serveFlags.inMemory {
		repo, store = session.NewMemoryRepository(), users.NewMemoryStore()
		log.Warn("using in-memory storage")
	} else {
		db, err := database.Open(cfg, log)
		if err != nil {
			return err
		}
		defer database.Close(db)
		repo, store = session.NewGormRepository(db), users.NewGormStore(db)
	}

	if chrome.FindExecutable(cfg.Chrome.Path) == "" {
		log.Warn("no Chrome executable found; starting recordings will fail")
	}
	manager := recorder.NewManager(recorder.Config{
		ChromePath:   cfg.Chrome.Path,
		Headless:     cfg.Chrome.HeadlessMode,
		PollInterval: cfg.Recorder.PollInterval,
		Capture: capture.Config{
			Debounce:    cfg.Recorder.Debounce,
			FlushOnStop: cfg.Recorder.FlushOnStop,
			Language:    cfg.Recorder.Language,
		},
	}, log.WithField("component", "recorder"))

	hub := stream.NewHub(log.WithField("component", "stream"))
	sessions := session.NewService(repo, manager,
		session.WithPublisher(hub),
		session.WithLogger(log.WithField("component", "session")),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sessions.Init(ctx); err != nil {
		return err
	}

	scheduler, err := services.NewScheduler(sessions, services.SchedulerConfig{
		RetentionDays: cfg.Retention.Days,
		RetentionSpec: cfg.Retention.Schedule,
		SweepSpec:     cfg.Retention.SweepSpec,
	}, log.WithField("component", "scheduler"))
	if err != nil {
		return err
	}

	gin.SetMode(cfg.Server.Mode)
	j := auth.NewJWT(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireTime)*time.Second)
	h := handlers.New(sessions, store, j, hub, log.WithField("component", "api"))
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      routes.SetupRoutes(h, j, log.WithField("component", "http")),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	scheduler.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		hub.Close()
		scheduler.Stop()
		sessions.Shutdown(shutdownCtx)
		manager.StopAll()
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server shutdown complete")
	return nil
}
