package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/amitacademy/testseries/internal/activity"
	api "github.com/amitacademy/testseries/internal/api/http"
	"github.com/amitacademy/testseries/internal/audit"
	"github.com/amitacademy/testseries/internal/catalog"
	"github.com/amitacademy/testseries/internal/config"
	"github.com/amitacademy/testseries/internal/db"
	"github.com/amitacademy/testseries/internal/logging"
	"github.com/amitacademy/testseries/internal/metrics"
	"github.com/amitacademy/testseries/internal/session"
	"github.com/amitacademy/testseries/internal/storage"
	"github.com/amitacademy/testseries/internal/users"
)

// dbPinger adapts *sql.DB to the keep-alive tracker.
type dbPinger struct{ db *sql.DB }

func (p dbPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func main() {
	cfg := config.FromEnv()
	log := logging.New(cfg.LogLevel, cfg.LogFile)
	defer func() { _ = log.Sync() }()

	startedAt := time.Now()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}

	cat := catalog.NewSQLStore(dbh, log)
	sessions := session.NewSQLStore(dbh, log)
	accounts := users.NewSQLStore(dbh, log)
	events := audit.NewEventRepo(dbh)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatal("blob store", zap.Error(err))
	}

	tracker := activity.NewTracker(dbPinger{dbh}, cfg.KeepAliveInterval, cfg.ActivityTimeout, log)
	defer tracker.Close()

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Session-Id"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(ar chi.Router) {
		ar.Use(api.ActivityRefresh(tracker))

		// database wake-up and session heartbeat
		ar.Get("/handshake", api.HandshakeHandler(tracker))
		ar.Post("/heartbeat", api.HeartbeatHandler(tracker))
		ar.Post("/session/close", api.CloseSessionHandler(tracker))
		ar.Get("/status", api.StatusHandler(tracker, startedAt))

		// test series
		ar.Get("/tests", api.ListTestsHandler(cat))
		ar.Post("/tests", api.CreateTestHandler(cat))
		ar.Get("/tests/{testID}", api.GetTestHandler(cat))
		ar.Put("/tests/{testID}", api.UpdateTestHandler(cat))
		ar.Delete("/tests/{testID}", api.DeleteTestHandler(cat))

		// course catalog
		ar.Get("/courses", api.ListCoursesHandler(cat))
		ar.Post("/courses", api.CreateCourseHandler(cat))
		ar.Get("/courses/{courseID}", api.GetCourseHandler(cat))
		ar.Put("/courses/{courseID}", api.UpdateCourseHandler(cat))
		ar.Delete("/courses/{courseID}", api.DeleteCourseHandler(cat))

		// accounts
		ar.Post("/login", api.LoginHandler(accounts))
		ar.Post("/signup", api.SignupHandler(accounts))
		ar.Get("/users", api.ListUsersHandler(accounts))
		ar.Post("/users", api.CreateUserHandler(accounts))
		ar.Get("/users/{userID}", api.GetUserHandler(accounts))
		ar.Put("/users/{userID}", api.UpdateUserHandler(accounts))
		ar.Delete("/users/{userID}", api.DeleteUserHandler(accounts))
		ar.Get("/user/courses", api.UserCoursesHandler(accounts, cat))
		ar.Post("/user/courses", api.EnrollHandler(accounts))

		// test sessions
		ar.Get("/user/testsession", api.GetTestSessionHandler(sessions))
		ar.Post("/user/testsession", api.SaveTestSessionHandler(sessions, events, log))
		ar.Post("/user/grade-descriptive", api.GradeDescriptiveHandler(sessions, events, log))
	})

	r.Route("/assets", func(ar chi.Router) {
		api.MountAssets(ar, bs)
	})

	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	// static frontend bundle
	if cfg.PublicDir != "" {
		fileServer := http.FileServer(http.Dir(cfg.PublicDir))
		r.Get("/*", fileServer.ServeHTTP)
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Info("listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("db", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server exited", zap.Error(err))
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", zap.Error(err))
	}
}
