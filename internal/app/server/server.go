package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"attendsuite/internal/domain/attendance"
	"attendsuite/internal/domain/audit"
	"attendsuite/internal/domain/dashboard"
	"attendsuite/internal/domain/department"
	"attendsuite/internal/domain/employee"
	"attendsuite/internal/domain/holiday"
	"attendsuite/internal/domain/leave"
	"attendsuite/internal/domain/notifications"
	"attendsuite/internal/domain/settings"
	"attendsuite/internal/domain/task"
	"attendsuite/internal/domain/user"
	"attendsuite/internal/platform/config"
	"attendsuite/internal/platform/crypto"
	"attendsuite/internal/platform/db"
	"attendsuite/internal/platform/email"
	"attendsuite/internal/platform/metrics"
	"attendsuite/internal/transport/http/api"
	attendancehandler "attendsuite/internal/transport/http/handlers/attendance"
	audithandler "attendsuite/internal/transport/http/handlers/audit"
	authhandler "attendsuite/internal/transport/http/handlers/auth"
	dashboardhandler "attendsuite/internal/transport/http/handlers/dashboard"
	departmentshandler "attendsuite/internal/transport/http/handlers/departments"
	employeeshandler "attendsuite/internal/transport/http/handlers/employees"
	holidayshandler "attendsuite/internal/transport/http/handlers/holidays"
	leaveshandler "attendsuite/internal/transport/http/handlers/leaves"
	notificationshandler "attendsuite/internal/transport/http/handlers/notifications"
	settingshandler "attendsuite/internal/transport/http/handlers/settings"
	taskshandler "attendsuite/internal/transport/http/handlers/tasks"
	"attendsuite/internal/transport/http/middleware"
)

const issuer = "AttendSuite"

// Run loads configuration, connects the database, wires every service
// behind the HTTP router and blocks serving requests.
func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	setupLogger(cfg)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	cipher, err := crypto.New(cfg.FaceDataKey)
	if err != nil {
		log.Fatalf("face data key invalid: %v", err)
	}

	collector := metrics.New()

	userStore := user.NewStore(pool)
	auditSvc := audit.New(pool)
	notifier := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom)
	settingsStore := settings.NewStore(pool)
	holidayStore := holiday.NewStore(pool)
	departmentStore := department.NewStore(pool)
	employeeStore := employee.NewStore(pool)
	employeeSvc := employee.NewService(employeeStore, cipher)
	attendanceSvc := attendance.NewService(attendance.NewStore(pool), employeeStore, holidayStore, cfg.LateThresholdMinutes)
	leaveSvc := leave.NewService(leave.NewStore(pool), employeeStore, userStore, notifier)
	taskSvc := task.NewService(task.NewStore(pool), employeeStore, notifier)
	dashboardStore := dashboard.NewStore(pool)

	isProd := cfg.Environment == "production"
	tokenTTL := time.Duration(cfg.TokenTTLHours) * time.Hour

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(isProd))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthRateLimit(cfg.RateLimitPerMinute, time.Minute))
			authhandler.NewHandler(userStore, auditSvc, cfg.JWTSecret, tokenTTL, issuer).RegisterRoutes(r)
		})

		attendancehandler.NewHandler(attendanceSvc, auditSvc).RegisterRoutes(r)
		employeeshandler.NewHandler(employeeSvc, auditSvc).RegisterRoutes(r)
		leaveshandler.NewHandler(leaveSvc, auditSvc).RegisterRoutes(r)
		taskshandler.NewHandler(taskSvc, auditSvc).RegisterRoutes(r)
		departmentshandler.NewHandler(departmentStore, auditSvc).RegisterRoutes(r)
		holidayshandler.NewHandler(holidayStore, auditSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifier).RegisterRoutes(r)
		settingshandler.NewHandler(settingsStore, auditSvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
		dashboardhandler.NewHandler(dashboardStore).RegisterRoutes(r)

		if cfg.MetricsEnabled {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.RequireRole(user.RoleAdmin))
				r.Get("/admin/metrics", func(w http.ResponseWriter, req *http.Request) {
					api.Success(w, collector.Snapshot(), middleware.GetRequestID(req.Context()))
				})
			})
		}
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func setupLogger(cfg config.Config) {
	level := slog.LevelDebug
	if cfg.Environment == "production" {
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// spaHandler serves the built frontend, falling back to index.html so
// client-side routes resolve on refresh.
type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
