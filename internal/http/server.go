package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sindhu2707/expense-tracker/internal/aggregate"
	"github.com/sindhu2707/expense-tracker/internal/auth"
	"github.com/sindhu2707/expense-tracker/internal/cache"
	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/log"
	"github.com/sindhu2707/expense-tracker/internal/middleware/ratelimit"
	"github.com/sindhu2707/expense-tracker/internal/middleware/security"
	"github.com/sindhu2707/expense-tracker/internal/middleware/trace"
	"github.com/sindhu2707/expense-tracker/internal/services"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the handlers call.
type Deps struct {
	Accounts  *services.AccountService
	Expenses  *services.ExpenseService
	Budgets   *services.BudgetService
	Goals     *services.GoalService
	Dashboard *services.DashboardService
	Tokens    *auth.TokenIssuer
	Storage   Pinger
	Logger    *log.Logger
	// Caches is stopped on shutdown when set.
	Caches *cache.Manager
}

// Options tune the middleware chain.
type Options struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	deps     Deps
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	location *time.Location
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer wires the router and middleware chain. Call Shutdown to stop
// the background goroutines it starts.
func NewServer(addr string, deps Deps, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = log.FromContext(context.Background()).WithComponent(log.ComponentHTTP)
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			deps.Logger.Warn("Ignoring invalid trusted proxy", "cidr", cidr, log.FieldError, err)
		}
	}

	s := &Server{
		deps:     deps,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),
		location: time.Local,
		now:      time.Now,
	}
	s.Server = http.Server{Addr: addr, Handler: s.routes(opts)}
	return s
}

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", trace.HeaderRequestID},
		ExposedHeaders: []string{trace.HeaderRequestID, "Content-Disposition", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(log.Middleware(s.deps.Logger))
	r.Use(s.tracer.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware)
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, handleRateLimited))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed").Write(w)
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handleHealth)
		api.Post("/auth/signup", s.handleSignup)
		api.Post("/auth/login", s.handleLogin)

		api.Group(func(p chi.Router) {
			p.Use(auth.Middleware(s.deps.Tokens))

			p.Get("/auth/profile", s.handleProfile)
			p.Put("/auth/profile", s.handleUpdateProfile)
			p.Put("/auth/password", s.handleChangePassword)
			p.Delete("/auth/account", s.handleDeleteAccount)

			p.Get("/expenses", s.handleListExpenses)
			p.Post("/expenses", s.handleCreateExpense)
			p.Delete("/expenses", s.handleBulkDeleteExpenses)
			p.Get("/expenses/export", s.handleExportExpenses)
			p.Get("/expenses/{id}", s.handleGetExpense)
			p.Put("/expenses/{id}", s.handleUpdateExpense)
			p.Delete("/expenses/{id}", s.handleDeleteExpense)

			p.Get("/budgets", s.handleListBudgets)
			p.Post("/budgets", s.handleUpsertBudget)
			p.Get("/budgets/effective", s.handleEffectiveBudgets)
			p.Delete("/budgets/{id}", s.handleDeleteBudget)

			p.Get("/goals", s.handleListGoals)
			p.Post("/goals", s.handleCreateGoal)
			p.Put("/goals/{id}", s.handleUpdateGoal)
			p.Delete("/goals/{id}", s.handleDeleteGoal)

			p.Get("/dashboard", s.handleDashboard)
			p.Post("/receipts/parse", s.handleParseReceipt)
			p.Get("/currencies", handleCurrencies)
		})
	})
	return r
}

// today is the calendar date the filters default to.
func (s *Server) today() core.Date {
	return aggregate.Today(s.now(), s.location)
}

// Shutdown stops the limiter and cache cleanup, then the HTTP server. It is
// safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		if s.deps.Caches != nil {
			s.deps.Caches.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics snapshots the middleware counters.
type Metrics struct {
	Trace     trace.Metrics
	RateLimit ratelimit.Metrics
	Security  security.DetectionMetrics
}

func (s *Server) Metrics() Metrics {
	return Metrics{
		Trace:     s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
	}
}

func handleRateLimited(w http.ResponseWriter, _ *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again later.").Write(w)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Message("Backend is alive!").Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.deps.Storage != nil {
		if err := s.deps.Storage.Ping(ctx); err != nil {
			log.FromContext(ctx).WithComponent(log.ComponentStorage).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "Storage unavailable").Write(w)
			return
		}
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}
