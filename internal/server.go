package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/auth"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/billing"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/challenges"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/chat"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/config"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/db"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/exercises"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/gamification"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/middleware"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/metrics"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/telemetry/tracing"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/user"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/internal/workout"
	"github.com/ridham-007/fitbot-gamify-journey-sub000/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	openAIAPIKey        string
	stripeSecretKey     string
	stripeWebhookSecret string
	tracedHttpClient    *http.Client

	workoutManager *workout.Manager

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	OpenAIAPIKey            string
	StripeSecretKey         string
	StripeWebhookSecret     string
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("fitbot", "backend", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewAuthService(auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fitbot-backend", rdb)
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		versionInfo: params.VersionInfo,

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(auth.DefaultTTL, rdb),

		openAIAPIKey:        params.OpenAIAPIKey,
		stripeSecretKey:     params.StripeSecretKey,
		stripeWebhookSecret: params.StripeWebhookSecret,
		tracedHttpClient:    tracedHttpClient,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
	}).Methods("GET", "OPTIONS").Name("root")
	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET", "OPTIONS").Name("version")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)

	usersRepo := user.NewRepo(s.dbPool)
	userHandler := user.NewHandler(usersRepo, s.authService)
	accountsSubrouter := r.PathPrefix("/api").Subrouter()
	accountsSubrouter.HandleFunc("/register", userHandler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	accountsSubrouter.HandleFunc("/login", userHandler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	accountsSubrouter.HandleFunc("/logout", userHandler.HandleLogout).Methods("GET", "POST", "OPTIONS").Name("logout")
	accountsSubrouter.HandleFunc("/me", userHandler.HandleMe).Methods("GET", "OPTIONS").Name("me")
	accountsSubrouter.HandleFunc("/me", userHandler.HandleUpdateProfile).Methods("PUT", "OPTIONS").Name("update-profile")
	// rate limit the login endpoints to prevent abuse
	accountsSubrouter.Use(middleware.RateLimit(
		reqRateLimiter, "login",
		s.config.LoginRateLimitAllowedPerMin,
		s.metricsManager,
	))

	ledger := gamification.NewLedger(gamification.NewRepo(s.dbPool), s.metricsManager)
	gamificationHandler := gamification.NewHandler(ledger)
	r.HandleFunc("/gamification/stats", gamificationHandler.HandleStats).Methods("GET", "OPTIONS").Name("stats")
	r.HandleFunc("/gamification/achievements", gamificationHandler.HandleAchievements).Methods("GET", "OPTIONS").Name("achievements")

	s.workoutManager = workout.NewManager(workout.NewRepo(s.dbPool), ledger, s.metricsManager)
	workoutHandler := workout.NewHandler(s.workoutManager)
	r.HandleFunc("/workouts/plans", workoutHandler.HandlePlans).Methods("GET", "OPTIONS").Name("plans")
	r.HandleFunc("/workouts/start", workoutHandler.HandleStart).Methods("POST", "OPTIONS").Name("start-workout")
	r.HandleFunc("/workouts/pause", workoutHandler.HandlePause).Methods("POST", "OPTIONS").Name("pause-workout")
	r.HandleFunc("/workouts/resume", workoutHandler.HandleResume).Methods("POST", "OPTIONS").Name("resume-workout")
	r.HandleFunc("/workouts/end", workoutHandler.HandleEnd).Methods("POST", "OPTIONS").Name("end-workout")
	r.HandleFunc("/workouts/status", workoutHandler.HandleStatus).Methods("GET", "OPTIONS").Name("workout-status")
	r.HandleFunc("/workouts/resumable", workoutHandler.HandleResumable).Methods("GET", "OPTIONS").Name("resumable-workout")
	r.HandleFunc("/workouts/restore", workoutHandler.HandleRestore).Methods("POST", "OPTIONS").Name("restore-workout")
	r.HandleFunc("/workouts/history/page/{page}/size/{size}", workoutHandler.HandleHistory).Methods("GET", "OPTIONS").Name("workout-history")

	challengesHandler := challenges.NewHandler(
		challenges.NewService(challenges.NewRepo(s.dbPool), ledger),
	)
	r.HandleFunc("/challenges", challengesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-challenges")
	r.HandleFunc("/challenges/mine", challengesHandler.HandleMine).Methods("GET", "OPTIONS").Name("my-challenges")
	r.HandleFunc("/challenges/{id}/join", challengesHandler.HandleJoin).Methods("POST", "OPTIONS").Name("join-challenge")
	r.HandleFunc("/challenges/{id}/leave", challengesHandler.HandleLeave).Methods("POST", "OPTIONS").Name("leave-challenge")
	r.HandleFunc("/challenges/{id}/progress", challengesHandler.HandleProgress).Methods("POST", "OPTIONS").Name("challenge-progress")

	exercisesHandler := exercises.NewHandler(
		exercises.NewService(exercises.NewRepo(s.dbPool)),
	)
	r.HandleFunc("/exercises/types", exercisesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-exercise-types")
	r.HandleFunc("/exercises/types/{id}", exercisesHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise-type")
	r.HandleFunc("/exercises/types", exercisesHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-exercise-type")
	r.HandleFunc("/exercises/types/{id}", exercisesHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-exercise-type")
	r.HandleFunc("/exercises/types/{id}", exercisesHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise-type")

	chatHandler := chat.NewHandler(chat.NewService(
		chat.NewCompletionAPI(
			s.config.ChatCompletionBaseURL,
			s.config.ChatCompletionModel,
			s.openAIAPIKey,
			s.tracedHttpClient,
		),
		chat.NewRepo(s.dbPool),
		s.metricsManager,
	))
	chatSubrouter := r.PathPrefix("/chat").Subrouter()
	chatSubrouter.HandleFunc("/relay", chatHandler.HandleRelay).Methods("POST", "OPTIONS").Name("chat-relay")
	chatSubrouter.HandleFunc("/sessions/{sessionId}", chatHandler.HandleSessionMessages).Methods("GET", "OPTIONS").Name("chat-session")
	// each relay hits a paid completion API, keep a lid on it
	chatSubrouter.Use(middleware.RateLimit(
		reqRateLimiter, "chat",
		s.config.ChatRateLimitAllowedPerMin,
		s.metricsManager,
	))

	billingHandler := billing.NewHandler(billing.NewHandlerParams{
		Stripe: billing.NewStripeAPI(
			s.config.StripeBaseURL,
			s.stripeSecretKey,
			s.tracedHttpClient,
		),
		Repo:  billing.NewRepo(s.dbPool),
		Users: usersRepo,
		PriceIDs: billing.PriceIDs{
			Basic: s.config.PriceIDBasic,
			Pro:   s.config.PriceIDPro,
			Elite: s.config.PriceIDElite,
		},
		SuccessURL:     s.config.CheckoutSuccessURL,
		CancelURL:      s.config.CheckoutCancelURL,
		WebhookSecret:  s.stripeWebhookSecret,
		MetricsManager: s.metricsManager,
	})
	r.HandleFunc("/billing/create-checkout", billingHandler.HandleCreateCheckout).Methods("POST", "OPTIONS").Name("create-checkout")
	r.HandleFunc("/billing/check-subscription", billingHandler.HandleCheckSubscription).Methods("POST", "OPTIONS").Name("check-subscription")
	r.HandleFunc("/billing/webhook", billingHandler.HandleWebhook).Methods("POST").Name("billing-webhook")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.CorsAllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.workoutManager != nil {
		log.Debugln("stopping active workout trackers ...")
		s.workoutManager.Shutdown()
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
