package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/vishalcoc44/Ai-Battlefield/internal/api/handlers"
	mw "github.com/vishalcoc44/Ai-Battlefield/internal/api/middleware"
	"github.com/vishalcoc44/Ai-Battlefield/internal/buildconfig"
	"github.com/vishalcoc44/Ai-Battlefield/internal/config"
	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
	"github.com/vishalcoc44/Ai-Battlefield/internal/embedding"
	"github.com/vishalcoc44/Ai-Battlefield/internal/llm"
	"github.com/vishalcoc44/Ai-Battlefield/internal/service"
	"github.com/vishalcoc44/Ai-Battlefield/internal/store"
)

const rateLimitCleanupInterval = 10 * time.Minute

// App holds the router and background services for lifecycle management.
type App struct {
	Router     *chi.Mux
	Reconciler *service.ReconcilerService
	Listener   *store.MessageListener

	limiter   *mw.RateLimiter
	metrics   *mw.MetricsCollector
	stopCh    chan struct{}
	startTime time.Time
}

// Services is the set of services the HTTP layer exposes.
type Services struct {
	Profiles     *service.ProfileService
	Summary      *service.SummaryService
	Beliefs      *service.BeliefService
	Predictions  *service.PredictionService
	DeEscalation *service.DeEscalationService
	Biases       *service.BiasService
	Debates      *service.DebateService
	Rings        *service.GroupDebateService
	Communities  *service.CommunityService
	Reconciler   *service.ReconcilerService
}

// NewServices wires stores and external clients into the services.
func NewServices(db store.DB, sub domain.MessageSubscriber, gen domain.TextGenerator, emb domain.EmbeddingClient, logger *zap.Logger) *Services {
	tx := store.NewTransactor(db)
	userStore := store.NewUserStore(db)
	profileStore := store.NewProfileStore(db)

	profiles := service.NewProfileService(userStore, profileStore, store.NewSkillStore(db), store.NewAchievementStore(db), tx, logger)
	beliefs := service.NewBeliefService(store.NewBeliefStore(db), profileStore, tx, emb, logger)
	predictions := service.NewPredictionService(store.NewPredictionStore(db), profileStore, tx, logger)
	deescalation := service.NewDeEscalationService(store.NewDeEscalationStore(db), profileStore, tx, gen, logger)
	biases := service.NewBiasService(store.NewBiasStore(db))
	rings := service.NewGroupDebateService(store.NewGroupDebateStore(db), userStore, tx, sub, logger)

	reconciler := service.NewReconcilerService(profileStore, predictions, deescalation, beliefs, logger)
	reconciler.SetInterval(config.ReconcileInterval())
	reconciler.SetConcurrency(config.ReconcileConcurrency())

	return &Services{
		Profiles:     profiles,
		Summary:      service.NewSummaryService(profiles, beliefs, predictions, biases),
		Beliefs:      beliefs,
		Predictions:  predictions,
		DeEscalation: deescalation,
		Biases:       biases,
		Debates:      service.NewDebateService(store.NewDebateStore(db), profileStore, tx, gen, logger),
		Rings:        rings,
		Communities:  service.NewCommunityService(store.NewCommunityStore(db), predictions, rings, tx, logger),
		Reconciler:   reconciler,
	}
}

// NewClients builds the text-generation and embedding clients from config.
// A generator that cannot be configured is replaced by one that always
// fails, so every generation path serves its fallback instead.
func NewClients(logger *zap.Logger) (domain.TextGenerator, domain.EmbeddingClient) {
	provider := config.LLMProvider()
	gen, err := llm.NewGenerator(provider, config.LLMModel(), config.LLMAPIKey())
	if err != nil {
		logger.Warn("LLM client initialization failed, generation will use fallbacks",
			zap.String("provider", provider), zap.Error(err))
		gen = llm.NewUnavailableGenerator(err)
	} else {
		logger.Info("LLM client initialized", zap.String("provider", provider))
	}
	gen = llm.WithTimeout(gen, config.LLMTimeout())

	embProvider := config.EmbeddingProvider()
	emb, err := embedding.NewClient(embProvider, config.EmbeddingAPIKey())
	switch {
	case err != nil:
		logger.Warn("Embedding client initialization failed, topics will match exactly",
			zap.String("provider", embProvider), zap.Error(err))
		emb = nil
	case emb != nil:
		logger.Info("Embedding client initialized", zap.String("provider", embProvider))
	}
	return gen, emb
}

func NewApp(pool *pgxpool.Pool, logger *zap.Logger) *App {
	listener := store.NewMessageListener(pool, logger)
	gen, emb := NewClients(logger)
	svcs := NewServices(pool, listener, gen, emb, logger)

	app := newApp(svcs, pool.Ping, logger)
	app.Listener = listener
	return app
}

func newApp(svcs *Services, ping func(context.Context) error, logger *zap.Logger) *App {
	app := &App{
		Reconciler: svcs.Reconciler,
		limiter:    mw.NewRateLimiter(config.RateLimitRPS(), config.RateLimitBurst()),
		metrics:    mw.NewMetricsCollector(),
		stopCh:     make(chan struct{}),
		startTime:  time.Now(),
	}
	app.Router = app.routes(svcs, ping, logger)
	return app
}

func (app *App) routes(svcs *Services, ping func(context.Context) error, logger *zap.Logger) *chi.Mux {
	profileHandler := handlers.NewProfileHandler(svcs.Profiles, svcs.Summary)
	beliefHandler := handlers.NewBeliefHandler(svcs.Beliefs)
	predictionHandler := handlers.NewPredictionHandler(svcs.Predictions)
	deescalationHandler := handlers.NewDeEscalationHandler(svcs.DeEscalation)
	biasHandler := handlers.NewBiasHandler(svcs.Biases)
	debateHandler := handlers.NewDebateHandler(svcs.Debates)
	ringHandler := handlers.NewRingHandler(svcs.Rings)
	communityHandler := handlers.NewCommunityHandler(svcs.Communities)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: config.CORSAllowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders: []string{mw.RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(mw.RateLimit(app.limiter))

	r.Get("/health", healthHandler(ping))
	r.Get("/metrics", app.metricsHandler())
	r.Get("/version", versionHandler)

	r.Route("/v1", func(r chi.Router) {
		// Registration is the bootstrap endpoint and needs no key.
		r.Post("/users", profileHandler.Register)
		r.Get("/personas", debateHandler.Personas)

		r.Group(func(r chi.Router) {
			r.Use(mw.APIKeyAuth(svcs.Profiles))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.Get)
				r.Get("/summary", profileHandler.Summary)
				r.Post("/xp", profileHandler.AwardXP)
				r.Get("/skills", profileHandler.Skills)
				r.Put("/skills/{name}", profileHandler.UpdateSkill)
				r.Get("/achievements", profileHandler.UserAchievements)
				r.Post("/achievements/sync", profileHandler.SyncAchievements)
				r.Post("/achievements/{code}", profileHandler.UnlockAchievement)
			})
			r.Get("/achievements", profileHandler.Achievements)

			r.Route("/beliefs", func(r chi.Router) {
				r.Get("/", beliefHandler.List)
				r.Post("/", beliefHandler.Create)
				r.Get("/stats", beliefHandler.Stats)
				r.Get("/history", beliefHandler.History)
				r.Post("/ensure", beliefHandler.Ensure)
				r.Post("/{id}/confidence", beliefHandler.UpdateConfidence)
			})

			r.Route("/predictions", func(r chi.Router) {
				r.Get("/", predictionHandler.List)
				r.Post("/", predictionHandler.Create)
				r.Get("/open", predictionHandler.Open)
				r.Get("/stats", predictionHandler.Stats)
				r.Put("/{id}/probability", predictionHandler.UpdateProbability)
				r.Post("/{id}/resolve", predictionHandler.Resolve)
			})

			r.Route("/deescalation/sessions", func(r chi.Router) {
				r.Post("/", deescalationHandler.Start)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", deescalationHandler.Get)
					r.Get("/turns", deescalationHandler.Turns)
					r.Post("/turns", deescalationHandler.RecordTurn)
					r.Post("/troll", deescalationHandler.Troll)
					r.Post("/complete", deescalationHandler.Complete)
				})
			})

			r.Route("/biases", func(r chi.Router) {
				r.Get("/", biasHandler.List)
				r.Post("/", biasHandler.Record)
				r.Get("/stats", biasHandler.Stats)
			})

			r.Route("/debates", func(r chi.Router) {
				r.Post("/", debateHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", debateHandler.Get)
					r.Get("/messages", debateHandler.Messages)
					r.Post("/reply", debateHandler.Reply)
					r.Post("/steelman", debateHandler.SteelMan)
					r.Post("/end", debateHandler.End)
				})
			})
			r.Post("/factcheck", debateHandler.FactCheck)

			r.Route("/rings", func(r chi.Router) {
				r.Get("/", ringHandler.List)
				r.Post("/", ringHandler.Create)
				r.Get("/featured", ringHandler.Featured)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", ringHandler.Get)
					r.Put("/", ringHandler.Update)
					r.Post("/join", ringHandler.Join)
					r.Post("/leave", ringHandler.Leave)
					r.Get("/messages", ringHandler.Messages)
					r.Post("/messages", ringHandler.Send)
					r.Get("/stream", ringHandler.Stream)
				})
			})

			r.Route("/communities", func(r chi.Router) {
				r.Get("/", communityHandler.Mine)
				r.Post("/", communityHandler.Create)
				r.Get("/available", communityHandler.Available)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", communityHandler.Get)
					r.Put("/", communityHandler.Update)
					r.Delete("/", communityHandler.Delete)
					r.Post("/join", communityHandler.Join)
					r.Post("/leave", communityHandler.Leave)
					r.Get("/members", communityHandler.Members)
					r.Put("/members/{userID}/role", communityHandler.UpdateMemberRole)
					r.Delete("/members/{userID}", communityHandler.RemoveMember)
					r.Get("/invites", communityHandler.Invites)
					r.Post("/invites", communityHandler.CreateInvite)
					r.Post("/predictions", communityHandler.CreatePrediction)
					r.Post("/rings", communityHandler.CreateRing)
				})
			})

			r.Route("/feed", func(r chi.Router) {
				r.Get("/predictions", communityHandler.PredictionFeed)
				r.Get("/rings", communityHandler.RingFeed)
			})
		})
	})

	return r
}

// Start launches the background workers.
func (app *App) Start() {
	if app.Listener != nil {
		app.Listener.Start()
	}
	app.Reconciler.Start()
	go app.limiter.RunCleanup(rateLimitCleanupInterval, app.stopCh)
}

// Stop stops the background workers and closes open event streams.
func (app *App) Stop() {
	close(app.stopCh)
	app.Reconciler.Stop()
	if app.Listener != nil {
		app.Listener.Stop()
	}
}

func healthHandler(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(buildconfig.VersionInfo())
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds":  uptime.Seconds(),
			"uptime_human":    uptime.Round(time.Second).String(),
			"requests":        app.metrics.Snapshot(),
			"tracked_clients": app.limiter.Len(),
			"goroutines":      runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.UserStore         = (*store.UserStore)(nil)
	_ domain.ProfileStore      = (*store.ProfileStore)(nil)
	_ domain.BeliefStore       = (*store.BeliefStore)(nil)
	_ domain.PredictionStore   = (*store.PredictionStore)(nil)
	_ domain.DeEscalationStore = (*store.DeEscalationStore)(nil)
	_ domain.BiasStore         = (*store.BiasStore)(nil)
	_ domain.DebateStore       = (*store.DebateStore)(nil)
	_ domain.GroupDebateStore  = (*store.GroupDebateStore)(nil)
	_ domain.SkillStore        = (*store.SkillStore)(nil)
	_ domain.AchievementStore  = (*store.AchievementStore)(nil)
	_ domain.CommunityStore    = (*store.CommunityStore)(nil)
	_ domain.Transactor        = (*store.Transactor)(nil)
	_ domain.MessageSubscriber = (*store.MessageListener)(nil)
	_ domain.EmbeddingClient   = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient   = (*embedding.MockClient)(nil)
	_ domain.TextGenerator     = (*llm.GeminiGenerator)(nil)
	_ domain.TextGenerator     = (*llm.AnthropicGenerator)(nil)
	_ domain.TextGenerator     = (*llm.OpenAIGenerator)(nil)
	_ domain.TextGenerator     = (*llm.MockGenerator)(nil)
	_ domain.TextGenerator     = (*llm.TimeoutGenerator)(nil)
	_ domain.TextGenerator     = (*llm.UnavailableGenerator)(nil)
	_ mw.Authenticator         = (*service.ProfileService)(nil)
)
