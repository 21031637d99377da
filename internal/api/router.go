package api

import (
	"net/http"

	"github.com/formlab/formgen/internal/access"
	"github.com/formlab/formgen/internal/api/handler"
	customMiddleware "github.com/formlab/formgen/internal/api/middleware"
	"github.com/formlab/formgen/internal/config"
	"github.com/formlab/formgen/internal/llm"
	"github.com/formlab/formgen/internal/llm/anthropic"
	"github.com/formlab/formgen/internal/llm/deepseek"
	"github.com/formlab/formgen/internal/llm/gemini"
	"github.com/formlab/formgen/internal/llm/ollama"
	"github.com/formlab/formgen/internal/llm/openai"
	"github.com/formlab/formgen/internal/repository/mongo"
	"github.com/formlab/formgen/internal/repository/redis"
	"github.com/formlab/formgen/internal/security"
	"github.com/formlab/formgen/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *mongo.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(customMiddleware.Recover)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	encryptor, err := security.NewEncryptor(security.KeyFromSecret(cfg.Auth.EncryptionKey))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize encryptor")
	}

	// Initialize repositories
	userRepo := mongo.NewUserRepository(db)
	workspaceRepo := mongo.NewWorkspaceRepository(db)
	prototypeRepo := mongo.NewPrototypeRepository(db, encryptor)
	sessionStore := redis.NewSessionStore(redisClient, cfg.Auth.SessionTTL)
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)

	// Access resolver
	resolver := access.NewResolver(userRepo, workspaceRepo, prototypeRepo)

	// Initialize LLM router with providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)
	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.LLM.DefaultProvider)

	if cfg.LLM.Ollama.Host != "" {
		log.Info().Str("host", cfg.LLM.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.DefaultModel))
	}
	if cfg.LLM.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
	}
	if cfg.LLM.Anthropic.APIKey != "" {
		llmRouter.RegisterProvider(anthropic.NewProvider(cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model))
	}
	if cfg.LLM.DeepSeek.APIKey != "" {
		llmRouter.RegisterProvider(deepseek.NewProvider(cfg.LLM.DeepSeek.APIKey, cfg.LLM.DeepSeek.Model))
	}
	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini))
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, workspaceRepo, db, jwtManager)
	workspaceService := service.NewWorkspaceService(workspaceRepo)
	prototypeService := service.NewPrototypeService(prototypeRepo, workspaceRepo, llmRouter)
	userService := service.NewUserService(userRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(
		authService,
		sessionStore,
		cfg.Auth.SessionCookieName,
		cfg.Auth.SessionTTL,
		cfg.Auth.SecureCookies,
	)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	prototypeHandler := handler.NewPrototypeHandler(prototypeService)
	liveHandler := handler.NewLiveHandler(
		sessionStore,
		cfg.Auth.SessionCookieName,
		cfg.Auth.SessionTTL,
		cfg.Auth.SecureCookies,
	)
	adminHandler := handler.NewAdminHandler(userService)

	// Guards
	authMiddleware := customMiddleware.NewAuthMiddleware(
		sessionStore,
		userRepo,
		resolver,
		jwtManager,
		cfg.Auth.SessionCookieName,
	)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	// Health check
	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(db, redisClient))

	// Everything below carries the session principal
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.WithSession)

		r.Get("/", rootRedirect)

		// Sign-in and registration, signed-in users are bounced home
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAnonymous)
			r.Post("/register", authHandler.Register)
			r.Post("/signin", authHandler.SignIn)
		})

		// Programmatic token endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/token", authHandler.Token)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Live prototype views, access resolved per visitor
		r.Route("/live/{prototypeID}", func(r chi.Router) {
			r.With(authMiddleware.VerifyLive).Get("/", liveHandler.View)
			r.Post("/password", liveHandler.SubmitPassword)
		})

		// Signed-in routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireUser)
			r.Use(rateLimitMiddleware.Limit)

			r.Post("/signout", authHandler.SignOut)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", authHandler.Me)
				r.Patch("/", authHandler.UpdateProfile)
				r.Put("/password", authHandler.UpdatePassword)
			})

			r.Get("/providers", handler.ListProviders(llmRouter))

			r.Route("/workspaces", func(r chi.Router) {
				r.Get("/", workspaceHandler.List)
				r.Post("/", workspaceHandler.Create)

				r.Route("/{workspaceID}", func(r chi.Router) {
					r.Get("/", workspaceHandler.Get)
					r.Patch("/", workspaceHandler.Update)
					r.Delete("/", workspaceHandler.Delete)
				})
			})

			r.Route("/prototypes", func(r chi.Router) {
				r.Get("/", prototypeHandler.List)
				r.Post("/", prototypeHandler.Create)
				r.Get("/shared", prototypeHandler.ListShared)

				r.Route("/{prototypeID}", func(r chi.Router) {
					r.Use(authMiddleware.RequirePrototype)

					r.Get("/", prototypeHandler.Get)
					r.Patch("/share", prototypeHandler.Share)
					r.Post("/revise", prototypeHandler.Revise)
					r.Get("/history", prototypeHandler.History)
					r.Delete("/", prototypeHandler.Delete)
				})
			})

			// Admin routes answer 404 to everyone else
			r.Route("/admin", func(r chi.Router) {
				r.Use(authMiddleware.RequireAdmin)

				r.Get("/users", adminHandler.ListUsers)
				r.Route("/users/{userID}", func(r chi.Router) {
					r.Get("/", adminHandler.GetUser)
					r.Patch("/active", adminHandler.SetActive)
					r.Patch("/admin", adminHandler.SetAdmin)
				})
			})
		})
	})

	return r
}

// rootRedirect sends anonymous visitors to sign-in and signed-in users to
// their prototype list
func rootRedirect(w http.ResponseWriter, r *http.Request) {
	rc := customMiddleware.FromContext(r.Context())
	if rc.Session.Authenticated() {
		http.Redirect(w, r, "/prototypes", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}
