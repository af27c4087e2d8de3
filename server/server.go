package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"beatsensei/config"
	"beatsensei/core/auth"
	"beatsensei/core/quota"
	"beatsensei/core/recommend"
	"beatsensei/core/search"
	"beatsensei/core/trend"
	"beatsensei/db"
	"beatsensei/logger"
	"beatsensei/model"
	"beatsensei/repository"
	"beatsensei/storage"
)

// Start initializes all backends and runs the HTTP server until a
// shutdown signal arrives.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{Level: logger.InfoLevel})
	auth.InitAuth(cfg)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := storage.InitMinio(cfg); err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database with GORM: %v", err)
	}
	defer db.CloseGormDB()

	if err := db.ConnectRedis(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer db.CloseRedis()
	log.Println("Successfully connected to Redis")

	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := db.AutoMigrateModels(&model.Interaction{}); err != nil {
		log.Fatalf("Failed to migrate models: %v", err)
	}

	sampleRepo := repository.NewMySQLSampleRepository()
	userRepo := repository.NewMySQLUserRepository(db.DB)
	prefRepo := repository.NewMySQLPreferenceRepository()
	usageRepo := repository.NewMySQLUsageRepository()
	interactionRepo := repository.NewInteractionRepository()

	searchEngine := search.NewEngine(sampleRepo)
	trendScorer := trend.NewScorer(sampleRepo)
	recommender := recommend.NewScorer(sampleRepo, prefRepo, interactionRepo, trendScorer)
	limiter := quota.NewLimiter(usageRepo, cfg)

	apiHandler := NewAPIHandler(sampleRepo, userRepo, prefRepo, usageRepo, interactionRepo,
		searchEngine, trendScorer, recommender, limiter, cfg)
	chatHandler := NewChatHandler(searchEngine)

	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-ID")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Sample discovery
	router.HandleFunc("/api/samples/search", apiHandler.SearchSamplesHandler).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/api/samples/trending", apiHandler.TrendingHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/samples/recommendations", apiHandler.RecommendationsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/filters", apiHandler.FiltersHandler).Methods(http.MethodGet)

	// Sample actions
	router.HandleFunc("/api/samples/{id}/download", apiHandler.AuthMiddleware(apiHandler.DownloadSampleHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/samples/{id}/play", apiHandler.PlaySampleHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/samples/{id}/like", apiHandler.LikeSampleHandler).Methods(http.MethodPost)

	// Quota and preferences
	router.HandleFunc("/api/usage", apiHandler.AuthMiddleware(apiHandler.UsageHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/preferences", apiHandler.AuthMiddleware(apiHandler.GetPreferencesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/preferences", apiHandler.AuthMiddleware(apiHandler.UpdatePreferencesHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/interactions", apiHandler.AuthMiddleware(apiHandler.InteractionsHandler)).Methods(http.MethodGet)

	// Auth
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)

	// Sensei chat
	router.HandleFunc("/ws/sensei", chatHandler.WebSocketSenseiHandler).Methods(http.MethodGet)

	// Sample audio out of MinIO
	router.PathPrefix("/files/").HandlerFunc(apiHandler.FileHandler).Methods(http.MethodGet)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s...", cfg.ServerAddr)
		log.Println("Search samples via GET /api/samples/search")
		log.Println("Trending via GET /api/samples/trending")
		log.Println("Recommendations via GET /api/samples/recommendations")
		log.Println("Chat with the sensei via /ws/sensei")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
