package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"lung-server/auth"
	"lung-server/cache"
	"lung-server/confs"
	"lung-server/db"
	"lung-server/handlers"
	httpHandler "lung-server/handlers/http"
	"lung-server/repositories"
	"lung-server/services"
	"lung-server/storage"
	"lung-server/usecases"
	"lung-server/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// ModelClassifier is the classifier plus the readiness probe used by /health.
type ModelClassifier interface {
	usecases.Classifier
	Loaded() bool
}

type Server struct {
	app        *gin.Engine
	db         db.Database
	cfg        *confs.Config
	classifier ModelClassifier
	janitor    *services.ArtifactJanitor
}

func NewServer(cfg *confs.Config, database db.Database, classifier ModelClassifier) *Server {
	s := &Server{
		app:        gin.Default(),
		db:         database,
		cfg:        cfg,
		classifier: classifier,
		janitor:    services.NewArtifactJanitor(database, cfg.ArtifactDir, cfg.SweepInterval),
	}
	s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.app
}

func (s *Server) routes() {
	// Setup CORS middleware
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	s.app.Use(cors.New(config))

	maxUpload := s.cfg.MaxUploadMB << 20
	s.app.MaxMultipartMemory = maxUpload

	s.app.GET("/health", func(c *gin.Context) {
		status := "OK"
		if err := s.db.Ping(c.Request.Context()); err != nil {
			status = "DEGRADED"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       status,
			"model_loaded": s.classifier.Loaded(),
		})
	})

	// Initialize repositories
	userRepo := repositories.NewUserPgRepository(s.db)
	patientRepo := repositories.NewPatientPgRepository(s.db)

	// Shared collaborators
	tokens := auth.NewTokens(s.cfg.JWTSecret, s.cfg.JWTTTL)
	records := cache.NewUserCache[[]usecases.PatientView]()
	manager := ws.NewManager()
	artifacts := storage.NewLocalStore(s.cfg.ArtifactDir)

	// Initialize use cases
	accountUseCase := usecases.NewAccountUseCase(userRepo, tokens)
	predictionUseCase := usecases.NewPredictionUseCase(userRepo, patientRepo, s.classifier, artifacts, manager, records)
	patientUseCase := usecases.NewPatientUseCase(userRepo, patientRepo, records)

	// Initialize handlers
	authHandler := httpHandler.NewAuthHandler(accountUseCase, tokens.TTL())
	predictionHandler := httpHandler.NewPredictionHandler(predictionUseCase, maxUpload)
	patientHandler := httpHandler.NewPatientHandler(patientUseCase)
	wsHandler := handlers.NewWSHandler(manager)
	cacheHandler := handlers.NewCacheHandler(records)

	requireAuth := httpHandler.RequireAuth(tokens, s.cfg.AuthRequired)

	s.app.POST("/signup", authHandler.SignUp)
	s.app.POST("/login", authHandler.Login)

	s.app.POST("/lungpredict", requireAuth, predictionHandler.LungPredict)
	s.app.GET("/getAllData/:user_id", requireAuth, patientHandler.GetAllData)

	s.app.GET("/ws", requireAuth, wsHandler.HandleEventsWS)
	s.app.GET("/ws/connected", wsHandler.GetConnectedUsers)

	// Cache management endpoints
	cacheGroup := s.app.Group("/cache")
	{
		cacheGroup.GET("/stats", cacheHandler.GetCacheStats)
		cacheGroup.DELETE("", cacheHandler.ClearCache)
	}

	// Rendered artifacts are reported as paths under the static root.
	staticRoot := filepath.Dir(s.cfg.ArtifactDir)
	if staticRoot != "." && !filepath.IsAbs(staticRoot) && !strings.HasPrefix(staticRoot, "..") {
		s.app.Static("/"+filepath.ToSlash(staticRoot), staticRoot)
	}
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.janitor.Start(ctx)

	srv := &http.Server{Handler: s.app}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
