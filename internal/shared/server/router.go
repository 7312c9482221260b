package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumelens-backend/internal/admin"
	googleauth "resumelens-backend/internal/auth"
	"resumelens-backend/internal/contact"
	"resumelens-backend/internal/jobs"
	"resumelens-backend/internal/llm"
	"resumelens-backend/internal/llm/openai"
	"resumelens-backend/internal/mail"
	"resumelens-backend/internal/ratelimit"
	"resumelens-backend/internal/resumes"
	"resumelens-backend/internal/shared/config"
	"resumelens-backend/internal/shared/metrics"
	"resumelens-backend/internal/shared/server/middleware"
	"resumelens-backend/internal/shared/server/respond"
	"resumelens-backend/internal/shared/storage/db"
	"resumelens-backend/internal/shared/storage/kv"
	"resumelens-backend/internal/users"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(),
	)

	// Dependencies
	store, err := kv.Shared(cfg.RedisURL)
	if err != nil {
		log.Printf("redis unavailable, caches disabled and limits fail open: %v", err)
	}
	limiter := ratelimit.New(store)

	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var userRepo users.Repo
	var resumeRepo resumes.Repo
	var adminRepo admin.Repo
	if sqlDB != nil {
		userRepo = &users.PGRepo{DB: sqlDB}
		resumeRepo = &resumes.PGRepo{DB: sqlDB}
		adminRepo = &admin.PGRepo{DB: sqlDB}
	} else {
		userMem := users.NewMemoryRepo()
		resumeMem := resumes.NewMemoryRepo()
		userRepo = userMem
		resumeRepo = resumeMem
		adminRepo = &admin.MemoryRepo{Users: userMem, Resumes: resumeMem}
	}

	var llmClient llm.Client
	llmClient, err = openai.NewClient(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMBaseURL, store)
	if err != nil {
		log.Printf("llm not configured, analyses degrade to placeholder: %v", err)
		llmClient = llm.NewFallbackClient()
	}

	userSvc := users.NewService(userRepo, limiter)
	userHandler := users.NewHandler(userSvc)
	googleAuthSvc := googleauth.NewGoogleService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.UIRedirectURL, userSvc)

	resumeSvc := resumes.NewService(resumeRepo, llmClient, limiter, store)
	resumeHandler := resumes.NewHandler(resumeSvc)

	jobsSvc := jobs.NewService(jobs.NewClient(cfg.JobsAPIHost, cfg.JobsAPIKey), store)
	jobsHandler := jobs.NewHandler(jobsSvc, resumeSvc.LatestSkills)

	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	contactHandler := contact.NewHandler(mailer, limiter, cfg.SMTPUser, cfg.ContactRecipient)

	adminHandler := admin.NewHandler(adminRepo)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())
	googleAuthSvc.RegisterRoutes(api)
	userHandler.RegisterRoutes(api)
	resumeHandler.RegisterRoutes(api)
	jobsHandler.RegisterRoutes(api)
	contactHandler.RegisterRoutes(api)
	adminHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
