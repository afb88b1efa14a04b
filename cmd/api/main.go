package main

import (
	"context"
	"log"
	"time"

	"github.com/garjemarathi/community-agent/internal/auth"
	"github.com/garjemarathi/community-agent/internal/config"
	"github.com/garjemarathi/community-agent/internal/database"
	"github.com/garjemarathi/community-agent/internal/handlers"
	"github.com/garjemarathi/community-agent/internal/services"
	"github.com/garjemarathi/community-agent/internal/store"
	"github.com/garjemarathi/community-agent/web"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Load Environment Variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration:", err)
	}

	// 2. Community Data Store
	var st store.Store
	if cfg.StoreBackend == "postgres" {
		db, err := database.Connect(cfg.DatabaseDSN)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		st = store.NewDBStore(db)
	} else {
		st = store.OpenFile(cfg.DataFile)
	}

	// 3. Community Info from the website (falls back to static defaults)
	scraper := services.NewScraperService(cfg.CommunityURL)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	community := scraper.ScrapeHomepage(ctx)
	cancel()
	log.Printf("🌏 Community: %s", community.Name)

	if stats, err := st.Stats(); err == nil {
		log.Printf("📊 Stats: %d members, %d jobs", stats.TotalMembers, stats.TotalJobs)
	}

	// 4. Initialize the LLM Client
	llm, err := services.NewLLMService(cfg, community)
	if err != nil {
		log.Fatal("Failed to create LLM client:", err)
	}

	// 5. The Agent itself
	agent := services.NewAgentService(st, llm, community)

	// 6. Login Gate
	authService, err := auth.NewService(cfg.JWTSecret, cfg.AccessCode, cfg.SessionTTL)
	if err != nil {
		log.Fatal("Failed to set up login gate:", err)
	}

	// 7. Initialize Handlers
	chatHandler := handlers.NewChatHandler(agent, llm.Model)
	authHandler := handlers.NewAuthHandler(authService)
	dataHandler := handlers.NewDataHandler(st)

	// 8. Setup Router & CORS
	r := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // For development only
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.SetHTMLTemplate(web.Templates())
	r.StaticFS("/static", web.StaticFS())

	// 9. Define Routes
	r.GET("/", handlers.Root)
	r.GET("/login", authHandler.LoginPage)
	r.GET("/chat", authService.RequireSessionPage("/login"), chatHandler.ChatPage)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.POST("/login", authHandler.Login)
		api.POST("/logout", authHandler.Logout)

		// Everything below requires a session
		protected := api.Group("", authService.RequireSession())
		protected.POST("/chat", chatHandler.Chat)
		protected.GET("/members/search", dataHandler.SearchMembers)
		protected.GET("/jobs/search", dataHandler.SearchJobs)
		protected.GET("/stats", dataHandler.Stats)
	}

	log.Printf("🚀 Server starting on %s...", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
