package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/groupfund/backend/docs"
	"github.com/groupfund/backend/internal/config"
	"github.com/groupfund/backend/internal/database"
	"github.com/groupfund/backend/internal/handlers"
	mW "github.com/groupfund/backend/internal/middleware"
	"github.com/groupfund/backend/internal/services"
)

// @title Group Fund Ledger API
// @version 1.0
// @description API for the personal and group finance ledger
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	config.Load()

	docs.SwaggerInfo.Title = "Group Fund Ledger API"
	docs.SwaggerInfo.Description = "API for the personal and group finance ledger"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	authService := services.NewAuthService(db, redisClient)
	ledgerService := services.NewLedgerService(db)
	balanceService := services.NewBalanceService(db)
	groupService := services.NewGroupService(db)
	limitService := services.NewLimitService(db)
	historyService := services.NewHistoryService(db)
	categoryService := services.NewCategoryService(db)
	qrService := services.NewQRService(db, redisClient, config.LoadQRConfig())
	qrHandler := handlers.NewQRHandler(qrService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Static file server for expense receipts
	r.Handle("/static/receipts/*", http.StripPrefix("/static/receipts/",
		mW.ReceiptFileServer("./static/receipts")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/register", authService.Register)
		r.Post("/auth/login", authService.Login)
		r.Post("/auth/logout", authService.Logout)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware(redisClient))

			r.Get("/auth/account", authService.GetAccount)
			r.Put("/auth/account", authService.UpdateAccount)
			r.Get("/users/search", authService.SearchUsers)

			// Personal ledger
			r.Post("/incomes", ledgerService.CreateIncome)
			r.Get("/incomes", ledgerService.ListIncomes)
			r.Get("/incomes/pending-total", ledgerService.PendingIncomeTotal)
			r.Post("/withdrawals", ledgerService.CreateWithdrawal)
			r.Get("/balance", balanceService.GetBalance)

			// Groups
			r.Post("/groups", groupService.CreateGroup)
			r.Get("/groups", groupService.ListGroups)
			r.Post("/groups/{id}/members", groupService.AddGroupMember)
			r.Get("/groups/{id}/members", groupService.ListGroupMembers)
			r.Get("/groups/{id}/funds", groupService.ListGroupFunds)
			r.Post("/groups/{id}/contributions", groupService.CreateContribution)
			r.Get("/groups/{id}/contributions", groupService.ListGroupContributions)
			r.Get("/groups/{id}/expenses", groupService.ListGroupExpenses)
			r.Get("/groups/{id}/balance", groupService.GetGroupBalance)
			r.Get("/groups/{id}/balance/actual", groupService.GetActualGroupBalance)
			r.Post("/funds/{id}/expenses", groupService.CreateGroupExpense)
			r.Patch("/contributions/{id}/status", groupService.UpdateContributionStatus)
			r.Patch("/expenses/{id}/status", groupService.UpdateGroupExpenseStatus)

			// Spending limits
			r.Post("/limits", limitService.SetLimit)
			r.Get("/limits/current", limitService.GetCurrentLimit)
			r.Get("/limits/history", limitService.GetLimitHistory)

			// History
			r.Get("/history/me", historyService.GetPersonalHistory)
			r.Get("/history/groups/{id}", historyService.GetGroupHistory)
			r.Get("/history/log", historyService.GetTransactionLog)

			// Categories
			r.Get("/categories", categoryService.ListCategories)
			r.Post("/categories", categoryService.CreateCategory)
			r.Delete("/categories/{id}", categoryService.DeleteCategory)

			// QR endpoints
			r.Post("/qr/generate", qrHandler.GenerateQR)
			r.Post("/qr/resolve", qrHandler.ResolveQR)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
