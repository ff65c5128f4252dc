package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nikhil/procurement-ai-agent/backend/internal/agents"
	"github.com/nikhil/procurement-ai-agent/backend/internal/api"
	"github.com/nikhil/procurement-ai-agent/backend/internal/config"
	"github.com/nikhil/procurement-ai-agent/backend/internal/procure"
	"github.com/nikhil/procurement-ai-agent/backend/internal/session"
	"github.com/nikhil/procurement-ai-agent/backend/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	inventory := store.NewInventoryStore(pgPool)
	if err := inventory.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	orders := store.NewOrderStore(mongoClient.Database(cfg.MongoDB))

	// ── Redis ────────────────────────────────────────────────
	rdb, err := session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	defer rdb.Close()
	sessions := session.NewStore(rdb)

	// ── MinIO ────────────────────────────────────────────────
	docStore, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		log.Fatalf("minio connect: %v", err)
	}

	// ── External capability clients ──────────────────────────
	agentsClient := agents.NewClient(cfg.AgentsServiceURL)
	indexClient := agents.NewIndexClient(cfg.IndexServiceURL)

	// ── Core ─────────────────────────────────────────────────
	registry := procure.NewRegistry(docStore, indexClient, agentsClient)
	handler := api.NewHandler(agentsClient, registry, sessions, orders, inventory, os.Stdout, cfg.MaxUploadBytes)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// Procurement pipeline
		r.Post("/plan_search", handler.PlanSearch)
		r.Post("/run_search", handler.RunSearch)
		r.Post("/run_search/stream", handler.StreamSearch)
		r.Post("/check_compliance", handler.CheckCompliance)
		r.Post("/search_images", handler.SearchImages)
		r.Post("/market_intelligence", handler.MarketIntelligence)
		r.Post("/send_rfq", handler.SendRFQ)

		// Chat assistant
		r.Post("/chat/plan", handler.ChatPlan)
		r.Post("/chat/execute", handler.ChatExecute)

		// Compliance documents
		r.Post("/compliance", handler.UploadDocument)
		r.Get("/compliance", handler.ListDocuments)
		r.Get("/view_file/{id}", handler.ViewDocument)
		r.Post("/delete_file/{id}", handler.DeleteDocument)

		// Orders
		r.Get("/orders", handler.ListOrders)
		r.Get("/order/{id}", handler.GetOrder)
		r.Post("/order/save", handler.SaveOrder)

		// Inventory
		r.Get("/inventory", handler.ListInventory)
		r.Get("/inventory/item/{id}", handler.GetInventoryItem)
		r.Post("/inventory/add", handler.AddInventoryItem)
		r.Put("/inventory/update/{itemCode}", handler.UpdateInventoryItem)
		r.Delete("/inventory/delete/{itemCode}", handler.DeleteInventoryItem)
		r.Post("/inventory/upload", handler.UploadInventory)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		log.Printf("Backend listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
