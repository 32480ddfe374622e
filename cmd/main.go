package main

import (
	"campusdesk/backend/internal/api/handler"
	"campusdesk/backend/internal/models"
	"campusdesk/backend/internal/reaper"
	"campusdesk/backend/internal/storage"
	"campusdesk/backend/internal/telegram"
	"campusdesk/backend/internal/templates"
	"campusdesk/backend/internal/workload"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies() (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Migrations
	err = db.AutoMigrate(
		&models.Complaint{},
		&models.Comment{},
		&models.AuditEntry{},
		&models.User{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting Campusdesk Backend...")

	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	// 1. Dependencies
	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	// 2. Services
	reaperSvc := reaper.NewService(s)
	notifier, err := telegram.NewNotifierFromEnv()
	if err != nil {
		log.Fatalf("Failed to set up operator notifications: %v", err)
	}
	if notifier != nil {
		reaperSvc.Notifier = notifier
	}

	workloadSvc := workload.NewService(s)

	templatesDir := os.Getenv("TEMPLATES_DIR")
	if templatesDir == "" {
		templatesDir = "templates"
	}
	templateStore, err := templates.NewStore(templatesDir)
	if err != nil {
		log.Fatalf("Failed to load response templates: %v", err)
	}

	// 3. Gin routing
	r := gin.Default()
	h := handler.NewHandler(s, reaperSvc, workloadSvc, templateStore)

	r.GET("/token", h.GetToken)

	student := r.Group("/", h.RequireRole(models.RoleStudent))
	student.POST("/complaints", h.CreateComplaint)
	student.GET("/complaints", h.ListComplaints)
	student.GET("/complaints/:id", h.GetComplaint)
	student.POST("/complaints/:id/comments", h.AddComment)

	admin := r.Group("/admin", h.RequireRole(models.RoleAdmin))
	admin.GET("/complaints", h.ListAllComplaints)
	admin.PATCH("/complaints/:id", h.UpdateComplaint)
	admin.POST("/complaints/:id/comments", h.AdminAddComment)
	admin.POST("/reaper/run", h.RunReaper)
	admin.POST("/workload/balance", h.BalanceWorkload)
	admin.GET("/roster", h.GetRoster)
	admin.GET("/duplicates", h.GetDuplicates)
	admin.GET("/stats", h.GetStats)
	admin.GET("/templates", h.GetTemplates)

	// 4. HTTP server
	server := &http.Server{
		Addr:           ":8080",
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
