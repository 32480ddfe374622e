package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"campusdesk/backend/internal/api/handler"
	"campusdesk/backend/internal/analysis"
	"campusdesk/backend/internal/models"
	"campusdesk/backend/internal/reaper"
	"campusdesk/backend/internal/storage"
	"campusdesk/backend/internal/telegram"
	"campusdesk/backend/internal/workload"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr, Password: os.Getenv("REDIS_PASSWORD")})

	storageSvc := storage.NewStorageService(db, rdb)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: reap [days] | balance <actor_id> | close <complaint_id> | stats | promote <email> <name> | token <user_id>")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "reap":
		days := 0
		if len(os.Args) > 2 {
			days, err = strconv.Atoi(os.Args[2])
			if err != nil {
				fmt.Println("Invalid days. Please provide an integer.")
				os.Exit(1)
			}
		}
		if err := runReaper(storageSvc, days); err != nil {
			log.Fatalf("Error running reaper: %v", err)
		}
	case "balance":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin balance <actor_id>")
			os.Exit(1)
		}
		if err := balance(storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error balancing workload: %v", err)
		}
	case "close":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin close <complaint_id>")
			os.Exit(1)
		}
		if err := closeComplaint(storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error closing complaint: %v", err)
		}
	case "stats":
		if err := printStats(storageSvc); err != nil {
			log.Fatalf("Error computing stats: %v", err)
		}
	case "promote":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin promote <email> <full_name>")
			os.Exit(1)
		}
		if err := promoteAdmin(storageSvc, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("Error promoting admin: %v", err)
		}
	case "token":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin token <user_id>")
			os.Exit(1)
		}
		if err := printAdminToken(storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error minting token: %v", err)
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

// runReaper is the cron entry point: one stale-complaint pass with the
// given window (0 means default).
func runReaper(s storage.Storage, days int) error {
	svc := reaper.NewService(s)
	notifier, err := telegram.NewNotifierFromEnv()
	if err != nil {
		return err
	}
	if notifier != nil {
		svc.Notifier = notifier
	}

	report, err := svc.Run(days)
	if err != nil {
		return err
	}
	fmt.Printf("Auto-closed %d of %d stale complaints (window: %d days).\n",
		report.ClosedCount, report.Attempted, report.StaleDays)
	for _, id := range report.ClosedIDs {
		fmt.Printf("  closed %s\n", id)
	}
	for _, id := range report.FailedIDs {
		fmt.Printf("  FAILED %s\n", id)
	}
	return nil
}

func balance(s storage.Storage, actorID string) error {
	svc := workload.NewService(s)
	roster, err := svc.Loads()
	if err != nil {
		return err
	}
	if len(roster) == 0 {
		fmt.Println("No admins available.")
		return nil
	}

	complaints, err := s.ListComplaints("")
	if err != nil {
		return err
	}
	var live []models.Complaint
	for _, c := range complaints {
		if c.IsLive() {
			live = append(live, c)
		}
	}

	plan := workload.BuildPlan(live, roster)
	if len(plan.Assignments) == 0 {
		fmt.Println("Nothing to assign.")
		return nil
	}

	report := svc.ApplyPlan(plan, actorID)
	fmt.Printf("Assigned %d of %d complaints across %d admins.\n",
		report.Assigned, report.Attempted, plan.RosterSize)
	return nil
}

func closeComplaint(s storage.Storage, id string) error {
	closed, err := s.CloseComplaintIfLive(id, time.Now())
	if err != nil {
		return err
	}
	if !closed {
		fmt.Printf("Complaint %s was already resolved.\n", id)
		return nil
	}
	fmt.Printf("Complaint %s has been resolved.\n", id)
	return nil
}

func printStats(s storage.Storage) error {
	complaints, err := s.ListComplaints("")
	if err != nil {
		return err
	}
	stats := analysis.ComputeStats(complaints)
	fmt.Printf("Total complaints: %d\n", stats.Total)
	for status, n := range stats.ByStatus {
		fmt.Printf("  %-12s %d\n", status, n)
	}
	for category, n := range stats.ByCategory {
		fmt.Printf("  %-12s %d\n", category, n)
	}
	fmt.Printf("Weighted backlog score: %d\n", stats.BacklogScore)
	return nil
}

func promoteAdmin(s storage.Storage, email, fullName string) error {
	user, err := s.FindOrCreateStudent(email, fullName)
	if err != nil {
		return err
	}
	user.Role = models.RoleAdmin
	if err := s.SaveUser(user); err != nil {
		return err
	}
	fmt.Printf("User %s (%s) is now an admin.\n", user.ID, email)
	return nil
}

func printAdminToken(s storage.Storage, userID string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user.Role != models.RoleAdmin {
		return fmt.Errorf("user %s is not an admin", userID)
	}
	token, err := handler.GenerateJWT(user.ID, user.Role)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
