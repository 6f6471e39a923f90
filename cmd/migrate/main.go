package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"pollwise/config"
	"pollwise/internal/domain/contest"
	"pollwise/internal/domain/notification"
	"pollwise/internal/domain/poll"
	"pollwise/internal/domain/settings"
	"pollwise/internal/domain/share"
	"pollwise/internal/domain/user"
	"pollwise/internal/domain/vote"
	"pollwise/pkg/database"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const usage = `
Pollwise - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run GORM migrations for all tables
  status      Show database connection status
  seed        Seed the admin account and default settings
  reset       Drop all tables and re-run migrations (DANGEROUS)

Flags:
  -admin-user string   Admin username for seeding (default from ADMIN_USERNAME)
  -admin-email string  Admin email for seeding (default from ADMIN_EMAIL)
  -admin-pass string   Admin password for seeding (default from ADMIN_PASSWORD)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed -admin-pass 'S3cret!pass'
`

var tables = []any{
	&user.User{},
	&user.RoleInvitation{},
	&user.PopupDismissal{},
	&poll.Poll{},
	&vote.Vote{},
	&share.ShareEvent{},
	&contest.Winner{},
	&notification.PendingNotification{},
	&settings.Settings{},
}

func main() {
	cfg := config.LoadConfig()

	adminUser := flag.String("admin-user", cfg.AdminUsername, "Admin username for seeding")
	adminEmail := flag.String("admin-email", cfg.AdminEmail, "Admin email for seeding")
	adminPass := flag.String("admin-pass", cfg.AdminPassword, "Admin password for seeding")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	database.Connect(cfg)
	defer database.Close()

	switch flag.Arg(0) {
	case "up":
		runMigrations()
	case "status":
		showStatus()
	case "seed":
		runMigrations()
		seedAdmin(*adminUser, *adminEmail, *adminPass)
		seedSettings()
	case "reset":
		runReset()
	default:
		fmt.Printf("Unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrations() {
	if err := database.DB.AutoMigrate(tables...); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations applied")
}

func showStatus() {
	sqlDB, err := database.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get database handle: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}
	log.Println("Database connection OK")
}

func seedAdmin(username, email, password string) {
	if password == "" {
		log.Fatal("Refusing to seed admin without a password (set ADMIN_PASSWORD or -admin-pass)")
	}

	var count int64
	database.DB.Model(&user.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		log.Printf("Admin user %q already exists, skipping", username)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin := user.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         user.RoleAdmin,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}
	log.Printf("Seeded admin user %q (%s)", username, email)
}

func seedSettings() {
	var count int64
	database.DB.Model(&settings.Settings{}).Count(&count)
	if count > 0 {
		log.Println("Settings row already exists, skipping")
		return
	}

	def := settings.Default()
	def.UpdatedAt = time.Now()
	if err := database.DB.Create(&def).Error; err != nil {
		log.Fatalf("Failed to seed settings: %v", err)
	}
	log.Println("Seeded default settings")
}

func runReset() {
	log.Println("Dropping all tables...")
	if err := database.DB.Migrator().DropTable(tables...); err != nil {
		log.Fatalf("Drop failed: %v", err)
	}
	runMigrations()
}
