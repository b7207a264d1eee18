// Command seed bootstraps a fresh database with an admin account and a
// few catalog products so the storefront is usable right away.
package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/funkystitch/storefront/internal/adapter/storage"
	"github.com/funkystitch/storefront/internal/config"
	"github.com/funkystitch/storefront/internal/core/domain"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open mysql")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mysql")
	}

	if err := storage.RunMigrations(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	users := storage.NewMySQLUserStore(db)
	products := storage.NewMySQLProductStore(db)
	now := time.Now().UTC()

	adminEmail := os.Getenv("SEED_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@funkystitch.com"
	}
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "changeme"
	}

	taken, err := users.EmailOrPhoneTaken(ctx, adminEmail, "")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to check admin account")
	}

	var adminID string
	if taken {
		admin, err := users.GetByEmail(ctx, adminEmail)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load admin account")
		}
		adminID = admin.ID
		logger.Info().Str("email", adminEmail).Msg("admin account already exists")
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to hash admin password")
		}
		admin := &domain.User{
			ID:           uuid.NewString(),
			Name:         "Admin",
			Email:        adminEmail,
			Phone:        "0000000000",
			PasswordHash: string(hash),
			IsAdmin:      true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(ctx, admin); err != nil {
			logger.Fatal().Err(err).Msg("failed to create admin account")
		}
		adminID = admin.ID
		logger.Info().Str("email", adminEmail).Msg("admin account created")
	}

	for _, p := range sampleProducts(adminID, now) {
		if err := products.Create(ctx, p); err != nil {
			logger.Warn().Err(err).Str("name", p.Name).Msg("failed to seed product")
			continue
		}
		logger.Info().Str("name", p.Name).Msg("seeded product")
	}
}

func sampleProducts(adminID string, now time.Time) []*domain.Product {
	return []*domain.Product{
		{
			ID:              uuid.NewString(),
			Name:            "Embroidered Oversized Hoodie",
			Image:           "/images/hoodie.jpg",
			Brand:           "Funky Stitch",
			Category:        "Hoodies",
			Description:     "Heavyweight fleece hoodie with chain-stitch embroidery.",
			Features:        []string{"400 GSM fleece", "Drop shoulder fit"},
			BasePrice:       decimal.NewFromInt(1499),
			DiscountPercent: decimal.NewFromInt(10),
			Variants: []domain.Variant{
				{Size: "M", Color: "Black", Price: decimal.NewFromInt(1499), Stock: 15},
				{Size: "L", Color: "Black", Price: decimal.NewFromInt(1499), Stock: 12},
				{Size: "M", Color: "Olive", Price: decimal.NewFromInt(1549), Stock: 8},
			},
			AvailableSizes:  []string{"M", "L"},
			AvailableColors: []string{"Black", "Olive"},
			TotalStock:      35,
			CreatedBy:       adminID,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:           uuid.NewString(),
			Name:         "Graphic Print Tee",
			Image:        "/images/tee.jpg",
			Brand:        "Funky Stitch",
			Category:     "T-Shirts",
			Description:  "180 GSM combed cotton tee with water-based print.",
			BasePrice:    decimal.NewFromInt(599),
			CountInStock: 40,
			CreatedBy:    adminID,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:              uuid.NewString(),
			Name:            "Corduroy Bucket Hat",
			Image:           "/images/hat.jpg",
			Brand:           "Funky Stitch",
			Category:        "Accessories",
			Description:     "Six-panel corduroy bucket hat.",
			BasePrice:       decimal.NewFromInt(449),
			DiscountPercent: decimal.NewFromInt(5),
			CountInStock:    25,
			CreatedBy:       adminID,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}
}
