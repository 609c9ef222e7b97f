// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/agency-backend/internal/domain/bank"
	"github.com/your-org/agency-backend/internal/domain/catalog"
	"github.com/your-org/agency-backend/internal/domain/content"
	"github.com/your-org/agency-backend/internal/domain/discount"
	"github.com/your-org/agency-backend/internal/domain/order"
	"github.com/your-org/agency-backend/internal/domain/user"
)

// RunMigrations runs all database migrations
func RunMigrations(db *gorm.DB) error {
	log.Println("🔄 Running database migrations...")

	err := db.AutoMigrate(
		// Users
		&user.User{},

		// Catalog
		&catalog.PortfolioCategory{},
		&catalog.PortfolioItem{},
		&catalog.PortfolioImage{},

		// Orders
		&order.Order{},
		&order.OrderItem{},

		// Discounts
		&discount.DiscountCode{},

		// Bank accounts
		&bank.BankAccount{},

		// Content
		&content.BlogCategory{},
		&content.BlogTag{},
		&content.BlogPost{},
		&content.Comment{},
		&content.Testimonial{},
		&content.TeamMember{},
		&content.ContactMessage{},
		&content.Subscriber{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("✅ Database migrations completed successfully")
	return nil
}

// createIndexes creates indexes AutoMigrate cannot express. The two
// partial unique indexes back the one-cart-per-user and one-active-bank-
// account invariants at the storage level.
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_one_cart_per_user
			ON orders (user_id) WHERE status = 'cart' AND deleted_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bank_accounts_single_active
			ON bank_accounts (is_active) WHERE is_active AND deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders (user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_blog_posts_published
			ON blog_posts (published_at DESC) WHERE is_published`,
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// SeedData inserts development fixtures. Safe to run repeatedly.
func SeedData(db *gorm.DB) error {
	log.Println("🌱 Seeding database...")

	var count int64
	db.Model(&catalog.PortfolioCategory{}).Count(&count)
	if count > 0 {
		log.Println("Database already seeded, skipping")
		return nil
	}

	categories := []catalog.PortfolioCategory{
		{Name: "Web Design", Slug: "web-design"},
		{Name: "Branding", Slug: "branding"},
		{Name: "Mobile Apps", Slug: "mobile-apps"},
	}
	if err := db.Create(&categories).Error; err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	projectDate := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	items := []catalog.PortfolioItem{
		{
			Title:            "Corporate Website Redesign",
			Slug:             "corporate-website-redesign",
			ShortDescription: "Full redesign for a manufacturing company",
			CategoryID:       &categories[0].ID,
			ProjectDate:      &projectDate,
			Price:            250000,
		},
		{
			Title:            "Startup Brand Identity",
			Slug:             "startup-brand-identity",
			ShortDescription: "Logo and identity package",
			CategoryID:       &categories[1].ID,
			Price:            120000,
		},
	}
	if err := db.Create(&items).Error; err != nil {
		return fmt.Errorf("failed to seed portfolio items: %w", err)
	}

	now := time.Now().UTC()
	codes := []discount.DiscountCode{
		{
			Code:               "WELCOME10",
			DiscountPercentage: 10,
			ValidFrom:          now.AddDate(0, -1, 0),
			ValidTo:            now.AddDate(1, 0, 0),
			IsActive:           true,
			MaxUses:            0,
		},
	}
	if err := db.Create(&codes).Error; err != nil {
		return fmt.Errorf("failed to seed discount codes: %w", err)
	}

	log.Println("✅ Database seeded successfully")
	return nil
}
