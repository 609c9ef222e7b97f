// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/interfaces/http/handlers"
	"github.com/your-org/agency-backend/internal/interfaces/http/middleware"
	"github.com/your-org/agency-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// SetupRoutes wires all API v1 routes
func SetupRoutes(api *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	mailer := email.NewEmailService(cfg)

	authHandler := handlers.NewAuthHandler(db, redisClient, cfg)
	catalogHandler := handlers.NewCatalogHandler(db, redisClient, cfg)
	contentHandler := handlers.NewContentHandler(db, redisClient, cfg, mailer)
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)
	discountHandler := handlers.NewDiscountHandler(db, redisClient, cfg)
	checkoutHandler := handlers.NewCheckoutHandler(db, redisClient, cfg, mailer)
	callbackHandler := handlers.NewCallbackHandler(checkoutHandler.Service())
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg)
	adminHandler := handlers.NewAdminHandler(db, redisClient, cfg, mailer)

	// Authentication
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.Profile)
			protected.PUT("/profile", authHandler.UpdateProfile)
			protected.POST("/change-password", authHandler.ChangePassword)
		}
	}

	// Public catalog
	portfolio := api.Group("/portfolio")
	{
		portfolio.GET("", catalogHandler.List)
		portfolio.GET("/categories", catalogHandler.Categories)
		portfolio.GET("/:slug", catalogHandler.Get)
	}

	// Public content
	blog := api.Group("/blog")
	{
		blog.GET("", contentHandler.ListPosts)
		blog.GET("/:slug", contentHandler.GetPost)
		blog.POST("/:slug/comments", contentHandler.AddComment)
	}
	api.GET("/testimonials", contentHandler.Testimonials)
	api.GET("/team", contentHandler.Team)
	api.POST("/contact", contentHandler.Contact)
	api.POST("/subscribe", contentHandler.Subscribe)
	api.POST("/unsubscribe", contentHandler.Unsubscribe)

	// Cart and checkout (authenticated)
	cart := api.Group("/cart")
	cart.Use(middleware.AuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.Get)
		cart.POST("/items/:itemId", cartHandler.AddItem)
		cart.POST("/items/:itemId/decrement", cartHandler.DecrementItem)
		cart.DELETE("/items/:itemId", cartHandler.RemoveItem)
		cart.POST("/discount", discountHandler.Apply)
	}

	checkout := api.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(cfg))
	{
		checkout.POST("", checkoutHandler.Submit)
	}

	// Orders (authenticated)
	orders := api.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.List)
		orders.GET("/:id", orderHandler.Get)
		orders.POST("/:id/cancel", orderHandler.Cancel)
		orders.GET("/:id/invoice", orderHandler.Invoice)
	}

	// Gateway callbacks; each gateway authenticates its own notification
	callbacks := api.Group("/callbacks")
	{
		callbacks.POST("/iyzico", callbackHandler.Iyzico)
		callbacks.GET("/iyzico", callbackHandler.Iyzico)
		callbacks.POST("/paytr", callbackHandler.PayTR)
		callbacks.POST("/stripe", callbackHandler.Stripe)
	}

	// Admin surface
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		admin.GET("/orders", adminHandler.ListOrders)
		admin.PUT("/orders/:id/status", adminHandler.UpdateOrderStatus)

		admin.GET("/discounts", adminHandler.ListDiscounts)
		admin.POST("/discounts", adminHandler.CreateDiscount)
		admin.DELETE("/discounts/:id", adminHandler.DeactivateDiscount)

		admin.GET("/bank-accounts", adminHandler.ListBankAccounts)
		admin.POST("/bank-accounts", adminHandler.CreateBankAccount)
		admin.POST("/bank-accounts/:id/activate", adminHandler.ActivateBankAccount)
		admin.DELETE("/bank-accounts/:id", adminHandler.DeleteBankAccount)

		admin.POST("/portfolio", adminHandler.CreatePortfolioItem)
		admin.PUT("/portfolio/:id", adminHandler.UpdatePortfolioItem)
		admin.DELETE("/portfolio/:id", adminHandler.DeletePortfolioItem)

		admin.POST("/blog", adminHandler.CreatePost)
		admin.PUT("/blog/:id", adminHandler.UpdatePost)
		admin.DELETE("/blog/:id", adminHandler.DeletePost)
		admin.POST("/comments/:id/approve", adminHandler.ApproveComment)
	}
}
