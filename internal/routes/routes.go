package routes

import (
	"time"

	"bitslow-market/internal/handlers"
	"bitslow-market/internal/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-openapi/runtime/middleware"
)

func InitRoutes(authHandler *handlers.AuthHandler, ledgerHandler *handlers.LedgerHandler,
	authMiddleware *middlewares.AuthMiddleware, rateLimit gin.HandlerFunc) *gin.Engine {
	router := gin.Default()

	_ = router.SetTrustedProxies(nil)

	router.Use(middlewares.RequestID())
	if rateLimit != nil {
		router.Use(rateLimit)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middlewares.TokenHeader, "Amount", "Bit1", "Bit2", "Bit3"},
		ExposeHeaders:    []string{"Content-Length", middlewares.TokenHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.StaticFile("/swagger.yaml", "./swagger.yaml")

	opts := middleware.SwaggerUIOpts{SpecURL: "/swagger.yaml"}
	sh := middleware.SwaggerUI(opts, nil)

	router.GET("/swagger/*any", func(c *gin.Context) {
		sh.ServeHTTP(c.Writer, c.Request)
	})

	api := router.Group("/api")

	// public routes
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.GET("/refresh", authHandler.Refresh)
	api.POST("/logout", authHandler.Logout)

	api.GET("/transactions", ledgerHandler.Transactions)
	api.POST("/filtered", ledgerHandler.Filtered)
	api.GET("/client/:id", ledgerHandler.ClientInfo)
	api.GET("/buyerssellers", ledgerHandler.BuyersSellers)
	api.GET("/marketplace", ledgerHandler.Marketplace)
	api.GET("/history/:coin_id", ledgerHandler.History)
	api.GET("/findbits", ledgerHandler.FindBits)
	api.GET("/clients", ledgerHandler.Clients)
	api.GET("/coins", ledgerHandler.Coins)

	api.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// protected routes
	api.Use(authMiddleware.Handle())
	{
		api.GET("/protected", authHandler.Protected)
		api.POST("/buy/:coin_id", ledgerHandler.Buy)
		api.POST("/generate", ledgerHandler.Generate)
	}

	return router
}
