package main

import (
	"net/http"

	"gameshelf/backend/internal/auth"
	"gameshelf/backend/internal/config"
	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/handler"
	"gameshelf/backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	// Swagger imports
	_ "gameshelf/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           GameShelf API
// @version         1.0
// @description     Personal video-game library tracker.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	database.Connect(config.AppConfig.DatabaseURL)

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")
	{
		// Auth routes, rate limited per client IP
		authLimit := middleware.RateLimit(1, 5)
		api.POST("/register", authLimit, handler.Register)
		api.POST("/login", authLimit, handler.Login)

		// Public game catalog
		gameRoutes := api.Group("/games")
		{
			gameRoutes.GET("", handler.ListGames)
			gameRoutes.POST("", handler.CreateGame)
			gameRoutes.GET("/:id", handler.GetGame)
			gameRoutes.PUT("/:id", handler.UpdateGame)
			gameRoutes.PATCH("/:id", handler.UpdateGame)
			gameRoutes.DELETE("/:id", handler.DeleteGame)
		}

		// Library routes (protected); items live under their library
		libraryRoutes := api.Group("/libraries")
		libraryRoutes.Use(auth.AuthMiddleware())
		{
			libraryRoutes.GET("", handler.ListLibraries)
			libraryRoutes.POST("", handler.CreateLibrary)
			libraryRoutes.GET("/:id", handler.GetLibrary)
			libraryRoutes.PUT("/:id", handler.UpdateLibrary)
			libraryRoutes.PATCH("/:id", handler.UpdateLibrary)
			libraryRoutes.DELETE("/:id", handler.DeleteLibrary)

			libraryRoutes.GET("/:id/items", handler.ListLibraryItems)
			libraryRoutes.POST("/:id/items", handler.AddLibraryItem)
			libraryRoutes.PUT("/:id/items/:itemId", handler.UpdateLibraryItem)
			libraryRoutes.PATCH("/:id/items/:itemId", handler.UpdateLibraryItem)
			libraryRoutes.DELETE("/:id/items/:itemId", handler.RemoveLibraryItem)
		}
	}

	log.Info().Str("addr", config.AppConfig.ListenAddr).Msg("Server starting")
	log.Info().Msg("Swagger UI is available at /swagger/index.html")

	if err := router.Run(config.AppConfig.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
