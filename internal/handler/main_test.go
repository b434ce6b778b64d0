package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"gameshelf/backend/internal/auth"
	"gameshelf/backend/internal/config"
	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/models"
	"gameshelf/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

// setupTest wires a fresh in-memory database and a router with the same
// routes the server registers.
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}

	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared&_foreign_keys=on", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Game{}, &models.Library{}, &models.LibraryGame{}))
	database.DB = db

	router := gin.New()
	api := router.Group("/api")

	api.POST("/register", Register)
	api.POST("/login", Login)

	api.GET("/games", ListGames)
	api.POST("/games", CreateGame)
	api.GET("/games/:id", GetGame)
	api.PUT("/games/:id", UpdateGame)
	api.PATCH("/games/:id", UpdateGame)
	api.DELETE("/games/:id", DeleteGame)

	libraries := api.Group("/libraries")
	libraries.Use(auth.AuthMiddleware())
	libraries.GET("", ListLibraries)
	libraries.POST("", CreateLibrary)
	libraries.GET("/:id", GetLibrary)
	libraries.PATCH("/:id", UpdateLibrary)
	libraries.DELETE("/:id", DeleteLibrary)
	libraries.GET("/:id/items", ListLibraryItems)
	libraries.POST("/:id/items", AddLibraryItem)
	libraries.PATCH("/:id/items/:itemId", UpdateLibraryItem)
	libraries.DELETE("/:id/items/:itemId", RemoveLibraryItem)

	return router
}

func createTestUser(t *testing.T, email string) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{Email: email, PasswordHash: string(hash), Role: "user"}
	require.NoError(t, database.DB.Create(&user).Error)

	token, err := jwt.GenerateToken(user.ID)
	require.NoError(t, err)

	return user, token
}

func createTestGame(t *testing.T, title string) models.Game {
	t.Helper()

	game := models.Game{Title: title}
	require.NoError(t, database.DB.Create(&game).Error)
	return game
}

func createTestLibrary(t *testing.T, ownerID uint, name string) models.Library {
	t.Helper()

	lib := models.Library{Name: name, OwnerID: ownerID}
	require.NoError(t, database.DB.Create(&lib).Error)
	return lib
}

func doRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
