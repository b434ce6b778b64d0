package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// GameInput defines the payload for creating a game.
type GameInput struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Platform    *string `json:"platform" binding:"omitempty,max=100"`
	ReleaseYear *int    `json:"releaseYear" binding:"omitempty,min=1970,max=2100"`
	Genre       *string `json:"genre" binding:"omitempty,max=100"`
	Developer   *string `json:"developer" binding:"omitempty,max=150"`
	CoverURL    *string `json:"coverUrl" binding:"omitempty,url,max=500"`
}

// GameResponse is the full projection of a catalog entry.
type GameResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Platform    *string    `json:"platform"`
	ReleaseYear *int       `json:"releaseYear"`
	Genre       *string    `json:"genre"`
	Developer   *string    `json:"developer"`
	CoverURL    *string    `json:"coverUrl"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

func newGameResponse(game models.Game) GameResponse {
	return GameResponse{
		ID:          game.ID,
		Title:       game.Title,
		Platform:    game.Platform,
		ReleaseYear: game.ReleaseYear,
		Genre:       game.Genre,
		Developer:   game.Developer,
		CoverURL:    game.CoverURL,
		CreatedAt:   game.CreatedAt,
		UpdatedAt:   game.UpdatedAt,
	}
}

// GameListResponse echoes the paging parameters alongside the page.
type GameListResponse struct {
	Items  []GameResponse `json:"items"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Query  string         `json:"query"`
}

// endregion

// ListGames godoc
// @Summary      List games
// @Description  Retrieves a page of catalog games, newest first, optionally filtered by a case-insensitive title substring.
// @Tags         games
// @Produce      json
// @Param        q      query  string  false  "Title substring"
// @Param        limit  query  int     false  "Page size (1-100)" default(20)
// @Param        offset query  int     false  "Page offset" default(0)
// @Success      200 {object} GameListResponse
// @Router       /games [get]
func ListGames(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100 // Max limit
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	query := database.DB.Model(&models.Game{}).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if q != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var games []models.Game
	if err := query.Find(&games).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve games"})
		return
	}

	items := make([]GameResponse, 0, len(games))
	for _, game := range games {
		items = append(items, newGameResponse(game))
	}

	c.JSON(http.StatusOK, GameListResponse{
		Items:  items,
		Limit:  limit,
		Offset: offset,
		Query:  q,
	})
}

// CreateGame godoc
// @Summary      Create a game
// @Description  Adds a new game to the shared catalog.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        input body GameInput true "Game Info"
// @Success      201 {object} GameResponse
// @Failure      400 {object} ValidationErrorResponse
// @Router       /games [post]
func CreateGame(c *gin.Context) {
	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindingErrors(err)})
		return
	}

	game := models.Game{
		Title:       input.Title,
		Platform:    input.Platform,
		ReleaseYear: input.ReleaseYear,
		Genre:       input.Genre,
		Developer:   input.Developer,
		CoverURL:    input.CoverURL,
	}

	if err := database.DB.Create(&game).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
		return
	}

	c.JSON(http.StatusCreated, newGameResponse(game))
}

// GetGame godoc
// @Summary      Get a single game by ID
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} GameResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func GetGame(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	var game models.Game
	if err := database.DB.First(&game, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	c.JSON(http.StatusOK, newGameResponse(game))
}

// UpdateGame godoc
// @Summary      Update a game
// @Description  Applies only the fields present in the payload; an explicit null clears an optional field.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        id    path int            true "Game ID"
// @Param        input body map[string]any true "Fields to change"
// @Success      200 {object} GameResponse
// @Failure      400 {object} ValidationErrorResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [patch]
func UpdateGame(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	var game models.Game
	if err := database.DB.First(&game, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	data, ok := bindPartial(c)
	if !ok {
		return
	}

	var errs []string

	if v, present := data["title"]; present {
		s, ok := jsonString(v)
		switch {
		case !ok:
			errs = append(errs, "title: must be a string")
		case s == nil || *s == "":
			errs = append(errs, "title: must not be blank")
		case len(*s) > 255:
			errs = append(errs, "title: must be 255 characters or less")
		default:
			game.Title = *s
		}
	}
	if v, present := data["platform"]; present {
		s, ok := jsonString(v)
		switch {
		case !ok:
			errs = append(errs, "platform: must be a string")
		case s != nil && len(*s) > 100:
			errs = append(errs, "platform: must be 100 characters or less")
		default:
			game.Platform = s
		}
	}
	if v, present := data["releaseYear"]; present {
		n, ok := jsonInt(v)
		switch {
		case !ok:
			errs = append(errs, "releaseYear: must be an integer")
		case n != nil && *n < 1970:
			errs = append(errs, "releaseYear: must be 1970 or more")
		case n != nil && *n > 2100:
			errs = append(errs, "releaseYear: must be 2100 or less")
		default:
			game.ReleaseYear = n
		}
	}
	if v, present := data["genre"]; present {
		s, ok := jsonString(v)
		switch {
		case !ok:
			errs = append(errs, "genre: must be a string")
		case s != nil && len(*s) > 100:
			errs = append(errs, "genre: must be 100 characters or less")
		default:
			game.Genre = s
		}
	}
	if v, present := data["developer"]; present {
		s, ok := jsonString(v)
		switch {
		case !ok:
			errs = append(errs, "developer: must be a string")
		case s != nil && len(*s) > 150:
			errs = append(errs, "developer: must be 150 characters or less")
		default:
			game.Developer = s
		}
	}
	if v, present := data["coverUrl"]; present {
		s, ok := jsonString(v)
		switch {
		case !ok:
			errs = append(errs, "coverUrl: must be a string")
		case s != nil && !isURL(*s):
			errs = append(errs, "coverUrl: must be a valid URL")
		case s != nil && len(*s) > 500:
			errs = append(errs, "coverUrl: must be 500 characters or less")
		default:
			game.CoverURL = s
		}
	}

	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	now := time.Now()
	game.UpdatedAt = &now

	if err := database.DB.Save(&game).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update game"})
		return
	}

	c.JSON(http.StatusOK, newGameResponse(game))
}

// DeleteGame godoc
// @Summary      Delete a game
// @Description  Removes a game from the catalog; library items pointing at it are removed by the cascade.
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]bool "{"deleted": true}"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [delete]
func DeleteGame(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	var game models.Game
	if err := database.DB.First(&game, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	if err := database.DB.Delete(&game).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete game"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func isURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
