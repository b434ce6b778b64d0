package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// region --- DTOs ---

// LibraryItemInput defines the payload for adding a game to a library.
type LibraryItemInput struct {
	GameID          *uint    `json:"gameId" binding:"required"`
	Status          *string  `json:"status" binding:"omitempty,oneof=BACKLOG PLAYING COMPLETED ABANDONED"`
	Rating          *int     `json:"rating" binding:"omitempty,min=0,max=100"`
	ProgressPercent *int     `json:"progressPercent" binding:"omitempty,min=0,max=100"`
	HoursPlayed     *float64 `json:"hoursPlayed" binding:"omitempty,min=0"`
}

// GameBrief is the minimal game projection embedded in item responses.
type GameBrief struct {
	ID       uint    `json:"id"`
	Title    string  `json:"title"`
	Platform *string `json:"platform"`
}

// LibraryItemResponse is the projection of a library item.
type LibraryItemResponse struct {
	ID              uint      `json:"id"`
	LibraryID       uint      `json:"libraryId"`
	Game            GameBrief `json:"game"`
	Status          string    `json:"status"`
	Rating          *int      `json:"rating"`
	ProgressPercent *int      `json:"progressPercent"`
	HoursPlayed     *float64  `json:"hoursPlayed"`
	AddedAt         time.Time `json:"addedAt"`
}

func newLibraryItemResponse(item models.LibraryGame) LibraryItemResponse {
	return LibraryItemResponse{
		ID:        item.ID,
		LibraryID: item.LibraryID,
		Game: GameBrief{
			ID:       item.Game.ID,
			Title:    item.Game.Title,
			Platform: item.Game.Platform,
		},
		Status:          string(item.Status),
		Rating:          item.Rating,
		ProgressPercent: item.ProgressPercent,
		HoursPlayed:     item.HoursPlayed,
		AddedAt:         item.AddedAt,
	}
}

// LibraryItemListResponse wraps a library's items.
type LibraryItemListResponse struct {
	Items []LibraryItemResponse `json:"items"`
}

// endregion

// findLibraryItem loads an item and verifies it belongs to the given
// library. An existing item reached through the wrong library is reported
// as missing.
func findLibraryItem(c *gin.Context, lib *models.Library, itemID int) (*models.LibraryGame, bool) {
	var item models.LibraryGame
	if err := database.DB.Preload("Game").First(&item, itemID).Error; err != nil || item.LibraryID != lib.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in this library"})
		return nil, false
	}
	return &item, true
}

// ListLibraryItems godoc
// @Summary      List a library's items
// @Description  Returns the items of an owned library, newest added first, each with a minimal game projection.
// @Tags         library-items
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Library ID"
// @Success      200 {object} LibraryItemListResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Not the owner"
// @Failure      404 {object} ErrorResponse "Library not found"
// @Router       /libraries/{id}/items [get]
func ListLibraryItems(c *gin.Context) {
	libraryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid library ID"})
		return
	}

	lib, ok := findOwnedLibrary(c, libraryID)
	if !ok {
		return
	}

	var items []models.LibraryGame
	err = database.DB.
		Preload("Game").
		Where("library_id = ?", lib.ID).
		Order("added_at DESC").
		Find(&items).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve items"})
		return
	}

	responses := make([]LibraryItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, newLibraryItemResponse(item))
	}

	c.JSON(http.StatusOK, LibraryItemListResponse{Items: responses})
}

// AddLibraryItem godoc
// @Summary      Add a game to a library
// @Description  Links a catalog game to an owned library with play-tracking metadata. A game can appear at most once per library.
// @Tags         library-items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int              true "Library ID"
// @Param        input body LibraryItemInput true "Item Info"
// @Success      201 {object} LibraryItemResponse
// @Failure      400 {object} ValidationErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Not the owner"
// @Failure      404 {object} ErrorResponse "Library or game not found"
// @Failure      409 {object} ErrorResponse "Game already in this library"
// @Router       /libraries/{id}/items [post]
func AddLibraryItem(c *gin.Context) {
	libraryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid library ID"})
		return
	}

	lib, ok := findOwnedLibrary(c, libraryID)
	if !ok {
		return
	}

	var input LibraryItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindingErrors(err)})
		return
	}

	var game models.Game
	if err := database.DB.First(&game, *input.GameID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	var existing models.LibraryGame
	err = database.DB.Where("library_id = ? AND game_id = ?", lib.ID, game.ID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Game already added to this library"})
		return
	}

	item := models.LibraryGame{
		LibraryID:       lib.ID,
		GameID:          game.ID,
		Status:          models.StatusBacklog,
		Rating:          input.Rating,
		ProgressPercent: input.ProgressPercent,
		HoursPlayed:     roundHours(input.HoursPlayed),
		AddedAt:         time.Now(),
	}
	if input.Status != nil {
		item.Status = models.PlayStatus(*input.Status)
	}

	if err := database.DB.Create(&item).Error; err != nil {
		// Concurrent duplicate adds can both pass the lookup above and
		// land on the unique index instead.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Game already added to this library"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item"})
		return
	}

	item.Game = game
	c.JSON(http.StatusCreated, newLibraryItemResponse(item))
}

// UpdateLibraryItem godoc
// @Summary      Update a library item
// @Description  Applies only the fields present in the payload; an explicit null clears an optional field. A null status is ignored.
// @Tags         library-items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int            true "Library ID"
// @Param        itemId path int            true "Item ID"
// @Param        input  body map[string]any true "Fields to change"
// @Success      200 {object} LibraryItemResponse
// @Failure      400 {object} ValidationErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Not the owner"
// @Failure      404 {object} ErrorResponse "Library or item not found"
// @Router       /libraries/{id}/items/{itemId} [patch]
func UpdateLibraryItem(c *gin.Context) {
	libraryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid library ID"})
		return
	}

	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	lib, ok := findOwnedLibrary(c, libraryID)
	if !ok {
		return
	}

	item, ok := findLibraryItem(c, lib, itemID)
	if !ok {
		return
	}

	data, ok := bindPartial(c)
	if !ok {
		return
	}

	var errs []string

	if v, present := data["status"]; present && v != nil {
		s, ok := v.(string)
		if !ok || !models.ValidPlayStatus(s) {
			errs = append(errs, "status: must be one of BACKLOG, PLAYING, COMPLETED, ABANDONED")
		} else {
			item.Status = models.PlayStatus(s)
		}
	}
	if v, present := data["rating"]; present {
		n, ok := jsonInt(v)
		switch {
		case !ok:
			errs = append(errs, "rating: must be an integer")
		case n != nil && (*n < 0 || *n > 100):
			errs = append(errs, "rating: must be between 0 and 100")
		default:
			item.Rating = n
		}
	}
	if v, present := data["progressPercent"]; present {
		n, ok := jsonInt(v)
		switch {
		case !ok:
			errs = append(errs, "progressPercent: must be an integer")
		case n != nil && (*n < 0 || *n > 100):
			errs = append(errs, "progressPercent: must be between 0 and 100")
		default:
			item.ProgressPercent = n
		}
	}
	if v, present := data["hoursPlayed"]; present {
		f, ok := jsonFloat(v)
		switch {
		case !ok:
			errs = append(errs, "hoursPlayed: must be a number")
		case f != nil && *f < 0:
			errs = append(errs, "hoursPlayed: must be 0 or more")
		default:
			item.HoursPlayed = roundHours(f)
		}
	}

	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	if err := database.DB.Omit(clause.Associations).Save(item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	c.JSON(http.StatusOK, newLibraryItemResponse(*item))
}

// RemoveLibraryItem godoc
// @Summary      Remove a game from a library
// @Tags         library-items
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int true "Library ID"
// @Param        itemId path int true "Item ID"
// @Success      200 {object} map[string]bool "{"deleted": true}"
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Not the owner"
// @Failure      404 {object} ErrorResponse "Library or item not found"
// @Router       /libraries/{id}/items/{itemId} [delete]
func RemoveLibraryItem(c *gin.Context) {
	libraryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid library ID"})
		return
	}

	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	lib, ok := findOwnedLibrary(c, libraryID)
	if !ok {
		return
	}

	item, ok := findLibraryItem(c, lib, itemID)
	if !ok {
		return
	}

	if err := database.DB.Delete(item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// roundHours keeps hours played at the one-decimal precision the column
// stores.
func roundHours(h *float64) *float64 {
	if h == nil {
		return nil
	}
	r := math.Round(*h*10) / 10
	return &r
}
