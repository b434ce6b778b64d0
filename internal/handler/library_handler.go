package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

// LibraryInput defines the payload for creating a library.
type LibraryInput struct {
	Name string `json:"name" binding:"required,max=120"`
}

// LibraryResponse is the projection of a library.
type LibraryResponse struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	OwnerID   uint       `json:"ownerId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

func newLibraryResponse(lib models.Library) LibraryResponse {
	return LibraryResponse{
		ID:        lib.ID,
		Name:      lib.Name,
		OwnerID:   lib.OwnerID,
		CreatedAt: lib.CreatedAt,
		UpdatedAt: lib.UpdatedAt,
	}
}

// LibraryListResponse wraps the caller's libraries.
type LibraryListResponse struct {
	Items []LibraryResponse `json:"items"`
}

// endregion

// findOwnedLibrary loads a library and enforces the ownership policy: 404
// when the id does not exist, 403 when it exists but belongs to someone
// else. Existence is deliberately leaked to authenticated callers.
func findOwnedLibrary(c *gin.Context, id int) (*models.Library, bool) {
	var lib models.Library
	if err := database.DB.First(&lib, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Library not found"})
		return nil, false
	}

	if lib.OwnerID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your library"})
		return nil, false
	}

	return &lib, true
}

// ListLibraries godoc
// @Summary      List the caller's libraries
// @Description  Returns all libraries owned by the authenticated user, newest first.
// @Tags         libraries
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} LibraryListResponse
// @Failure      401 {object} ErrorResponse
// @Router       /libraries [get]
func ListLibraries(c *gin.Context) {
	var libraries []models.Library
	err := database.DB.
		Where("owner_id = ?", currentUserID(c)).
		Order("created_at DESC").
		Find(&libraries).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve libraries"})
		return
	}

	items := make([]LibraryResponse, 0, len(libraries))
	for _, lib := range libraries {
		items = append(items, newLibraryResponse(lib))
	}

	c.JSON(http.StatusOK, LibraryListResponse{Items: items})
}

// CreateLibrary godoc
// @Summary      Create a library
// @Description  Creates a named library for the caller. Names are unique per owner.
// @Tags         libraries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body LibraryInput true "Library Info"
// @Success      201 {object} LibraryResponse
// @Failure      400 {object} ValidationErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Duplicate name for this owner"
// @Router       /libraries [post]
func CreateLibrary(c *gin.Context) {
	var input LibraryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindingErrors(err)})
		return
	}

	ownerID := currentUserID(c)

	var existing models.Library
	err := database.DB.Where("owner_id = ? AND name = ?", ownerID, input.Name).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "You already have a library with this name"})
		return
	}

	lib := models.Library{
		Name:    input.Name,
		OwnerID: ownerID,
	}
	if err := database.DB.Create(&lib).Error; err != nil {
		// Concurrent duplicate creates can both pass the lookup above and
		// land on the unique index instead.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "You already have a library with this name"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create library"})
		return
	}

	c.JSON(http.StatusCreated, newLibraryResponse(lib))
}

// GetLibrary godoc
// @Summary      Get a library by ID
// @Tags         libraries
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Library ID"
// @Success      200 {object} LibraryResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Not the owner"
// @Failure      404 {object} ErrorResponse "Library not found"
// @Router       /libraries/{id} [get]
func GetLibrary(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid library ID"})
		return
	}

	lib, ok := findOwnedLibrary(c, id)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, newLibraryResponse(*lib))
}

// UpdateLibrary godoc
// @Summary      Rename a library
// @Description  Applies only the name when present in the payload.
// @Tags         libraries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int            true "Library ID"
// @Param        input body map[string]any true "Fields to change"
// @Success      200 {object} LibraryResponse
// @Failure      400 {object} ValidationErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Not the owner"
// @Failure      404 {object} ErrorResponse "Library not found"
// @Failure      409 {object} ErrorResponse "Duplicate name for this owner"
// @Router       /libraries/{id} [patch]
func UpdateLibrary(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid library ID"})
		return
	}

	lib, ok := findOwnedLibrary(c, id)
	if !ok {
		return
	}

	data, ok := bindPartial(c)
	if !ok {
		return
	}

	if v, present := data["name"]; present {
		s, ok := jsonString(v)
		switch {
		case !ok:
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"name: must be a string"}})
			return
		case s == nil || *s == "":
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"name: must not be blank"}})
			return
		case len(*s) > 120:
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"name: must be 120 characters or less"}})
			return
		}

		lib.Name = *s
		now := time.Now()
		lib.UpdatedAt = &now

		if err := database.DB.Save(lib).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "You already have a library with this name"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update library"})
			return
		}
	}

	c.JSON(http.StatusOK, newLibraryResponse(*lib))
}

// DeleteLibrary godoc
// @Summary      Delete a library
// @Description  Removes a library and, via the cascade, all of its items.
// @Tags         libraries
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Library ID"
// @Success      200 {object} map[string]bool "{"deleted": true}"
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Not the owner"
// @Failure      404 {object} ErrorResponse "Library not found"
// @Router       /libraries/{id} [delete]
func DeleteLibrary(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid library ID"})
		return
	}

	lib, ok := findOwnedLibrary(c, id)
	if !ok {
		return
	}

	if err := database.DB.Delete(lib).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete library"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
