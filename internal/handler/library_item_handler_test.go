package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem_DefaultsToBacklog(t *testing.T) {
	router := setupTest(t)
	user, token := createTestUser(t, "a@example.com")
	game := createTestGame(t, "Hades")
	lib := createTestLibrary(t, user.ID, "Favorites")

	w := doRequest(router, "POST", fmt.Sprintf("/api/libraries/%d/items", lib.ID), token, map[string]any{
		"gameId": game.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "BACKLOG", body["status"])
	assert.Nil(t, body["rating"])
	assert.Nil(t, body["progressPercent"])
	assert.Nil(t, body["hoursPlayed"])
	assert.Equal(t, float64(lib.ID), body["libraryId"])

	embedded := body["game"].(map[string]any)
	assert.Equal(t, float64(game.ID), embedded["id"])
	assert.Equal(t, "Hades", embedded["title"])
}

func TestAddItem_WithMetadata(t *testing.T) {
	router := setupTest(t)
	user, token := createTestUser(t, "a@example.com")
	game := createTestGame(t, "Hades")
	lib := createTestLibrary(t, user.ID, "Favorites")

	w := doRequest(router, "POST", fmt.Sprintf("/api/libraries/%d/items", lib.ID), token, map[string]any{
		"gameId":          game.ID,
		"status":          "PLAYING",
		"rating":          85,
		"progressPercent": 40,
		"hoursPlayed":     12.57,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "PLAYING", body["status"])
	assert.Equal(t, float64(85), body["rating"])
	assert.Equal(t, float64(40), body["progressPercent"])
	// Hours are kept at one decimal place.
	assert.Equal(t, 12.6, body["hoursPlayed"])
}

func TestAddItem_Validation(t *testing.T) {
	router := setupTest(t)
	user, token := createTestUser(t, "a@example.com")
	game := createTestGame(t, "Hades")
	lib := createTestLibrary(t, user.ID, "Favorites")
	path := fmt.Sprintf("/api/libraries/%d/items", lib.ID)

	w := doRequest(router, "POST", path, token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "gameId: must not be blank")

	w = doRequest(router, "POST", path, token, map[string]any{"gameId": game.ID, "rating": 150})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "rating: must be 100 or less")

	w = doRequest(router, "POST", path, token, map[string]any{"gameId": game.ID, "status": "PAUSED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "status: must be one of")

	w = doRequest(router, "POST", path, token, map[string]any{"gameId": game.ID, "hoursPlayed": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "hoursPlayed: must be 0 or more")
}

func TestAddItem_GameNotFound(t *testing.T) {
	router := setupTest(t)
	user, token := createTestUser(t, "a@example.com")
	lib := createTestLibrary(t, user.ID, "Favorites")

	w := doRequest(router, "POST", fmt.Sprintf("/api/libraries/%d/items", lib.ID), token, map[string]any{"gameId": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Game not found", decodeBody(t, w)["error"])
}

func TestAddItem_UniquePerLibrary(t *testing.T) {
	router := setupTest(t)
	user, token := createTestUser(t, "a@example.com")
	game := createTestGame(t, "Hades")
	libA := createTestLibrary(t, user.ID, "Favorites")
	libB := createTestLibrary(t, user.ID, "Backlog")

	w := doRequest(router, "POST", fmt.Sprintf("/api/libraries/%d/items", libA.ID), token, map[string]any{"gameId": game.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	// Same game in the same library: rejected.
	w = doRequest(router, "POST", fmt.Sprintf("/api/libraries/%d/items", libA.ID), token, map[string]any{"gameId": game.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Game already added to this library", decodeBody(t, w)["error"])

	// Same game in another library: allowed.
	w = doRequest(router, "POST", fmt.Sprintf("/api/libraries/%d/items", libB.ID), token, map[string]any{"gameId": game.ID})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestListItems_NewestFirstWithGameProjection(t *testing.T) {
	router := setupTest(t)
	user, token := createTestUser(t, "a@example.com")
	lib := createTestLibrary(t, user.ID, "Favorites")

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"Hades", "Celeste"} {
		game := createTestGame(t, title)
		item := models.LibraryGame{
			LibraryID: lib.ID,
			GameID:    game.ID,
			Status:    models.StatusBacklog,
			AddedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, database.DB.Create(&item).Error)
	}

	w := doRequest(router, "GET", fmt.Sprintf("/api/libraries/%d/items", lib.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	items := decodeBody(t, w)["items"].([]any)
	require.Len(t, items, 2)

	first := items[0].(map[string]any)
	assert.Equal(t, "Celeste", first["game"].(map[string]any)["title"])
	assert.Equal(t, "Hades", items[1].(map[string]any)["game"].(map[string]any)["title"])
}

func TestListItems_NonOwnerForbidden(t *testing.T) {
	router := setupTest(t)
	userA, _ := createTestUser(t, "a@example.com")
	_, tokenB := createTestUser(t, "b@example.com")
	lib := createTestLibrary(t, userA.ID, "Favorites")

	w := doRequest(router, "GET", fmt.Sprintf("/api/libraries/%d/items", lib.ID), tokenB, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateItem_PartialAndExplicitNull(t *testing.T) {
	router := setupTest(t)
	user, token := createTestUser(t, "a@example.com")
	game := createTestGame(t, "Hades")
	lib := createTestLibrary(t, user.ID, "Favorites")

	rating := 70
	item := models.LibraryGame{
		LibraryID: lib.ID,
		GameID:    game.ID,
		Status:    models.StatusBacklog,
		Rating:    &rating,
		AddedAt:   time.Now(),
	}
	require.NoError(t, database.DB.Create(&item).Error)
	path := fmt.Sprintf("/api/libraries/%d/items/%d", lib.ID, item.ID)

	// Status alone: rating stays.
	w := doRequest(router, "PATCH", path, token, map[string]any{"status": "COMPLETED"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "COMPLETED", body["status"])
	assert.Equal(t, float64(70), body["rating"])

	// Explicit null clears the rating; a null status is ignored.
	w = doRequest(router, "PATCH", path, token, map[string]any{"rating": nil, "status": nil})
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Nil(t, body["rating"])
	assert.Equal(t, "COMPLETED", body["status"])
}

func TestUpdateItem_Validation(t *testing.T) {
	router := setupTest(t)
	user, token := createTestUser(t, "a@example.com")
	game := createTestGame(t, "Hades")
	lib := createTestLibrary(t, user.ID, "Favorites")

	item := models.LibraryGame{LibraryID: lib.ID, GameID: game.ID, Status: models.StatusBacklog, AddedAt: time.Now()}
	require.NoError(t, database.DB.Create(&item).Error)
	path := fmt.Sprintf("/api/libraries/%d/items/%d", lib.ID, item.ID)

	w := doRequest(router, "PATCH", path, token, map[string]any{"rating": 150})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "rating: must be between 0 and 100")

	w = doRequest(router, "PATCH", path, token, map[string]any{"status": "PAUSED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "status: must be one of")

	w = doRequest(router, "PATCH", path, token, map[string]any{"progressPercent": 12.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "progressPercent: must be an integer")
}

func TestUpdateItem_WrongLibraryIsNotFound(t *testing.T) {
	router := setupTest(t)
	user, token := createTestUser(t, "a@example.com")
	game := createTestGame(t, "Hades")
	libA := createTestLibrary(t, user.ID, "Favorites")
	libB := createTestLibrary(t, user.ID, "Backlog")

	item := models.LibraryGame{LibraryID: libA.ID, GameID: game.ID, Status: models.StatusBacklog, AddedAt: time.Now()}
	require.NoError(t, database.DB.Create(&item).Error)

	// The item exists, but not in library B.
	w := doRequest(router, "PATCH", fmt.Sprintf("/api/libraries/%d/items/%d", libB.ID, item.ID), token, map[string]any{"rating": 50})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Item not found in this library", decodeBody(t, w)["error"])
}

func TestRemoveItem(t *testing.T) {
	router := setupTest(t)
	user, token := createTestUser(t, "a@example.com")
	game := createTestGame(t, "Hades")
	lib := createTestLibrary(t, user.ID, "Favorites")

	item := models.LibraryGame{LibraryID: lib.ID, GameID: game.ID, Status: models.StatusBacklog, AddedAt: time.Now()}
	require.NoError(t, database.DB.Create(&item).Error)
	path := fmt.Sprintf("/api/libraries/%d/items/%d", lib.ID, item.ID)

	w := doRequest(router, "DELETE", path, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "DELETE", path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Item not found in this library", decodeBody(t, w)["error"])
}
