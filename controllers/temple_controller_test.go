package controllers

import (
	"net/http"
	"testing"

	"github.com/yuchia/temple-checkin/models"
)

func TestTempleList(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	createTestTemple(t, db, "龍山寺", 25.0372, 121.4999, 1)
	createTestTemple(t, db, "行天宮", 25.0629, 121.5337, 2)
	inactive := createTestTemple(t, db, "已關閉宮廟", 25.1, 121.6, 1)
	db.Model(inactive).Update("is_active", false)

	w, envelope := doJSON(t, r, http.MethodGet, "/api/temples", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	data := dataOf(t, envelope)
	temples := data["temples"].([]interface{})
	if len(temples) != 2 {
		t.Fatalf("inactive temples must be hidden, got %d rows", len(temples))
	}

	// Keyword search over name.
	w, envelope = doJSON(t, r, http.MethodGet, "/api/temples?search=龍山", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search: expected 200 got %d", w.Code)
	}
	temples = dataOf(t, envelope)["temples"].([]interface{})
	if len(temples) != 1 {
		t.Fatalf("expected 1 match, got %d", len(temples))
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/temples?page=abc", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad pagination: expected 400 got %d", w.Code)
	}
}

func TestTempleGet(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	user := createTestUser(t, db, "pilgrim01", "pilgrim@example.com", false)
	temple := createTestTemple(t, db, "龍山寺", 25.0372, 121.4999, 1)
	amulet := createTestAmulet(t, db, user.ID, "TEMPLEGT")
	db.Create(&models.Checkin{UserID: user.ID, TempleID: temple.ID, AmuletID: amulet.ID, PointsEarned: 1})

	w, envelope := doJSON(t, r, http.MethodGet, "/api/temples/"+itoa(int(temple.ID)), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	data := dataOf(t, envelope)
	stats := data["stats"].(map[string]interface{})
	if stats["checkin_count"].(float64) != 1 {
		t.Fatalf("checkin_count wrong: %v", stats["checkin_count"])
	}
	if stats["unique_visitors"].(float64) != 1 {
		t.Fatalf("unique_visitors wrong: %v", stats["unique_visitors"])
	}

	// With coordinates the distance is attached.
	w, envelope = doJSON(t, r, http.MethodGet, "/api/temples/"+itoa(int(temple.ID))+"?lat=25.0372&lng=121.4999", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("with coords: expected 200 got %d", w.Code)
	}
	if dist := dataOf(t, envelope)["distance"].(float64); dist != 0 {
		t.Fatalf("expected zero distance, got %v", dist)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/temples/99999", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing temple: expected 404 got %d", w.Code)
	}

	db.Model(temple).Update("is_active", false)
	w, _ = doJSON(t, r, http.MethodGet, "/api/temples/"+itoa(int(temple.ID))+"?lat=25&lng=121", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("inactive temple: expected 404 got %d", w.Code)
	}
}

func TestTempleNearby(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	near := createTestTemple(t, db, "龍山寺", 25.0372, 121.4999, 1)
	mid := createTestTemple(t, db, "行天宮", 25.0629, 121.5337, 2)
	far := createTestTemple(t, db, "高雄廟宇", 22.62, 120.3, 1)
	inactive := createTestTemple(t, db, "已關閉宮廟", 25.0380, 121.5001, 1)
	db.Model(inactive).Update("is_active", false)

	w, envelope := doJSON(t, r, http.MethodGet, "/api/temples/nearby?lat=25.0367&lng=121.4999&radius=5", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	data := dataOf(t, envelope)
	results := data["temples"].([]interface{})
	if len(results) != 2 {
		t.Fatalf("expected 2 temples within 5km, got %d", len(results))
	}

	// Nearest first.
	first := results[0].(map[string]interface{})
	firstTemple := first["temple"].(map[string]interface{})
	if firstTemple["name"] != near.Name {
		t.Fatalf("expected %s first, got %v", near.Name, firstTemple["name"])
	}
	second := results[1].(map[string]interface{})
	if second["temple"].(map[string]interface{})["name"] != mid.Name {
		t.Fatalf("expected %s second", mid.Name)
	}
	if first["distance"].(float64) >= second["distance"].(float64) {
		t.Fatal("results must be ordered by ascending distance")
	}

	// A tight radius drops the farther temple.
	w, envelope = doJSON(t, r, http.MethodGet, "/api/temples/nearby?lat=25.0367&lng=121.4999&radius=1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tight radius: expected 200 got %d", w.Code)
	}
	results = dataOf(t, envelope)["temples"].([]interface{})
	if len(results) != 1 {
		t.Fatalf("expected 1 temple within 1km, got %d", len(results))
	}

	// Limit caps the result count.
	w, envelope = doJSON(t, r, http.MethodGet, "/api/temples/nearby?lat=25.0367&lng=121.4999&radius=5&limit=1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("limit: expected 200 got %d", w.Code)
	}
	results = dataOf(t, envelope)["temples"].([]interface{})
	if len(results) != 1 {
		t.Fatalf("limit=1 must return 1 row, got %d", len(results))
	}

	_ = far
}

func TestTempleNearbyValidation(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	w, _ := doJSON(t, r, http.MethodGet, "/api/temples/nearby", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing coords: expected 400 got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/temples/nearby?lat=abc&lng=121", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad lat: expected 400 got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/temples/nearby?lat=95&lng=121", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("lat out of range: expected 400 got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/temples/nearby?lat=25&lng=121&radius=-2", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative radius: expected 400 got %d", w.Code)
	}
}
