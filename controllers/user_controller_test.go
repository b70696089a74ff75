package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yuchia/temple-checkin/models"
)

func TestGetProfile(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	user := createTestUser(t, db, "pilgrim01", "pilgrim@example.com", false)
	db.Model(user).Update("blessing_points", 120)
	token := accessTokenFor(t, user.ID)

	w, envelope := doJSON(t, r, http.MethodGet, "/api/users/profile", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	profile := dataOf(t, envelope)["user"].(map[string]interface{})
	if profile["username"] != "pilgrim01" {
		t.Fatalf("username wrong: %v", profile["username"])
	}
	stats := profile["stats"].(map[string]interface{})
	level := stats["blessing_level"].(map[string]interface{})
	if level["name"] != "虔誠信徒" {
		t.Fatalf("120 points must map to tier 2, got %v", level["name"])
	}
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	user := createTestUser(t, db, "pilgrim01", "pilgrim@example.com", false)
	createTestUser(t, db, "taken01", "taken@example.com", false)
	token := accessTokenFor(t, user.ID)

	w, envelope := doJSON(t, r, http.MethodPut, "/api/users/profile", token, gin.H{
		"username":      "新信徒",
		"profile_image": "https://cdn.example.com/me.png",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	updated := dataOf(t, envelope)["user"].(map[string]interface{})
	if updated["username"] != "新信徒" {
		t.Fatalf("username not updated: %v", updated["username"])
	}
	if updated["profile_image"] != "https://cdn.example.com/me.png" {
		t.Fatalf("profile image not updated: %v", updated["profile_image"])
	}

	// Taken username is rejected.
	w, _ = doJSON(t, r, http.MethodPut, "/api/users/profile", token, gin.H{
		"username": "taken01",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("taken username: expected 400 got %d", w.Code)
	}

	// Invalid username is rejected.
	w, _ = doJSON(t, r, http.MethodPut, "/api/users/profile", token, gin.H{
		"username": "x",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid username: expected 400 got %d", w.Code)
	}

	// Email is not changeable through this endpoint.
	var stored models.User
	db.First(&stored, user.ID)
	if stored.Email != "pilgrim@example.com" {
		t.Fatalf("email must be untouched, got %q", stored.Email)
	}
}

func TestUserStatsIncludesStreak(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	user := createTestUser(t, db, "pilgrim01", "pilgrim@example.com", false)
	temple := createTestTemple(t, db, "龍山寺", 25.0372, 121.4999, 1)
	amulet := createTestAmulet(t, db, user.ID, "STATS001")
	token := accessTokenFor(t, user.ID)

	now := time.Now().UTC()
	noon := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		checkin := models.Checkin{
			UserID: user.ID, TempleID: temple.ID, AmuletID: amulet.ID,
			PointsEarned: 1, CheckinTime: noon.AddDate(0, 0, -i),
		}
		if err := db.Create(&checkin).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	w, envelope := doJSON(t, r, http.MethodGet, "/api/users/stats", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	stats := dataOf(t, envelope)
	if stats["streak_days"].(float64) != 2 {
		t.Fatalf("streak wrong: %v", stats["streak_days"])
	}
	if stats["total_checkins"].(float64) != 2 {
		t.Fatalf("total_checkins wrong: %v", stats["total_checkins"])
	}
	if stats["join_date"] == "" {
		t.Fatal("join_date missing")
	}
}
