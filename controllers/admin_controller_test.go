package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yuchia/temple-checkin/models"
)

func TestAdminRequiresPrivilege(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	user := createTestUser(t, db, "pilgrim01", "pilgrim@example.com", false)
	token := accessTokenFor(t, user.ID)

	w, _ := doJSON(t, r, http.MethodGet, "/api/admin/stats", token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin: expected 403 got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/admin/stats", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401 got %d", w.Code)
	}
}

func TestAdminTempleCRUD(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	admin := createTestUser(t, db, "admin01", "admin@example.com", true)
	token := accessTokenFor(t, admin.ID)

	w, envelope := doJSON(t, r, http.MethodPost, "/api/admin/temples", token, gin.H{
		"name":           "行天宮",
		"main_deity":     "關聖帝君",
		"description":    "台北著名廟宇",
		"address":        "台北市中山區民權東路二段109號",
		"latitude":       25.0629,
		"longitude":      121.5337,
		"blessing_bonus": 3,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	temple := dataOf(t, envelope)["temple"].(map[string]interface{})
	templeID := int(temple["id"].(float64))
	if temple["blessing_bonus"].(float64) != 3 {
		t.Fatalf("bonus wrong: %v", temple["blessing_bonus"])
	}

	// Missing required fields.
	w, _ = doJSON(t, r, http.MethodPost, "/api/admin/temples", token, gin.H{
		"name": "不完整",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid create: expected 400 got %d", w.Code)
	}

	// Partial update.
	w, envelope = doJSON(t, r, http.MethodPut, "/api/admin/temples/"+itoa(templeID), token, gin.H{
		"blessing_bonus": 5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	updated := dataOf(t, envelope)["temple"].(map[string]interface{})
	if updated["blessing_bonus"].(float64) != 5 {
		t.Fatalf("bonus not updated: %v", updated["blessing_bonus"])
	}
	if updated["name"] != "行天宮" {
		t.Fatalf("untouched fields must survive, got %v", updated["name"])
	}

	// Out-of-range bonus is rejected.
	w, _ = doJSON(t, r, http.MethodPut, "/api/admin/temples/"+itoa(templeID), token, gin.H{
		"blessing_bonus": 99,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad bonus: expected 400 got %d", w.Code)
	}

	// Delete deactivates, the row stays.
	w, _ = doJSON(t, r, http.MethodDelete, "/api/admin/temples/"+itoa(templeID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200 got %d", w.Code)
	}
	var stored models.Temple
	if err := db.First(&stored, templeID).Error; err != nil {
		t.Fatalf("temple row must survive delete: %v", err)
	}
	if stored.IsActive {
		t.Fatal("temple must be inactive after delete")
	}

	// The public directory hides it, the admin list still shows it.
	w, envelope = doJSON(t, r, http.MethodGet, "/api/temples", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("public list: expected 200 got %d", w.Code)
	}
	if rows := dataOf(t, envelope)["temples"].([]interface{}); len(rows) != 0 {
		t.Fatalf("public list must hide inactive temples, got %d", len(rows))
	}
	w, envelope = doJSON(t, r, http.MethodGet, "/api/admin/temples?status=inactive", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin list: expected 200 got %d", w.Code)
	}
	if rows := dataOf(t, envelope)["temples"].([]interface{}); len(rows) != 1 {
		t.Fatalf("admin list must show inactive temples, got %d", len(rows))
	}
}

func TestAdminToggleUserStatus(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	admin := createTestUser(t, db, "admin01", "admin@example.com", true)
	user := createTestUser(t, db, "pilgrim01", "pilgrim@example.com", false)
	token := accessTokenFor(t, admin.ID)

	w, envelope := doJSON(t, r, http.MethodPost, "/api/admin/users/"+itoa(int(user.ID))+"/toggle-status", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200 got %d", w.Code)
	}
	toggled := dataOf(t, envelope)["user"].(map[string]interface{})
	if toggled["is_active"].(bool) {
		t.Fatal("user must be suspended after toggle")
	}

	// A suspended user cannot reach protected endpoints.
	userToken := accessTokenFor(t, user.ID)
	w, _ = doJSON(t, r, http.MethodGet, "/api/users/profile", userToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("suspended user: expected 403 got %d", w.Code)
	}

	// Toggling back restores access.
	w, _ = doJSON(t, r, http.MethodPost, "/api/admin/users/"+itoa(int(user.ID))+"/toggle-status", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle back: expected 200 got %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/api/users/profile", userToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("restored user: expected 200 got %d", w.Code)
	}

	// Admins cannot suspend themselves.
	w, _ = doJSON(t, r, http.MethodPost, "/api/admin/users/"+itoa(int(admin.ID))+"/toggle-status", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("self toggle: expected 400 got %d", w.Code)
	}
}

func TestAdminListUsers(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	admin := createTestUser(t, db, "admin01", "admin@example.com", true)
	createTestUser(t, db, "pilgrim01", "pilgrim@example.com", false)
	createTestUser(t, db, "pilgrim02", "second@example.com", false)
	token := accessTokenFor(t, admin.ID)

	w, envelope := doJSON(t, r, http.MethodGet, "/api/admin/users", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	users := dataOf(t, envelope)["users"].([]interface{})
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}

	w, envelope = doJSON(t, r, http.MethodGet, "/api/admin/users?search=pilgrim", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search: expected 200 got %d", w.Code)
	}
	users = dataOf(t, envelope)["users"].([]interface{})
	if len(users) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(users))
	}
}

func TestAdminStats(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	admin := createTestUser(t, db, "admin01", "admin@example.com", true)
	user := createTestUser(t, db, "pilgrim01", "pilgrim@example.com", false)
	second := createTestUser(t, db, "pilgrim02", "second@example.com", false)
	temple := createTestTemple(t, db, "龍山寺", 25.0372, 121.4999, 2)
	quiet := createTestTemple(t, db, "清幽小廟", 24.9, 121.3, 1)
	amulet := createTestAmulet(t, db, user.ID, "ADMIN001")
	secondAmulet := createTestAmulet(t, db, second.ID, "ADMIN002")

	now := time.Now().UTC()
	noon := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		checkin := models.Checkin{
			UserID: user.ID, TempleID: temple.ID, AmuletID: amulet.ID,
			PointsEarned: 2, CheckinTime: noon.AddDate(0, 0, -i),
		}
		if err := db.Create(&checkin).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	db.Create(&models.Checkin{UserID: user.ID, TempleID: quiet.ID, AmuletID: amulet.ID, PointsEarned: 1, CheckinTime: noon})
	db.Create(&models.Checkin{UserID: second.ID, TempleID: temple.ID, AmuletID: secondAmulet.ID, PointsEarned: 2, CheckinTime: noon})

	token := accessTokenFor(t, admin.ID)
	w, envelope := doJSON(t, r, http.MethodGet, "/api/admin/stats", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	data := dataOf(t, envelope)

	overview := data["overview"].(map[string]interface{})
	if overview["total_users"].(float64) != 3 {
		t.Fatalf("total_users wrong: %v", overview["total_users"])
	}
	if overview["total_checkins"].(float64) != 5 {
		t.Fatalf("total_checkins wrong: %v", overview["total_checkins"])
	}
	if overview["total_points"].(float64) != 9 {
		t.Fatalf("total_points wrong: %v", overview["total_points"])
	}

	daily := data["daily_checkins"].([]interface{})
	if len(daily) != 7 {
		t.Fatalf("expected 7 daily buckets, got %d", len(daily))
	}
	last := daily[6].(map[string]interface{})
	if last["count"].(float64) != 3 {
		t.Fatalf("today's bucket wrong: %v", last["count"])
	}
	if last["unique_users"].(float64) != 2 {
		t.Fatalf("today's unique_users wrong: %v", last["unique_users"])
	}

	ranking := data["temple_ranking"].([]interface{})
	if len(ranking) != 2 {
		t.Fatalf("expected 2 ranked temples, got %d", len(ranking))
	}
	top := ranking[0].(map[string]interface{})
	if top["name"] != temple.Name || top["checkin_count"].(float64) != 4 {
		t.Fatalf("ranking head wrong: %#v", top)
	}
	if top["unique_visitors"].(float64) != 2 {
		t.Fatalf("unique_visitors wrong: %#v", top)
	}
	if top["main_deity"] != "媽祖" {
		t.Fatalf("main_deity missing from ranking: %#v", top)
	}
}
