package controllers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yuchia/temple-checkin/middleware"
	"github.com/yuchia/temple-checkin/models"
	"github.com/yuchia/temple-checkin/utils"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// currentUser returns the user loaded by ActiveUserRequired/AdminRequired.
func currentUser(ctx *gin.Context) (*models.User, bool) {
	value, exists := ctx.Get(middleware.ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// paginationMeta is the envelope fragment attached to every list response.
func paginationMeta(page, perPage int, total int64) gin.H {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return gin.H{
		"page":     page,
		"per_page": perPage,
		"total":    total,
		"pages":    pages,
		"has_prev": page > 1,
		"has_next": page < pages,
	}
}

// userPayload shapes the public user representation. The admin flag and
// aggregate stats are only attached for the account owner (or an admin).
func userPayload(db *gorm.DB, user *models.User, sensitive bool) gin.H {
	data := gin.H{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"blessing_points": user.BlessingPoints,
		"profile_image":   user.ProfileImage,
		"is_active":       user.IsActive,
		"created_at":      user.CreatedAt,
		"updated_at":      user.UpdatedAt,
	}
	if sensitive {
		data["is_admin"] = user.IsAdmin
		data["stats"] = userStats(db, user)
	}
	return data
}

// userStats collects the per-user totals plus the derived blessing level.
func userStats(db *gorm.DB, user *models.User) gin.H {
	totals := checkinTotals(db, user.ID)
	totals["blessing_points"] = user.BlessingPoints
	totals["blessing_level"] = utils.GetBlessingLevel(user.BlessingPoints)
	totals["join_date"] = user.CreatedAt.UTC().Format("2006-01-02")
	return totals
}

// checkinTotals runs the per-user aggregate: count, point sum, distinct
// temples, last checkin time.
func checkinTotals(db *gorm.DB, userID uint) gin.H {
	var row struct {
		TotalCheckins int64
		TotalPoints   int64
		UniqueTemples int64
	}
	if err := db.Model(&models.Checkin{}).
		Select("COUNT(id) AS total_checkins, COALESCE(SUM(points_earned), 0) AS total_points, COUNT(DISTINCT temple_id) AS unique_temples").
		Where("user_id = ?", userID).
		Scan(&row).Error; err != nil {
		utils.Sugar.Warnf("checkin totals query failed for user %d: %v", userID, err)
	}

	var lastCheckin interface{}
	var last models.Checkin
	if err := db.Where("user_id = ?", userID).Order("checkin_time DESC").First(&last).Error; err == nil {
		lastCheckin = last.CheckinTime
	}

	return gin.H{
		"total_checkins": row.TotalCheckins,
		"total_points":   row.TotalPoints,
		"unique_temples": row.UniqueTemples,
		"last_checkin":   lastCheckin,
	}
}

// amuletPayload shapes an amulet, optionally with usage stats.
func amuletPayload(db *gorm.DB, amulet *models.Amulet, includeStats bool) gin.H {
	data := gin.H{
		"id":          amulet.ID,
		"user_id":     amulet.UserID,
		"uid":         amulet.UID,
		"name":        amulet.Name,
		"description": amulet.Description,
		"image_url":   amulet.ImageURL,
		"is_active":   amulet.IsActive,
		"created_at":  amulet.CreatedAt,
		"updated_at":  amulet.UpdatedAt,
	}
	if includeStats {
		var count int64
		_ = db.Model(&models.Checkin{}).Where("amulet_id = ?", amulet.ID).Count(&count).Error

		var lastCheckin interface{}
		var last models.Checkin
		if err := db.Where("amulet_id = ?", amulet.ID).Order("checkin_time DESC").First(&last).Error; err == nil {
			lastCheckin = last.CheckinTime
		}

		var visited int64
		_ = db.Model(&models.Checkin{}).Where("amulet_id = ?", amulet.ID).Distinct("temple_id").Count(&visited).Error

		data["stats"] = gin.H{
			"checkin_count":         count,
			"last_checkin":          lastCheckin,
			"visited_temples_count": visited,
		}
	}
	return data
}

// checkinPayload shapes a checkin, optionally embedding the related rows.
func checkinPayload(db *gorm.DB, checkin *models.Checkin, includeRelations bool) gin.H {
	extra := checkin.ExtraData
	if extra == nil {
		extra = models.JSONMap{}
	}
	data := gin.H{
		"id":            checkin.ID,
		"user_id":       checkin.UserID,
		"temple_id":     checkin.TempleID,
		"amulet_id":     checkin.AmuletID,
		"points_earned": checkin.PointsEarned,
		"checkin_time":  checkin.CheckinTime,
		"notes":         checkin.Notes,
		"extra_data":    extra,
	}

	if includeRelations {
		var user models.User
		if err := db.First(&user, checkin.UserID).Error; err == nil {
			data["user"] = userPayload(db, &user, false)
		} else {
			data["user"] = nil
		}

		var temple models.Temple
		if err := db.First(&temple, checkin.TempleID).Error; err == nil {
			data["temple"] = temple
		} else {
			data["temple"] = nil
		}

		var amulet models.Amulet
		if err := db.First(&amulet, checkin.AmuletID).Error; err == nil {
			data["amulet"] = amuletPayload(db, &amulet, false)
		} else {
			data["amulet"] = nil
		}
	}

	return data
}

// streakDates loads the raw checkin timestamps used for streak computation,
// most recent first.
func streakDates(db *gorm.DB, userID uint) []time.Time {
	var times []time.Time
	if err := db.Model(&models.Checkin{}).
		Where("user_id = ?", userID).
		Order("checkin_time DESC").
		Pluck("checkin_time", &times).Error; err != nil {
		utils.Sugar.Warnf("streak query failed for user %d: %v", userID, err)
	}
	return times
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
