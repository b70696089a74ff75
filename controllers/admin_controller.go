package controllers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yuchia/temple-checkin/models"
	"github.com/yuchia/temple-checkin/utils"
)

// AdminController serves the management surface: temple CRUD, user moderation
// and platform-wide statistics. All handlers run behind AdminRequired.
type AdminController struct {
	db *gorm.DB
}

// NewAdminController creates an AdminController.
func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{db: db}
}

type templeRequest struct {
	Name          string   `json:"name"`
	MainDeity     string   `json:"main_deity"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	ImageURL      string   `json:"image_url"`
	BlessingBonus *int     `json:"blessing_bonus"`
	Phone         string   `json:"phone"`
	Website       string   `json:"website"`
	OpeningHours  string   `json:"opening_hours"`
}

// CreateTemple registers a new temple.
func (a *AdminController) CreateTemple(ctx *gin.Context) {
	var req templeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "請求必須包含 JSON 資料")
		return
	}

	bonus := 1
	if req.BlessingBonus != nil {
		bonus = *req.BlessingBonus
	}

	errs := utils.ValidateTemple(utils.TempleInput{
		Name:          req.Name,
		MainDeity:     req.MainDeity,
		Description:   req.Description,
		Address:       req.Address,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		BlessingBonus: bonus,
	})
	if len(errs) > 0 {
		utils.ErrorWithDetails(ctx, http.StatusBadRequest, "廟宇資料不正確", errs)
		return
	}

	temple := models.Temple{
		Name:          utils.Sanitize(strings.TrimSpace(req.Name)),
		MainDeity:     utils.Sanitize(strings.TrimSpace(req.MainDeity)),
		Description:   utils.Sanitize(strings.TrimSpace(req.Description)),
		Address:       utils.Sanitize(strings.TrimSpace(req.Address)),
		Latitude:      *req.Latitude,
		Longitude:     *req.Longitude,
		ImageURL:      strings.TrimSpace(req.ImageURL),
		BlessingBonus: bonus,
		Phone:         strings.TrimSpace(req.Phone),
		Website:       strings.TrimSpace(req.Website),
		OpeningHours:  strings.TrimSpace(req.OpeningHours),
		IsActive:      true,
	}
	if err := a.db.Create(&temple).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "廟宇建立失敗")
		return
	}

	utils.Created(ctx, "廟宇建立成功", gin.H{"temple": temple})
}

// UpdateTemple partially updates a temple, including toggling is_active.
// Existing check-ins keep their recorded points when the bonus changes.
func (a *AdminController) UpdateTemple(ctx *gin.Context) {
	var temple models.Temple
	if err := a.db.First(&temple, "id = ?", ctx.Param("id")).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "廟宇不存在")
		return
	}

	type request struct {
		Name          *string  `json:"name"`
		MainDeity     *string  `json:"main_deity"`
		Description   *string  `json:"description"`
		Address       *string  `json:"address"`
		Latitude      *float64 `json:"latitude"`
		Longitude     *float64 `json:"longitude"`
		ImageURL      *string  `json:"image_url"`
		BlessingBonus *int     `json:"blessing_bonus"`
		Phone         *string  `json:"phone"`
		Website       *string  `json:"website"`
		OpeningHours  *string  `json:"opening_hours"`
		IsActive      *bool    `json:"is_active"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "請求必須包含 JSON 資料")
		return
	}

	if req.Name != nil {
		temple.Name = utils.Sanitize(strings.TrimSpace(*req.Name))
	}
	if req.MainDeity != nil {
		temple.MainDeity = utils.Sanitize(strings.TrimSpace(*req.MainDeity))
	}
	if req.Description != nil {
		temple.Description = utils.Sanitize(strings.TrimSpace(*req.Description))
	}
	if req.Address != nil {
		temple.Address = utils.Sanitize(strings.TrimSpace(*req.Address))
	}
	if req.Latitude != nil {
		temple.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		temple.Longitude = *req.Longitude
	}
	if req.ImageURL != nil {
		temple.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.BlessingBonus != nil {
		temple.BlessingBonus = *req.BlessingBonus
	}
	if req.Phone != nil {
		temple.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Website != nil {
		temple.Website = strings.TrimSpace(*req.Website)
	}
	if req.OpeningHours != nil {
		temple.OpeningHours = strings.TrimSpace(*req.OpeningHours)
	}
	if req.IsActive != nil {
		temple.IsActive = *req.IsActive
	}

	lat, lng := temple.Latitude, temple.Longitude
	errs := utils.ValidateTemple(utils.TempleInput{
		Name:          temple.Name,
		MainDeity:     temple.MainDeity,
		Description:   temple.Description,
		Address:       temple.Address,
		Latitude:      &lat,
		Longitude:     &lng,
		BlessingBonus: temple.BlessingBonus,
	})
	if len(errs) > 0 {
		utils.ErrorWithDetails(ctx, http.StatusBadRequest, "廟宇資料不正確", errs)
		return
	}

	if err := a.db.Save(&temple).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "廟宇更新失敗")
		return
	}
	utils.InvalidateByPrefix(fmt.Sprintf("%s%d", templeCachePrefix, temple.ID))

	utils.SuccessMsg(ctx, "廟宇更新成功", gin.H{"temple": temple})
}

// DeleteTemple deactivates a temple. The row survives for checkin history.
func (a *AdminController) DeleteTemple(ctx *gin.Context) {
	var temple models.Temple
	if err := a.db.First(&temple, "id = ?", ctx.Param("id")).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "廟宇不存在")
		return
	}

	temple.IsActive = false
	if err := a.db.Save(&temple).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "廟宇刪除失敗")
		return
	}
	utils.InvalidateByPrefix(fmt.Sprintf("%s%d", templeCachePrefix, temple.ID))

	utils.SuccessMsg(ctx, "廟宇刪除成功", nil)
}

// ListTemples lists temples for management with a status filter (all, active,
// inactive) and keyword search.
func (a *AdminController) ListTemples(ctx *gin.Context) {
	page, perPage, errs := utils.ParsePagination(ctx.Query("page"), ctx.Query("per_page"))
	if len(errs) > 0 {
		utils.ErrorWithDetails(ctx, http.StatusBadRequest, "分頁參數不正確", errs)
		return
	}

	query := a.db.Model(&models.Temple{})
	switch ctx.DefaultQuery("status", "all") {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	case "all":
	default:
		utils.Error(ctx, http.StatusBadRequest, "status 參數不正確")
		return
	}
	if search := strings.TrimSpace(ctx.Query("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR main_deity LIKE ? OR address LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "廟宇查詢失敗")
		return
	}

	var temples []models.Temple
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&temples).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "廟宇查詢失敗")
		return
	}

	utils.Success(ctx, gin.H{
		"temples":    temples,
		"pagination": paginationMeta(page, perPage, total),
	})
}

// ListUsers lists accounts with keyword search on username and email.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	page, perPage, errs := utils.ParsePagination(ctx.Query("page"), ctx.Query("per_page"))
	if len(errs) > 0 {
		utils.ErrorWithDetails(ctx, http.StatusBadRequest, "分頁參數不正確", errs)
		return
	}

	query := a.db.Model(&models.User{})
	if search := strings.TrimSpace(ctx.Query("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "使用者查詢失敗")
		return
	}

	var users []models.User
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "使用者查詢失敗")
		return
	}

	items := make([]gin.H, 0, len(users))
	for i := range users {
		items = append(items, userPayload(a.db, &users[i], true))
	}

	utils.Success(ctx, gin.H{
		"users":      items,
		"pagination": paginationMeta(page, perPage, total),
	})
}

// ToggleUserStatus flips an account between active and suspended. Admins
// cannot suspend themselves.
func (a *AdminController) ToggleUserStatus(ctx *gin.Context) {
	admin, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return
	}

	var user models.User
	if err := a.db.First(&user, "id = ?", ctx.Param("id")).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "使用者不存在")
		return
	}
	if user.ID == admin.ID {
		utils.Error(ctx, http.StatusBadRequest, "不能停用自己的帳戶")
		return
	}

	user.IsActive = !user.IsActive
	if err := a.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "使用者狀態更新失敗")
		return
	}

	message := "帳戶已停用"
	if user.IsActive {
		message = "帳戶已啟用"
	}
	utils.SuccessMsg(ctx, message, gin.H{"user": userPayload(a.db, &user, true)})
}

// Stats returns the platform overview: totals, a 7-day daily series and the
// top temples by visits. The daily buckets are built in Go from the raw
// window so the query stays portable.
func (a *AdminController) Stats(ctx *gin.Context) {
	var totalUsers, activeUsers, totalTemples, activeTemples, totalCheckins int64
	_ = a.db.Model(&models.User{}).Count(&totalUsers).Error
	_ = a.db.Model(&models.User{}).Where("is_active = ?", true).Count(&activeUsers).Error
	_ = a.db.Model(&models.Temple{}).Count(&totalTemples).Error
	_ = a.db.Model(&models.Temple{}).Where("is_active = ?", true).Count(&activeTemples).Error
	_ = a.db.Model(&models.Checkin{}).Count(&totalCheckins).Error

	var totalPoints int64
	_ = a.db.Model(&models.Checkin{}).Select("COALESCE(SUM(points_earned), 0)").Scan(&totalPoints).Error

	utils.Success(ctx, gin.H{
		"overview": gin.H{
			"total_users":    totalUsers,
			"active_users":   activeUsers,
			"total_temples":  totalTemples,
			"active_temples": activeTemples,
			"total_checkins": totalCheckins,
			"total_points":   totalPoints,
		},
		"daily_checkins": a.dailyCheckins(7),
		"temple_ranking": a.templeRanking(10),
	})
}

// dailyCheckins buckets the last n days of check-ins by UTC date, oldest
// first, including empty days. Each bucket carries the check-in count and
// the number of distinct users that day.
func (a *AdminController) dailyCheckins(days int) []gin.H {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	var rows []struct {
		CheckinTime time.Time
		UserID      uint
	}
	if err := a.db.Model(&models.Checkin{}).
		Select("checkin_time, user_id").
		Where("checkin_time >= ?", start).
		Scan(&rows).Error; err != nil {
		utils.Sugar.Warnf("daily checkin query failed: %v", err)
	}

	counts := map[string]int{}
	visitors := map[string]map[uint]struct{}{}
	for _, row := range rows {
		date := row.CheckinTime.UTC().Format("2006-01-02")
		counts[date]++
		if visitors[date] == nil {
			visitors[date] = map[uint]struct{}{}
		}
		visitors[date][row.UserID] = struct{}{}
	}

	series := make([]gin.H, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, gin.H{
			"date":         date,
			"count":        counts[date],
			"unique_users": len(visitors[date]),
		})
	}
	return series
}

// templeRanking returns the most-visited temples with their distinct
// visitor counts.
func (a *AdminController) templeRanking(limit int) []gin.H {
	var rows []struct {
		TempleID       uint
		Name           string
		MainDeity      string
		CheckinCount   int64
		UniqueVisitors int64
	}
	if err := a.db.Model(&models.Checkin{}).
		Select("checkins.temple_id AS temple_id, temples.name AS name, temples.main_deity AS main_deity, COUNT(checkins.id) AS checkin_count, COUNT(DISTINCT checkins.user_id) AS unique_visitors").
		Joins("JOIN temples ON temples.id = checkins.temple_id").
		Group("checkins.temple_id, temples.name, temples.main_deity").
		Order("checkin_count DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		utils.Sugar.Warnf("temple ranking query failed: %v", err)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CheckinCount > rows[j].CheckinCount })

	ranking := make([]gin.H, 0, len(rows))
	for i, row := range rows {
		ranking = append(ranking, gin.H{
			"rank":            i + 1,
			"temple_id":       row.TempleID,
			"name":            row.Name,
			"main_deity":      row.MainDeity,
			"checkin_count":   row.CheckinCount,
			"unique_visitors": row.UniqueVisitors,
		})
	}
	return ranking
}
