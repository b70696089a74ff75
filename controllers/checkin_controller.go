package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yuchia/temple-checkin/config"
	"github.com/yuchia/temple-checkin/models"
	"github.com/yuchia/temple-checkin/utils"
)

var errCooldown = errors.New("checkin cooldown active")

// CheckinController handles blessing check-ins and the per-user history and
// stats views.
type CheckinController struct {
	db *gorm.DB
}

// NewCheckinController creates a CheckinController.
func NewCheckinController(db *gorm.DB) *CheckinController {
	return &CheckinController{db: db}
}

// Create records a check-in at a temple with one of the user's amulets and
// credits blessing points. One check-in per user per temple per cooldown
// window; the user row is locked inside the transaction so concurrent
// requests cannot double-credit.
func (c *CheckinController) Create(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return
	}

	type request struct {
		TempleID  uint           `json:"temple_id"`
		AmuletUID string         `json:"amulet_uid"`
		Notes     string         `json:"notes"`
		ExtraData models.JSONMap `json:"extra_data"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "請求必須包含 JSON 資料")
		return
	}

	if errs := utils.ValidateCheckin(req.TempleID, req.AmuletUID); len(errs) > 0 {
		utils.ErrorWithDetails(ctx, http.StatusBadRequest, "打卡資料不正確", errs)
		return
	}

	var temple models.Temple
	if err := c.db.Where("id = ? AND is_active = ?", req.TempleID, true).First(&temple).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "廟宇不存在")
		return
	}

	uid := strings.ToUpper(strings.TrimSpace(req.AmuletUID))
	var amulet models.Amulet
	if err := c.db.Where("uid = ? AND user_id = ? AND is_active = ?", uid, user.ID, true).First(&amulet).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "平安符不存在或不屬於當前用戶")
		return
	}

	cfg := config.Get()
	cooldown := time.Duration(cfg.CheckinCooldownHours) * time.Hour
	points := utils.CalculatePoints(cfg.CheckinBasePoints, temple.BlessingBonus, 0)

	checkin := models.Checkin{
		UserID:       user.ID,
		TempleID:     temple.ID,
		AmuletID:     amulet.ID,
		PointsEarned: points,
		Notes:        utils.Sanitize(strings.TrimSpace(req.Notes)),
		ExtraData:    req.ExtraData,
	}

	var lockedUser models.User
	err := c.db.Transaction(func(tx *gorm.DB) error {
		// SQLite serializes writers on its own and rejects FOR UPDATE.
		lockTx := tx
		if tx.Dialector.Name() == "mysql" {
			lockTx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := lockTx.First(&lockedUser, user.ID).Error; err != nil {
			return err
		}

		// Cooldown is checked under the row lock so a concurrent request
		// from the same user serializes behind this transaction.
		var recent int64
		since := time.Now().UTC().Add(-cooldown)
		if err := tx.Model(&models.Checkin{}).
			Where("user_id = ? AND temple_id = ? AND checkin_time >= ?", user.ID, temple.ID, since).
			Count(&recent).Error; err != nil {
			return err
		}
		if recent > 0 {
			return errCooldown
		}

		if err := tx.Create(&checkin).Error; err != nil {
			return err
		}

		lockedUser.BlessingPoints += points
		return tx.Model(&lockedUser).Update("blessing_points", lockedUser.BlessingPoints).Error
	})
	if err != nil {
		if errors.Is(err, errCooldown) {
			utils.Error(ctx, http.StatusBadRequest, "您在24小時內已在此廟宇打卡過了")
			return
		}
		utils.Sugar.Errorf("checkin transaction failed for user %d temple %d: %v", user.ID, temple.ID, err)
		utils.Error(ctx, http.StatusInternalServerError, "打卡失敗")
		return
	}

	utils.Created(ctx, fmt.Sprintf("打卡成功，獲得 %d 點福報", points), gin.H{
		"checkin":               checkinPayload(c.db, &checkin, true),
		"points_earned":         points,
		"total_blessing_points": lockedUser.BlessingPoints,
		"blessing_level":        utils.GetBlessingLevel(lockedUser.BlessingPoints),
	})
}

// History lists the current user's check-ins, newest first.
func (c *CheckinController) History(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return
	}

	page, perPage, errs := utils.ParsePagination(ctx.Query("page"), ctx.Query("per_page"))
	if len(errs) > 0 {
		utils.ErrorWithDetails(ctx, http.StatusBadRequest, "分頁參數不正確", errs)
		return
	}

	query := c.db.Model(&models.Checkin{}).Where("user_id = ?", userID)
	if s := ctx.Query("temple_id"); s != "" {
		query = query.Where("temple_id = ?", s)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "打卡記錄查詢失敗")
		return
	}

	var checkins []models.Checkin
	if err := query.Order("checkin_time DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&checkins).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "打卡記錄查詢失敗")
		return
	}

	items := make([]gin.H, 0, len(checkins))
	for i := range checkins {
		items = append(items, checkinPayload(c.db, &checkins[i], true))
	}

	utils.Success(ctx, gin.H{
		"checkins":   items,
		"pagination": paginationMeta(page, perPage, total),
	})
}

// Stats returns the current user's check-in totals, streak and blessing level.
func (c *CheckinController) Stats(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return
	}

	totals := checkinTotals(c.db, user.ID)
	totals["streak_days"] = utils.StreakDays(streakDates(c.db, user.ID), time.Now())
	totals["blessing_points"] = user.BlessingPoints
	totals["blessing_level"] = utils.GetBlessingLevel(user.BlessingPoints)

	utils.Success(ctx, totals)
}
