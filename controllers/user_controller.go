package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yuchia/temple-checkin/models"
	"github.com/yuchia/temple-checkin/utils"
)

// UserController serves the profile endpoints.
type UserController struct {
	db *gorm.DB
}

// NewUserController creates a UserController.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// GetProfile returns the current user's profile with stats.
func (u *UserController) GetProfile(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return
	}

	utils.Success(ctx, gin.H{
		"user": userPayload(u.db, user, true),
	})
}

// UpdateProfile changes username or profile image. A username change goes
// through the same validation and uniqueness checks as registration.
func (u *UserController) UpdateProfile(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return
	}

	type request struct {
		Username     *string `json:"username"`
		ProfileImage *string `json:"profile_image"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "請求必須包含 JSON 資料")
		return
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != user.Username {
			if errs := utils.ValidateUsername(username); len(errs) > 0 {
				utils.ErrorWithDetails(ctx, http.StatusBadRequest, "使用者名稱格式不正確", errs)
				return
			}
			var existing models.User
			if err := u.db.Where("username = ? AND id <> ?", username, user.ID).First(&existing).Error; err == nil {
				utils.Error(ctx, http.StatusBadRequest, "使用者名稱已存在")
				return
			}
			user.Username = username
		}
	}
	if req.ProfileImage != nil {
		user.ProfileImage = strings.TrimSpace(*req.ProfileImage)
	}

	if err := u.db.Save(user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "個人資料更新失敗")
		return
	}

	utils.SuccessMsg(ctx, "個人資料更新成功", gin.H{
		"user": userPayload(u.db, user, true),
	})
}

// Stats returns the current user's aggregate check-in figures, including the
// consecutive-day streak.
func (u *UserController) Stats(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return
	}

	stats := userStats(u.db, user)
	stats["streak_days"] = utils.StreakDays(streakDates(u.db, user.ID), time.Now())

	utils.Success(ctx, stats)
}
