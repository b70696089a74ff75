package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yuchia/temple-checkin/models"
	"github.com/yuchia/temple-checkin/utils"
)

// AmuletController manages the user's amulet collection.
type AmuletController struct {
	db *gorm.DB
}

// NewAmuletController creates an AmuletController.
func NewAmuletController(db *gorm.DB) *AmuletController {
	return &AmuletController{db: db}
}

// List returns the current user's active amulets with usage stats.
func (a *AmuletController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return
	}

	var amulets []models.Amulet
	if err := a.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&amulets).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "平安符查詢失敗")
		return
	}

	items := make([]gin.H, 0, len(amulets))
	for i := range amulets {
		items = append(items, amuletPayload(a.db, &amulets[i], true))
	}

	utils.Success(ctx, gin.H{
		"amulets": items,
		"count":   len(items),
	})
}

// Create registers a new amulet. When no UID is supplied a random one is
// generated, retrying on the unlikely collision.
func (a *AmuletController) Create(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return
	}

	type request struct {
		Name        string `json:"name"`
		UID         string `json:"uid"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "請求必須包含 JSON 資料")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = user.Username + "的平安符"
	}

	uid := strings.ToUpper(strings.TrimSpace(req.UID))
	if uid == "" {
		generated, err := a.generateUID()
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "UID 產生失敗")
			return
		}
		uid = generated
	}

	if errs := utils.ValidateAmulet(name, uid); len(errs) > 0 {
		utils.ErrorWithDetails(ctx, http.StatusBadRequest, "平安符資料不正確", errs)
		return
	}

	var existing models.Amulet
	if err := a.db.Where("uid = ?", uid).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusBadRequest, "此 UID 已被使用")
		return
	}

	amulet := models.Amulet{
		UserID:      user.ID,
		UID:         uid,
		Name:        utils.Sanitize(name),
		Description: utils.Sanitize(strings.TrimSpace(req.Description)),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		IsActive:    true,
	}
	if err := a.db.Create(&amulet).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "平安符建立失敗")
		return
	}

	utils.Created(ctx, "平安符建立成功", gin.H{
		"amulet": amuletPayload(a.db, &amulet, false),
	})
}

// Update changes name, description or image of an amulet the user owns.
func (a *AmuletController) Update(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return
	}

	var amulet models.Amulet
	if err := a.db.Where("id = ? AND user_id = ? AND is_active = ?", ctx.Param("id"), user.ID, true).
		First(&amulet).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "平安符不存在或不屬於當前用戶")
		return
	}

	type request struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		ImageURL    *string `json:"image_url"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "請求必須包含 JSON 資料")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if errs := utils.ValidateAmulet(name, amulet.UID); len(errs) > 0 {
			utils.ErrorWithDetails(ctx, http.StatusBadRequest, "平安符資料不正確", errs)
			return
		}
		amulet.Name = utils.Sanitize(name)
	}
	if req.Description != nil {
		amulet.Description = utils.Sanitize(strings.TrimSpace(*req.Description))
	}
	if req.ImageURL != nil {
		amulet.ImageURL = strings.TrimSpace(*req.ImageURL)
	}

	if err := a.db.Save(&amulet).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "平安符更新失敗")
		return
	}

	utils.SuccessMsg(ctx, "平安符更新成功", gin.H{
		"amulet": amuletPayload(a.db, &amulet, false),
	})
}

// Delete soft-deletes an amulet the user owns. History rows stay attached.
func (a *AmuletController) Delete(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return
	}

	var amulet models.Amulet
	if err := a.db.Where("id = ? AND user_id = ? AND is_active = ?", ctx.Param("id"), user.ID, true).
		First(&amulet).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "平安符不存在或不屬於當前用戶")
		return
	}

	amulet.IsActive = false
	if err := a.db.Save(&amulet).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "平安符刪除失敗")
		return
	}

	utils.SuccessMsg(ctx, "平安符刪除成功", nil)
}

// generateUID derives a short uppercase hex UID from a fresh UUID. Retired
// UIDs are never freed so the uniqueness check covers inactive rows too.
func (a *AmuletController) generateUID() (string, error) {
	for i := 0; i < 5; i++ {
		candidate := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		var count int64
		if err := a.db.Model(&models.Amulet{}).Where("uid = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", errUIDExhausted
}

var errUIDExhausted = errors.New("could not generate a unique amulet uid")
