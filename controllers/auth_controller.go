package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yuchia/temple-checkin/config"
	"github.com/yuchia/temple-checkin/middleware"
	"github.com/yuchia/temple-checkin/models"
	"github.com/yuchia/temple-checkin/utils"
)

// AuthController handles registration, login, token lifecycle and amulet
// binding for the authenticated account.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a local account with bcrypt hashing and issues a token pair.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "請求必須包含 JSON 資料")
		return
	}

	username := strings.TrimSpace(req.Username)
	if errs := utils.ValidateUsername(username); len(errs) > 0 {
		utils.ErrorWithDetails(ctx, http.StatusBadRequest, "使用者名稱格式不正確", errs)
		return
	}

	emailErrs, email := utils.ValidateEmail(req.Email)
	if len(emailErrs) > 0 {
		utils.ErrorWithDetails(ctx, http.StatusBadRequest, "電子郵件格式不正確", emailErrs)
		return
	}

	if errs := utils.ValidatePassword(req.Password); len(errs) > 0 {
		utils.ErrorWithDetails(ctx, http.StatusBadRequest, "密碼格式不正確", errs)
		return
	}

	var existing models.User
	if err := a.db.Where("username = ?", username).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusBadRequest, "使用者名稱已存在")
		return
	}
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusBadRequest, "電子郵件已被註冊")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "密碼處理失敗")
		return
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "註冊失敗")
		return
	}

	access, refresh, err := utils.GenerateTokenPair(user.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Token 產生失敗")
		return
	}

	utils.Created(ctx, "註冊成功", gin.H{
		"user":          userPayload(a.db, &user, false),
		"access_token":  access,
		"refresh_token": refresh,
		"message":       "註冊成功，請拿到實體平安符後進行綁定",
	})
}

// Login verifies email credentials and issues a token pair plus the user's
// active amulets.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "請求必須包含 JSON 資料")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		utils.Error(ctx, http.StatusBadRequest, "電子郵件和密碼為必填欄位")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "電子郵件或密碼錯誤")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, "電子郵件或密碼錯誤")
		return
	}
	if !user.IsActive {
		utils.Error(ctx, http.StatusForbidden, "帳戶已被停用")
		return
	}

	access, refresh, err := utils.GenerateTokenPair(user.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Token 產生失敗")
		return
	}

	var amulets []models.Amulet
	_ = a.db.Where("user_id = ? AND is_active = ?", user.ID, true).Find(&amulets).Error
	amuletData := make([]gin.H, 0, len(amulets))
	for i := range amulets {
		amuletData = append(amuletData, amuletPayload(a.db, &amulets[i], false))
	}

	utils.SuccessMsg(ctx, "登入成功", gin.H{
		"user":          userPayload(a.db, &user, true),
		"amulets":       amuletData,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Refresh exchanges a valid refresh token for a new access token.
func (a *AuthController) Refresh(ctx *gin.Context) {
	tokenString, ok := middleware.BearerToken(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "缺少或無效的授權標頭")
		return
	}

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "Token 無效或已過期")
		return
	}
	if claims.TokenType != utils.TokenTypeRefresh {
		utils.Error(ctx, http.StatusUnauthorized, "需要 refresh token")
		return
	}
	if utils.IsTokenRevoked(claims.ID) {
		utils.Error(ctx, http.StatusUnauthorized, "Token 已失效")
		return
	}

	var user models.User
	if err := a.db.First(&user, claims.UserID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "使用者不存在")
		return
	}
	if !user.IsActive {
		utils.Error(ctx, http.StatusForbidden, "帳戶已被停用")
		return
	}

	access, err := utils.GenerateToken(user.ID, utils.TokenTypeAccess, accessTokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Token 產生失敗")
		return
	}

	utils.SuccessMsg(ctx, "Token 刷新成功", gin.H{"access_token": access})
}

// Logout revokes the presented access token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	tokenString, ok := middleware.BearerToken(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "缺少或無效的授權標頭")
		return
	}

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "Token 無效或已過期")
		return
	}

	expiresAt := time.Now().Add(accessTokenTTL())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.RevokeToken(claims.ID, expiresAt)

	utils.SuccessMsg(ctx, "登出成功", nil)
}

// Me returns the current user's info together with their active amulets.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "使用者不存在")
		return
	}

	var amulets []models.Amulet
	_ = a.db.Where("user_id = ? AND is_active = ?", user.ID, true).Find(&amulets).Error
	amuletData := make([]gin.H, 0, len(amulets))
	for i := range amulets {
		amuletData = append(amuletData, amuletPayload(a.db, &amulets[i], true))
	}

	utils.Success(ctx, gin.H{
		"user":    userPayload(a.db, &user, true),
		"amulets": amuletData,
	})
}

// BindAmulet binds a physical amulet UID to the current account.
func (a *AuthController) BindAmulet(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return
	}

	type request struct {
		AmuletUID   string `json:"amulet_uid"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "請求必須包含 JSON 資料")
		return
	}

	uid := strings.ToUpper(strings.TrimSpace(req.AmuletUID))
	if uid == "" {
		utils.Error(ctx, http.StatusBadRequest, "平安符 UID 為必填欄位")
		return
	}
	if len(uid) > 50 {
		utils.Error(ctx, http.StatusBadRequest, "UID 不能超過50個字元")
		return
	}

	// The unique index also covers unbound (inactive) amulets: a retired UID
	// stays taken.
	var existing models.Amulet
	if err := a.db.Where("uid = ?", uid).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusBadRequest, "此平安符已被綁定")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = user.Username + "的平安符"
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "用戶綁定的平安符"
	}

	amulet := models.Amulet{
		UserID:      user.ID,
		UID:         uid,
		Name:        utils.Sanitize(name),
		Description: utils.Sanitize(description),
		IsActive:    true,
	}
	if err := a.db.Create(&amulet).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "綁定失敗")
		return
	}

	utils.Created(ctx, "平安符綁定成功", gin.H{
		"amulet": amuletPayload(a.db, &amulet, false),
	})
}

// UnbindAmulet soft-deletes an amulet owned by the current account. The row
// is kept for checkin history.
func (a *AuthController) UnbindAmulet(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return
	}

	var amulet models.Amulet
	if err := a.db.Where("id = ? AND user_id = ?", ctx.Param("id"), user.ID).First(&amulet).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "平安符不存在或不屬於當前用戶")
		return
	}

	amulet.IsActive = false
	if err := a.db.Save(&amulet).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "解綁失敗")
		return
	}

	utils.SuccessMsg(ctx, "平安符解綁成功", nil)
}

func accessTokenTTL() time.Duration {
	return time.Duration(config.Get().JWTAccessExpireHours) * time.Hour
}
