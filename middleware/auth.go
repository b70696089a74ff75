package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yuchia/temple-checkin/models"
	"github.com/yuchia/temple-checkin/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextTokenIDKey stores the token's JTI inside Gin context.
	ContextTokenIDKey = "token_id"
	// ContextUserKey stores the loaded *models.User when ActiveUserRequired ran.
	ContextUserKey = "current_user"
)

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// AuthRequired ensures the request carries a valid, non-revoked access token.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, ok := BearerToken(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, "缺少或無效的授權標頭")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, "Token 無效或已過期")
			ctx.Abort()
			return
		}

		if claims.TokenType != utils.TokenTypeAccess {
			utils.Error(ctx, http.StatusUnauthorized, "Token 類型不正確")
			ctx.Abort()
			return
		}

		if utils.IsTokenRevoked(claims.ID) {
			utils.Error(ctx, http.StatusUnauthorized, "Token 已失效")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextTokenIDKey, claims.ID)
		ctx.Next()
	}
}

// ActiveUserRequired loads the authenticated user and rejects missing or
// deactivated accounts. Must run after AuthRequired.
func ActiveUserRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := lookupUser(ctx, db)
		if err != nil {
			ctx.Abort()
			return
		}
		if !user.IsActive {
			utils.Error(ctx, http.StatusForbidden, "帳戶已被停用")
			ctx.Abort()
			return
		}
		ctx.Set(ContextUserKey, user)
		ctx.Next()
	}
}

// AdminRequired additionally requires the admin flag. Must run after AuthRequired.
func AdminRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := lookupUser(ctx, db)
		if err != nil {
			ctx.Abort()
			return
		}
		if !user.IsActive || !user.IsAdmin {
			utils.Error(ctx, http.StatusForbidden, "需要管理員權限")
			ctx.Abort()
			return
		}
		ctx.Set(ContextUserKey, user)
		ctx.Next()
	}
}

// lookupUser resolves the context user ID into a row, writing the error
// response itself on failure.
func lookupUser(ctx *gin.Context, db *gorm.DB) (*models.User, error) {
	value, exists := ctx.Get(ContextUserIDKey)
	if !exists {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return nil, errors.New("no user in context")
	}
	userID, ok := value.(uint)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "未授權")
		return nil, errors.New("bad user id type")
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "使用者不存在")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, "使用者查詢失敗")
		}
		return nil, err
	}
	return &user, nil
}
