package controllers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yuchia/temple-checkin/models"
	"github.com/yuchia/temple-checkin/utils"
)

const (
	templeCachePrefix  = "temple:detail:"
	defaultNearbyKm    = 5.0
	maxNearbyKm        = 50.0
	defaultNearbyLimit = 20
	maxNearbyLimit     = 100
)

// TempleController serves the public temple directory: listing, detail with
// visit stats, and proximity search.
type TempleController struct {
	db *gorm.DB
}

// NewTempleController creates a TempleController.
func NewTempleController(db *gorm.DB) *TempleController {
	return &TempleController{db: db}
}

// List returns active temples, optionally filtered by a keyword matched
// against name, deity and address.
func (t *TempleController) List(ctx *gin.Context) {
	page, perPage, errs := utils.ParsePagination(ctx.Query("page"), ctx.Query("per_page"))
	if len(errs) > 0 {
		utils.ErrorWithDetails(ctx, http.StatusBadRequest, "分頁參數不正確", errs)
		return
	}

	query := t.db.Model(&models.Temple{}).Where("is_active = ?", true)
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

// Get returns one temple with its visit stats. When lat/lng query params are
// present the straight-line distance is attached. Detail payloads are cached
// in Redis; the cache is bypassed for the distance variant.
func (t *TempleController) Get(ctx *gin.Context) {
	templeID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, "廟宇不存在")
		return
	}

	latStr, lngStr := ctx.Query("lat"), ctx.Query("lng")
	withDistance := latStr != "" && lngStr != ""

	cacheKey := fmt.Sprintf("%s%d", templeCachePrefix, templeID)
	if !withDistance {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			var cached gin.H
			if json.Unmarshal(b, &cached) == nil {
				utils.Success(ctx, cached)
				return
			}
		}
	}

	var temple models.Temple
	if err := t.db.Where("id = ? AND is_active = ?", templeID, true).First(&temple).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "廟宇不存在")
		return
	}

	data := gin.H{
		"temple": temple,
		"stats":  t.templeStats(temple.ID),
	}

	if withDistance {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			utils.Error(ctx, http.StatusBadRequest, "座標格式不正確")
			return
		}
		distance := utils.HaversineKm(lat, lng, temple.Latitude, temple.Longitude)
		data["distance"] = math.Round(distance*100) / 100
	} else {
		utils.CacheSetJSON(cacheKey, data, 10*time.Minute)
	}

	utils.Success(ctx, data)
}

// Nearby finds active temples within a radius of the given point, nearest
// first. A coarse bounding box narrows the candidate set before the exact
// great-circle distance is computed.
func (t *TempleController) Nearby(ctx *gin.Context) {
	latStr, lngStr := ctx.Query("lat"), ctx.Query("lng")
	if latStr == "" || lngStr == "" {
		utils.Error(ctx, http.StatusBadRequest, "lat 和 lng 為必填參數")
		return
	}

	lat, latErr := strconv.ParseFloat(latStr, 64)
	lng, lngErr := strconv.ParseFloat(lngStr, 64)
	if latErr != nil || lngErr != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		utils.Error(ctx, http.StatusBadRequest, "座標格式不正確")
		return
	}

	radius := defaultNearbyKm
	if s := ctx.Query("radius"); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil || r <= 0 {
			utils.Error(ctx, http.StatusBadRequest, "搜尋半徑格式不正確")
			return
		}
		radius = math.Min(r, maxNearbyKm)
	}

	limit := defaultNearbyLimit
	if s := ctx.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			utils.Error(ctx, http.StatusBadRequest, "數量上限格式不正確")
			return
		}
		if n > maxNearbyLimit {
			n = maxNearbyLimit
		}
		limit = n
	}

	latDelta, lngDelta := utils.BoundingBoxDeltas(lat, radius)

	var candidates []models.Temple
	if err := t.db.Where("is_active = ?", true).
		Where("latitude BETWEEN ? AND ?", lat-latDelta, lat+latDelta).
		Where("longitude BETWEEN ? AND ?", lng-lngDelta, lng+lngDelta).
		Find(&candidates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "廟宇查詢失敗")
		return
	}

	type templeWithDistance struct {
		temple   models.Temple
		distance float64
	}
	within := make([]templeWithDistance, 0, len(candidates))
	for _, temple := range candidates {
		d := utils.HaversineKm(lat, lng, temple.Latitude, temple.Longitude)
		if d <= radius {
			within = append(within, templeWithDistance{temple: temple, distance: d})
		}
	}
	sort.Slice(within, func(i, j int) bool { return within[i].distance < within[j].distance })
	if len(within) > limit {
		within = within[:limit]
	}

	results := make([]gin.H, 0, len(within))
	for _, item := range within {
		results = append(results, gin.H{
			"temple":   item.temple,
			"distance": math.Round(item.distance*100) / 100,
		})
	}

	utils.Success(ctx, gin.H{
		"temples":   results,
		"count":     len(results),
		"radius_km": radius,
	})
}

// templeStats aggregates visit counts for one temple. The hour histogram is
// computed in Go so it works identically on every SQL backend.
func (t *TempleController) templeStats(templeID uint) gin.H {
	var checkinCount int64
	_ = t.db.Model(&models.Checkin{}).Where("temple_id = ?", templeID).Count(&checkinCount).Error

	var uniqueVisitors int64
	_ = t.db.Model(&models.Checkin{}).Where("temple_id = ?", templeID).Distinct("user_id").Count(&uniqueVisitors).Error

	var times []time.Time
	if err := t.db.Model(&models.Checkin{}).
		Where("temple_id = ?", templeID).
		Pluck("checkin_time", &times).Error; err != nil {
		utils.Sugar.Warnf("temple stats query failed for temple %d: %v", templeID, err)
	}

	hourCounts := map[int]int{}
	for _, ts := range times {
		hourCounts[ts.UTC().Hour()]++
	}
	popular := make([]gin.H, 0, len(hourCounts))
	for hour, count := range hourCounts {
		popular = append(popular, gin.H{"hour": hour, "count": count})
	}
	sort.Slice(popular, func(i, j int) bool {
		ci, cj := popular[i]["count"].(int), popular[j]["count"].(int)
		if ci != cj {
			return ci > cj
		}
		return popular[i]["hour"].(int) < popular[j]["hour"].(int)
	})
	if len(popular) > 5 {
		popular = popular[:5]
	}

	return gin.H{
		"checkin_count":   checkinCount,
		"unique_visitors": uniqueVisitors,
		"popular_times":   popular,
	}
}
