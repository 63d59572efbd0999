// stats.go

package gateway

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/jacl-coder/WordArena-Server/internal/models"
	"github.com/jacl-coder/WordArena-Server/pkg/db"
)

// StatsHandler 战绩处理器
type StatsHandler struct {
	redisLeaderboard *models.RedisLeaderboard
	useRedis         bool
}

// NewStatsHandler 创建战绩处理器
func NewStatsHandler() *StatsHandler {
	useRedis := db.RedisClient != nil
	var redisLeaderboard *models.RedisLeaderboard

	if useRedis {
		redisLeaderboard = models.NewRedisLeaderboard()
	}

	return &StatsHandler{
		redisLeaderboard: redisLeaderboard,
		useRedis:         useRedis,
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *StatsHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/stats/combatant/", h.handleCombatantStats)
	mux.HandleFunc("/stats/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("/stats/leaderboard/refresh", h.handleRefreshLeaderboard)
}

// StatsResponse 战绩响应
type StatsResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// LeaderboardResponse 排行榜响应
type LeaderboardResponse struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message"`
	Data    []models.LeaderboardEntry `json:"data"`
}

// handleCombatantStats 处理战斗者战绩查询
func (h *StatsHandler) handleCombatantStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	// 提取战斗者ID
	path := strings.TrimPrefix(r.URL.Path, "/stats/combatant/")
	combatantID, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		h.sendErrorResponse(w, "无效的战斗者ID", http.StatusBadRequest)
		return
	}

	// 查询战斗者战绩统计
	stats, err := h.getCombatantStats(combatantID)
	if err != nil {
		if err == sql.ErrNoRows {
			h.sendErrorResponse(w, "战斗者不存在", http.StatusNotFound)
			return
		}
		log.Printf("查询战斗者战绩失败: %v", err)
		h.sendErrorResponse(w, "查询战斗者战绩失败", http.StatusInternalServerError)
		return
	}

	// 补充评分榜排名
	if h.useRedis {
		if rank, err := h.redisLeaderboard.GetCombatantRank(combatantID, models.LeaderboardRating); err == nil {
			stats.Rank = rank
		}
	}

	// 返回成功响应
	h.sendSuccessResponse(w, "查询成功", stats)
}

// handleLeaderboard 处理排行榜查询
func (h *StatsHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	// 解析查询参数
	query := r.URL.Query()
	leaderboardType := query.Get("type")
	if leaderboardType == "" {
		leaderboardType = "rating" // 默认按评分排序
	}

	limit := 50 // 默认限制
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	// 验证排行榜类型
	validTypes := map[string]bool{
		"rating":  true,
		"wins":    true,
		"winrate": true,
		"battles": true,
	}

	if !validTypes[leaderboardType] {
		h.sendErrorResponse(w, "无效的排行榜类型", http.StatusBadRequest)
		return
	}

	// 查询排行榜
	leaderboard, err := h.getLeaderboard(models.LeaderboardType(leaderboardType), limit)
	if err != nil {
		log.Printf("查询排行榜失败: %v", err)
		h.sendErrorResponse(w, "查询排行榜失败", http.StatusInternalServerError)
		return
	}

	log.Printf("排行榜查询结果: 类型=%s, 数量=%d", leaderboardType, len(leaderboard))

	// 返回成功响应
	h.sendLeaderboardResponse(w, "查询成功", leaderboard)
}

// handleRefreshLeaderboard 处理排行榜刷新
func (h *StatsHandler) handleRefreshLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendErrorResponse(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	if !h.useRedis {
		h.sendErrorResponse(w, "Redis未启用，无需刷新", http.StatusBadRequest)
		return
	}

	// 刷新排行榜
	if err := h.redisLeaderboard.RefreshLeaderboard(); err != nil {
		log.Printf("刷新排行榜失败: %v", err)
		h.sendErrorResponse(w, "刷新排行榜失败", http.StatusInternalServerError)
		return
	}

	// 返回成功响应
	h.sendSuccessResponse(w, "排行榜刷新成功", nil)
}

// sendSuccessResponse 发送成功响应
func (h *StatsHandler) sendSuccessResponse(w http.ResponseWriter, message string, data interface{}) {
	resp := StatsResponse{
		Success: true,
		Message: message,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}

// sendLeaderboardResponse 发送排行榜响应
func (h *StatsHandler) sendLeaderboardResponse(w http.ResponseWriter, message string, data []models.LeaderboardEntry) {
	resp := LeaderboardResponse{
		Success: true,
		Message: message,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}

// sendErrorResponse 发送错误响应
func (h *StatsHandler) sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	resp := StatsResponse{
		Success: false,
		Message: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("编码错误响应失败: %v", err)
	}
}

// 数据库查询方法

// getCombatantStats 获取战斗者战绩统计
func (h *StatsHandler) getCombatantStats(combatantID int64) (*models.LeaderboardEntry, error) {
	query := `
		SELECT
			c.id AS combatant_id,
			c.name,
			c.rating,
			c.wins,
			c.losses,
			c.total_battles,
			CASE WHEN c.total_battles > 0 THEN (c.wins * 100.0 / c.total_battles) ELSE 0 END AS win_rate
		FROM combatants c
		WHERE c.id = $1
	`

	var stats models.LeaderboardEntry
	err := db.DB.QueryRow(query, combatantID).Scan(
		&stats.CombatantID, &stats.Name, &stats.Rating,
		&stats.Wins, &stats.Losses, &stats.TotalBattles, &stats.WinRate,
	)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// getLeaderboard 获取排行榜
func (h *StatsHandler) getLeaderboard(leaderboardType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	// 优先使用Redis
	if h.useRedis {
		entries, err := h.redisLeaderboard.GetLeaderboard(leaderboardType, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}

		// Redis失败或无数据时，刷新排行榜并重试
		log.Printf("Redis排行榜查询失败或无数据，刷新排行榜: %v", err)
		if refreshErr := h.redisLeaderboard.RefreshLeaderboard(); refreshErr == nil {
			if entries, err := h.redisLeaderboard.GetLeaderboard(leaderboardType, limit); err == nil {
				return entries, nil
			}
		}

		log.Printf("Redis排行榜刷新失败，回退到数据库查询")
	}

	// 回退到数据库查询
	return h.getLeaderboardFromDB(leaderboardType, limit)
}

// getLeaderboardFromDB 从数据库获取排行榜
func (h *StatsHandler) getLeaderboardFromDB(leaderboardType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	var orderBy string
	var scoreExpr string

	switch leaderboardType {
	case models.LeaderboardWins:
		scoreExpr = "c.wins"
	case models.LeaderboardWinRate:
		scoreExpr = "CASE WHEN c.total_battles > 0 THEN (c.wins * 100.0 / c.total_battles) ELSE 0 END"
	case models.LeaderboardBattles:
		scoreExpr = "c.total_battles"
	default:
		scoreExpr = "c.rating"
	}
	orderBy = scoreExpr + " DESC"

	query := fmt.Sprintf(`
		SELECT
			c.id AS combatant_id,
			c.name,
			c.rating,
			c.wins,
			c.losses,
			c.total_battles,
			CASE WHEN c.total_battles > 0 THEN (c.wins * 100.0 / c.total_battles) ELSE 0 END AS win_rate,
			(%s) AS score,
			ROW_NUMBER() OVER (ORDER BY %s) AS rank
		FROM combatants c
		ORDER BY %s
		LIMIT $1
	`, scoreExpr, orderBy, orderBy)

	rows, err := db.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("查询排行榜失败: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		err := rows.Scan(
			&entry.CombatantID, &entry.Name, &entry.Rating, &entry.Wins,
			&entry.Losses, &entry.TotalBattles, &entry.WinRate, &entry.Score, &entry.Rank,
		)
		if err != nil {
			return nil, fmt.Errorf("扫描排行榜数据失败: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历排行榜数据失败: %w", err)
	}

	return entries, nil
}
