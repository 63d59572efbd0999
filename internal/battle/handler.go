// handler.go

package battle

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/jacl-coder/WordArena-Server/internal/engine"
	"github.com/jacl-coder/WordArena-Server/internal/models"
)

// BattleHandler 战斗结算处理器
type BattleHandler struct {
	service *BattleService
}

// NewBattleHandler 创建战斗结算处理器
func NewBattleHandler(service *BattleService) *BattleHandler {
	return &BattleHandler{
		service: service,
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *BattleHandler) RegisterHandlers(mux *http.ServeMux) {
	// 健康检查端点
	mux.HandleFunc("/health", h.handleHealth)

	// 战斗相关端点
	mux.HandleFunc("/battle/resolve", h.handleResolve)
	mux.HandleFunc("/battle/record/", h.handleBattleRecord)
	mux.HandleFunc("/battle/history/", h.handleBattleHistory)
	mux.HandleFunc("/battle/restriction/", h.handleRestrictionStatus)
}

// handleHealth 处理健康检查请求
func (h *BattleHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	if h.service == nil {
		http.Error(w, "服务未初始化", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// 结算请求
type resolveRequest struct {
	AttackerID int64 `json:"attacker_id"`
	DefenderID int64 `json:"defender_id"`
}

// 战斗响应
type battleResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// 历史数据
type battleHistoryData struct {
	History []models.BattleRecord `json:"history"`
	Total   int                   `json:"total"`
	Page    int                   `json:"page"`
	Limit   int                   `json:"limit"`
}

// handleResolve 处理战斗结算请求
func (h *BattleHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	// 解析请求
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求格式", http.StatusBadRequest)
		return
	}

	// 结算战斗
	record, err := h.service.ResolveBattle(req.AttackerID, req.DefenderID)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, battleResponse{
		Success: true,
		Message: "结算成功",
		Data:    record,
	})
}

// writeResolveError 按错误分类返回结算失败响应
func (h *BattleHandler) writeResolveError(w http.ResponseWriter, err error) {
	var rle *engine.RateLimitedError
	switch {
	case errors.As(err, &rle):
		writeJSON(w, http.StatusTooManyRequests, battleResponse{
			Success: false,
			Message: rle.Info.Reason,
			Data:    rle.Info,
		})
	case errors.Is(err, engine.ErrInvalidBattle):
		writeJSON(w, http.StatusBadRequest, battleResponse{
			Success: false,
			Message: err.Error(),
		})
	case errors.Is(err, engine.ErrNotFound):
		writeJSON(w, http.StatusNotFound, battleResponse{
			Success: false,
			Message: "战斗者不存在",
		})
	default:
		log.Printf("战斗结算失败: %v", err)
		writeJSON(w, http.StatusInternalServerError, battleResponse{
			Success: false,
			Message: "结算失败",
		})
	}
}

// handleBattleRecord 处理战斗记录查询
func (h *BattleHandler) handleBattleRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	// 提取记录ID
	recordID := r.URL.Path[len("/battle/record/"):]
	if recordID == "" {
		http.Error(w, "缺少记录ID", http.StatusBadRequest)
		return
	}

	record, err := h.service.GetBattleRecord(recordID)
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, battleResponse{
				Success: false,
				Message: "战斗记录不存在",
			})
			return
		}
		log.Printf("查询战斗记录失败: %v", err)
		http.Error(w, "查询失败", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, battleResponse{
		Success: true,
		Message: "查询成功",
		Data:    record,
	})
}

// handleBattleHistory 处理战斗历史查询
func (h *BattleHandler) handleBattleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	// 提取战斗者ID
	combatantIDStr := r.URL.Path[len("/battle/history/"):]
	combatantID, err := strconv.ParseInt(combatantIDStr, 10, 64)
	if err != nil {
		http.Error(w, "无效的战斗者ID", http.StatusBadRequest)
		return
	}

	// 解析查询参数
	query := r.URL.Query()
	limit := 20 // 默认限制
	offset := 0 // 默认偏移

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	history, total, err := h.service.GetBattleHistory(combatantID, limit, offset)
	if err != nil {
		log.Printf("查询战斗历史失败: %v", err)
		http.Error(w, "查询失败", http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []models.BattleRecord{}
	}

	writeJSON(w, http.StatusOK, battleResponse{
		Success: true,
		Message: "查询成功",
		Data: &battleHistoryData{
			History: history,
			Total:   total,
			Page:    offset/limit + 1,
			Limit:   limit,
		},
	})
}

// handleRestrictionStatus 处理账号限制状态查询
func (h *BattleHandler) handleRestrictionStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	// 提取账号ID
	accountIDStr := r.URL.Path[len("/battle/restriction/"):]
	accountID, err := strconv.ParseInt(accountIDStr, 10, 64)
	if err != nil || accountID <= 0 {
		http.Error(w, "无效的账号ID", http.StatusBadRequest)
		return
	}

	status := h.service.RestrictionStatus(accountID)
	writeJSON(w, http.StatusOK, battleResponse{
		Success: true,
		Message: "查询成功",
		Data:    status,
	})
}

// writeJSON 输出JSON响应
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}
