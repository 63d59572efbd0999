// combatant.go

package gateway

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jacl-coder/WordArena-Server/config"
	"github.com/jacl-coder/WordArena-Server/internal/models"
	"github.com/jacl-coder/WordArena-Server/pkg/db"
)

// 战斗文本长度上限(字符数)
const maxBattleTextRunes = 200

// CombatantHandler 战斗者处理器
type CombatantHandler struct {
	config *config.Config
	auth   *AuthHandler
}

// NewCombatantHandler 创建战斗者处理器
func NewCombatantHandler(cfg *config.Config, auth *AuthHandler) *CombatantHandler {
	return &CombatantHandler{
		config: cfg,
		auth:   auth,
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *CombatantHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/combatant/create", h.handleCreate)
	mux.HandleFunc("/combatant/get/", h.handleGet)
	mux.HandleFunc("/combatant/list", h.handleList)
	mux.HandleFunc("/combatant/text", h.handleUpdateText)
}

// 创建战斗者请求
type createCombatantRequest struct {
	Name       string `json:"name"`
	BattleText string `json:"battle_text"`
}

// 修改战斗文本请求
type updateTextRequest struct {
	CombatantID int64  `json:"combatant_id"`
	BattleText  string `json:"battle_text"`
}

// 战斗者响应
type combatantResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// handleCreate 处理创建战斗者请求
func (h *CombatantHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	// 验证登录状态
	accountID, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	// 解析请求
	var req createCombatantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求格式", http.StatusBadRequest)
		return
	}

	// 验证名称与文本
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || utf8.RuneCountInString(req.Name) > 50 {
		h.sendError(w, "名称长度必须在1-50字符之间", http.StatusBadRequest)
		return
	}
	if err := validateBattleText(req.BattleText); err != "" {
		h.sendError(w, err, http.StatusBadRequest)
		return
	}

	// 插入战斗者，初始评分取配置
	var combatant models.Combatant
	query := `
		INSERT INTO combatants (owner_account_id, name, battle_text, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, owner_account_id, name, battle_text, rating, wins, losses, total_battles, is_npc, created_at, updated_at
	`
	err := db.DB.QueryRow(query, accountID, req.Name, req.BattleText, h.config.Battle.DefaultRating).Scan(
		&combatant.ID, &combatant.OwnerAccountID, &combatant.Name, &combatant.BattleText,
		&combatant.Rating, &combatant.Wins, &combatant.Losses, &combatant.TotalBattles,
		&combatant.IsNPC, &combatant.CreatedAt, &combatant.UpdatedAt,
	)
	if err != nil {
		log.Printf("创建战斗者失败: %v", err)
		h.sendError(w, "创建战斗者失败", http.StatusInternalServerError)
		return
	}

	h.sendSuccess(w, "创建成功", combatant)
}

// handleGet 处理战斗者查询请求
func (h *CombatantHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	// 提取战斗者ID
	path := strings.TrimPrefix(r.URL.Path, "/combatant/get/")
	combatantID, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		http.Error(w, "无效的战斗者ID", http.StatusBadRequest)
		return
	}

	combatant, err := h.getCombatant(combatantID)
	if err != nil {
		if err == sql.ErrNoRows {
			h.sendError(w, "战斗者不存在", http.StatusNotFound)
			return
		}
		log.Printf("查询战斗者失败: %v", err)
		h.sendError(w, "查询失败", http.StatusInternalServerError)
		return
	}

	h.sendSuccess(w, "查询成功", combatant)
}

// handleList 处理账号名下战斗者列表请求
func (h *CombatantHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	// 验证登录状态
	accountID, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	query := `
		SELECT id, owner_account_id, name, battle_text, rating, wins, losses, total_battles, is_npc, created_at, updated_at
		FROM combatants
		WHERE owner_account_id = $1
		ORDER BY created_at
	`

	rows, err := db.DB.Query(query, accountID)
	if err != nil {
		log.Printf("查询战斗者列表失败: %v", err)
		h.sendError(w, "查询失败", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	combatants := make([]models.Combatant, 0)
	for rows.Next() {
		var c models.Combatant
		if err := rows.Scan(
			&c.ID, &c.OwnerAccountID, &c.Name, &c.BattleText, &c.Rating,
			&c.Wins, &c.Losses, &c.TotalBattles, &c.IsNPC, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			log.Printf("扫描战斗者失败: %v", err)
			h.sendError(w, "查询失败", http.StatusInternalServerError)
			return
		}
		combatants = append(combatants, c)
	}

	h.sendSuccess(w, "查询成功", combatants)
}

// handleUpdateText 处理战斗文本修改请求
func (h *CombatantHandler) handleUpdateText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.Error(w, "仅支持POST或PUT方法", http.StatusMethodNotAllowed)
		return
	}

	// 验证登录状态
	accountID, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	// 解析请求
	var req updateTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求格式", http.StatusBadRequest)
		return
	}

	if req.CombatantID <= 0 {
		h.sendError(w, "无效的战斗者ID", http.StatusBadRequest)
		return
	}
	if errMsg := validateBattleText(req.BattleText); errMsg != "" {
		h.sendError(w, errMsg, http.StatusBadRequest)
		return
	}

	// 只有持有者可以修改战斗文本
	result, err := db.DB.Exec(
		"UPDATE combatants SET battle_text = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2 AND owner_account_id = $3",
		req.BattleText, req.CombatantID, accountID,
	)
	if err != nil {
		log.Printf("修改战斗文本失败: %v", err)
		h.sendError(w, "修改失败", http.StatusInternalServerError)
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		h.sendError(w, "战斗者不存在或无权修改", http.StatusForbidden)
		return
	}

	h.sendSuccess(w, "修改成功", nil)
}

// requireAuth 校验令牌并返回账号ID
func (h *CombatantHandler) requireAuth(w http.ResponseWriter, r *http.Request) (int64, bool) {
	token := extractToken(r)
	if token == "" {
		h.sendError(w, "未提供令牌", http.StatusUnauthorized)
		return 0, false
	}

	accountID, _, ok := h.auth.ValidateToken(token)
	if !ok {
		h.sendError(w, "无效或已过期的令牌", http.StatusUnauthorized)
		return 0, false
	}

	return accountID, true
}

// getCombatant 按ID查询战斗者
func (h *CombatantHandler) getCombatant(id int64) (*models.Combatant, error) {
	query := `
		SELECT id, owner_account_id, name, battle_text, rating, wins, losses, total_battles, is_npc, created_at, updated_at
		FROM combatants
		WHERE id = $1
	`

	// NPC战斗者的归属列为NULL
	var c models.Combatant
	var ownerID sql.NullInt64
	err := db.DB.QueryRow(query, id).Scan(
		&c.ID, &ownerID, &c.Name, &c.BattleText, &c.Rating,
		&c.Wins, &c.Losses, &c.TotalBattles, &c.IsNPC, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.OwnerAccountID = models.OwnerOrNPC(ownerID)

	return &c, nil
}

// validateBattleText 校验战斗文本，返回空字符串表示通过
func validateBattleText(text string) string {
	if strings.TrimSpace(text) == "" {
		return "战斗文本不能为空"
	}
	if utf8.RuneCountInString(text) > maxBattleTextRunes {
		return "战斗文本不能超过200字符"
	}
	return ""
}

// sendSuccess 发送成功响应
func (h *CombatantHandler) sendSuccess(w http.ResponseWriter, message string, data interface{}) {
	resp := combatantResponse{
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

// sendError 发送错误响应
func (h *CombatantHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	resp := combatantResponse{
		Success: false,
		Message: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("编码错误响应失败: %v", err)
	}
}
