package gateway

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jacl-coder/WordArena-Server/config"
	"github.com/jacl-coder/WordArena-Server/pkg/db"
)

// revokedTokenPrefix 已注销令牌的Redis键前缀
const revokedTokenPrefix = "token:revoked:"

// AuthHandler 认证处理器，签发和校验JWT令牌
type AuthHandler struct {
	jwtSecret []byte
	tokenTTL  time.Duration
	useRedis  bool
}

// AccountClaims JWT载荷
type AccountClaims struct {
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Token     string `json:"token,omitempty"`
	AccountID int64  `json:"account_id,omitempty"`
	Username  string `json:"username,omitempty"`
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		jwtSecret: []byte(cfg.Auth.JWTSecret),
		tokenTTL:  cfg.Auth.TokenTTL(),
		useRedis:  db.RedisClient != nil,
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *AuthHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/register", h.handleRegister)
	mux.HandleFunc("/auth/validate", h.handleValidate)
	mux.HandleFunc("/auth/logout", h.handleLogout)
}

// handleLogin 处理登录请求
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	// 解析请求
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求格式", http.StatusBadRequest)
		return
	}

	// 验证用户名和密码
	accountID, err := h.validateCredentials(req.Username, req.Password)
	if err != nil {
		resp := AuthResponse{
			Success: false,
			Message: "用户名或密码错误",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
		return
	}

	// 签发JWT令牌
	token, err := h.issueToken(accountID, req.Username)
	if err != nil {
		http.Error(w, "生成令牌失败", http.StatusInternalServerError)
		return
	}

	// 返回成功响应
	resp := AuthResponse{
		Success:   true,
		Message:   "登录成功",
		Token:     token,
		AccountID: accountID,
		Username:  req.Username,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleRegister 处理注册请求
func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	// 解析请求
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求格式", http.StatusBadRequest)
		return
	}

	// 验证请求
	if req.Username == "" || req.Password == "" || req.Email == "" {
		http.Error(w, "缺少必要参数", http.StatusBadRequest)
		return
	}

	// 创建账号
	accountID, err := h.createAccount(req.Username, req.Password, req.Email)
	if err != nil {
		resp := AuthResponse{
			Success: false,
			Message: fmt.Sprintf("注册失败: %v", err),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
		return
	}

	// 签发JWT令牌
	token, err := h.issueToken(accountID, req.Username)
	if err != nil {
		http.Error(w, "生成令牌失败", http.StatusInternalServerError)
		return
	}

	// 返回成功响应
	resp := AuthResponse{
		Success:   true,
		Message:   "注册成功",
		Token:     token,
		AccountID: accountID,
		Username:  req.Username,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleValidate 处理令牌验证请求
func (h *AuthHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	// 获取令牌
	token := extractToken(r)
	if token == "" {
		http.Error(w, "未提供令牌", http.StatusBadRequest)
		return
	}

	// 验证令牌
	accountID, username, ok := h.ValidateToken(token)
	if !ok {
		http.Error(w, "无效或已过期的令牌", http.StatusUnauthorized)
		return
	}

	// 返回成功响应
	resp := AuthResponse{
		Success:   true,
		Message:   "令牌有效",
		AccountID: accountID,
		Username:  username,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleLogout 处理登出请求
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	// 获取令牌
	token := extractToken(r)
	if token == "" {
		http.Error(w, "未提供令牌", http.StatusBadRequest)
		return
	}

	// 将令牌加入注销名单直到其自然过期
	h.revokeToken(token)

	// 返回成功响应
	resp := AuthResponse{
		Success: true,
		Message: "登出成功",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// issueToken 签发JWT令牌
func (h *AuthHandler) issueToken(accountID int64, username string) (string, error) {
	now := time.Now()
	claims := AccountClaims{
		AccountID: accountID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

// parseToken 解析并校验JWT令牌
func (h *AuthHandler) parseToken(tokenString string) (*AccountClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccountClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", t.Header["alg"])
		}
		return h.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AccountClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("无效的令牌")
	}

	return claims, nil
}

// ValidateToken 验证令牌（供其他模块使用）
func (h *AuthHandler) ValidateToken(tokenString string) (int64, string, bool) {
	claims, err := h.parseToken(tokenString)
	if err != nil {
		return 0, "", false
	}

	// 已注销的令牌视为无效
	if h.isRevoked(claims.ID) {
		return 0, "", false
	}

	return claims.AccountID, claims.Username, true
}

// revokeToken 注销令牌
func (h *AuthHandler) revokeToken(tokenString string) {
	claims, err := h.parseToken(tokenString)
	if err != nil {
		return
	}

	if !h.useRedis {
		return
	}

	// 注销名单只需保留到令牌自然过期
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	db.RedisClient.Set(context.Background(), revokedTokenPrefix+claims.ID, 1, ttl)
}

// isRevoked 检查令牌是否已注销
func (h *AuthHandler) isRevoked(tokenID string) bool {
	if !h.useRedis {
		return false
	}

	exists, err := db.RedisClient.Exists(context.Background(), revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false
	}
	return exists > 0
}

// validateCredentials 验证账号凭据
func (h *AuthHandler) validateCredentials(username, password string) (int64, error) {
	// 计算密码哈希
	hashedPassword := hashPassword(password)

	// 查询数据库
	var accountID int64
	err := db.DB.QueryRow("SELECT id FROM accounts WHERE username = $1 AND password = $2", username, hashedPassword).Scan(&accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("用户名或密码错误")
		}
		return 0, fmt.Errorf("数据库查询错误: %w", err)
	}

	return accountID, nil
}

// createAccount 创建账号
func (h *AuthHandler) createAccount(username, password, email string) (int64, error) {
	// 检查用户名是否已存在
	var count int
	err := db.DB.QueryRow("SELECT COUNT(*) FROM accounts WHERE username = $1", username).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("数据库查询错误: %w", err)
	}
	if count > 0 {
		return 0, fmt.Errorf("用户名已存在")
	}

	// 检查邮箱是否已存在
	err = db.DB.QueryRow("SELECT COUNT(*) FROM accounts WHERE email = $1", email).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("数据库查询错误: %w", err)
	}
	if count > 0 {
		return 0, fmt.Errorf("邮箱已被使用")
	}

	// 计算密码哈希
	hashedPassword := hashPassword(password)

	// 插入账号
	var accountID int64
	err = db.DB.QueryRow(
		"INSERT INTO accounts (username, password, email, created_at, updated_at) VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id",
		username, hashedPassword, email,
	).Scan(&accountID)
	if err != nil {
		return 0, fmt.Errorf("创建账号失败: %w", err)
	}

	return accountID, nil
}

// hashPassword 计算密码哈希
func hashPassword(password string) string {
	// 使用SHA-256哈希
	// 在实际应用中，应该使用更安全的哈希算法，如bcrypt
	hash := sha256.Sum256([]byte(password))
	return fmt.Sprintf("%x", hash)
}

// extractToken 从请求中提取令牌
func extractToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	if token != "" {
		return strings.TrimPrefix(token, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
