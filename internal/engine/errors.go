// errors.go

package engine

import (
	"errors"
	"fmt"
	"time"
)

// 引擎错误分类，全部为终态错误，不做内部重试
var (
	// ErrNotFound 战斗者不存在
	ErrNotFound = errors.New("combatant not found")
	// ErrInvalidBattle 非法战斗(自我对战或非法ID)
	ErrInvalidBattle = errors.New("invalid battle")
	// ErrRateLimited 触发账号限制(冷却或每日上限)
	ErrRateLimited = errors.New("rate limited")
)

// RateLimitInfo 限制详情，供调用方决定何时重试
type RateLimitInfo struct {
	Reason            string        `json:"reason"`
	CooldownRemaining time.Duration `json:"cooldown_remaining"`
	DailyUsed         int           `json:"daily_used"`
	DailyRemaining    int           `json:"daily_remaining"`
}

// RateLimitedError 带限制详情的错误
type RateLimitedError struct {
	Info RateLimitInfo
}

// Error 实现error接口
func (e *RateLimitedError) Error() string {
	if e.Info.CooldownRemaining > 0 {
		return fmt.Sprintf("rate limited: %s (冷却剩余 %dms)", e.Info.Reason, e.Info.CooldownRemaining.Milliseconds())
	}
	return fmt.Sprintf("rate limited: %s (今日剩余 %d 次)", e.Info.Reason, e.Info.DailyRemaining)
}

// Unwrap 支持errors.Is(err, ErrRateLimited)
func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}
