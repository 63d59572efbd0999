// restriction.go

package engine

import (
	"sync"
	"time"
)

// 自然日格式
const dayFormat = "2006-01-02"

// RestrictionPolicy 账号限制策略
type RestrictionPolicy struct {
	// Cooldown 两次战斗之间的最小间隔
	Cooldown time.Duration
	// DailyLimit 每个自然日的最大战斗次数
	DailyLimit int
}

// restrictionState 单个账号的限制记录，首次尝试时惰性创建，从不删除
type restrictionState struct {
	lastBattleAt   time.Time
	dailyCount     int
	dailyCountDate string
}

// RestrictionGuard 账号限制守卫。按账号维护冷却与每日计数，
// 内部用互斥锁保护共享状态，外部并发调用安全。
type RestrictionGuard struct {
	policy RestrictionPolicy
	now    func() time.Time

	mu     sync.Mutex
	states map[int64]*restrictionState
}

// GuardOption 守卫可选项
type GuardOption func(*RestrictionGuard)

// WithClock 注入时钟，测试用
func WithClock(now func() time.Time) GuardOption {
	return func(g *RestrictionGuard) {
		g.now = now
	}
}

// NewRestrictionGuard 创建限制守卫
func NewRestrictionGuard(policy RestrictionPolicy, opts ...GuardOption) *RestrictionGuard {
	g := &RestrictionGuard{
		policy: policy,
		now:    time.Now,
		states: make(map[int64]*restrictionState),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check 检查账号当前是否允许发起战斗。不修改计数，
// 跨自然日时按隐式清零处理（真正的重置发生在Record）。
func (g *RestrictionGuard) Check(accountID int64) (bool, RateLimitInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	state, ok := g.states[accountID]
	if !ok {
		return true, g.infoLocked(nil, now)
	}

	// 冷却检查
	if elapsed := now.Sub(state.lastBattleAt); elapsed < g.policy.Cooldown {
		info := g.infoLocked(state, now)
		info.Reason = "冷却中"
		return false, info
	}

	// 每日上限检查
	if state.dailyCountDate == now.Format(dayFormat) && state.dailyCount >= g.policy.DailyLimit {
		info := g.infoLocked(state, now)
		info.Reason = "已达今日战斗上限"
		return false, info
	}

	return true, g.infoLocked(state, now)
}

// Record 在一次成功结算后记录账号用量。
// 日期变更时将当日计数重置为1并推进日期，否则递增。
func (g *RestrictionGuard) Record(accountID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	state, ok := g.states[accountID]
	if !ok {
		state = &restrictionState{}
		g.states[accountID] = state
	}

	today := now.Format(dayFormat)
	if state.dailyCountDate != today {
		state.dailyCount = 1
		state.dailyCountDate = today
	} else {
		state.dailyCount++
	}
	state.lastBattleAt = now
}

// Status 查询账号的限制状态
func (g *RestrictionGuard) Status(accountID int64) RateLimitInfo {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.infoLocked(g.states[accountID], g.now())
}

// infoLocked 生成限制详情，调用方必须持有锁
func (g *RestrictionGuard) infoLocked(state *restrictionState, now time.Time) RateLimitInfo {
	info := RateLimitInfo{
		DailyRemaining: g.policy.DailyLimit,
	}
	if state == nil {
		return info
	}

	if remaining := g.policy.Cooldown - now.Sub(state.lastBattleAt); remaining > 0 {
		info.CooldownRemaining = remaining
	}

	if state.dailyCountDate == now.Format(dayFormat) {
		info.DailyUsed = state.dailyCount
		info.DailyRemaining = g.policy.DailyLimit - state.dailyCount
		if info.DailyRemaining < 0 {
			info.DailyRemaining = 0
		}
	}

	return info
}
