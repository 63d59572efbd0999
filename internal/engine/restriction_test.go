// restriction_test.go

package engine

import (
	"testing"
	"time"
)

// newTestGuard 创建带假时钟的守卫，返回守卫和时钟推进函数
func newTestGuard(policy RestrictionPolicy, start time.Time) (*RestrictionGuard, func(time.Duration)) {
	now := start
	g := NewRestrictionGuard(policy, WithClock(func() time.Time {
		return now
	}))
	advance := func(d time.Duration) {
		now = now.Add(d)
	}
	return g, advance
}

// TestGuardFreshAccountAllowed 未知账号首次检查应放行
func TestGuardFreshAccountAllowed(t *testing.T) {
	g, _ := newTestGuard(RestrictionPolicy{Cooldown: 10 * time.Second, DailyLimit: 3},
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	allowed, info := g.Check(1)
	if !allowed {
		t.Fatalf("新账号应放行, info=%+v", info)
	}
	if info.DailyUsed != 0 || info.DailyRemaining != 3 {
		t.Errorf("新账号用量 = %d/%d, 期望 0/3", info.DailyUsed, info.DailyRemaining)
	}
}

// TestGuardCooldown 冷却期内拒绝，冷却结束放行
func TestGuardCooldown(t *testing.T) {
	g, advance := newTestGuard(RestrictionPolicy{Cooldown: 10 * time.Second, DailyLimit: 100},
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	g.Record(1)

	allowed, info := g.Check(1)
	if allowed {
		t.Fatal("冷却期内应拒绝")
	}
	if info.Reason != "冷却中" {
		t.Errorf("拒绝原因 = %q, 期望冷却中", info.Reason)
	}
	if info.CooldownRemaining <= 0 || info.CooldownRemaining > 10*time.Second {
		t.Errorf("剩余冷却 = %v, 应在(0, 10s]内", info.CooldownRemaining)
	}

	advance(9 * time.Second)
	if allowed, _ := g.Check(1); allowed {
		t.Error("9秒后仍在冷却期内，应拒绝")
	}

	advance(1 * time.Second)
	if allowed, info := g.Check(1); !allowed {
		t.Errorf("冷却结束应放行, info=%+v", info)
	}
}

// TestGuardDailyLimit 达到每日上限后拒绝
func TestGuardDailyLimit(t *testing.T) {
	g, advance := newTestGuard(RestrictionPolicy{Cooldown: 10 * time.Second, DailyLimit: 3},
		time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		if allowed, info := g.Check(1); !allowed {
			t.Fatalf("第%d次应放行, info=%+v", i+1, info)
		}
		g.Record(1)
		advance(time.Minute)
	}

	allowed, info := g.Check(1)
	if allowed {
		t.Fatal("达到每日上限后应拒绝")
	}
	if info.Reason != "已达今日战斗上限" {
		t.Errorf("拒绝原因 = %q", info.Reason)
	}
	if info.DailyUsed != 3 || info.DailyRemaining != 0 {
		t.Errorf("用量 = %d/%d, 期望 3/0", info.DailyUsed, info.DailyRemaining)
	}
}

// TestGuardDailyReset 跨自然日后计数重置
func TestGuardDailyReset(t *testing.T) {
	g, advance := newTestGuard(RestrictionPolicy{Cooldown: 10 * time.Second, DailyLimit: 2},
		time.Date(2025, 6, 1, 23, 50, 0, 0, time.UTC))

	g.Record(1)
	advance(time.Minute)
	g.Record(1)
	advance(time.Minute)

	if allowed, _ := g.Check(1); allowed {
		t.Fatal("当日上限已满，应拒绝")
	}

	// 跨过午夜
	advance(10 * time.Minute)
	if allowed, info := g.Check(1); !allowed {
		t.Fatalf("新的一天应放行, info=%+v", info)
	}

	g.Record(1)
	status := g.Status(1)
	if status.DailyUsed != 1 {
		t.Errorf("新的一天首战后用量 = %d, 期望 1(重置为1而非累加)", status.DailyUsed)
	}
}

// TestGuardAccountIsolation 不同账号的限制互不影响
func TestGuardAccountIsolation(t *testing.T) {
	g, _ := newTestGuard(RestrictionPolicy{Cooldown: time.Hour, DailyLimit: 1},
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	g.Record(1)

	if allowed, _ := g.Check(1); allowed {
		t.Error("账号1应被冷却限制")
	}
	if allowed, _ := g.Check(2); !allowed {
		t.Error("账号2不受账号1的限制影响")
	}
}

// TestGuardStatusUnknownAccount 未知账号的状态查询
func TestGuardStatusUnknownAccount(t *testing.T) {
	g, _ := newTestGuard(RestrictionPolicy{Cooldown: 10 * time.Second, DailyLimit: 5},
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	info := g.Status(99)
	if info.DailyUsed != 0 || info.DailyRemaining != 5 || info.CooldownRemaining != 0 {
		t.Errorf("未知账号状态 = %+v", info)
	}
}
