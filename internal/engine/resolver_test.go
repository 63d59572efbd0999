// resolver_test.go

package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jacl-coder/WordArena-Server/internal/models"
)

const (
	strongText = "Behold! The dragon's blazing storm strikes! I will crush your guard and exploit every weakness with relentless fury!"
	weakText   = "zzz"
)

// memStore 内存实现的战斗者存储，模拟数据库的读写语义:
// 读取返回副本，ApplyResult成功才写回
type memStore struct {
	mu         sync.Mutex
	combatants map[int64]*models.Combatant
	records    []*models.BattleRecord
	applyErr   error
}

func newMemStore(combatants ...*models.Combatant) *memStore {
	s := &memStore{combatants: make(map[int64]*models.Combatant)}
	for _, c := range combatants {
		cp := *c
		s.combatants[c.ID] = &cp
	}
	return s
}

func (s *memStore) GetCombatant(id int64) (*models.Combatant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.combatants[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) ApplyResult(attacker, defender *models.Combatant, record *models.BattleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.applyErr != nil {
		return s.applyErr
	}
	ca, cd := *attacker, *defender
	s.combatants[attacker.ID] = &ca
	s.combatants[defender.ID] = &cd
	s.records = append(s.records, record)
	return nil
}

func (s *memStore) get(id int64) *models.Combatant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.combatants[id]
}

// testCombatant 构造测试战斗者
func testCombatant(id, accountID int64, name, text string, rating int) *models.Combatant {
	return &models.Combatant{
		ID:             id,
		OwnerAccountID: accountID,
		Name:           name,
		BattleText:     text,
		Rating:         rating,
	}
}

// noLimitParams 不触发限制的结算参数
func noLimitParams() ResolverParams {
	return ResolverParams{
		Rating:            DefaultRatingParams(),
		Restriction:       RestrictionPolicy{Cooldown: 0, DailyLimit: 1 << 20},
		NPCDefenderExempt: true,
	}
}

// TestResolveBattleBasic 一次完整结算的基本不变量
func TestResolveBattleBasic(t *testing.T) {
	store := newMemStore(
		testCombatant(1, 10, "용사", strongText, 1000),
		testCombatant(2, 20, "마왕", weakText, 1000),
	)
	r := NewResolver(store, noLimitParams())

	record, err := r.ResolveBattle(1, 2)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}

	if record.WinnerID != 1 && record.WinnerID != 2 {
		t.Errorf("胜者ID = %d, 必须是参战双方之一", record.WinnerID)
	}
	if record.AttackerScore < 10 || record.DefenderScore < 10 {
		t.Errorf("分数低于下限: %.2f vs %.2f", record.AttackerScore, record.DefenderScore)
	}
	if record.ID == "" {
		t.Error("战斗记录缺少ID")
	}
	if record.Summary == "" || record.Detail == "" {
		t.Error("战斗记录缺少解说")
	}
	if len(store.records) != 1 {
		t.Fatalf("存储中的记录数 = %d, 期望 1", len(store.records))
	}

	attacker, defender := store.get(1), store.get(2)
	if attacker.TotalBattles != 1 || defender.TotalBattles != 1 {
		t.Errorf("总场次 = %d/%d, 期望各为1", attacker.TotalBattles, defender.TotalBattles)
	}
	if attacker.Wins+attacker.Losses != 1 || defender.Wins+defender.Losses != 1 {
		t.Error("胜负合计应各为1")
	}

	// 胜者评分不降，败者评分不升
	winnerDelta, loserDelta := record.AttackerRatingDelta, record.DefenderRatingDelta
	if record.WinnerID == 2 {
		winnerDelta, loserDelta = loserDelta, winnerDelta
	}
	if winnerDelta < 0 {
		t.Errorf("胜者评分变化 = %d, 不应为负", winnerDelta)
	}
	if loserDelta > 0 {
		t.Errorf("败者评分变化 = %d, 不应为正", loserDelta)
	}
	if attacker.Rating != 1000+record.AttackerRatingDelta {
		t.Errorf("攻方评分 = %d, 与变化量不符", attacker.Rating)
	}
	if defender.Rating != 1000+record.DefenderRatingDelta {
		t.Errorf("守方评分 = %d, 与变化量不符", defender.Rating)
	}
}

// TestResolveStrongTextDominates 文本质量差距大时强文本应占绝对优势
func TestResolveStrongTextDominates(t *testing.T) {
	const rounds = 200
	wins := 0
	for i := 0; i < rounds; i++ {
		store := newMemStore(
			testCombatant(1, 10, "용사", strongText, 1000),
			testCombatant(2, 20, "허수아비", weakText, 1000),
		)
		r := NewResolver(store, noLimitParams())
		record, err := r.ResolveBattle(1, 2)
		if err != nil {
			t.Fatalf("第%d轮结算失败: %v", i+1, err)
		}
		if record.WinnerID == 1 {
			wins++
		}
	}

	if wins < rounds*9/10 {
		t.Errorf("强文本胜场 = %d/%d, 应不低于90%%", wins, rounds)
	}
}

// TestResolveInvalidBattle 非法ID与自我对战
func TestResolveInvalidBattle(t *testing.T) {
	store := newMemStore(testCombatant(1, 10, "용사", strongText, 1000))
	r := NewResolver(store, noLimitParams())

	cases := [][2]int64{{0, 1}, {1, 0}, {-5, 1}, {1, 1}}
	for _, pair := range cases {
		if _, err := r.ResolveBattle(pair[0], pair[1]); !errors.Is(err, ErrInvalidBattle) {
			t.Errorf("ResolveBattle(%d, %d) err = %v, 期望 ErrInvalidBattle", pair[0], pair[1], err)
		}
	}
}

// TestResolveNotFound 战斗者不存在
func TestResolveNotFound(t *testing.T) {
	store := newMemStore(testCombatant(1, 10, "용사", strongText, 1000))
	r := NewResolver(store, noLimitParams())

	if _, err := r.ResolveBattle(1, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, 期望 ErrNotFound", err)
	}
	if _, err := r.ResolveBattle(99, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, 期望 ErrNotFound", err)
	}
}

// TestResolveCooldownLimit 冷却期内的第二次结算被拒绝
func TestResolveCooldownLimit(t *testing.T) {
	store := newMemStore(
		testCombatant(1, 10, "용사", strongText, 1000),
		testCombatant(2, 20, "마왕", weakText, 1000),
	)
	params := noLimitParams()
	params.Restriction = RestrictionPolicy{Cooldown: time.Hour, DailyLimit: 100}
	r := NewResolver(store, params)

	if _, err := r.ResolveBattle(1, 2); err != nil {
		t.Fatalf("首次结算失败: %v", err)
	}

	_, err := r.ResolveBattle(1, 2)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, 期望 ErrRateLimited", err)
	}
	var rle *RateLimitedError
	if !errors.As(err, &rle) {
		t.Fatalf("err 应为 *RateLimitedError: %v", err)
	}
	if rle.Info.CooldownRemaining <= 0 {
		t.Errorf("限制详情缺少剩余冷却: %+v", rle.Info)
	}
	if len(store.records) != 1 {
		t.Errorf("被拒绝的结算不应落盘, 记录数 = %d", len(store.records))
	}
}

// TestResolveDailyLimit 达到每日上限后的结算被拒绝
func TestResolveDailyLimit(t *testing.T) {
	store := newMemStore(
		testCombatant(1, 10, "용사", strongText, 1000),
		testCombatant(2, 20, "마왕", weakText, 1000),
	)
	params := noLimitParams()
	params.Restriction = RestrictionPolicy{Cooldown: 0, DailyLimit: 2}
	r := NewResolver(store, params)

	for i := 0; i < 2; i++ {
		if _, err := r.ResolveBattle(1, 2); err != nil {
			t.Fatalf("第%d次结算失败: %v", i+1, err)
		}
	}

	_, err := r.ResolveBattle(1, 2)
	var rle *RateLimitedError
	if !errors.As(err, &rle) {
		t.Fatalf("err = %v, 期望 *RateLimitedError", err)
	}
	if rle.Info.DailyRemaining != 0 || rle.Info.DailyUsed != 2 {
		t.Errorf("限制详情 = %+v, 期望用量2/剩余0", rle.Info)
	}
}

// TestResolveNPCAttackerBypassesGuard NPC主动方不受账号限制
func TestResolveNPCAttackerBypassesGuard(t *testing.T) {
	npc := testCombatant(1, models.NPCAccountID, "수련용 허수아비", weakText, 1000)
	npc.IsNPC = true
	store := newMemStore(npc, testCombatant(2, 20, "마왕", strongText, 1000))

	params := noLimitParams()
	params.Restriction = RestrictionPolicy{Cooldown: time.Hour, DailyLimit: 1}
	r := NewResolver(store, params)

	for i := 0; i < 3; i++ {
		if _, err := r.ResolveBattle(1, 2); err != nil {
			t.Fatalf("NPC第%d次结算失败: %v", i+1, err)
		}
	}
}

// TestResolveDefenderGuardWhenNotExempt 关闭豁免时被动方账号也会被检查
func TestResolveDefenderGuardWhenNotExempt(t *testing.T) {
	store := newMemStore(
		testCombatant(1, 10, "용사", strongText, 1000),
		testCombatant(2, 20, "마왕", weakText, 1000),
		testCombatant(3, 30, "암살자", strongText, 1000),
	)
	params := noLimitParams()
	params.Restriction = RestrictionPolicy{Cooldown: time.Hour, DailyLimit: 100}
	params.NPCDefenderExempt = false
	r := NewResolver(store, params)

	// 账号20先发起一场，进入冷却
	if _, err := r.ResolveBattle(2, 3); err != nil {
		t.Fatalf("预置结算失败: %v", err)
	}

	// 此时攻打账号20的战斗者应被其冷却阻止
	if _, err := r.ResolveBattle(1, 2); !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, 期望被动方账号的冷却阻止结算", err)
	}
}

// TestResolveApplyFailure 落盘失败时不留下任何部分变更
func TestResolveApplyFailure(t *testing.T) {
	store := newMemStore(
		testCombatant(1, 10, "용사", strongText, 1000),
		testCombatant(2, 20, "마왕", weakText, 1000),
	)
	store.applyErr = errors.New("db down")
	r := NewResolver(store, noLimitParams())

	if _, err := r.ResolveBattle(1, 2); err == nil {
		t.Fatal("落盘失败时结算应返回错误")
	}

	attacker := store.get(1)
	if attacker.Rating != 1000 || attacker.TotalBattles != 0 {
		t.Errorf("落盘失败后攻方状态被改动: rating=%d battles=%d", attacker.Rating, attacker.TotalBattles)
	}
	if len(store.records) != 0 {
		t.Errorf("落盘失败后不应有记录, 记录数 = %d", len(store.records))
	}

	// 失败的结算不计入账号用量
	status := r.RestrictionStatus(10)
	if status.DailyUsed != 0 {
		t.Errorf("失败结算后用量 = %d, 期望 0", status.DailyUsed)
	}
}

// TestResolveScoreFloor 评分差修正把分数压到负数时截断到下限
func TestResolveScoreFloor(t *testing.T) {
	store := newMemStore(
		testCombatant(1, 10, "용사", strongText, 30000),
		testCombatant(2, 20, "마왕", weakText, 1000),
	)
	r := NewResolver(store, noLimitParams())

	record, err := r.ResolveBattle(1, 2)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if record.DefenderScore != 10 {
		t.Errorf("守方分数 = %.2f, 期望被截断到下限10", record.DefenderScore)
	}
	if record.WinnerID != 1 {
		t.Errorf("胜者 = %d, 期望攻方", record.WinnerID)
	}
}

// TestResolveDetailRevealOnSeventhBattle 攻方第7场触发深度解析
func TestResolveDetailRevealOnSeventhBattle(t *testing.T) {
	attacker := testCombatant(1, 10, "용사", strongText, 1000)
	attacker.Wins, attacker.Losses, attacker.TotalBattles = 4, 2, 6
	store := newMemStore(attacker, testCombatant(2, 20, "마왕", weakText, 1000))
	r := NewResolver(store, noLimitParams())

	record, err := r.ResolveBattle(1, 2)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if !containsDeepDive(record.Detail) {
		t.Errorf("第7场解说应为深度解析: %q", record.Detail)
	}

	// 第8场回到简短解说
	record, err = r.ResolveBattle(1, 2)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if containsDeepDive(record.Detail) {
		t.Errorf("第8场解说不应为深度解析: %q", record.Detail)
	}
}

func containsDeepDive(detail string) bool {
	return strings.HasPrefix(detail, "【深度解析】")
}

// TestResolveResultCallback 结算成功后回调收到完整记录
func TestResolveResultCallback(t *testing.T) {
	store := newMemStore(
		testCombatant(1, 10, "용사", strongText, 1000),
		testCombatant(2, 20, "마왕", weakText, 1000),
	)

	var published *models.BattleRecord
	r := NewResolver(store, noLimitParams(), WithResultCallback(func(rec *models.BattleRecord) {
		published = rec
	}))

	record, err := r.ResolveBattle(1, 2)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if published == nil || published.ID != record.ID {
		t.Error("回调未收到结算记录")
	}
}

// TestResolveConcurrent 并发结算同一对战斗者不丢失更新
func TestResolveConcurrent(t *testing.T) {
	store := newMemStore(
		testCombatant(1, 10, "용사", strongText, 1000),
		testCombatant(2, 20, "마왕", weakText, 1000),
	)
	r := NewResolver(store, noLimitParams())

	const rounds = 50
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.ResolveBattle(1, 2); err != nil {
				t.Errorf("并发结算失败: %v", err)
			}
		}()
	}
	wg.Wait()

	attacker, defender := store.get(1), store.get(2)
	if attacker.TotalBattles != rounds || defender.TotalBattles != rounds {
		t.Errorf("总场次 = %d/%d, 期望各为%d", attacker.TotalBattles, defender.TotalBattles, rounds)
	}
	if len(store.records) != rounds {
		t.Errorf("记录数 = %d, 期望 %d", len(store.records), rounds)
	}
}

// TestRestrictionStatusFresh 未知账号的限制状态
func TestRestrictionStatusFresh(t *testing.T) {
	store := newMemStore()
	params := noLimitParams()
	params.Restriction = RestrictionPolicy{Cooldown: 10 * time.Second, DailyLimit: 20}
	r := NewResolver(store, params)

	status := r.RestrictionStatus(42)
	if !status.CanBattleNow {
		t.Error("新账号应可立即战斗")
	}
	if status.DailyUsed != 0 || status.DailyRemaining != 20 {
		t.Errorf("新账号用量 = %d/%d, 期望 0/20", status.DailyUsed, status.DailyRemaining)
	}
}
