// resolver.go

package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jacl-coder/WordArena-Server/internal/models"
)

// 分数合成常量
const (
	// baseMultiplier 文本总分到基础战斗分的倍率
	baseMultiplier = 70.0
	// eloGapFactor 评分差的折算系数
	eloGapFactor = 0.05
	// eloModifierWeight 评分修正项的权重
	eloModifierWeight = 20.0
	// noiseMax 随机扰动上界[0, noiseMax)
	noiseMax = 10.0
	// excellenceBonus 每个卓越维度(≥8)的加分
	excellenceBonus = 5.0
	// scoreFloor 最终分数下限
	scoreFloor = 10.0
)

// BattleStore 战斗者读写接口，由存储层实现。
// GetCombatant在记录不存在时必须返回ErrNotFound。
// ApplyResult必须将双方聚合数据的更新与战斗记录的追加作为一个原子单元落盘。
type BattleStore interface {
	GetCombatant(id int64) (*models.Combatant, error)
	ApplyResult(attacker, defender *models.Combatant, record *models.BattleRecord) error
}

// ResolverParams 结算器参数
type ResolverParams struct {
	Rating      RatingParams
	Restriction RestrictionPolicy
	// NPCDefenderExempt 为true时NPC被动方完全豁免限制检查;
	// 为false时非NPC被动方的账号也会被检查(只检查不记录)
	NPCDefenderExempt bool
}

// Resolver 战斗结算器。编排文本评分、限制守卫与评分更新器，
// 同一战斗者的并发结算通过按ID排序的锁串行化。
type Resolver struct {
	store  BattleStore
	guard  *RestrictionGuard
	params ResolverParams

	// onResult 结算成功后的回调，用于事件发布
	onResult func(*models.BattleRecord)

	lockMu sync.Mutex
	locks  map[int64]*sync.Mutex

	now func() time.Time
}

// ResolverOption 结算器可选项
type ResolverOption func(*Resolver)

// WithResultCallback 注册结算成功回调
func WithResultCallback(fn func(*models.BattleRecord)) ResolverOption {
	return func(r *Resolver) {
		r.onResult = fn
	}
}

// WithResolverClock 注入时钟，测试用
func WithResolverClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver 创建战斗结算器
func NewResolver(store BattleStore, params ResolverParams, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:  store,
		guard:  NewRestrictionGuard(params.Restriction),
		params: params,
		locks:  make(map[int64]*sync.Mutex),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Guard 暴露限制守卫(状态查询用)
func (r *Resolver) Guard() *RestrictionGuard {
	return r.guard
}

// ResolveBattle 结算一场战斗。校验限制、双方文本评分、
// 合成最终分数、判定胜者、更新评分并原子落盘。
func (r *Resolver) ResolveBattle(attackerID, defenderID int64) (*models.BattleRecord, error) {
	if attackerID <= 0 || defenderID <= 0 {
		return nil, fmt.Errorf("%w: 非法的战斗者ID", ErrInvalidBattle)
	}
	if attackerID == defenderID {
		return nil, fmt.Errorf("%w: 不能与自己战斗", ErrInvalidBattle)
	}

	// 串行化同一战斗者的并发结算
	unlock := r.lockPair(attackerID, defenderID)
	defer unlock()

	attacker, err := r.store.GetCombatant(attackerID)
	if err != nil {
		return nil, err
	}
	defender, err := r.store.GetCombatant(defenderID)
	if err != nil {
		return nil, err
	}

	// 主动方必须通过限制检查
	if !attacker.IsNPC {
		if allowed, info := r.guard.Check(attacker.OwnerAccountID); !allowed {
			return nil, &RateLimitedError{Info: info}
		}
	}
	// 被动方按策略豁免
	if !r.params.NPCDefenderExempt && !defender.IsNPC {
		if allowed, info := r.guard.Check(defender.OwnerAccountID); !allowed {
			return nil, &RateLimitedError{Info: info}
		}
	}

	// 双方文本评分(纯函数，所有随机性在下面的合成步骤)
	attackerVec := Score(attacker.BattleText)
	defenderVec := Score(defender.BattleText)

	attackerScore, defenderScore := r.blendScores(attacker, defender, &attackerVec, &defenderVec)

	// 严格高分者获胜，分数完全相等时判攻方胜
	attackerWon := attackerScore >= defenderScore

	// 评分更新: 用赛前场次与对手赛前评分，各调用一次
	attackerGames := attacker.GamesPlayed()
	defenderGames := defender.GamesPlayed()
	attackerDelta := r.params.Rating.Delta(attacker.Rating, defender.Rating, attackerWon, attackerGames)
	defenderDelta := r.params.Rating.Delta(defender.Rating, attacker.Rating, !attackerWon, defenderGames)

	// 应用聚合数据变更
	attacker.TotalBattles++
	defender.TotalBattles++
	winnerID := attacker.ID
	if attackerWon {
		attacker.Wins++
		defender.Losses++
	} else {
		winnerID = defender.ID
		attacker.Losses++
		defender.Wins++
	}
	attacker.Rating += attackerDelta
	defender.Rating += defenderDelta

	// 生成解说
	winnerName, loserName := attacker.Name, defender.Name
	winnerVec, loserVec := &attackerVec, &defenderVec
	if !attackerWon {
		winnerName, loserName = defender.Name, attacker.Name
		winnerVec, loserVec = &defenderVec, &attackerVec
	}
	scoreGap := math.Abs(attackerScore - defenderScore)
	level := DetailPolicy(attacker.TotalBattles)

	record := &models.BattleRecord{
		ID:                  uuid.New().String(),
		AttackerID:          attacker.ID,
		DefenderID:          defender.ID,
		WinnerID:            winnerID,
		AttackerScore:       attackerScore,
		DefenderScore:       defenderScore,
		AttackerRatingDelta: attackerDelta,
		DefenderRatingDelta: defenderDelta,
		Summary:             BuildSummary(winnerName, scoreGap, winnerVec, loserVec),
		Detail:              BuildDetail(level, winnerName, loserName, winnerVec, loserVec),
		CreatedAt:           r.now(),
	}

	// 聚合更新与记录追加必须原子落盘，失败时不留下部分变更
	if err := r.store.ApplyResult(attacker, defender, record); err != nil {
		return nil, fmt.Errorf("落盘战斗结果失败: %w", err)
	}

	// 只有成功结算才计入账号用量
	if !attacker.IsNPC {
		r.guard.Record(attacker.OwnerAccountID)
	}

	if r.onResult != nil {
		r.onResult(record)
	}

	return record, nil
}

// RestrictionStatus 查询账号限制状态
func (r *Resolver) RestrictionStatus(accountID int64) models.RestrictionStatus {
	info := r.guard.Status(accountID)
	return models.RestrictionStatus{
		AccountID:           accountID,
		DailyUsed:           info.DailyUsed,
		DailyRemaining:      info.DailyRemaining,
		CanBattleNow:        info.CooldownRemaining <= 0 && info.DailyRemaining > 0,
		CooldownRemainingMS: info.CooldownRemaining.Milliseconds(),
	}
}

// blendScores 合成双方最终分数: 基础分+评分差修正+随机扰动+卓越加成，下限10
func (r *Resolver) blendScores(attacker, defender *models.Combatant, attackerVec, defenderVec *ScoreVector) (float64, float64) {
	attackerScore := attackerVec.Total * baseMultiplier
	defenderScore := defenderVec.Total * baseMultiplier

	// 评分差修正: 攻方加，守方减
	eloModifier := float64(attacker.Rating-defender.Rating) * eloGapFactor
	attackerScore += eloModifier * eloModifierWeight
	defenderScore -= eloModifier * eloModifierWeight

	// 独立的均匀随机扰动
	attackerScore += rand.Float64() * noiseMax
	defenderScore += rand.Float64() * noiseMax

	// 卓越加成
	attackerScore += excellenceBonus * float64(attackerVec.ExcellenceCount())
	defenderScore += excellenceBonus * float64(defenderVec.ExcellenceCount())

	// 分数下限
	attackerScore = math.Max(attackerScore, scoreFloor)
	defenderScore = math.Max(defenderScore, scoreFloor)

	return round2(attackerScore), round2(defenderScore)
}

// lockPair 按ID升序锁定两个战斗者，返回解锁函数
func (r *Resolver) lockPair(a, b int64) func() {
	first, second := a, b
	if first > second {
		first, second = second, first
	}

	firstMu := r.combatantLock(first)
	secondMu := r.combatantLock(second)

	firstMu.Lock()
	secondMu.Lock()
	return func() {
		secondMu.Unlock()
		firstMu.Unlock()
	}
}

// combatantLock 获取战斗者专属锁，惰性创建
func (r *Resolver) combatantLock(id int64) *sync.Mutex {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()

	mu, ok := r.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		r.locks[id] = mu
	}
	return mu
}
