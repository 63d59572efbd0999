package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jacl-coder/WordArena-Server/pkg/db"
)

// RedisLeaderboard Redis排行榜管理器
type RedisLeaderboard struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisLeaderboard 创建Redis排行榜管理器
func NewRedisLeaderboard() *RedisLeaderboard {
	return &RedisLeaderboard{
		client: db.RedisClient,
		ctx:    context.Background(),
	}
}

// 排行榜Redis键名
const (
	LeaderboardRatingKey  = "leaderboard:rating"
	LeaderboardWinsKey    = "leaderboard:wins"
	LeaderboardWinRateKey = "leaderboard:winrate"
	LeaderboardBattlesKey = "leaderboard:battles"

	// 战斗者详细信息键前缀
	CombatantInfoPrefix = "combatant:info:"

	// 排行榜缓存时间
	LeaderboardCacheTTL = 5 * time.Minute
)

// UpdateCombatantScore 更新战斗者排序值
func (rl *RedisLeaderboard) UpdateCombatantScore(combatantID int64, scoreType LeaderboardType, score float64) error {
	key := rl.getLeaderboardKey(scoreType)
	return rl.client.ZAdd(rl.ctx, key, &redis.Z{
		Score:  score,
		Member: combatantID,
	}).Err()
}

// UpdateCombatantInfo 更新战斗者信息
func (rl *RedisLeaderboard) UpdateCombatantInfo(entry *LeaderboardEntry) error {
	key := fmt.Sprintf("%s%d", CombatantInfoPrefix, entry.CombatantID)

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return rl.client.Set(rl.ctx, key, data, LeaderboardCacheTTL).Err()
}

// GetLeaderboard 获取排行榜
func (rl *RedisLeaderboard) GetLeaderboard(scoreType LeaderboardType, limit int) ([]LeaderboardEntry, error) {
	key := rl.getLeaderboardKey(scoreType)

	// 从Redis获取排行榜（按分数降序）
	members, err := rl.client.ZRevRangeWithScores(rl.ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	var entries []LeaderboardEntry
	for i, member := range members {
		combatantID, err := strconv.ParseInt(member.Member.(string), 10, 64)
		if err != nil {
			continue
		}

		// 获取战斗者详细信息
		info, err := rl.getCombatantInfo(combatantID)
		if err != nil {
			// 如果Redis中没有战斗者信息，从数据库获取
			info, err = rl.getCombatantInfoFromDB(combatantID)
			if err != nil {
				continue
			}
			// 缓存到Redis
			rl.UpdateCombatantInfo(info)
		}

		// 更新分数和排名
		info.Score = member.Score
		info.Rank = i + 1

		entries = append(entries, *info)
	}

	return entries, nil
}

// GetCombatantRank 获取战斗者排名
func (rl *RedisLeaderboard) GetCombatantRank(combatantID int64, scoreType LeaderboardType) (int, error) {
	key := rl.getLeaderboardKey(scoreType)

	rank, err := rl.client.ZRevRank(rl.ctx, key, strconv.FormatInt(combatantID, 10)).Result()
	if err != nil {
		if err == redis.Nil {
			return -1, nil // 战斗者不在排行榜中
		}
		return -1, err
	}

	return int(rank) + 1, nil // Redis排名从0开始，转换为从1开始
}

// UpdateAfterBattle 战斗结算后更新双方榜单数据
func (rl *RedisLeaderboard) UpdateAfterBattle(combatants ...*Combatant) {
	for _, c := range combatants {
		winRate := 0.0
		if c.TotalBattles > 0 {
			winRate = float64(c.Wins) * 100.0 / float64(c.TotalBattles)
		}

		rl.UpdateCombatantScore(c.ID, LeaderboardRating, float64(c.Rating))
		rl.UpdateCombatantScore(c.ID, LeaderboardWins, float64(c.Wins))
		rl.UpdateCombatantScore(c.ID, LeaderboardWinRate, winRate)
		rl.UpdateCombatantScore(c.ID, LeaderboardBattles, float64(c.TotalBattles))

		rl.UpdateCombatantInfo(&LeaderboardEntry{
			CombatantID:  c.ID,
			Name:         c.Name,
			Rating:       c.Rating,
			Wins:         c.Wins,
			Losses:       c.Losses,
			TotalBattles: c.TotalBattles,
			WinRate:      winRate,
		})
	}
}

// RefreshLeaderboard 刷新排行榜（从数据库重新加载）
func (rl *RedisLeaderboard) RefreshLeaderboard() error {
	// 查询数据库获取最新数据
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
		ORDER BY c.rating DESC
		LIMIT 1000
	`

	rows, err := db.DB.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	// 清空现有排行榜
	keys := []string{
		LeaderboardRatingKey,
		LeaderboardWinsKey,
		LeaderboardWinRateKey,
		LeaderboardBattlesKey,
	}

	for _, key := range keys {
		rl.client.Del(rl.ctx, key)
	}

	// 重新填充排行榜
	for rows.Next() {
		var entry LeaderboardEntry
		err := rows.Scan(
			&entry.CombatantID, &entry.Name, &entry.Rating,
			&entry.Wins, &entry.Losses, &entry.TotalBattles, &entry.WinRate,
		)
		if err != nil {
			continue
		}

		// 更新各种排行榜
		rl.UpdateCombatantScore(entry.CombatantID, LeaderboardRating, float64(entry.Rating))
		rl.UpdateCombatantScore(entry.CombatantID, LeaderboardWins, float64(entry.Wins))
		rl.UpdateCombatantScore(entry.CombatantID, LeaderboardWinRate, entry.WinRate)
		rl.UpdateCombatantScore(entry.CombatantID, LeaderboardBattles, float64(entry.TotalBattles))

		// 缓存战斗者信息
		rl.UpdateCombatantInfo(&entry)
	}

	return rows.Err()
}

// getLeaderboardKey 获取排行榜键名
func (rl *RedisLeaderboard) getLeaderboardKey(scoreType LeaderboardType) string {
	switch scoreType {
	case LeaderboardRating:
		return LeaderboardRatingKey
	case LeaderboardWins:
		return LeaderboardWinsKey
	case LeaderboardWinRate:
		return LeaderboardWinRateKey
	case LeaderboardBattles:
		return LeaderboardBattlesKey
	default:
		return LeaderboardRatingKey
	}
}

// getCombatantInfo 从Redis获取战斗者信息
func (rl *RedisLeaderboard) getCombatantInfo(combatantID int64) (*LeaderboardEntry, error) {
	key := fmt.Sprintf("%s%d", CombatantInfoPrefix, combatantID)

	data, err := rl.client.Get(rl.ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var entry LeaderboardEntry
	err = json.Unmarshal([]byte(data), &entry)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// getCombatantInfoFromDB 从数据库获取战斗者信息
func (rl *RedisLeaderboard) getCombatantInfoFromDB(combatantID int64) (*LeaderboardEntry, error) {
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

	var entry LeaderboardEntry
	err := db.DB.QueryRow(query, combatantID).Scan(
		&entry.CombatantID, &entry.Name, &entry.Rating,
		&entry.Wins, &entry.Losses, &entry.TotalBattles, &entry.WinRate,
	)

	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// SetLeaderboardTTL 设置排行榜过期时间
func (rl *RedisLeaderboard) SetLeaderboardTTL(ttl time.Duration) error {
	keys := []string{
		LeaderboardRatingKey,
		LeaderboardWinsKey,
		LeaderboardWinRateKey,
		LeaderboardBattlesKey,
	}

	for _, key := range keys {
		if err := rl.client.Expire(rl.ctx, key, ttl).Err(); err != nil {
			return err
		}
	}

	return nil
}
