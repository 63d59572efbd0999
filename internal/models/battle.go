// battle.go

package models

import (
	"time"
)

// BattleRecord 战斗记录，一次结算的不可变结果
type BattleRecord struct {
	ID         string `json:"id"`
	AttackerID int64  `json:"attacker_id"`
	DefenderID int64  `json:"defender_id"`
	// WinnerID 必须等于攻守双方之一
	WinnerID            int64     `json:"winner_id"`
	AttackerScore       float64   `json:"attacker_score"`
	DefenderScore       float64   `json:"defender_score"`
	AttackerRatingDelta int       `json:"attacker_rating_delta"`
	DefenderRatingDelta int       `json:"defender_rating_delta"`
	Summary             string    `json:"summary"`
	Detail              string    `json:"detail,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// RestrictionStatus 账号限制状态
type RestrictionStatus struct {
	AccountID           int64 `json:"account_id"`
	DailyUsed           int   `json:"daily_used"`
	DailyRemaining      int   `json:"daily_remaining"`
	CanBattleNow        bool  `json:"can_battle_now"`
	CooldownRemainingMS int64 `json:"cooldown_remaining_ms"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	CombatantID  int64   `json:"combatant_id"`
	Name         string  `json:"name"`
	Rating       int     `json:"rating"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	TotalBattles int     `json:"total_battles"`
	WinRate      float64 `json:"win_rate"`
	Score        float64 `json:"score"` // 当前榜单的排序值
	Rank         int     `json:"rank"`  // 排名
}

// LeaderboardType 排行榜类型
type LeaderboardType string

const (
	// LeaderboardRating 评分排行榜
	LeaderboardRating LeaderboardType = "rating"
	// LeaderboardWins 胜场排行榜
	LeaderboardWins LeaderboardType = "wins"
	// LeaderboardWinRate 胜率排行榜
	LeaderboardWinRate LeaderboardType = "winrate"
	// LeaderboardBattles 场次排行榜
	LeaderboardBattles LeaderboardType = "battles"
)
