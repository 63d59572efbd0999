// combatant.go

package models

import (
	"database/sql"
	"time"
)

// Account 账号模型
type Account struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // 不序列化密码
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NPCAccountID NPC战斗者的归属账号哨兵值
const NPCAccountID int64 = 0

// OwnerOrNPC 转换数据库中的归属账号列，NULL表示NPC战斗者
func OwnerOrNPC(owner sql.NullInt64) int64 {
	if owner.Valid {
		return owner.Int64
	}
	return NPCAccountID
}

// Combatant 战斗者模型
type Combatant struct {
	ID             int64     `json:"id"`
	OwnerAccountID int64     `json:"owner_account_id"`
	Name           string    `json:"name"`
	// BattleText 战斗文本，由持有者在引擎外修改，结算期间不可变
	BattleText string `json:"battle_text"`
	// Rating 评分，只由评分更新器修改
	Rating       int       `json:"rating"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	TotalBattles int       `json:"total_battles"`
	IsNPC        bool      `json:"is_npc"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GamesPlayed 已完成的场次(用于K系数分档)
func (c *Combatant) GamesPlayed() int {
	return c.Wins + c.Losses
}
