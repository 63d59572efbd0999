// store.go

package battle

import (
	"database/sql"
	"fmt"

	"github.com/jacl-coder/WordArena-Server/internal/engine"
	"github.com/jacl-coder/WordArena-Server/internal/models"
	"github.com/jacl-coder/WordArena-Server/pkg/db"
)

// PostgresStore 战斗数据的PostgreSQL存储
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore 创建PostgreSQL存储
func NewPostgresStore() *PostgresStore {
	return &PostgresStore{
		db: db.DB,
	}
}

// GetCombatant 按ID查询战斗者
func (s *PostgresStore) GetCombatant(id int64) (*models.Combatant, error) {
	query := `
		SELECT id, owner_account_id, name, battle_text, rating, wins, losses, total_battles, is_npc, created_at, updated_at
		FROM combatants
		WHERE id = $1
	`

	var c models.Combatant
	var ownerID sql.NullInt64
	err := s.db.QueryRow(query, id).Scan(
		&c.ID, &ownerID, &c.Name, &c.BattleText, &c.Rating,
		&c.Wins, &c.Losses, &c.TotalBattles, &c.IsNPC,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: id=%d", engine.ErrNotFound, id)
		}
		return nil, fmt.Errorf("查询战斗者失败: %w", err)
	}

	c.OwnerAccountID = models.OwnerOrNPC(ownerID)

	return &c, nil
}

// ApplyResult 将双方聚合数据更新与战斗记录追加作为一个事务落盘
func (s *PostgresStore) ApplyResult(attacker, defender *models.Combatant, record *models.BattleRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE combatants
		SET rating = $1, wins = $2, losses = $3, total_battles = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
	`

	if _, err := tx.Exec(updateQuery, attacker.Rating, attacker.Wins, attacker.Losses, attacker.TotalBattles, attacker.ID); err != nil {
		return fmt.Errorf("更新攻方数据失败: %w", err)
	}
	if _, err := tx.Exec(updateQuery, defender.Rating, defender.Wins, defender.Losses, defender.TotalBattles, defender.ID); err != nil {
		return fmt.Errorf("更新守方数据失败: %w", err)
	}

	insertQuery := `
		INSERT INTO battle_records (
			id, attacker_id, defender_id, winner_id,
			attacker_score, defender_score, attacker_rating_delta, defender_rating_delta,
			summary, detail, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if _, err := tx.Exec(insertQuery,
		record.ID, record.AttackerID, record.DefenderID, record.WinnerID,
		record.AttackerScore, record.DefenderScore,
		record.AttackerRatingDelta, record.DefenderRatingDelta,
		record.Summary, record.Detail, record.CreatedAt,
	); err != nil {
		return fmt.Errorf("插入战斗记录失败: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}

	return nil
}

// GetBattleRecord 按ID查询战斗记录
func (s *PostgresStore) GetBattleRecord(id string) (*models.BattleRecord, error) {
	query := `
		SELECT id, attacker_id, defender_id, winner_id,
			attacker_score, defender_score, attacker_rating_delta, defender_rating_delta,
			summary, detail, created_at
		FROM battle_records
		WHERE id = $1
	`

	var r models.BattleRecord
	err := s.db.QueryRow(query, id).Scan(
		&r.ID, &r.AttackerID, &r.DefenderID, &r.WinnerID,
		&r.AttackerScore, &r.DefenderScore,
		&r.AttackerRatingDelta, &r.DefenderRatingDelta,
		&r.Summary, &r.Detail, &r.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: record=%s", engine.ErrNotFound, id)
		}
		return nil, fmt.Errorf("查询战斗记录失败: %w", err)
	}

	return &r, nil
}

// GetBattleHistory 分页查询战斗者的历史记录，按时间倒序
func (s *PostgresStore) GetBattleHistory(combatantID int64, limit, offset int) ([]models.BattleRecord, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM battle_records
		WHERE attacker_id = $1 OR defender_id = $1
	`

	var total int
	if err := s.db.QueryRow(countQuery, combatantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计战斗记录失败: %w", err)
	}

	query := `
		SELECT id, attacker_id, defender_id, winner_id,
			attacker_score, defender_score, attacker_rating_delta, defender_rating_delta,
			summary, detail, created_at
		FROM battle_records
		WHERE attacker_id = $1 OR defender_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.Query(query, combatantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("查询战斗历史失败: %w", err)
	}
	defer rows.Close()

	var records []models.BattleRecord
	for rows.Next() {
		var r models.BattleRecord
		if err := rows.Scan(
			&r.ID, &r.AttackerID, &r.DefenderID, &r.WinnerID,
			&r.AttackerScore, &r.DefenderScore,
			&r.AttackerRatingDelta, &r.DefenderRatingDelta,
			&r.Summary, &r.Detail, &r.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("扫描战斗记录失败: %w", err)
		}
		records = append(records, r)
	}

	return records, total, rows.Err()
}
