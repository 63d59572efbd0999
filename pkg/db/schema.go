// schema.go

package db

// 统一的数据库表结构定义

// CreateAllTablesSQL 创建所有表的SQL语句
const CreateAllTablesSQL = `
-- 账号表
CREATE TABLE IF NOT EXISTS accounts (
    id SERIAL PRIMARY KEY,
    username VARCHAR(50) UNIQUE NOT NULL,
    password VARCHAR(100) NOT NULL,
    email VARCHAR(100) UNIQUE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);

-- 战斗者表
CREATE TABLE IF NOT EXISTS combatants (
    id SERIAL PRIMARY KEY,
    owner_account_id BIGINT REFERENCES accounts(id) ON DELETE SET NULL,
    name VARCHAR(50) NOT NULL,
    battle_text TEXT NOT NULL DEFAULT '',
    rating INT NOT NULL DEFAULT 1000,
    wins INT NOT NULL DEFAULT 0,
    losses INT NOT NULL DEFAULT 0,
    total_battles INT NOT NULL DEFAULT 0,
    is_npc BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);

-- 战斗记录表
CREATE TABLE IF NOT EXISTS battle_records (
    id VARCHAR(50) PRIMARY KEY,
    attacker_id BIGINT REFERENCES combatants(id) NOT NULL,
    defender_id BIGINT REFERENCES combatants(id) NOT NULL,
    winner_id BIGINT NOT NULL,
    attacker_score DOUBLE PRECISION NOT NULL,
    defender_score DOUBLE PRECISION NOT NULL,
    attacker_rating_delta INT NOT NULL,
    defender_rating_delta INT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    detail TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);

-- 创建排行榜视图
CREATE OR REPLACE VIEW leaderboard AS
SELECT
    c.id AS combatant_id,
    c.name,
    c.rating,
    c.wins,
    c.losses,
    c.total_battles,
    CASE WHEN c.total_battles > 0 THEN (c.wins * 100.0 / c.total_battles) ELSE 0 END AS win_rate
FROM
    combatants c
ORDER BY
    c.rating DESC;

-- 创建索引以提高查询性能
CREATE INDEX IF NOT EXISTS idx_accounts_username ON accounts(username);
CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);
CREATE INDEX IF NOT EXISTS idx_combatants_owner ON combatants(owner_account_id);
CREATE INDEX IF NOT EXISTS idx_combatants_rating ON combatants(rating);
CREATE INDEX IF NOT EXISTS idx_battle_records_attacker ON battle_records(attacker_id);
CREATE INDEX IF NOT EXISTS idx_battle_records_defender ON battle_records(defender_id);
CREATE INDEX IF NOT EXISTS idx_battle_records_created_at ON battle_records(created_at);
`

// DropAllTablesSQL 删除所有表的SQL语句
const DropAllTablesSQL = `
DROP VIEW IF EXISTS leaderboard;
DROP TABLE IF EXISTS battle_records;
DROP TABLE IF EXISTS combatants;
DROP TABLE IF EXISTS accounts;
`

// InitAllTables 初始化所有数据库表
func InitAllTables() error {
	_, err := DB.Exec(CreateAllTablesSQL)
	if err != nil {
		return err
	}
	return nil
}

// DropAllTables 删除所有数据库表
func DropAllTables() error {
	_, err := DB.Exec(DropAllTablesSQL)
	if err != nil {
		return err
	}
	return nil
}
