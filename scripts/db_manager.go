// db_manager.go 数据库管理工具
//
// 用法:
//   go run scripts/db_manager.go -action=init   初始化所有表
//   go run scripts/db_manager.go -action=reset  删除并重建所有表
//   go run scripts/db_manager.go -action=seed   填充NPC战斗者

package main

import (
	"flag"
	"log"

	"github.com/jacl-coder/WordArena-Server/config"
	"github.com/jacl-coder/WordArena-Server/pkg/db"
)

// NPC种子数据: 供新账号练手的内置战斗者
var seedNPCs = []struct {
	name       string
	battleText string
	rating     int
}{
	{
		name:       "수련용 허수아비",
		battleText: "서있을 뿐이다.",
		rating:     800,
	},
	{
		name:       "불꽃의 수호자",
		battleText: "타오르는 불꽃이여! 나의 방패는 녹지 않고, 나의 검은 식지 않는다. 약점을 노려라!",
		rating:     1000,
	},
	{
		name:       "폭풍의 기사",
		battleText: "Behold! The storm rides with me! I will crush your guard and strike with relentless thunder!",
		rating:     1200,
	},
	{
		name:       "그림자 암살자",
		battleText: "어둠 속에서 약점을 노린다. 준비는 끝났다. 피할 수 없는 일격이 너를 기다린다!",
		rating:     1400,
	},
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	action := flag.String("action", "init", "操作类型 (init, reset, seed)")
	flag.Parse()

	// 加载配置
	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化数据库连接
	if err := db.InitPostgres(); err != nil {
		log.Fatalf("初始化PostgreSQL失败: %v", err)
	}
	defer db.Close()

	switch *action {
	case "init":
		initTables()
	case "reset":
		resetTables()
	case "seed":
		seedNPCCombatants()
	default:
		log.Fatalf("未知的操作类型: %s", *action)
	}
}

// initTables 初始化所有表
func initTables() {
	if err := db.InitAllTables(); err != nil {
		log.Fatalf("初始化数据库表失败: %v", err)
	}
	log.Println("数据库表初始化完成")
}

// resetTables 删除并重建所有表
func resetTables() {
	if err := db.DropAllTables(); err != nil {
		log.Fatalf("删除数据库表失败: %v", err)
	}
	log.Println("数据库表已删除")

	if err := db.InitAllTables(); err != nil {
		log.Fatalf("重建数据库表失败: %v", err)
	}
	log.Println("数据库表重建完成")
}

// seedNPCCombatants 填充NPC战斗者，按名称去重
func seedNPCCombatants() {
	inserted := 0
	for _, npc := range seedNPCs {
		var count int
		err := db.DB.QueryRow(
			"SELECT COUNT(*) FROM combatants WHERE name = $1 AND is_npc = true",
			npc.name,
		).Scan(&count)
		if err != nil {
			log.Fatalf("查询NPC失败: %v", err)
		}
		if count > 0 {
			continue
		}

		_, err = db.DB.Exec(
			"INSERT INTO combatants (owner_account_id, name, battle_text, rating, is_npc) VALUES (NULL, $1, $2, $3, true)",
			npc.name, npc.battleText, npc.rating,
		)
		if err != nil {
			log.Fatalf("插入NPC失败: %v", err)
		}
		inserted++
	}

	log.Printf("NPC战斗者填充完成，新增 %d 个", inserted)
}
