// service.go

package battle

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jacl-coder/WordArena-Server/config"
	"github.com/jacl-coder/WordArena-Server/internal/engine"
	"github.com/jacl-coder/WordArena-Server/internal/models"
	"github.com/jacl-coder/WordArena-Server/pkg/db"
)

// BattleEventsChannel 战斗结算事件的Redis发布频道
const BattleEventsChannel = "battle:events"

// BattleService 战斗结算服务
type BattleService struct {
	// 结算引擎
	resolver *engine.Resolver

	// 存储与排行榜
	store       *PostgresStore
	leaderboard *models.RedisLeaderboard

	// 服务配置
	config *config.Config

	// HTTP服务器
	httpServer *http.Server
	handler    *BattleHandler

	isRunning bool
}

// NewBattleService 创建战斗结算服务
func NewBattleService(cfg *config.Config) *BattleService {
	service := &BattleService{
		store:       NewPostgresStore(),
		leaderboard: models.NewRedisLeaderboard(),
		config:      cfg,
	}

	params := engine.ResolverParams{
		Rating: engine.RatingParams{
			NewPlayerGameThreshold: cfg.Battle.NewPlayerGameThreshold,
			KNew:                   cfg.Battle.KNew,
			KExperienced:           cfg.Battle.KExperienced,
		},
		Restriction: engine.RestrictionPolicy{
			Cooldown:   cfg.Battle.Cooldown(),
			DailyLimit: cfg.Battle.DailyLimit,
		},
		NPCDefenderExempt: cfg.Battle.NPCDefenderExempt,
	}
	service.resolver = engine.NewResolver(service.store, params,
		engine.WithResultCallback(service.publishResult))

	// 创建处理器
	service.handler = NewBattleHandler(service)

	return service
}

// Start 启动战斗结算服务
func (s *BattleService) Start() error {
	if s.isRunning {
		return fmt.Errorf("战斗结算服务已经在运行")
	}

	log.Println("战斗结算服务启动")
	s.isRunning = true

	// 启动时从数据库刷新排行榜
	if err := s.leaderboard.RefreshLeaderboard(); err != nil {
		log.Printf("刷新排行榜失败: %v", err)
	}

	// 创建HTTP服务器
	mux := http.NewServeMux()
	s.handler.RegisterHandlers(mux)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.BattlePort),
		Handler: mux,
	}

	// 启动HTTP服务器
	go func() {
		log.Printf("战斗结算服务HTTP服务器启动，监听端口: %d", s.config.Server.BattlePort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("战斗结算服务HTTP服务器错误: %v", err)
		}
	}()

	return nil
}

// Stop 停止战斗结算服务
func (s *BattleService) Stop() {
	if !s.isRunning {
		return
	}

	s.isRunning = false

	// 关闭HTTP服务器
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}

	log.Println("战斗结算服务已停止")
}

// ResolveBattle 结算一场战斗
func (s *BattleService) ResolveBattle(attackerID, defenderID int64) (*models.BattleRecord, error) {
	return s.resolver.ResolveBattle(attackerID, defenderID)
}

// RestrictionStatus 查询账号限制状态
func (s *BattleService) RestrictionStatus(accountID int64) models.RestrictionStatus {
	return s.resolver.RestrictionStatus(accountID)
}

// GetBattleHistory 分页查询战斗者的历史记录
func (s *BattleService) GetBattleHistory(combatantID int64, limit, offset int) ([]models.BattleRecord, int, error) {
	return s.store.GetBattleHistory(combatantID, limit, offset)
}

// GetBattleRecord 按ID查询战斗记录
func (s *BattleService) GetBattleRecord(id string) (*models.BattleRecord, error) {
	return s.store.GetBattleRecord(id)
}

// publishResult 结算成功后更新排行榜并发布事件
func (s *BattleService) publishResult(record *models.BattleRecord) {
	// 重新读取双方最新数据更新排行榜
	attacker, err := s.store.GetCombatant(record.AttackerID)
	if err != nil {
		log.Printf("读取攻方数据失败: %v", err)
	}
	defender, err := s.store.GetCombatant(record.DefenderID)
	if err != nil {
		log.Printf("读取守方数据失败: %v", err)
	}
	if attacker != nil && defender != nil {
		s.leaderboard.UpdateAfterBattle(attacker, defender)
	}

	// 发布战斗结算事件供实时推送
	data, err := json.Marshal(record)
	if err != nil {
		log.Printf("编码战斗事件失败: %v", err)
		return
	}
	if err := db.RedisClient.Publish(context.Background(), BattleEventsChannel, data).Err(); err != nil {
		log.Printf("发布战斗事件失败: %v", err)
	}
}
