// service.go

package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/jacl-coder/WordArena-Server/config"
	"github.com/jacl-coder/WordArena-Server/internal/battle"
	"github.com/jacl-coder/WordArena-Server/internal/models"
	"github.com/jacl-coder/WordArena-Server/pkg/db"
)

// FeedService 战斗实况推送服务。订阅Redis上的战斗结算事件，
// 通过WebSocket实时推送给观战客户端。
type FeedService struct {
	// 服务配置
	config *config.Config

	// 观战连接列表
	viewers     map[string]*ViewerConnection
	viewerMutex sync.RWMutex

	// HTTP服务器
	httpServer *http.Server

	// 控制通道
	shutdown  chan struct{}
	isRunning bool
}

// NewFeedService 创建战斗实况推送服务
func NewFeedService(cfg *config.Config) *FeedService {
	return &FeedService{
		config:   cfg,
		viewers:  make(map[string]*ViewerConnection),
		shutdown: make(chan struct{}),
	}
}

// Start 启动战斗实况推送服务
func (s *FeedService) Start() error {
	if s.isRunning {
		return fmt.Errorf("实况推送服务已经在运行")
	}

	log.Println("实况推送服务启动")
	s.isRunning = true

	// 创建HTTP服务器
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/feed/live", s.handleFeedConnection)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.FeedPort),
		Handler: mux,
	}

	// 启动HTTP服务器
	go func() {
		log.Printf("实况推送服务HTTP服务器启动，监听端口: %d", s.config.Server.FeedPort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("实况推送服务HTTP服务器错误: %v", err)
		}
	}()

	// 启动事件订阅循环
	go s.subscribeLoop()

	return nil
}

// Stop 停止战斗实况推送服务
func (s *FeedService) Stop() {
	if !s.isRunning {
		return
	}

	close(s.shutdown)
	s.isRunning = false

	// 关闭所有观战连接
	s.viewerMutex.Lock()
	for _, viewer := range s.viewers {
		close(viewer.Send)
	}
	s.viewers = make(map[string]*ViewerConnection)
	s.viewerMutex.Unlock()

	// 关闭HTTP服务器
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}

	log.Println("实况推送服务已停止")
}

// handleHealth 处理健康检查请求
func (s *FeedService) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// subscribeLoop 订阅战斗结算事件并广播给观战者
func (s *FeedService) subscribeLoop() {
	ctx := context.Background()
	pubsub := db.RedisClient.Subscribe(ctx, battle.BattleEventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	log.Printf("已订阅战斗事件频道: %s", battle.BattleEventsChannel)

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				log.Println("战斗事件频道已关闭")
				return
			}
			s.broadcastEvent([]byte(msg.Payload))
		case <-s.shutdown:
			return
		}
	}
}

// broadcastEvent 将战斗事件推送给所有匹配的观战者
func (s *FeedService) broadcastEvent(payload []byte) {
	var record models.BattleRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		log.Printf("解析战斗事件失败: %v", err)
		return
	}

	message, err := json.Marshal(feedMessage{
		Type:    "battle_result",
		Payload: payload,
	})
	if err != nil {
		log.Printf("序列化推送消息失败: %v", err)
		return
	}

	s.viewerMutex.RLock()
	defer s.viewerMutex.RUnlock()

	for _, viewer := range s.viewers {
		// 指定了关注对象的观战者只接收相关战斗
		watchID := viewer.Watching()
		if watchID != 0 &&
			watchID != record.AttackerID &&
			watchID != record.DefenderID {
			continue
		}

		select {
		case viewer.Send <- message:
			// 消息已发送到通道
		default:
			// 通道已满，关闭连接
			go s.closeViewer(viewer)
		}
	}
}
