// websocket.go

package feed

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// 写入超时时间
	writeWait = 10 * time.Second

	// 读取超时时间
	pongWait = 60 * time.Second

	// 发送 ping 的间隔时间
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 4 * 1024 // 观战端只发送订阅控制消息
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 允许所有跨域请求
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// feedMessage 推送消息结构
type feedMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ViewerConnection 观战连接
type ViewerConnection struct {
	ID   string
	Send chan []byte

	// 关注对象由readPump写入、广播协程读取，需要加锁
	mu sync.Mutex
	// watchCombatantID 关注的战斗者ID，0表示接收全部战斗
	watchCombatantID int64
	lastActive       time.Time
}

// newViewer 创建观战连接
func newViewer(watchID int64) *ViewerConnection {
	return &ViewerConnection{
		ID:               uuid.New().String(),
		Send:             make(chan []byte, 256),
		watchCombatantID: watchID,
		lastActive:       time.Now(),
	}
}

// Watch 切换关注对象
func (v *ViewerConnection) Watch(combatantID int64) {
	v.mu.Lock()
	v.watchCombatantID = combatantID
	v.mu.Unlock()
}

// Watching 返回当前关注的战斗者ID
func (v *ViewerConnection) Watching() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.watchCombatantID
}

// touch 更新最后活跃时间
func (v *ViewerConnection) touch() {
	v.mu.Lock()
	v.lastActive = time.Now()
	v.mu.Unlock()
}

// handleFeedConnection 处理观战WebSocket连接
func (s *FeedService) handleFeedConnection(w http.ResponseWriter, r *http.Request) {
	// 可选的关注对象
	watchID := int64(0)
	if watchStr := r.URL.Query().Get("combatant_id"); watchStr != "" {
		id, err := strconv.ParseInt(watchStr, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "无效的战斗者ID", http.StatusBadRequest)
			return
		}
		watchID = id
	}

	// 升级HTTP连接为WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket升级失败: %v", err)
		return
	}

	// 创建观战连接
	viewer := newViewer(watchID)

	// 添加到连接列表
	s.viewerMutex.Lock()
	s.viewers[viewer.ID] = viewer
	s.viewerMutex.Unlock()

	log.Printf("观战者 %s 已连接 (关注: %d)", viewer.ID, watchID)

	// 启动读写协程
	go s.readPump(conn, viewer)
	go s.writePump(conn, viewer)
}

// readPump 从WebSocket读取数据
func (s *FeedService) readPump(conn *websocket.Conn, viewer *ViewerConnection) {
	defer func() {
		s.closeViewer(viewer)
		conn.Close()
	}()

	// 设置读取参数
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket错误: %v", err)
			}
			break
		}

		viewer.touch()

		// 处理订阅控制消息
		s.handleViewerMessage(viewer, message)
	}
}

// writePump 向WebSocket写入数据
func (s *FeedService) writePump(conn *websocket.Conn, viewer *ViewerConnection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-viewer.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// 添加队列中的其他消息
			n := len(viewer.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-viewer.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeViewer 关闭观战连接
func (s *FeedService) closeViewer(viewer *ViewerConnection) {
	s.viewerMutex.Lock()
	defer s.viewerMutex.Unlock()

	// 检查连接是否已关闭
	if _, ok := s.viewers[viewer.ID]; !ok {
		return
	}

	// 关闭发送通道
	close(viewer.Send)

	// 从连接列表移除
	delete(s.viewers, viewer.ID)

	log.Printf("观战者 %s 已断开连接", viewer.ID)
}

// handleViewerMessage 处理观战者的控制消息
func (s *FeedService) handleViewerMessage(viewer *ViewerConnection, data []byte) {
	var msg feedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("解析消息失败: %v", err)
		return
	}

	switch msg.Type {
	case "watch":
		// 切换关注对象
		var payload struct {
			CombatantID int64 `json:"combatant_id"`
		}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			log.Printf("解析关注请求失败: %v", err)
			return
		}
		viewer.Watch(payload.CombatantID)
		log.Printf("观战者 %s 切换关注对象: %d", viewer.ID, payload.CombatantID)
	case "unwatch":
		viewer.Watch(0)
	default:
		log.Printf("未知消息类型: %s", msg.Type)
	}
}
