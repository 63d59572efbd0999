// service_test.go

package feed

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/jacl-coder/WordArena-Server/config"
	"github.com/jacl-coder/WordArena-Server/internal/models"
)

// battlePayload 构造一条战斗结算事件
func battlePayload(t *testing.T, attackerID, defenderID int64) []byte {
	t.Helper()
	record := models.BattleRecord{
		ID:         "test-record",
		AttackerID: attackerID,
		DefenderID: defenderID,
		WinnerID:   attackerID,
	}
	payload, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("序列化战斗记录失败: %v", err)
	}
	return payload
}

// TestBroadcastEventFilter 指定关注对象的观战者只接收相关战斗
func TestBroadcastEventFilter(t *testing.T) {
	s := NewFeedService(&config.Config{})

	all := newViewer(0)
	attackerFan := newViewer(1)
	defenderFan := newViewer(2)
	stranger := newViewer(99)
	for _, v := range []*ViewerConnection{all, attackerFan, defenderFan, stranger} {
		s.viewers[v.ID] = v
	}

	s.broadcastEvent(battlePayload(t, 1, 2))

	if len(all.Send) != 1 {
		t.Errorf("未指定关注对象的观战者应收到消息, 实际 %d 条", len(all.Send))
	}
	if len(attackerFan.Send) != 1 {
		t.Errorf("关注攻方的观战者应收到消息, 实际 %d 条", len(attackerFan.Send))
	}
	if len(defenderFan.Send) != 1 {
		t.Errorf("关注守方的观战者应收到消息, 实际 %d 条", len(defenderFan.Send))
	}
	if len(stranger.Send) != 0 {
		t.Errorf("关注无关对象的观战者不应收到消息, 实际 %d 条", len(stranger.Send))
	}

	// 推送消息类型为battle_result
	var msg feedMessage
	if err := json.Unmarshal(<-all.Send, &msg); err != nil {
		t.Fatalf("解析推送消息失败: %v", err)
	}
	if msg.Type != "battle_result" {
		t.Errorf("消息类型 = %s, 期望 battle_result", msg.Type)
	}
}

// TestViewerWatchSwitch watch/unwatch控制消息切换关注对象
func TestViewerWatchSwitch(t *testing.T) {
	s := NewFeedService(&config.Config{})
	viewer := newViewer(0)

	watchMsg, _ := json.Marshal(feedMessage{
		Type:    "watch",
		Payload: json.RawMessage(`{"combatant_id":7}`),
	})
	s.handleViewerMessage(viewer, watchMsg)
	if got := viewer.Watching(); got != 7 {
		t.Errorf("Watching = %d, 期望 7", got)
	}

	unwatchMsg, _ := json.Marshal(feedMessage{Type: "unwatch"})
	s.handleViewerMessage(viewer, unwatchMsg)
	if got := viewer.Watching(); got != 0 {
		t.Errorf("Watching = %d, 期望 0", got)
	}
}

// TestBroadcastEventConcurrentWatch 广播与切换关注对象并发执行时不能有数据竞争
func TestBroadcastEventConcurrentWatch(t *testing.T) {
	s := NewFeedService(&config.Config{})
	viewer := newViewer(0)
	// 扩大发送缓冲，保证广播不会触发断开逻辑
	viewer.Send = make(chan []byte, 2048)
	s.viewers[viewer.ID] = viewer

	payload := battlePayload(t, 1, 2)
	watchMsg, _ := json.Marshal(feedMessage{
		Type:    "watch",
		Payload: json.RawMessage(`{"combatant_id":1}`),
	})
	unwatchMsg, _ := json.Marshal(feedMessage{Type: "unwatch"})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.handleViewerMessage(viewer, watchMsg)
			s.handleViewerMessage(viewer, unwatchMsg)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.broadcastEvent(payload)
		}
	}()
	wg.Wait()

	// 关注对象始终覆盖这场战斗的双方，每次广播都应送达
	if got := len(viewer.Send); got != 500 {
		t.Errorf("收到 %d 条消息, 期望 500", got)
	}
}
