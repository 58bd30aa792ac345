package eventbus

import (
	"context"
	"encoding/json"
)

// Event는 버스 메시지의 페이로드로 사용되는 구조체입니다.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EventBus 인터페이스는 이벤트 발행의 추상화를 정의합니다.
// 발행 실패는 호출자에게 치명적이지 않으며 로그로만 남깁니다.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

// NoopBus는 Kafka가 비활성화된 환경에서 사용하는 EventBus 구현체입니다.
type NoopBus struct{}

func (NoopBus) Publish(ctx context.Context, topic string, event Event) error { return nil }
func (NoopBus) Close()                                                       {}
