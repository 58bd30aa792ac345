package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	PostUpdated EventType = "post.updated"
	PostDeleted EventType = "post.deleted"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// CascadeWarningInfo reports one refresh step that failed during a post
// update cascade. The update itself still succeeded.
type CascadeWarningInfo struct {
	Kind  string `json:"kind"` // "projection", "category", "tag", "author"
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

// PostUpdatedEvent 포스트 갱신 및 캐시 캐스케이드 완료 이벤트
type PostUpdatedEvent struct {
	BaseEvent
	PostID      int64                `json:"post_id"`
	Slug        string               `json:"slug"`
	CategoryIDs []int64              `json:"category_ids"`
	TagIDs      []int64              `json:"tag_ids"`
	AuthorID    int64                `json:"author_id"`
	Warnings    []CascadeWarningInfo `json:"warnings,omitempty"`
}

// PostDeletedEvent 포스트 삭제 이벤트
type PostDeletedEvent struct {
	BaseEvent
	PostID int64 `json:"post_id"`
}

// SerializeEvent 이벤트를 JSON으로 직렬화하고 타입 정보 반환
func SerializeEvent(event interface{}) ([]byte, EventType, error) {
	var eventType EventType

	switch e := event.(type) {
	case PostUpdatedEvent:
		eventType = e.Type
	case PostDeletedEvent:
		eventType = e.Type
	default:
		return nil, "", fmt.Errorf("unknown event type: %T", event)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event: %w", err)
	}

	return data, eventType, nil
}

// DeserializeEvent 이벤트 타입에 따라 적절한 구조체로 역직렬화
func DeserializeEvent(eventType EventType, data []byte) (interface{}, error) {
	var event interface{}

	switch eventType {
	case PostUpdated:
		event = &PostUpdatedEvent{}
	case PostDeleted:
		event = &PostDeletedEvent{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return event, nil
}
