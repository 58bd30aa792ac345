package eventbus

// 포스트 라이프사이클 이벤트가 발행되는 토픽 이름.
const (
	TopicPostUpdated = "blogread.post.updated"
	TopicPostDeleted = "blogread.post.deleted"
)
