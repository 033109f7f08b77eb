package models

import "time"

// 消息角色。历史记录只区分提问方和回答方。
const (
	RoleUser      = "user"      // 用户消息
	RoleAssistant = "assistant" // 助手（模型）消息
)

// ChatMessage 是聊天历史中的一条消息。
// 历史是仅追加的：消息一旦写入就不会被更新，会话内按 Timestamp 升序排列。
// "会话"没有独立的存储实体，它是共享同一 ConversationID 的消息的派生分组。
type ChatMessage struct {
	UserID         string    `bson:"userId" json:"userId"`
	ConversationID string    `bson:"conversationId" json:"conversationId"`
	Role           string    `bson:"role" json:"role"`
	Message        string    `bson:"message" json:"message"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}

// ConversationSummary 是会话列表中的一个条目：每个会话取其最近一条消息作为代表。
type ConversationSummary struct {
	ConversationID string    `bson:"_id" json:"conversationId"`
	LatestMessage  string    `bson:"latestMessage" json:"latestMessage"`
	LatestRole     string    `bson:"latestRole" json:"role"`
	Timestamp      time.Time `bson:"latestTimestamp" json:"timestamp"`
}

// ChatEvent 是回答成功后发布到 Kafka 的 chat.message.sent 事件载荷。
// 事件发布和历史写入一样是尽力而为的，失败只记录日志。
type ChatEvent struct {
	UserID         string    `json:"userId"`
	ConversationID string    `json:"conversationId"`
	QuestionLength int       `json:"questionLength"`
	AnswerLength   int       `json:"answerLength"`
	Timestamp      time.Time `json:"timestamp"`
}
