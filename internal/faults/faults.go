package faults

import (
	"errors"
	"fmt"
	"time"
)

// 本包定义了 AI 服务的错误分类体系。
// 管线编排器根据错误的类别决定是中止查询（致命类别）还是降级继续（可恢复类别），
// API 层根据类别映射 HTTP 状态码。所有类别都可以通过 errors.As / errors.Is 匹配。

// ConfigError 表示无效的启动或摄取配置（例如非法的分块参数）。
// 该类别是致命的，只会出现在启动和摄取阶段。
type ConfigError struct {
	Field  string // 出错的配置项名称
	Reason string // 出错原因
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置错误 [%s]: %s", e.Field, e.Reason)
}

// EmbeddingError 表示嵌入向量生成失败（例如输入为空文本）。
// 对单次调用而言可恢复；发生在用户问题上时由编排器判定为致命。
type EmbeddingError struct {
	Reason string
	Err    error // 底层错误（可为 nil）
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("嵌入生成失败: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("嵌入生成失败: %s", e.Reason)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// ProfileNotFound 表示外部理财档案服务明确返回了"档案不存在"。
// 该结果不会被缓存（用户可能正处于建档流程中），并原样上抛给调用方，
// 由调用方映射为"请先完成建档"类的用户提示，而不是降级作答。
type ProfileNotFound struct {
	UserID string
}

func (e *ProfileNotFound) Error() string {
	return fmt.Sprintf("用户 '%s' 的理财档案不存在", e.UserID)
}

// ProfileFetchError 表示获取理财档案时发生的其他失败（网络、非 2xx、载荷损坏）。
// 该类别是瞬时的：编排器降级为占位档案继续作答。
type ProfileFetchError struct {
	UserID string
	Err    error
}

func (e *ProfileFetchError) Error() string {
	return fmt.Sprintf("获取用户 '%s' 的理财档案失败: %v", e.UserID, e.Err)
}

func (e *ProfileFetchError) Unwrap() error { return e.Err }

// RetrievalError 表示向量检索失败（索引不可用等）。
// 编排器降级为空文段集合继续作答。
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("向量检索失败: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// GenerationError 表示生成调用的传输或协议层失败。对整个查询是致命的。
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("内容生成失败: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// GenerationTimeout 表示生成调用超过了配置的时限。对整个查询是致命的。
type GenerationTimeout struct {
	Timeout time.Duration
}

func (e *GenerationTimeout) Error() string {
	return fmt.Sprintf("内容生成在 %s 内未完成", e.Timeout)
}

// HistoryWriteError 表示聊天历史写入失败。
// 历史写入相对主回答是尽力而为的：该错误只记录日志，永远不会使查询失败。
type HistoryWriteError struct {
	ConversationID string
	Err            error
}

func (e *HistoryWriteError) Error() string {
	return fmt.Sprintf("会话 '%s' 的历史写入失败: %v", e.ConversationID, e.Err)
}

func (e *HistoryWriteError) Unwrap() error { return e.Err }

// IsFatal 判断错误是否属于会中止查询管线的致命类别。
func IsFatal(err error) bool {
	var genErr *GenerationError
	var genTimeout *GenerationTimeout
	var cfgErr *ConfigError
	return errors.As(err, &genErr) || errors.As(err, &genTimeout) || errors.As(err, &cfgErr)
}
