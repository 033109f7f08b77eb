package models

// GenerateRequest 是发往大模型的生成请求的内部表示。
// 各个 LLM 客户端（ollama / gemini / openai）负责把它转换为自己的线上格式。
type GenerateRequest struct {
	System      string  // 系统指令（角色设定），可为空
	Prompt      string  // 完整的用户提示词（上下文 + 问题）
	Temperature float64 // 随机性，0.0 为确定性输出
	MaxTokens   int     // 回答长度上限；0 表示使用提供商默认值
}

// GenerateResponse 是生成调用的内部响应表示。
type GenerateResponse struct {
	Text  string // 生成的文本；流式模式下为单个增量片段
	Model string // 实际响应的模型版本
	Done  bool   // 流式模式下标记流结束；非流式响应恒为 true
}
