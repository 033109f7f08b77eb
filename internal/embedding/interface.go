package embedding

import "context"

// Embedding 定义了所有 embedding 模型需要实现的接口。
// 实现必须是确定性的：相同输入在同一模型版本下产生相同向量，
// 且 EmbedBatch 与逐条调用 Embed 的结果一致。
type Embedding interface {
	// Embed 为单个文本生成嵌入向量。
	//
	// 参数:
	//   ctx: 上下文，用于控制操作的生命周期。
	//   text: 要生成嵌入向量的文本。
	//
	// 返回值:
	//   []float32: 生成的嵌入向量。
	//   error: 如果生成嵌入向量失败，则返回错误。
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch 为一批文本生成嵌入向量，结果与输入一一对应。
	//
	// 参数:
	//   ctx: 上下文，用于控制操作的生命周期。
	//   texts: 要生成嵌入向量的文本切片。
	//
	// 返回值:
	//   [][]float32: 生成的嵌入向量切片。
	//   error: 如果生成嵌入向量失败，则返回错误。
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
