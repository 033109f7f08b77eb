package milvus

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"FlousWise/internal/config"
)

// Client 包含了 Milvus 客户端实例和相关配置。
// 实例由调用方创建并注入，不使用包级单例。
type Client struct {
	Client client.Client        // Milvus 客户端实例。
	Config *config.MilvusConfig // Milvus 配置。
}

// Connect 创建并返回一个 Milvus 客户端实例。
func Connect(ctx context.Context, cfg *config.MilvusConfig) (*Client, error) {
	c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("无法连接到 Milvus: %w", err)
	}
	log.Println("✅ 成功连接到 Milvus!")
	return &Client{Client: c, Config: cfg}, nil
}

// Close 安全地关闭与 Milvus 的连接。
func (c *Client) Close() {
	if c.Client != nil {
		c.Client.Close()
		log.Println("ℹ️ 已安全关闭 Milvus 连接。")
	}
}

// HealthCheck 检查 Milvus 连接的健康状况。
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("Milvus client is nil")
	}
	_, err := c.Client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("Milvus health check failed: %w", err)
	}
	return nil
}

// CreateCollection 按 Schema 配置创建一个指定名称的集合并建立索引。
// 摄取任务用它创建带时间戳的新一代集合，集合名由调用方决定。
func (c *Client) CreateCollection(ctx context.Context, collName string) error {
	schemaFields := make([]*entity.Field, 0, len(c.Config.Schema.Fields))
	for _, fieldCfg := range c.Config.Schema.Fields {
		field := entity.NewField().WithName(fieldCfg.Name)

		if fieldCfg.IsPrimaryKey {
			field = field.WithIsPrimaryKey(true)
		}
		if fieldCfg.IsAutoID {
			field = field.WithIsAutoID(true)
		}

		switch fieldCfg.DataType {
		case "Int64":
			field = field.WithDataType(entity.FieldTypeInt64)
		case "VarChar":
			field = field.WithDataType(entity.FieldTypeVarChar).WithMaxLength(int64(fieldCfg.MaxLength))
		case "FloatVector":
			field = field.WithDataType(entity.FieldTypeFloatVector).WithDim(int64(fieldCfg.Dim))
		case "Float":
			field = field.WithDataType(entity.FieldTypeFloat)
		case "Double":
			field = field.WithDataType(entity.FieldTypeDouble)
		case "Bool":
			field = field.WithDataType(entity.FieldTypeBool)
		default:
			return fmt.Errorf("不支持的数据类型: %s", fieldCfg.DataType)
		}

		schemaFields = append(schemaFields, field)
	}

	schema := entity.NewSchema().
		WithName(collName).
		WithDescription(c.Config.Schema.Description)
	for _, field := range schemaFields {
		schema = schema.WithField(field)
	}

	if err := c.Client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("创建集合 '%s' 失败: %w", collName, err)
	}

	idx, err := c.buildIndexFromConfig()
	if err != nil {
		return err
	}
	if err := c.Client.CreateIndex(ctx, collName, c.Config.Schema.Index.FieldName, idx, false); err != nil {
		return fmt.Errorf("为字段 '%s' 创建索引失败: %w", c.Config.Schema.Index.FieldName, err)
	}

	log.Printf("✅ 成功创建集合: %s", collName)
	return nil
}

// HasCollection 检查指定名称的集合（或别名）是否存在。
func (c *Client) HasCollection(ctx context.Context, name string) (bool, error) {
	exists, err := c.Client.HasCollection(ctx, name)
	if err != nil {
		return false, fmt.Errorf("检查集合 '%s' 是否存在时出错: %w", name, err)
	}
	return exists, nil
}

// DropCollection 删除一个集合。用于摄取完成后清理被替换的旧一代集合。
func (c *Client) DropCollection(ctx context.Context, collName string) error {
	if err := c.Client.DropCollection(ctx, collName); err != nil {
		return fmt.Errorf("删除集合 '%s' 失败: %w", collName, err)
	}
	log.Printf("✅ 成功删除集合: %s", collName)
	return nil
}

// ListCollections 返回当前所有集合的名称。
func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	colls, err := c.Client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("无法获取集合列表: %w", err)
	}
	names := make([]string, 0, len(colls))
	for _, coll := range colls {
		names = append(names, coll.Name)
	}
	return names, nil
}

// SwapAlias 将别名原子地指向新集合。别名不存在时创建，已存在时切换。
// 查询侧始终通过别名访问，因此切换对并发查询是原子的。
func (c *Client) SwapAlias(ctx context.Context, alias, collName string) error {
	if err := c.Client.AlterAlias(ctx, collName, alias); err != nil {
		if err := c.Client.CreateAlias(ctx, collName, alias); err != nil {
			return fmt.Errorf("无法将别名 '%s' 指向集合 '%s': %w", alias, collName, err)
		}
	}
	log.Printf("✅ 别名 '%s' 现已指向集合 '%s'。", alias, collName)
	return nil
}

// DescribeAlias 返回别名当前指向的集合名。别名本身可以被 DescribeCollection 解析。
func (c *Client) DescribeAlias(ctx context.Context, alias string) (string, error) {
	coll, err := c.Client.DescribeCollection(ctx, alias)
	if err != nil {
		return "", fmt.Errorf("无法解析别名 '%s': %w", alias, err)
	}
	return coll.Schema.CollectionName, nil
}

// CollectionDim 返回集合（或别名）向量字段的维度。
// 服务启动时用它校验持久化索引与当前嵌入模型的维度是否一致。
func (c *Client) CollectionDim(ctx context.Context, name string) (int, error) {
	coll, err := c.Client.DescribeCollection(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("无法获取集合 '%s' 的描述: %w", name, err)
	}
	vectorField := c.Config.Schema.VectorField
	for _, field := range coll.Schema.Fields {
		if field.Name != vectorField {
			continue
		}
		dimStr, ok := field.TypeParams[entity.TypeParamDim]
		if !ok {
			return 0, fmt.Errorf("集合 '%s' 的字段 '%s' 缺少维度参数", name, vectorField)
		}
		dim, err := strconv.Atoi(dimStr)
		if err != nil {
			return 0, fmt.Errorf("集合 '%s' 的维度参数无效: %w", name, err)
		}
		return dim, nil
	}
	return 0, fmt.Errorf("集合 '%s' 中不存在向量字段 '%s'", name, vectorField)
}

// InsertBatch 将一批文段及其向量写入指定集合。
func (c *Client) InsertBatch(ctx context.Context, collName string, ids, sources, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) || len(chunks) != len(ids) || len(chunks) != len(sources) {
		return fmt.Errorf("批量插入的列长度不一致: ids=%d sources=%d chunks=%d vectors=%d",
			len(ids), len(sources), len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	idCol := entity.NewColumnVarChar("id", ids)
	sourceCol := entity.NewColumnVarChar("source", sources)
	chunkCol := entity.NewColumnVarChar("chunk", chunks)
	vectorCol := entity.NewColumnFloatVector(c.Config.Schema.VectorField, len(vectors[0]), vectors)

	_, err := c.Client.Insert(ctx, collName, "" /* default partition */, idCol, sourceCol, chunkCol, vectorCol)
	if err != nil {
		return fmt.Errorf("批量写入 Milvus 失败: %w", err)
	}

	log.Printf("✅ 已向集合 '%s' 写入 %d 条记录。", collName, len(chunks))
	return nil
}

// Flush 手动触发一次刷新操作，将内存中的数据写入磁盘。
func (c *Client) Flush(ctx context.Context, collName string) error {
	if err := c.Client.Flush(ctx, collName, false); err != nil {
		return fmt.Errorf("刷新集合 '%s' 失败: %w", collName, err)
	}
	return nil
}

// LoadCollection 将集合加载到内存，使其可被搜索。
func (c *Client) LoadCollection(ctx context.Context, collName string) error {
	if err := c.Client.LoadCollection(ctx, collName, false); err != nil {
		return fmt.Errorf("加载 Milvus 集合 '%s' 失败: %w", collName, err)
	}
	return nil
}

// Search 在指定集合（通常是别名）中执行向量相似度搜索。
// 度量类型来自 Schema 配置，本服务约定为 COSINE，返回分数即余弦相似度。
func (c *Client) Search(ctx context.Context, collName string, topK int, vector []float32) ([]client.SearchResult, error) {
	sp, err := c.buildSearchParamFromConfig()
	if err != nil {
		return nil, err
	}

	searchVectors := []entity.Vector{entity.FloatVector(vector)}
	metricType := entity.MetricType(c.Config.Schema.Index.MetricType)

	results, err := c.Client.Search(
		ctx,
		collName,
		nil,
		"",
		[]string{"chunk", "source"},
		searchVectors,
		c.Config.Schema.VectorField,
		metricType,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("在集合 '%s' 中搜索失败: %w", collName, err)
	}

	return results, nil
}

// buildIndexFromConfig 是一个辅助函数，用于从配置构建索引实体。
func (c *Client) buildIndexFromConfig() (entity.Index, error) {
	indexCfg := c.Config.Schema.Index
	metricType := entity.MetricType(indexCfg.MetricType)

	switch indexCfg.IndexType {
	case "IVF_FLAT":
		nlist, ok := indexCfg.Params["nlist"].(int)
		if !ok {
			nlist = 128
		}
		return entity.NewIndexIvfFlat(metricType, nlist)
	case "HNSW":
		M, ok := indexCfg.Params["M"].(int)
		if !ok {
			M = 8
		}
		efConstruction, ok := indexCfg.Params["efConstruction"].(int)
		if !ok {
			efConstruction = 96
		}
		return entity.NewIndexHNSW(metricType, M, efConstruction)
	case "IVF_SQ8":
		nlist, ok := indexCfg.Params["nlist"].(int)
		if !ok {
			nlist = 128
		}
		return entity.NewIndexIvfSQ8(metricType, nlist)
	case "AUTOINDEX":
		return entity.NewIndexAUTOINDEX(metricType)
	default:
		return nil, fmt.Errorf("不支持的索引类型: %s", indexCfg.IndexType)
	}
}

// buildSearchParamFromConfig 从配置构建与索引类型匹配的搜索参数。
func (c *Client) buildSearchParamFromConfig() (entity.SearchParam, error) {
	switch c.Config.Schema.Index.IndexType {
	case "IVF_FLAT", "IVF_SQ8":
		return entity.NewIndexIvfFlatSearchParam(10)
	case "HNSW":
		return entity.NewIndexHNSWSearchParam(64)
	case "AUTOINDEX":
		return entity.NewIndexAUTOINDEXSearchParam(1)
	default:
		return nil, fmt.Errorf("不支持的索引类型: %s", c.Config.Schema.Index.IndexType)
	}
}
