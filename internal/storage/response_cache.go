// internal/storage/response_cache.go
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Draftwell/ScriptForgeAI/internal/utils"
)

// ResponseCache 将成功的生成结果按 (topic, keyword) 持久化到本地目录。
// 缓存是尽力而为的优化层：任何读写失败都只记录日志，绝不影响请求本身。
type ResponseCache struct {
	BaseDir string

	// 文件级别锁 path -> *sync.RWMutex
	fileLocks sync.Map

	logger *utils.Logger
}

// StructuredContent 新版缓存形状：三种资产一起存储
type StructuredContent struct {
	Script      json.RawMessage `json:"script,omitempty"`
	Description json.RawMessage `json:"description,omitempty"`
	Tags        json.RawMessage `json:"tags,omitempty"`
}

// CachedEntry 缓存条目的带标签变体：
// 旧版形状是裸的生成结果，新版形状是 StructuredContent 映射。
// 读取时按形状显式解码，不依赖版本标记。
type CachedEntry struct {
	Legacy     json.RawMessage
	Structured *StructuredContent
}

// IsStructured 返回条目是否为新版形状
func (e *CachedEntry) IsStructured() bool {
	return e.Structured != nil
}

// NewResponseCache 创建响应缓存
func NewResponseCache(baseDir string) (*ResponseCache, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("创建缓存目录失败: %w", err)
	}

	return &ResponseCache{
		BaseDir: baseDir,
		logger:  utils.GetLogger(),
	}, nil
}

// CacheKey 从topic和keyword推导确定性的缓存键：小写并将空格替换为下划线。
// creatorInfo 有意不参与键的计算，相同 (topic, keyword) 不同创作者
// 会命中同一条目（已知且保留的限制）。
func CacheKey(topic, keyword string) string {
	normalize := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(s), " ", "_")
	}
	return normalize(topic) + "_" + normalize(keyword)
}

func (c *ResponseCache) entryPath(topic, keyword string) string {
	return filepath.Join(c.BaseDir, CacheKey(topic, keyword)+".json")
}

// 获取文件锁
func (c *ResponseCache) getFileLock(fullPath string) *sync.RWMutex {
	value, _ := c.fileLocks.LoadOrStore(fullPath, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

// Get 返回 (topic, keyword) 对应的缓存条目。
// 条目不存在、无法读取或无法解码时一律返回nil，失败只记录日志。
func (c *ResponseCache) Get(topic, keyword string) *CachedEntry {
	fullPath := c.entryPath(topic, keyword)

	lock := c.getFileLock(fullPath)
	lock.RLock()
	defer lock.RUnlock()

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Errorf("读取缓存文件失败 %s: %v", fullPath, err)
		}
		return nil
	}

	entry, err := decodeEntry(data)
	if err != nil {
		c.logger.Errorf("解码缓存条目失败 %s: %v", fullPath, err)
		return nil
	}

	c.logger.Infof("使用缓存响应: %s, %s", topic, keyword)
	return entry
}

// PutLegacy 以旧版形状（裸生成结果）写入缓存，失败只记录日志
func (c *ResponseCache) PutLegacy(topic, keyword string, raw json.RawMessage) {
	c.write(topic, keyword, raw)
}

// PutStructured 以新版形状写入缓存，覆盖已有条目，失败只记录日志
func (c *ResponseCache) PutStructured(topic, keyword string, content *StructuredContent) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		c.logger.Errorf("序列化缓存条目失败: %v", err)
		return
	}
	c.write(topic, keyword, data)
}

// write 原子性写入缓存文件
func (c *ResponseCache) write(topic, keyword string, data []byte) {
	fullPath := c.entryPath(topic, keyword)

	lock := c.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	tempPath := fullPath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		c.logger.Errorf("保存缓存临时文件失败 %s: %v", tempPath, err)
		return
	}

	if err := os.Rename(tempPath, fullPath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			c.logger.Warnf("清理临时文件失败 %s: %v", tempPath, removeErr)
		}
		c.logger.Errorf("保存缓存文件失败 %s: %v", fullPath, err)
		return
	}

	c.logger.Infof("已保存响应到缓存: %s", fullPath)
}

// Delete 手动删除一个缓存条目
func (c *ResponseCache) Delete(topic, keyword string) error {
	fullPath := c.entryPath(topic, keyword)

	lock := c.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return fmt.Errorf("缓存条目不存在: %s", CacheKey(topic, keyword))
	}

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("删除缓存文件失败: %w", err)
	}

	return nil
}

// decodeEntry 按形状区分新旧两种缓存条目
func decodeEntry(data []byte) (*CachedEntry, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		// 不是JSON对象时按旧版裸负载处理，但仍须是合法JSON
		var anything interface{}
		if err := json.Unmarshal(data, &anything); err != nil {
			return nil, fmt.Errorf("缓存条目不是合法JSON: %w", err)
		}
		return &CachedEntry{Legacy: json.RawMessage(data)}, nil
	}

	_, hasScript := probe["script"]
	_, hasDescription := probe["description"]
	_, hasTags := probe["tags"]

	if hasScript || hasDescription || hasTags {
		var structured StructuredContent
		if err := json.Unmarshal(data, &structured); err != nil {
			return nil, fmt.Errorf("解析结构化缓存条目失败: %w", err)
		}
		return &CachedEntry{Structured: &structured}, nil
	}

	return &CachedEntry{Legacy: json.RawMessage(data)}, nil
}
