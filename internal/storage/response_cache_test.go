// internal/storage/response_cache_test.go
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *ResponseCache {
	t.Helper()

	cache, err := NewResponseCache(t.TempDir())
	require.NoError(t, err)
	return cache
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "ai_in_classrooms_ai_education_tools",
		CacheKey("AI in Classrooms", "AI education tools"))

	// 连续空格保留为连续下划线（与键推导规则一致）
	assert.Equal(t, "a__b_c", CacheKey("a  b", "c"))
}

func TestResponseCache_LegacyRoundTrip(t *testing.T) {
	cache := newTestCache(t)

	raw := json.RawMessage(`{"choices":[{"message":{"content":"generated text"}}]}`)
	cache.PutLegacy("AI in Classrooms", "AI education tools", raw)

	entry := cache.Get("AI in Classrooms", "AI education tools")
	require.NotNil(t, entry)
	assert.False(t, entry.IsStructured())
	assert.JSONEq(t, string(raw), string(entry.Legacy))
}

func TestResponseCache_StructuredRoundTrip(t *testing.T) {
	cache := newTestCache(t)

	content := &StructuredContent{
		Script:      json.RawMessage(`{"choices":[{"message":{"content":"the script"}}]}`),
		Description: json.RawMessage(`{"choices":[{"message":{"content":"the description"}}]}`),
		Tags:        json.RawMessage(`{"choices":[{"message":{"content":"tag1, tag2"}}]}`),
	}
	cache.PutStructured("topic", "keyword", content)

	entry := cache.Get("topic", "keyword")
	require.NotNil(t, entry)
	require.True(t, entry.IsStructured())
	assert.JSONEq(t, string(content.Script), string(entry.Structured.Script))
	assert.JSONEq(t, string(content.Tags), string(entry.Structured.Tags))
}

func TestResponseCache_MissingKeyReturnsNil(t *testing.T) {
	cache := newTestCache(t)

	assert.Nil(t, cache.Get("never", "written"))
}

func TestResponseCache_CorruptEntryReturnsNil(t *testing.T) {
	cache := newTestCache(t)

	path := filepath.Join(cache.BaseDir, CacheKey("topic", "keyword")+".json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0644))

	// 无法解码的条目按未命中处理，绝不报错
	assert.Nil(t, cache.Get("topic", "keyword"))
}

func TestResponseCache_PutOverwritesPriorValue(t *testing.T) {
	cache := newTestCache(t)

	cache.PutLegacy("topic", "keyword", json.RawMessage(`"old"`))
	cache.PutStructured("topic", "keyword", &StructuredContent{
		Script: json.RawMessage(`"new"`),
	})

	entry := cache.Get("topic", "keyword")
	require.NotNil(t, entry)
	assert.True(t, entry.IsStructured())
}

func TestResponseCache_Delete(t *testing.T) {
	cache := newTestCache(t)

	cache.PutLegacy("topic", "keyword", json.RawMessage(`"value"`))
	require.NotNil(t, cache.Get("topic", "keyword"))

	require.NoError(t, cache.Delete("topic", "keyword"))
	assert.Nil(t, cache.Get("topic", "keyword"))

	// 删除不存在的条目返回错误
	assert.Error(t, cache.Delete("topic", "keyword"))
}

func TestDecodeEntry_DistinguishesByShape(t *testing.T) {
	// 结构化形状：包含script/description/tags任意一个键
	entry, err := decodeEntry([]byte(`{"script":"s","description":"d","tags":"t"}`))
	require.NoError(t, err)
	assert.True(t, entry.IsStructured())

	// 旧版形状：任意其它JSON对象
	entry, err = decodeEntry([]byte(`{"choices":[{"message":{"content":"x"}}]}`))
	require.NoError(t, err)
	assert.False(t, entry.IsStructured())

	// 旧版形状：裸JSON字符串
	entry, err = decodeEntry([]byte(`"plain cached text"`))
	require.NoError(t, err)
	assert.False(t, entry.IsStructured())

	_, err = decodeEntry([]byte(`{{{`))
	assert.Error(t, err)
}
