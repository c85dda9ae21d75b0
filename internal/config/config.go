// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 存储应用配置
// 配置在进程启动时加载一次，之后以显式值的方式传入各个服务，
// 不在调用点读取环境变量。
type Config struct {
	Port    string
	DataDir string
	LogDir  string

	// 缓存相关配置
	CacheDir string

	// 生成能力相关配置
	LLMProvider    string
	DeepseekAPIKey string
	DefaultModel   string
	BaseURL        string

	// 模拟模式：启用后不调用上游API，使用固定模板
	UseMockResponse bool
	DebugMode       bool
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	godotenv.Load()

	config := &Config{
		Port:            getEnv("PORT", "5000"),
		DataDir:         getEnvPath("DATA_DIR", "data"),
		LogDir:          getEnvPath("LOG_DIR", "logs"),
		CacheDir:        getEnvPath("CACHE_DIR", "response_cache"),
		LLMProvider:     getEnv("LLM_PROVIDER", "deepseek"),
		DeepseekAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
		DefaultModel:    getEnv("LLM_MODEL", "deepseek-chat"),
		BaseURL:         getEnv("LLM_BASE_URL", ""),
		UseMockResponse: getEnvBool("USE_MOCK_RESPONSE", false),
		DebugMode:       getEnvBool("DEBUG_MODE", true),
	}

	return config, nil
}

// HasCredential 返回是否配置了上游API密钥
func (c *Config) HasCredential() bool {
	return c.DeepseekAPIKey != ""
}

// LLMConfig 返回传递给提供者 Initialize 的配置映射
func (c *Config) LLMConfig() map[string]string {
	cfg := map[string]string{
		"api_key":       c.DeepseekAPIKey,
		"default_model": c.DefaultModel,
	}
	if c.BaseURL != "" {
		cfg["base_url"] = c.BaseURL
	}
	return cfg
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath 获取环境变量表示的路径，如果不存在则返回默认值
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	// 确保目录存在
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			fmt.Printf("警告: 创建目录失败 %s: %v\n", path, err)
		}
	}

	return path
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed
	}
	return value == "yes"
}
