// internal/llm/retry.go
package llm

import (
	"context"
	"errors"
	"net"
	"time"
)

// RetryPolicy 描述上游调用失败后的重试策略。
// 谓词和退避函数独立于控制流，便于在测试中注入假的休眠实现。
type RetryPolicy struct {
	// MaxRetries 首次尝试之外允许的额外尝试次数
	MaxRetries int

	// Backoff 根据第几次重试计算等待时长
	Backoff func(attempt int) time.Duration

	// Sleep 执行等待，测试中可替换为记录调用的桩
	Sleep func(d time.Duration)

	// Retryable 判断一个失败是否值得重试
	Retryable func(err error) bool
}

// DefaultRetryPolicy 返回默认策略：仅超时重试，线性退避 attempt*2 秒
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * 2 * time.Second
		},
		Sleep:     time.Sleep,
		Retryable: IsTimeout,
	}
}

// IsTimeout 判断错误是否为超时（唯一可重试的失败类别）
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}
