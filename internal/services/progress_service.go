// internal/services/progress_service.go
package services

import (
	"sync"
	"time"
)

// ProgressUpdate 表示进度更新
type ProgressUpdate struct {
	Progress int    `json:"progress"` // 进度百分比 (0-100)
	Message  string `json:"message"`  // 描述性消息
	Status   string `json:"status"`   // 状态：running, completed, failed
}

// ProgressTracker 跟踪一次生成任务的进度
type ProgressTracker struct {
	TaskID     string
	Progress   int
	Message    string
	Status     string
	StartTime  time.Time
	UpdateTime time.Time

	subscribers map[chan ProgressUpdate]bool
	mutex       sync.Mutex
}

// ProgressService 管理所有进度跟踪器
type ProgressService struct {
	trackers map[string]*ProgressTracker
	mutex    sync.RWMutex
}

// NewProgressService 创建进度服务实例
func NewProgressService() *ProgressService {
	return &ProgressService{
		trackers: make(map[string]*ProgressTracker),
	}
}

// CreateTracker 创建新的进度跟踪器；已存在时返回现有追踪器
func (s *ProgressService) CreateTracker(taskID string) *ProgressTracker {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if tracker, exists := s.trackers[taskID]; exists {
		return tracker
	}

	tracker := &ProgressTracker{
		TaskID:      taskID,
		Progress:    0,
		Message:     "任务初始化中...",
		Status:      "running",
		StartTime:   time.Now(),
		UpdateTime:  time.Now(),
		subscribers: make(map[chan ProgressUpdate]bool),
	}

	s.trackers[taskID] = tracker
	return tracker
}

// GetTracker 获取进度跟踪器
func (s *ProgressService) GetTracker(taskID string) (*ProgressTracker, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	tracker, exists := s.trackers[taskID]
	return tracker, exists
}

// RemoveTracker 移除进度跟踪器
func (s *ProgressService) RemoveTracker(taskID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.trackers, taskID)
}

// Update 更新任务进度并广播给所有订阅者
func (t *ProgressTracker) Update(progress int, message string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.Progress = progress
	t.Message = message
	t.UpdateTime = time.Now()
	t.broadcast()
}

// Complete 标记任务完成
func (t *ProgressTracker) Complete(message string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.Progress = 100
	t.Message = message
	t.Status = "completed"
	t.UpdateTime = time.Now()
	t.broadcast()
}

// Fail 标记任务失败
func (t *ProgressTracker) Fail(message string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.Message = message
	t.Status = "failed"
	t.UpdateTime = time.Now()
	t.broadcast()
}

// Subscribe 订阅进度更新，立即收到当前状态快照
func (t *ProgressTracker) Subscribe() chan ProgressUpdate {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	ch := make(chan ProgressUpdate, 16)
	t.subscribers[ch] = true
	ch <- t.snapshotLocked()
	return ch
}

// Unsubscribe 取消订阅
func (t *ProgressTracker) Unsubscribe(ch chan ProgressUpdate) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, exists := t.subscribers[ch]; exists {
		delete(t.subscribers, ch)
		close(ch)
	}
}

// broadcast 向所有订阅者发送当前状态，调用方必须持有锁。
// 订阅者缓冲已满时丢弃本次更新，不阻塞生成流程。
func (t *ProgressTracker) broadcast() {
	update := t.snapshotLocked()
	for ch := range t.subscribers {
		select {
		case ch <- update:
		default:
		}
	}
}

func (t *ProgressTracker) snapshotLocked() ProgressUpdate {
	return ProgressUpdate{
		Progress: t.Progress,
		Message:  t.Message,
		Status:   t.Status,
	}
}
