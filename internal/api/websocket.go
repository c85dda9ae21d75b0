// internal/api/websocket.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Draftwell/ScriptForgeAI/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS对所有来源开放，WebSocket保持一致
		return true
	},
}

// ProgressWebSocket 把一次生成任务的进度更新推送给客户端。
// 客户端先带taskId发起生成请求，再连接本端点订阅同一taskId。
func (h *Handler) ProgressWebSocket(c *gin.Context) {
	taskID := c.Param("task_id")
	if taskID == "" {
		h.Response.BadRequest(c, "task_id为必填参数")
		return
	}

	logger := utils.GetLogger()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("WebSocket升级失败: %v", err)
		return
	}
	defer conn.Close()

	// 任务可能尚未开始，先建立追踪器以免错过早期更新
	tracker := h.ProgressService.CreateTracker(taskID)
	updates := tracker.Subscribe()
	defer tracker.Unsubscribe(updates)

	for update := range updates {
		if err := conn.WriteJSON(update); err != nil {
			logger.Warnf("WebSocket写入失败: %v", err)
			return
		}

		// 终态之后不再有更新
		if update.Status != "running" {
			return
		}
	}
}
