package web

import (
	"context"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hatcher/voyage/focus/entity"
	"github.com/hatcher/voyage/focus/heartbeat"
	"github.com/hatcher/voyage/focus/live"
	"github.com/hatcher/voyage/focus/service"
	"github.com/hatcher/voyage/models"
	"github.com/hatcher/voyage/pkg/hertzx"
	"github.com/hatcher/voyage/pkg/hertzx/middleware"
)

// InterventionStore 干预记录分页查询
type InterventionStore interface {
	PageInterventions(ctx context.Context, sessionID int64, pageable *models.Pageable) ([]*entity.Intervention, int64, error)
}

// Handler HTTP接入层
type Handler struct {
	sessions      *service.SessionService
	tasks         *service.TaskService
	processor     *heartbeat.Processor
	hub           *live.Hub
	interventions InterventionStore
}

func NewHandler(
	sessions *service.SessionService,
	tasks *service.TaskService,
	processor *heartbeat.Processor,
	hub *live.Hub,
	interventions InterventionStore,
) *Handler {
	return &Handler{
		sessions:      sessions,
		tasks:         tasks,
		processor:     processor,
		hub:           hub,
		interventions: interventions,
	}
}

// currentUser 取当前用户：优先jwt，未启用鉴权时退回userId参数
func currentUser(c *app.RequestContext) (int64, bool) {
	if userID, ok := middleware.AuthUser(c); ok {
		return userID, true
	}
	userID, err := hertzx.QueryInt64(c, "userId")
	if err != nil || userID == 0 {
		return 0, false
	}
	return userID, true
}
