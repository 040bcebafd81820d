package web

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hatcher/voyage/focus/service"
	"github.com/hatcher/voyage/pkg/hertzx"
	"github.com/hatcher/voyage/pkg/logs"
	"github.com/hatcher/voyage/pkg/resp"
	"github.com/pkg/errors"
)

type createSessionReq struct {
	TaskID *int64 `json:"taskId"`
}

// CreateSession 开始一次专注会话
func (h *Handler) CreateSession(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUser(c)
	if !ok {
		hertzx.Unauthorized(c, "缺少用户身份")
		return
	}
	var req createSessionReq
	if err := c.BindJSON(&req); err != nil && len(c.Request.Body()) > 0 {
		hertzx.Badf(c, "请求体不合法: %v", err)
		return
	}
	session, err := h.sessions.Create(ctx, userID, req.TaskID)
	if err != nil {
		logs.CtxErrorf(ctx, "创建会话失败, user:%d, err:%v", userID, err)
		hertzx.Error(c, "创建会话失败")
		return
	}
	hertzx.Data(c, session)
}

// ListSessions 取当前用户的会话列表
func (h *Handler) ListSessions(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUser(c)
	if !ok {
		hertzx.Unauthorized(c, "缺少用户身份")
		return
	}
	sessions, err := h.sessions.ListByUser(ctx, userID)
	if err != nil {
		logs.CtxErrorf(ctx, "查询会话列表失败, user:%d, err:%v", userID, err)
		hertzx.Error(c, "查询会话列表失败")
		return
	}
	hertzx.Data(c, sessions)
}

func (h *Handler) GetSession(ctx context.Context, c *app.RequestContext) {
	id, err := hertzx.ParamInt64(c, "id")
	if err != nil {
		hertzx.Bad(c, err.Error())
		return
	}
	session, err := h.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			hertzx.Badf(c, "会话不存在: %d", id)
			return
		}
		logs.CtxErrorf(ctx, "查询会话失败, session:%d, err:%v", id, err)
		hertzx.Error(c, "查询会话失败")
		return
	}
	hertzx.Data(c, session)
}

// EndSession 结束会话并冻结计数
func (h *Handler) EndSession(ctx context.Context, c *app.RequestContext) {
	id, err := hertzx.ParamInt64(c, "id")
	if err != nil {
		hertzx.Bad(c, err.Error())
		return
	}
	session, err := h.sessions.End(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			hertzx.Badf(c, "会话不存在: %d", id)
		case errors.Is(err, service.ErrSessionEnded):
			hertzx.Badf(c, "会话已结束: %d", id)
		default:
			logs.CtxErrorf(ctx, "结束会话失败, session:%d, err:%v", id, err)
			hertzx.Error(c, "结束会话失败")
		}
		return
	}
	h.hub.CloseSession(id)
	hertzx.Data(c, session)
}

func (h *Handler) DeleteSession(ctx context.Context, c *app.RequestContext) {
	id, err := hertzx.ParamInt64(c, "id")
	if err != nil {
		hertzx.Bad(c, err.Error())
		return
	}
	if err := h.sessions.Delete(ctx, id); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			hertzx.Badf(c, "会话不存在: %d", id)
			return
		}
		logs.CtxErrorf(ctx, "删除会话失败, session:%d, err:%v", id, err)
		hertzx.Error(c, "删除会话失败")
		return
	}
	h.hub.CloseSession(id)
	hertzx.Msg(c, "删除成功")
}

// SessionStats 会话统计，当前streak从事件日志重算
func (h *Handler) SessionStats(ctx context.Context, c *app.RequestContext) {
	id, err := hertzx.ParamInt64(c, "id")
	if err != nil {
		hertzx.Bad(c, err.Error())
		return
	}
	stats, err := h.sessions.Stats(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			hertzx.Badf(c, "会话不存在: %d", id)
			return
		}
		logs.CtxErrorf(ctx, "查询会话统计失败, session:%d, err:%v", id, err)
		hertzx.Error(c, "查询会话统计失败")
		return
	}
	hertzx.Data(c, stats)
}

// ListInterventions 分页查询会话的干预历史
func (h *Handler) ListInterventions(ctx context.Context, c *app.RequestContext) {
	id, err := hertzx.ParamInt64(c, "id")
	if err != nil {
		hertzx.Bad(c, err.Error())
		return
	}
	pageable, err := hertzx.ParsePageable(c)
	if err != nil {
		hertzx.Bad(c, err.Error())
		return
	}
	items, total, err := h.interventions.PageInterventions(ctx, id, &pageable)
	if err != nil {
		logs.CtxErrorf(ctx, "查询干预历史失败, session:%d, err:%v", id, err)
		hertzx.Error(c, "查询干预历史失败")
		return
	}
	hertzx.Data(c, resp.NewPageEntity(total, pageable.PageNo, pageable.PageSize, items))
}
