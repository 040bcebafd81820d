package web

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hatcher/voyage/focus/service"
	"github.com/hatcher/voyage/pkg/hertzx"
	"github.com/hatcher/voyage/pkg/logs"
	"github.com/pkg/errors"
)

func (h *Handler) CreateTask(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUser(c)
	if !ok {
		hertzx.Unauthorized(c, "缺少用户身份")
		return
	}
	var in service.TaskUpsert
	if err := c.BindJSON(&in); err != nil {
		hertzx.Badf(c, "请求体不合法: %v", err)
		return
	}
	task, err := h.tasks.Create(ctx, userID, in)
	if err != nil {
		hertzx.Bad(c, err.Error())
		return
	}
	hertzx.Data(c, task)
}

func (h *Handler) ListTasks(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUser(c)
	if !ok {
		hertzx.Unauthorized(c, "缺少用户身份")
		return
	}
	tasks, err := h.tasks.ListByUser(ctx, userID)
	if err != nil {
		logs.CtxErrorf(ctx, "查询任务列表失败, user:%d, err:%v", userID, err)
		hertzx.Error(c, "查询任务列表失败")
		return
	}
	hertzx.Data(c, tasks)
}

func (h *Handler) GetTask(ctx context.Context, c *app.RequestContext) {
	id, err := hertzx.ParamInt64(c, "id")
	if err != nil {
		hertzx.Bad(c, err.Error())
		return
	}
	task, err := h.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			hertzx.Badf(c, "任务不存在: %d", id)
			return
		}
		logs.CtxErrorf(ctx, "查询任务失败, task:%d, err:%v", id, err)
		hertzx.Error(c, "查询任务失败")
		return
	}
	hertzx.Data(c, task)
}

func (h *Handler) UpdateTask(ctx context.Context, c *app.RequestContext) {
	id, err := hertzx.ParamInt64(c, "id")
	if err != nil {
		hertzx.Bad(c, err.Error())
		return
	}
	var in service.TaskUpsert
	if err := c.BindJSON(&in); err != nil {
		hertzx.Badf(c, "请求体不合法: %v", err)
		return
	}
	task, err := h.tasks.Update(ctx, id, in)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			hertzx.Badf(c, "任务不存在: %d", id)
			return
		}
		logs.CtxErrorf(ctx, "更新任务失败, task:%d, err:%v", id, err)
		hertzx.Error(c, "更新任务失败")
		return
	}
	hertzx.Data(c, task)
}

func (h *Handler) DeleteTask(ctx context.Context, c *app.RequestContext) {
	id, err := hertzx.ParamInt64(c, "id")
	if err != nil {
		hertzx.Bad(c, err.Error())
		return
	}
	if err := h.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			hertzx.Badf(c, "任务不存在: %d", id)
			return
		}
		logs.CtxErrorf(ctx, "删除任务失败, task:%d, err:%v", id, err)
		hertzx.Error(c, "删除任务失败")
		return
	}
	hertzx.Msg(c, "删除成功")
}
