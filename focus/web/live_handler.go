package web

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hatcher/voyage/pkg/hertzx"
	"github.com/hatcher/voyage/pkg/logs"
	"github.com/hertz-contrib/sse"
)

// Live 订阅会话直播通道，以SSE推送干预消息直到客户端断开
func (h *Handler) Live(ctx context.Context, c *app.RequestContext) {
	id, err := hertzx.ParamInt64(c, "id")
	if err != nil {
		hertzx.Bad(c, err.Error())
		return
	}
	if _, err := h.sessions.Get(ctx, id); err != nil {
		hertzx.Badf(c, "会话不存在: %d", id)
		return
	}

	stream := sse.NewStream(c)
	sender := hertzx.NewSseSender(stream)
	messages := h.hub.Subscribe(ctx, id)

	logs.CtxInfof(ctx, "直播通道已建立, session:%d", id)
	for {
		select {
		case <-ctx.Done():
			logs.CtxInfof(ctx, "直播通道断开, session:%d", id)
			return
		case msg, ok := <-messages:
			if !ok {
				// 会话结束，通道关闭
				return
			}
			if err := sender.Send(hertzx.BuildNamedEvent("intervention", msg)); err != nil {
				logs.CtxWarnf(ctx, "推送干预消息失败, session:%d, err:%v", id, err)
				return
			}
		}
	}
}
