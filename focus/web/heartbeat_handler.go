package web

import (
	"context"
	"encoding/base64"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hatcher/voyage/focus/heartbeat"
	"github.com/hatcher/voyage/pkg/hertzx"
	"github.com/hatcher/voyage/pkg/logs"
	"github.com/pkg/errors"
)

type heartbeatReq struct {
	// base64编码的jpeg/png帧，二者至少一个非空
	CameraImage string `json:"cameraImage"`
	ScreenImage string `json:"screenImage"`
}

// Heartbeat 接收一次采样心跳：解码图像，交给处理器判定并记账
func (h *Handler) Heartbeat(ctx context.Context, c *app.RequestContext) {
	id, err := hertzx.ParamInt64(c, "id")
	if err != nil {
		hertzx.Bad(c, err.Error())
		return
	}
	var req heartbeatReq
	if err := c.BindJSON(&req); err != nil {
		hertzx.Badf(c, "请求体不合法: %v", err)
		return
	}
	camera, err := decodeImage(req.CameraImage)
	if err != nil {
		hertzx.Badf(c, "cameraImage 不是合法的base64: %v", err)
		return
	}
	screen, err := decodeImage(req.ScreenImage)
	if err != nil {
		hertzx.Badf(c, "screenImage 不是合法的base64: %v", err)
		return
	}

	result, err := h.processor.Process(ctx, heartbeat.TickRequest{
		SessionID:   id,
		CameraImage: camera,
		ScreenImage: screen,
	})
	if err != nil {
		switch {
		case errors.Is(err, heartbeat.ErrSessionNotFound):
			hertzx.Badf(c, "会话不存在: %d", id)
		case errors.Is(err, heartbeat.ErrSessionEnded):
			hertzx.Badf(c, "会话已结束: %d", id)
		case errors.Is(err, heartbeat.ErrNoSensorData):
			hertzx.Bad(c, "缺少采样数据，cameraImage和screenImage至少提供一个")
		default:
			logs.CtxErrorf(ctx, "心跳处理失败, session:%d, err:%v", id, err)
			hertzx.Error(c, "心跳处理失败")
		}
		return
	}
	hertzx.Data(c, result)
}

func decodeImage(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(raw)
}
