package intervene

import (
	"context"
	"encoding/base64"
	"github.com/hatcher/voyage/focus/conversation"
	"github.com/hatcher/voyage/focus/entity"
	"github.com/hatcher/voyage/focus/live"
	"github.com/hatcher/voyage/pkg/logs"
	"github.com/pkg/errors"
	"time"
)

// Escalation 一次升级决定：会话、触发事件和当前streak长度
type Escalation struct {
	Session *entity.Session
	Event   *entity.DriftEvent
	Streak  int
}

// Store 干预派发所需的数据访问
type Store interface {
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetTaskByID(ctx context.Context, id int64) (*entity.Task, error)
	LatestDriftEvents(ctx context.Context, sessionID int64, limit int) ([]*entity.DriftEvent, error)
	CreateIntervention(ctx context.Context, record *entity.Intervention) error
}

// TextGenerator 干预话术生成，失败由派发器用模板兜底
type TextGenerator interface {
	Generate(ctx context.Context, c conversation.Context) (string, error)
}

// SpeechSynthesizer 语音合成，失败降级为纯文本投递
type SpeechSynthesizer interface {
	Synthesize(text string) ([]byte, error)
}

// Publisher 会话直播通道。推送失败是唯一上抛的失败
type Publisher interface {
	Publish(sessionID int64, msg live.Message) error
}

// Dispatcher 干预派发器：组装上下文、生成话术、合成语音、推送、留档
type Dispatcher struct {
	store   Store
	texts   TextGenerator
	speech  SpeechSynthesizer
	channel Publisher
	// 取最近几条分神原因作为话术上下文
	reasonWindow int
}

func NewDispatcher(s Store, texts TextGenerator, speech SpeechSynthesizer, channel Publisher) *Dispatcher {
	return &Dispatcher{
		store:        s,
		texts:        texts,
		speech:       speech,
		channel:      channel,
		reasonWindow: 5,
	}
}

// Dispatch 为一个升级会话产出并投递一次语音干预。
// 话术和语音失败均有兜底，只有推送失败会返回错误
func (d *Dispatcher) Dispatch(ctx context.Context, esc Escalation) error {
	c := d.gatherContext(ctx, esc)

	text, err := d.texts.Generate(ctx, c)
	if err != nil || text == "" {
		logs.CtxWarnf(ctx, "话术生成失败，使用模板兜底, session:%d, err:%v", esc.Session.ID, err)
		text = conversation.FallbackMessage(c)
	}

	var audio []byte
	audioOK := false
	if d.speech != nil {
		audio, err = d.speech.Synthesize(text)
		if err != nil {
			logs.CtxWarnf(ctx, "语音合成失败，降级为纯文本, session:%d, err:%v", esc.Session.ID, err)
			audio = nil
		} else {
			audioOK = true
		}
	}

	msg := live.Message{
		SessionID:    esc.Session.ID,
		UserID:       esc.Session.UserID,
		Text:         text,
		AudioOK:      audioOK,
		StreakLength: esc.Streak,
		CreatedAt:    time.Now().Unix(),
	}
	if audioOK {
		msg.Audio = base64.StdEncoding.EncodeToString(audio)
	}
	if err := d.channel.Publish(esc.Session.ID, msg); err != nil {
		return errors.WithMessagef(err, "干预推送失败, session:%d", esc.Session.ID)
	}

	// 留档尽力而为，失败不回滚已完成的推送
	record := &entity.Intervention{
		SessionID:    esc.Session.ID,
		UserID:       esc.Session.UserID,
		Message:      text,
		AudioOK:      audioOK,
		Delivered:    true,
		StreakLength: esc.Streak,
		TaskTitle:    c.TaskTitle,
		Goal:         c.Goal,
	}
	if err := d.store.CreateIntervention(ctx, record); err != nil {
		logs.CtxErrorf(ctx, "干预留档失败, session:%d, err:%v", esc.Session.ID, err)
	}
	return nil
}

// gatherContext 组装话术上下文。任何一块缺失都只降级，不阻断干预
func (d *Dispatcher) gatherContext(ctx context.Context, esc Escalation) conversation.Context {
	c := conversation.Context{
		Streak: esc.Streak,
	}

	user, err := d.store.GetUserByID(ctx, esc.Session.UserID)
	if err != nil {
		logs.CtxWarnf(ctx, "查询用户失败, user:%d, err:%v", esc.Session.UserID, err)
	} else {
		c.Goal = user.Goal
	}

	if esc.Session.TaskID != nil {
		task, err := d.store.GetTaskByID(ctx, *esc.Session.TaskID)
		if err != nil {
			logs.CtxWarnf(ctx, "查询任务失败, task:%d, err:%v", *esc.Session.TaskID, err)
		} else {
			c.TaskTitle = task.Title
			c.TaskDescription = task.Description
		}
	}

	start := esc.Session.StartedAt
	if start == nil {
		start = esc.Session.CreatedAt
	}
	if start != nil {
		c.ElapsedMinutes = int64(time.Since(*start).Minutes())
	}

	events, err := d.store.LatestDriftEvents(ctx, esc.Session.ID, d.reasonWindow)
	if err != nil {
		logs.CtxWarnf(ctx, "查询历史事件失败, session:%d, err:%v", esc.Session.ID, err)
		return c
	}
	for _, e := range events {
		if e.IsDrifting && e.Reasons != "" {
			c.RecentReasons = append(c.RecentReasons, e.Reasons)
		}
	}
	return c
}
