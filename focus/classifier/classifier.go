package classifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"github.com/hatcher/voyage/pkg/logs"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"strings"
	"time"
)

const systemPrompt = `You are a focus classifier for a productivity application.
Given the user's stated goal and current task, plus camera and/or screen captures,
judge whether the user has drifted away from the task.
Respond with a single JSON object only, no markdown, in this exact shape:
{"is_drifting": bool, "actual_task": "what the user appears to be doing",
"reasons": "short explanation", "mood": "one word", "mood_reason": "short explanation"}`

// Gateway 分神判定网关。对外永不报错：任何失败都折算为一个降级Verdict
type Gateway struct {
	cfg    Config
	client openai.Client
}

func New(cfg Config) *Gateway {
	cfg.Prepare()
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Gateway{
		cfg:    cfg,
		client: openai.NewClient(opts...),
	}
}

// Classify 对一次采样做分神判定。
// 超限图像在提交前丢弃；全部图像缺失或超限时直接短路，不触碰外部服务
func (g *Gateway) Classify(ctx context.Context, sc SessionContext, frames []Frame) Verdict {
	usable := g.filterFrames(ctx, frames)
	if len(usable) == 0 {
		return NoMediaVerdict()
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(buildUserPrompt(sc)),
	}
	for _, f := range usable {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL(f),
		}))
	}

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(parts),
		},
	})
	if err != nil {
		logs.CtxWarnf(ctx, "分神判定调用失败，降级为专注: %v", err)
		return FallbackVerdict()
	}
	if len(completion.Choices) == 0 {
		logs.CtxWarnf(ctx, "分神判定返回空choices，降级为专注")
		return FallbackVerdict()
	}

	verdict, err := parseVerdict(completion.Choices[0].Message.Content)
	if err != nil {
		logs.CtxWarnf(ctx, "分神判定响应不合法，降级为专注: %v", err)
		return FallbackVerdict()
	}
	return verdict
}

// filterFrames 丢弃超过字节上限的帧
func (g *Gateway) filterFrames(ctx context.Context, frames []Frame) []Frame {
	var usable []Frame
	for _, f := range frames {
		if len(f.Data) == 0 {
			continue
		}
		if int64(len(f.Data)) > g.cfg.MaxImageBytes {
			logs.CtxWarnf(ctx, "丢弃超限图像, kind:%s, size:%d, limit:%d", f.Kind, len(f.Data), g.cfg.MaxImageBytes)
			continue
		}
		usable = append(usable, f)
	}
	return usable
}

func buildUserPrompt(sc SessionContext) string {
	var b strings.Builder
	b.WriteString("The user's stated goal: ")
	b.WriteString(sc.Goal)
	if sc.TaskTitle != "" {
		b.WriteString("\nCurrent task: ")
		b.WriteString(sc.TaskTitle)
	}
	if sc.TaskDescription != "" {
		b.WriteString("\nTask description: ")
		b.WriteString(sc.TaskDescription)
	}
	b.WriteString("\nJudge from the attached captures whether the user is drifting.")
	return b.String()
}

func dataURL(f Frame) string {
	mime := f.Mime
	if mime == "" {
		mime = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(f.Data))
}

// rawVerdict 用指针字段区分"缺失"和"零值"
type rawVerdict struct {
	IsDrifting *bool   `json:"is_drifting"`
	ActualTask *string `json:"actual_task"`
	Reasons    *string `json:"reasons"`
	Mood       string  `json:"mood"`
	MoodReason string  `json:"mood_reason"`
}

// parseVerdict 解析模型输出。必填字段缺失视为响应不合法
func parseVerdict(content string) (Verdict, error) {
	payload := stripFences(content)
	var raw rawVerdict
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return Verdict{}, fmt.Errorf("解析判定json失败: %v", err)
	}
	if raw.IsDrifting == nil || raw.ActualTask == nil || raw.Reasons == nil {
		return Verdict{}, fmt.Errorf("判定json缺少必填字段")
	}
	return Verdict{
		IsDrifting: *raw.IsDrifting,
		ActualTask: *raw.ActualTask,
		Reasons:    *raw.Reasons,
		Mood:       raw.Mood,
		MoodReason: raw.MoodReason,
	}, nil
}

// stripFences 容忍模型包裹 ```json 代码块
func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
