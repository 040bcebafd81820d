package conversation

import (
	"context"
	"fmt"
	"github.com/hatcher/voyage/pkg/logs"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkg/errors"
	"strings"
	"time"
)

type Config struct {
	BaseURL        string `json:"baseUrl" yaml:"base-url" mapstructure:"base-url"`
	APIKey         string `json:"apiKey" yaml:"api-key" mapstructure:"api-key"`
	Model          string `json:"model" yaml:"model" mapstructure:"model"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeout-seconds" mapstructure:"timeout-seconds"`
}

func (cfg *Config) Prepare() {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 30
	}
}

// Context 生成干预话术所需的上下文
type Context struct {
	Goal            string
	TaskTitle       string
	TaskDescription string
	Streak          int
	ElapsedMinutes  int64
	RecentReasons   []string
}

const systemPrompt = `You are the voice of a friendly but firm focus companion in a sailing-themed
productivity app. The user has been drifting from their stated goal for several
consecutive checks. Write a short spoken nudge (2-3 sentences, no markdown, no
emoji) that names what they should get back to. Be warm, never scolding.`

// Generator 干预话术生成器，走流式接口并在本地聚合全文
type Generator struct {
	cfg    Config
	client openai.Client
}

func New(cfg Config) *Generator {
	cfg.Prepare()
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Generator{
		cfg:    cfg,
		client: openai.NewClient(opts...),
	}
}

// Generate 生成干预话术。失败或空文本由调用方用模板兜底
func (g *Generator) Generate(ctx context.Context, c Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	stream := g.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(c)),
		},
	})
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		acc.AddChunk(stream.Current())
	}
	if err := stream.Err(); err != nil {
		return "", errors.WithMessagef(err, "生成干预话术失败")
	}
	if len(acc.Choices) == 0 {
		return "", errors.New("生成干预话术失败：无choices")
	}
	text := strings.TrimSpace(acc.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("生成干预话术失败：空文本")
	}
	logs.CtxDebugf(ctx, "干预话术生成完成, 长度:%d", len(text))
	return text, nil
}

func buildPrompt(c Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user has drifted for %d consecutive checks.\n", c.Streak)
	fmt.Fprintf(&b, "Stated goal: %s\n", c.Goal)
	if c.TaskTitle != "" {
		fmt.Fprintf(&b, "Current task: %s\n", c.TaskTitle)
	}
	if c.TaskDescription != "" {
		fmt.Fprintf(&b, "Task description: %s\n", c.TaskDescription)
	}
	if c.ElapsedMinutes > 0 {
		fmt.Fprintf(&b, "Session running for %d minutes.\n", c.ElapsedMinutes)
	}
	if len(c.RecentReasons) > 0 {
		fmt.Fprintf(&b, "Recent observations: %s\n", strings.Join(c.RecentReasons, "; "))
	}
	b.WriteString("Write the spoken nudge now.")
	return b.String()
}

// FallbackMessage 外部服务不可用时的确定性模板，必须点明连续分神次数和任务
func FallbackMessage(c Context) string {
	task := c.TaskTitle
	if task == "" {
		task = "your goal"
	}
	return fmt.Sprintf(
		"Hey, you've drifted for %d checks in a row. Let's steer back to %s and pick up where you left off.",
		c.Streak, task,
	)
}
