package classifier

// SessionContext 分神判定的上下文
type SessionContext struct {
	Goal            string `json:"goal"`
	TaskTitle       string `json:"taskTitle"`
	TaskDescription string `json:"taskDescription"`
}

type FrameKind string

const (
	FrameCamera FrameKind = "camera"
	FrameScreen FrameKind = "screen"
)

// Frame 一帧采样图像，Data为解码后的原始字节
type Frame struct {
	Kind FrameKind
	Mime string
	Data []byte
}

// Verdict 判定结果。网关保证总是返回一个可用的Verdict，失败一律降级为"专注"
type Verdict struct {
	IsDrifting bool   `json:"is_drifting"`
	ActualTask string `json:"actual_task"`
	Reasons    string `json:"reasons"`
	Mood       string `json:"mood,omitempty"`
	MoodReason string `json:"mood_reason,omitempty"`
	// Degraded 标记该结果来自降级兜底而非模型判定
	Degraded bool `json:"-"`
}

const (
	ReasonNoMedia     = "No media available for analysis"
	ReasonUnavailable = "Analysis unavailable"
)

// NoMediaVerdict 无可用图像时的确定性结果
func NoMediaVerdict() Verdict {
	return Verdict{
		IsDrifting: false,
		Reasons:    ReasonNoMedia,
		Degraded:   true,
	}
}

// FallbackVerdict 分类服务不可用或响应不合法时的兜底结果
func FallbackVerdict() Verdict {
	return Verdict{
		IsDrifting: false,
		Reasons:    ReasonUnavailable,
		Degraded:   true,
	}
}

type Config struct {
	BaseURL        string `json:"baseUrl" yaml:"base-url" mapstructure:"base-url"`
	APIKey         string `json:"apiKey" yaml:"api-key" mapstructure:"api-key"`
	Model          string `json:"model" yaml:"model" mapstructure:"model"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeout-seconds" mapstructure:"timeout-seconds"`
	// 单张图像解码字节数上限，超限的帧直接丢弃
	MaxImageBytes int64 `json:"maxImageBytes" yaml:"max-image-bytes" mapstructure:"max-image-bytes"`
}

func (cfg *Config) Prepare() {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.MaxImageBytes == 0 {
		cfg.MaxImageBytes = 3 * 1024 * 1024
	}
}
