package speech

import (
	"fmt"
	"github.com/hatcher/voyage/pkg/httpx"
	"github.com/pkg/errors"
	"io"
	"net/http"
	"time"
)

type Config struct {
	BaseURL        string `json:"baseUrl" yaml:"base-url" mapstructure:"base-url"`
	APIKey         string `json:"apiKey" yaml:"api-key" mapstructure:"api-key"`
	Model          string `json:"model" yaml:"model" mapstructure:"model"`
	Voice          string `json:"voice" yaml:"voice" mapstructure:"voice"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeout-seconds" mapstructure:"timeout-seconds"`
}

func (cfg *Config) Prepare() {
	if cfg.Model == "" {
		cfg.Model = "tts-1"
	}
	if cfg.Voice == "" {
		cfg.Voice = "nova"
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 30
	}
}

// Synthesizer 语音合成代理。失败由调用方降级为纯文本投递
type Synthesizer struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config) *Synthesizer {
	cfg.Prepare()
	return &Synthesizer{
		cfg:    cfg,
		client: httpx.NewClient(cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second),
	}
}

type synthesizeRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

// Synthesize 合成语音，返回音频二进制
func (s *Synthesizer) Synthesize(text string) ([]byte, error) {
	resp, err := s.client.Do(httpx.NewRequestOption(
		httpx.WithMethodPost(),
		httpx.WithPath("/v1/audio/speech"),
		httpx.WithHeaders(map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + s.cfg.APIKey,
		}),
		httpx.WithBody(synthesizeRequest{
			Model: s.cfg.Model,
			Voice: s.cfg.Voice,
			Input: text,
		}),
	))
	if err != nil {
		return nil, errors.WithMessagef(err, "语音合成请求失败")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithMessagef(err, "读取语音合成响应失败")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("语音合成失败, status:%d, body:%s", resp.StatusCode, truncate(body, 512))
	}
	if len(body) == 0 {
		return nil, errors.New("语音合成返回空音频")
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
