// Package asr transcribes captured audio through a Whisper-compatible API.
package asr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/croonhq/croon/internal/audio"
	"github.com/croonhq/croon/internal/config"
	"github.com/croonhq/croon/internal/intent"
)

const requestTimeout = 30 * time.Second

// Client sends one-shot transcription requests. Model, language, and prompt
// are re-read per request so a config reload applies on the next press; the
// endpoint itself is fixed at construction.
type Client struct {
	api    *openai.Client
	prefs  func() config.ASRConfig
	logger *slog.Logger
}

// New builds a Whisper client against the configured endpoint. An empty
// baseURL targets the public OpenAI API.
func New(apiKey string, baseURL string, prefs func() config.ASRConfig, logger *slog.Logger) *Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		api:    openai.NewClientWithConfig(clientCfg),
		prefs:  prefs,
		logger: logger,
	}
}

// Transcribe wraps raw PCM in a WAV container and sends it for transcription.
func (c *Client) Transcribe(ctx context.Context, pcm []byte) (intent.Utterance, error) {
	if len(pcm) == 0 {
		return intent.Utterance{}, nil
	}

	asrCfg := c.prefs()
	wav := audio.EncodeWAV(pcm, audio.SampleRate, audio.Channels)

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	started := time.Now()
	resp, err := c.api.CreateTranscription(reqCtx, openai.AudioRequest{
		Model:    asrCfg.Model,
		FilePath: "capture.wav",
		Reader:   bytes.NewReader(wav),
		Language: asrCfg.Language,
		Prompt:   asrCfg.Prompt,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return intent.Utterance{}, fmt.Errorf("whisper transcription: %w", err)
	}

	utt := intent.Utterance{Text: strings.TrimSpace(resp.Text)}
	if confidence, ok := segmentConfidence(resp); ok {
		utt.Confidence = confidence
		utt.HasConfidence = true
	}

	if c.logger != nil {
		c.logger.Debug("transcription complete",
			"model", asrCfg.Model,
			"latency_ms", time.Since(started).Milliseconds(),
			"transcript_length", len(utt.Text),
			"segments", len(resp.Segments),
		)
	}
	return utt, nil
}

// segmentConfidence derives a rough [0,1] confidence from per-segment average
// log probabilities. Absent segments mean no confidence signal.
func segmentConfidence(resp openai.AudioResponse) (float64, bool) {
	if len(resp.Segments) == 0 {
		return 0, false
	}
	var sum float64
	for _, segment := range resp.Segments {
		sum += segment.AvgLogprob
	}
	confidence := math.Exp(sum / float64(len(resp.Segments)))
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence, true
}
