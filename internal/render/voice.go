package render

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/nimasrn/verse-gateway/pkg/logger"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

// VoiceNoteFilename names the voice note for one recipient. The phone
// number is embedded so concurrent deliveries never clash on the artifact.
func VoiceNoteFilename(phoneNumber string) string {
	return fmt.Sprintf("voice_note_%s.ogg", phoneNumber)
}

type VoiceConfig struct {
	BaseURL     string // translate_tts style endpoint
	Language    string
	Timeout     time.Duration
	FfmpegPath  string
	ArtifactDir string
}

// VoiceSynthesizer speaks a message into an ogg/opus file that WhatsApp
// accepts as a voice note. Synthesis fetches mp3 audio from the TTS endpoint
// and shells out to ffmpeg for the transcode.
type VoiceSynthesizer struct {
	config *VoiceConfig
	http   *fasthttp.Client
}

func NewVoiceSynthesizer(config *VoiceConfig) (*VoiceSynthesizer, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.BaseURL == "" {
		return nil, errors.New("tts base url is required")
	}
	if config.Language == "" {
		config.Language = "en"
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.FfmpegPath == "" {
		config.FfmpegPath = "ffmpeg"
	}
	if config.ArtifactDir == "" {
		config.ArtifactDir = "."
	}

	return &VoiceSynthesizer{
		config: config,
		http: &fasthttp.Client{
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
		},
	}, nil
}

func (s *VoiceSynthesizer) ArtifactDir() string {
	return s.config.ArtifactDir
}

// Synthesize writes the recipient's voice note and returns its path. The
// intermediate mp3 is unique per delivery and removed whether or not the
// transcode succeeds.
func (s *VoiceSynthesizer) Synthesize(ctx context.Context, phoneNumber, text string) (string, error) {
	if err := os.MkdirAll(s.config.ArtifactDir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create artifact dir")
	}

	mp3, err := os.CreateTemp(s.config.ArtifactDir, "temp-*.mp3")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp mp3")
	}
	mp3Path := mp3.Name()
	if err := mp3.Close(); err != nil {
		return "", errors.Wrap(err, "failed to close temp mp3")
	}
	defer func() {
		if err := os.Remove(mp3Path); err != nil {
			logger.Warn("Failed to remove temp mp3", "error", err, "path", mp3Path)
		}
	}()

	oggPath := filepath.Join(s.config.ArtifactDir, VoiceNoteFilename(phoneNumber))

	if err := s.fetchSpeech(ctx, text, mp3Path); err != nil {
		return "", err
	}

	if err := s.transcode(ctx, mp3Path, oggPath); err != nil {
		return "", err
	}

	return oggPath, nil
}

func (s *VoiceSynthesizer) fetchSpeech(ctx context.Context, text, dst string) error {
	uri := fmt.Sprintf("%s?ie=UTF-8&client=tw-ob&tl=%s&q=%s",
		s.config.BaseURL, url.QueryEscape(s.config.Language), url.QueryEscape(text))

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(s.config.Timeout)
	}

	if err := s.http.DoDeadline(req, resp, deadline); err != nil {
		return errors.Wrap(err, "tts request failed")
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return errors.Errorf("tts returned status %d", resp.StatusCode())
	}

	if err := os.WriteFile(dst, resp.Body(), 0o644); err != nil {
		return errors.Wrap(err, "failed to write tts audio")
	}
	return nil
}

func (s *VoiceSynthesizer) transcode(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, s.config.FfmpegPath,
		"-y", "-i", src, "-c:a", "libopus", dst)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "ffmpeg transcode failed: %s", out)
	}
	return nil
}
