// Package tts synthesizes the order voice-over with Google Cloud
// Text-to-Speech.
package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"luxlife-studio/pkg/config"
	"luxlife-studio/pkg/errutil"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	texttospeech "google.golang.org/api/texttospeech/v1"
)

const (
	LanguageCode = "en-US"
	Gender       = "FEMALE"
	Encoding     = "MP3"
	SpeakingRate = 0.96
)

type Synthesizer struct {
	opts []option.ClientOption

	mu  sync.Mutex
	svc *texttospeech.Service
}

// New builds a synthesizer from the TTS credentials. Without an API key or a
// credentials file the Google default credentials are used. The client is
// created on first use.
func New(cfg *config.Config) *Synthesizer {
	var opts []option.ClientOption
	if cfg.TTS.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.TTS.APIKey))
	}
	if cfg.TTS.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.TTS.CredentialsFile))
	}
	if cfg.TTS.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.TTS.Endpoint))
	}

	return &Synthesizer{opts: opts}
}

func (s *Synthesizer) service(ctx context.Context) (*texttospeech.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.svc != nil {
		return s.svc, nil
	}
	svc, err := texttospeech.NewService(context.WithoutCancel(ctx), s.opts...)
	if err != nil {
		return nil, fmt.Errorf("tts: init client: %w", err)
	}
	s.svc = svc
	return svc, nil
}

// Synthesize returns MP3 bytes for text.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	svc, err := s.service(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Text.Synthesize(&texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: LanguageCode,
			SsmlGender:   Gender,
		},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding: Encoding,
			SpeakingRate:  SpeakingRate,
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("tts: synthesize: %w", err)
	}

	if resp.AudioContent == "" {
		return nil, errutil.ErrEmptyAudio
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("tts: decode audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errutil.ErrEmptyAudio
	}

	zap.L().Debug("voice synthesized", zap.Int("bytes", len(audio)))
	return audio, nil
}
