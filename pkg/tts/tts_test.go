package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"luxlife-studio/pkg/config"
	"luxlife-studio/pkg/errutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestSynthesizer(t *testing.T, h http.HandlerFunc) *Synthesizer {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.TTS.APIKey = "tts-key"
	cfg.TTS.Endpoint = srv.URL + "/"

	return New(cfg)
}

func TestSynthesizeRequestAndDecode(t *testing.T) {
	var body map[string]map[string]any
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/text:synthesize", r.URL.Path)
		require.Equal(t, "tts-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		_ = json.NewEncoder(w).Encode(map[string]string{
			"audioContent": base64.StdEncoding.EncodeToString([]byte("ID3-mp3-bytes")),
		})
	})

	audio, err := s.Synthesize(context.Background(), "Hi, I'm living the LuxLife in Monaco.")
	require.NoError(t, err)
	require.Equal(t, []byte("ID3-mp3-bytes"), audio)

	require.Equal(t, "Hi, I'm living the LuxLife in Monaco.", body["input"]["text"])
	require.Equal(t, "en-US", body["voice"]["languageCode"])
	require.Equal(t, "FEMALE", body["voice"]["ssmlGender"])
	require.Equal(t, "MP3", body["audioConfig"]["audioEncoding"])
	require.Equal(t, 0.96, body["audioConfig"]["speakingRate"])
}

func TestSynthesizeEmptyAudio(t *testing.T) {
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := s.Synthesize(context.Background(), "hello")
	require.ErrorIs(t, err, errutil.ErrEmptyAudio)
}

func TestSynthesizeServerError(t *testing.T) {
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	})

	_, err := s.Synthesize(context.Background(), "hello")
	require.Error(t, err)
	require.NotErrorIs(t, err, errutil.ErrEmptyAudio)
}
