package speech

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Synthesizer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL, APIKey: "test-key", Model: "tts-1", Voice: "nova"})
}

func TestSynthesizeHappyPath(t *testing.T) {
	t.Parallel()
	var gotReq synthesizeRequest
	var gotAuth string
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/audio/speech", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte("mp3-binary"))
	})

	audio, err := s.Synthesize("回到任务上来")
	require.NoError(t, err)
	require.Equal(t, []byte("mp3-binary"), audio)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "tts-1", gotReq.Model)
	require.Equal(t, "nova", gotReq.Voice)
	require.Equal(t, "回到任务上来", gotReq.Input)
}

func TestSynthesizeServerError(t *testing.T) {
	t.Parallel()
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	})

	_, err := s.Synthesize("text")
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestSynthesizeEmptyAudio(t *testing.T) {
	t.Parallel()
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := s.Synthesize("text")
	require.Error(t, err)
}
