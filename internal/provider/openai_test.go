package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOpenAI struct {
	transcript     string
	reply          string
	chatStatus     int
	transcribeHits atomic.Int32
	chatHits       atomic.Int32
	speechHits     atomic.Int32

	lastFilename string
	lastModel    string
	lastMessages []map[string]any
}

func (f *fakeOpenAI) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		f.transcribeHits.Add(1)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		f.lastModel = r.FormValue("model")
		if _, header, err := r.FormFile("file"); err == nil {
			f.lastFilename = header.Filename
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"text": f.transcript})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		f.chatHits.Add(1)
		var body struct {
			Messages []map[string]any `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.lastMessages = body.Messages
		w.Header().Set("Content-Type", "application/json")
		if f.chatStatus != 0 {
			w.WriteHeader(f.chatStatus)
			_, _ = io.WriteString(w, `{"error":{"message":"upstream exploded","type":"server_error"}}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": f.reply},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	})
	mux.HandleFunc("/v1/audio/speech", func(w http.ResponseWriter, r *http.Request) {
		f.speechHits.Add(1)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3-fake-mp3"))
	})
	return mux
}

func newTestOpenAI(t *testing.T, fake *fakeOpenAI, key string) *OpenAIBackend {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	return NewOpenAIBackend(OpenAIConfig{
		BaseURL:            srv.URL + "/v1",
		APIKey:             key,
		ChatModel:          "test-model",
		TranscriptionModel: "whisper-large-v3",
		MinAudioBytes:      16,
	}, zerolog.Nop())
}

func speechClip() []byte { return bytes.Repeat([]byte{0x42}, 64) }

func TestOpenAIBackend_TextTurnSkipsTranscription(t *testing.T) {
	fake := &fakeOpenAI{reply: `{"message":"hi"}`}
	b := newTestOpenAI(t, fake, "sk-test")

	resp, err := b.Send(context.Background(), Request{Prompt: "SYSTEM PROMPT", Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, `{"message":"hi"}`, resp.Text)
	assert.Empty(t, resp.Transcript)
	assert.EqualValues(t, 0, fake.transcribeHits.Load())
	require.Len(t, fake.lastMessages, 2)
	assert.Equal(t, "system", fake.lastMessages[0]["role"])
	assert.Equal(t, "SYSTEM PROMPT", fake.lastMessages[0]["content"])
	assert.Equal(t, "user", fake.lastMessages[1]["role"])
	assert.Equal(t, "hello", fake.lastMessages[1]["content"])
}

func TestOpenAIBackend_AudioTranscribesThenChats(t *testing.T) {
	fake := &fakeOpenAI{transcript: "  gym tomorrow at six  ", reply: `{"message":"ok"}`}
	b := newTestOpenAI(t, fake, "sk-test")

	resp, err := b.Send(context.Background(), Request{Prompt: "P", Audio: speechClip(), MIMEType: "audio/webm;codecs=opus"})
	require.NoError(t, err)
	assert.Equal(t, "gym tomorrow at six", resp.Transcript)
	assert.EqualValues(t, 1, fake.transcribeHits.Load())
	assert.EqualValues(t, 1, fake.chatHits.Load())
	assert.Equal(t, "speech.webm", fake.lastFilename)
	assert.Equal(t, "whisper-large-v3", fake.lastModel)
	require.Len(t, fake.lastMessages, 2)
	assert.Equal(t, "gym tomorrow at six", fake.lastMessages[1]["content"])
}

func TestOpenAIBackend_HallucinatedTranscriptNeverReachesChat(t *testing.T) {
	fake := &fakeOpenAI{transcript: "Thanks for watching!", reply: `{"message":"never"}`}
	b := newTestOpenAI(t, fake, "sk-test")

	_, err := b.Send(context.Background(), Request{Prompt: "P", Audio: speechClip(), MIMEType: "audio/mp4"})
	require.ErrorIs(t, err, ErrNoSpeech)
	assert.EqualValues(t, 1, fake.transcribeHits.Load())
	assert.EqualValues(t, 0, fake.chatHits.Load())
}

func TestOpenAIBackend_TinyClipIsNoSpeechWithoutCalls(t *testing.T) {
	fake := &fakeOpenAI{}
	b := newTestOpenAI(t, fake, "sk-test")

	_, err := b.Send(context.Background(), Request{Prompt: "P", Audio: []byte{1, 2, 3}})
	require.ErrorIs(t, err, ErrNoSpeech)
	assert.EqualValues(t, 0, fake.transcribeHits.Load())
	assert.EqualValues(t, 0, fake.chatHits.Load())
}

func TestOpenAIBackend_MissingKeyMakesNoCall(t *testing.T) {
	fake := &fakeOpenAI{reply: "x"}
	b := newTestOpenAI(t, fake, "  ")

	_, err := b.Send(context.Background(), Request{Prompt: "P", Text: "hi"})
	require.ErrorIs(t, err, ErrUnconfigured)
	assert.EqualValues(t, 0, fake.chatHits.Load())

	_, err = b.Synthesize(context.Background(), "hello")
	require.ErrorIs(t, err, ErrUnconfigured)
}

func TestOpenAIBackend_ServerErrorIsTransport(t *testing.T) {
	fake := &fakeOpenAI{chatStatus: http.StatusInternalServerError}
	b := newTestOpenAI(t, fake, "sk-test")

	_, err := b.Send(context.Background(), Request{Prompt: "P", Text: "hi"})
	require.ErrorIs(t, err, ErrTransport)
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusInternalServerError, terr.StatusCode)
	assert.Equal(t, "chat", terr.Stage)
	assert.EqualValues(t, 1, fake.chatHits.Load(), "no automatic retries")
}

func TestOpenAIBackend_Synthesize(t *testing.T) {
	fake := &fakeOpenAI{}
	b := newTestOpenAI(t, fake, "sk-test")

	audio, err := b.Synthesize(context.Background(), "Task created")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(audio), "ID3"))
	assert.EqualValues(t, 1, fake.speechHits.Load())

	_, err = b.Synthesize(context.Background(), "   ")
	require.Error(t, err)
}
