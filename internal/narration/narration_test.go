package narration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"spirare/internal/audio"
	"spirare/internal/config"
	"spirare/internal/services"
)

func TestHTTPClientSynthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("unexpected authorization %q", got)
		}
		var req speechRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Text != "Breathe in" || req.Voice != "Kore" {
			t.Fatalf("unexpected payload %+v", req)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	client := NewHTTPClient(HTTPConfig{BaseURL: server.URL, APIKey: "secret", Voice: "Kore"})
	clip, err := client.Synthesize(context.Background(), "  Breathe in ")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if string(clip.Data) != "mp3-bytes" || clip.MIMEType != "audio/mpeg" {
		t.Fatalf("unexpected clip %+v", clip)
	}
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(audio.WrapPCM16([]byte{0, 0}, 24000, 1))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewHTTPClient(HTTPConfig{BaseURL: server.URL},
		WithRetryMaxAttempts(3),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	clip, err := client.Synthesize(context.Background(), "Let go")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if clip.MIMEType != audio.MIMEWAV {
		t.Fatalf("expected sniffed wav, got %q", clip.MIMEType)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
	if len(slept) != 2 || slept[0] != 2*time.Second {
		t.Fatalf("unexpected sleeps %v", slept)
	}
}

func TestHTTPClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad voice", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewHTTPClient(HTTPConfig{BaseURL: server.URL},
		WithRetryMaxAttempts(5),
		WithSleeper(func(time.Duration) { t.Fatal("unexpected retry sleep") }),
	)
	_, err := client.Synthesize(context.Background(), "Let go")
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestHTTPClientRejectsBlankText(t *testing.T) {
	client := NewHTTPClient(HTTPConfig{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Synthesize(context.Background(), "   "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBackoffDelayDoublesAndCaps(t *testing.T) {
	client := NewHTTPClient(HTTPConfig{}, WithRetryBackoff(time.Second, 3*time.Second))
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	for i, expected := range want {
		if got := client.backoffDelay(i + 1); got != expected {
			t.Fatalf("attempt %d: expected %s, got %s", i+1, expected, got)
		}
	}
}

func TestNormalizeInlineWrapsPCM(t *testing.T) {
	clip := normalizeInline([]byte{1, 0, 2, 0}, "audio/L16;codec=pcm;rate=24000")
	if clip.MIMEType != audio.MIMEWAV || !audio.IsWAV(clip.Data) {
		t.Fatalf("expected wav clip, got %q", clip.MIMEType)
	}
	passthrough := normalizeInline([]byte("ogg"), "audio/ogg")
	if passthrough.MIMEType != "audio/ogg" || string(passthrough.Data) != "ogg" {
		t.Fatalf("unexpected passthrough %+v", passthrough)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := config.Default()
	synth, err := New(context.Background(), &cfg, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := synth.Synthesize(context.Background(), "hello"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}

	cfg.Narration.Provider = ProviderHTTP
	cfg.Narration.BaseURL = "http://localhost:9/tts"
	synth, err = New(context.Background(), &cfg, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := synth.(*HTTPClient); !ok {
		t.Fatalf("expected *HTTPClient, got %T", synth)
	}

	cfg.Narration.Provider = "carrier-pigeon"
	if _, err := New(context.Background(), &cfg, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
