package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/QHanh/AutoVideo/internal/config"
)

func configWith(server string) config.TTSConfig {
	return config.TTSConfig{Server: server, SampleRate: 24000, AudioChannels: 1}
}

func TestParseVoiceName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"en-US-JennyNeural-Female", "en-US-JennyNeural"},
		{"en-US-GuyNeural-Male", "en-US-GuyNeural"},
		{"  vi-VN-HoaiMyNeural ", "vi-VN-HoaiMyNeural"},
		{"en-US-JennyNeural", "en-US-JennyNeural"},
	}
	for _, tt := range tests {
		if got := ParseVoiceName(tt.in); got != tt.want {
			t.Errorf("ParseVoiceName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRateToPercent(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "+0%"},
		{1.2, "+20%"},
		{0.9, "-10%"},
		{1.25, "+25%"},
		{0.75, "-25%"},
		{1.004, "+0%"},
	}
	for _, tt := range tests {
		if got := RateToPercent(tt.rate); got != tt.want {
			t.Errorf("RateToPercent(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestStreamClientSynthesize(t *testing.T) {
	audio := []byte("fake-mp3-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["voice"] != "en-US-JennyNeural" {
			t.Errorf("voice = %q", req["voice"])
		}
		if req["rate"] != "+0%" {
			t.Errorf("rate = %q", req["rate"])
		}
		enc := base64.StdEncoding.EncodeToString(audio)
		fmt.Fprintf(w, `{"type":"audio","data":"%s"}`+"\n", enc)
		fmt.Fprintln(w, `{"type":"word_boundary","offset":0,"duration":5000000,"text":"Hello"}`)
		fmt.Fprintln(w, `{"type":"word_boundary","offset":5000000,"duration":7000000,"text":"world"}`)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "audio.mp3")
	c := NewStreamClient(srv.URL)
	sm, err := c.Synthesize(context.Background(), "Hello world", "en-US-JennyNeural", "+0%", out)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if sm.Len() != 2 {
		t.Fatalf("fragments = %d, want 2", sm.Len())
	}
	if sm.Frags[0] != "Hello" || sm.Frags[1] != "world" {
		t.Errorf("frags = %v", sm.Frags)
	}
	if sm.Offsets[1] != [2]int64{5000000, 12000000} {
		t.Errorf("second window = %v", sm.Offsets[1])
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if string(got) != string(audio) {
		t.Errorf("audio bytes = %q", got)
	}
	if want := 1.2; sm.AudioDuration() != want {
		t.Errorf("AudioDuration = %v, want %v", sm.AudioDuration(), want)
	}
}

func TestStreamClientNoAudioFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"type":"word_boundary","offset":0,"duration":1,"text":"x"}`)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "audio.mp3")
	c := NewStreamClient(srv.URL)
	if _, err := c.Synthesize(context.Background(), "x", "v", "+0%", out); err == nil {
		t.Fatal("expected error for stream with no audio")
	}
}

func TestSpeechRejectsEmptyText(t *testing.T) {
	s := NewSpeech(configWith("edge"))
	if _, err := s.Synthesize(context.Background(), "   ", "v", 1.0, "out.mp3"); err == nil {
		t.Fatal("expected error for empty script")
	}
}
