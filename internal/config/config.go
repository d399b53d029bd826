package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	TTS      TTSConfig      `yaml:"tts"`
	Whisper  WhisperConfig  `yaml:"whisper"`
	Video    VideoConfig    `yaml:"video"`
	Subtitle SubtitleConfig `yaml:"subtitle"`
	Redis    RedisConfig    `yaml:"redis"`
	Paths    PathsConfig    `yaml:"paths"`
}

type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

type TTSConfig struct {
	Server        string `yaml:"server"`          // "edge" | "webhook"
	StreamURL     string `yaml:"stream_url"`      // streaming backend with word-boundary events
	WebhookURL    string `yaml:"webhook_url"`     // finished-audio backend (no per-word timing)
	PodcastURL    string `yaml:"podcast_url"`     // two-host dialogue backend
	DefaultVoice  string `yaml:"default_voice"`
	SampleRate    int    `yaml:"sample_rate"`
	AudioChannels int    `yaml:"audio_channels"`
}

type WhisperConfig struct {
	Binary   string `yaml:"binary"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

type VideoConfig struct {
	Aspect         string  `yaml:"aspect"`
	ConcatMode     string  `yaml:"concat_mode"`
	TransitionMode string  `yaml:"transition_mode"`
	ClipDuration   float64 `yaml:"clip_duration"`
	Count          int     `yaml:"count"`
	Threads        int     `yaml:"threads"`
	VoiceVolume    float64 `yaml:"voice_volume"`
	BGMType        string  `yaml:"bgm_type"`
	BGMFile        string  `yaml:"bgm_file"`
	BGMVolume      float64 `yaml:"bgm_volume"`
}

type SubtitleConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Provider        string  `yaml:"provider"` // "edge" | "whisper"
	Style           string  `yaml:"style"`    // "normal" | "typewriter" | "word2word"
	FontName        string  `yaml:"font_name"`
	FontSize        float64 `yaml:"font_size"`
	TextColor       string  `yaml:"text_color"`
	BackgroundColor string  `yaml:"background_color"`
	StrokeColor     string  `yaml:"stroke_color"`
	StrokeWidth     float64 `yaml:"stroke_width"`
	Position        string  `yaml:"position"` // "top" | "bottom" | "center" | "custom"
	CustomPosition  float64 `yaml:"custom_position"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"password"`
}

type PathsConfig struct {
	Tasks string `yaml:"tasks"`
	Songs string `yaml:"songs"`
	Fonts string `yaml:"fonts"`
}

// Load reads config.yaml and returns a Config struct
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if c.Whisper.Binary == "" {
		c.Whisper.Binary = "whisper"
	}
	if c.Whisper.Model == "" {
		c.Whisper.Model = "base"
	}
	if c.Video.Aspect == "" {
		c.Video.Aspect = "portrait"
	}
	if c.Video.ClipDuration == 0 {
		c.Video.ClipDuration = 5
	}
	if c.Video.Count == 0 {
		c.Video.Count = 1
	}
	if c.Video.Threads == 0 {
		c.Video.Threads = 2
	}
	if c.Video.VoiceVolume == 0 {
		c.Video.VoiceVolume = 1.0
	}
	if c.Subtitle.FontSize == 0 {
		c.Subtitle.FontSize = 60
	}
	if c.Subtitle.Position == "" {
		c.Subtitle.Position = "bottom"
	}
	if c.Paths.Tasks == "" {
		c.Paths.Tasks = "storage/tasks"
	}
	if c.Paths.Songs == "" {
		c.Paths.Songs = "resource/songs"
	}
	if c.Paths.Fonts == "" {
		c.Paths.Fonts = "resource/fonts"
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
}

// TaskDir returns the artifact directory for one task.
func (c *Config) TaskDir(taskID string) string {
	return filepath.Join(c.Paths.Tasks, taskID)
}

// FontPath resolves a font name against the fonts directory.
func (c *Config) FontPath(name string) string {
	if name == "" {
		name = "Charm-Bold.ttf"
	}
	return filepath.Join(c.Paths.Fonts, name)
}
