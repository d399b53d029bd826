// Package task drives a generation job through its stages and reports
// progress to the state store.
package task

import (
	"github.com/QHanh/AutoVideo/internal/material"
)

// Stage names accepted by StopAt. An empty StopAt runs the full pipeline.
const (
	StageScript    = "script"
	StageTerms     = "terms"
	StageAudio     = "audio"
	StageSubtitle  = "subtitle"
	StageMaterials = "materials"
	StageVideo     = "video"
)

// Params describes one video generation request. Mode-like string fields are
// kept raw here and coerced where they are consumed, so malformed values
// degrade to defaults instead of failing the task.
type Params struct {
	Subject  string `json:"subject"`
	Language string `json:"language"`

	// Pre-supplied script and terms skip their generation stages.
	VideoScript string   `json:"video_script,omitempty"`
	VideoTerms  []string `json:"video_terms,omitempty"`

	Voice     string  `json:"voice"`
	VoiceRate float64 `json:"voice_rate,omitempty"`

	Aspect         string  `json:"aspect"`
	ConcatMode     string  `json:"concat_mode"`
	TransitionMode string  `json:"transition_mode"`
	ClipDuration   float64 `json:"clip_duration"`
	Count          int     `json:"count"`
	TermCount      int     `json:"term_count,omitempty"`
	Paragraphs     int     `json:"paragraphs,omitempty"`

	// Pre-supplied materials skip search and download.
	Materials      []material.Info `json:"materials,omitempty"`
	MaterialSource string          `json:"material_source,omitempty"` // "video" | "images"

	SubtitleEnabled  bool    `json:"subtitle_enabled"`
	SubtitleProvider string  `json:"subtitle_provider,omitempty"` // "edge" | "whisper"
	SubtitleStyle    string  `json:"subtitle_style,omitempty"`
	FontName         string  `json:"font_name,omitempty"`
	FontSize         float64 `json:"font_size,omitempty"`
	TextColor        string  `json:"text_color,omitempty"`
	BackgroundColor  string  `json:"background_color,omitempty"`
	StrokeColor      string  `json:"stroke_color,omitempty"`
	StrokeWidth      float64 `json:"stroke_width,omitempty"`
	Position         string  `json:"position,omitempty"`
	CustomPosition   float64 `json:"custom_position,omitempty"`

	VoiceVolume float64 `json:"voice_volume,omitempty"`
	BGMType     string  `json:"bgm_type,omitempty"`
	BGMFile     string  `json:"bgm_file,omitempty"`
	BGMVolume   float64 `json:"bgm_volume,omitempty"`

	// StopAt ends the run after the named stage with a COMPLETE state, so
	// partial pipelines (script only, audio only) are first-class. The
	// "video" stage covers composition and finalization, so stopping there
	// still produces the final renders.
	StopAt string `json:"stop_at,omitempty"`
}

// PodcastParams describes a two-host dialogue job. The generated dialogue is
// written back so the caller can inspect or persist it.
type PodcastParams struct {
	Params

	Host1  string `json:"host1"`
	Host2  string `json:"host2"`
	Voice1 string `json:"voice1"`
	Voice2 string `json:"voice2"`
	Tone   string `json:"tone,omitempty"`

	// Content is optional source material the dialogue should draw on.
	Content string `json:"content,omitempty"`

	// Populated by the driver after dialogue generation.
	DialogueTTS      string `json:"dialogue_tts,omitempty"`
	DialogueCaptions string `json:"dialogue_captions,omitempty"`
}

func (p *Params) applyDefaults() {
	if p.Language == "" {
		p.Language = "en"
	}
	if p.Count <= 0 {
		p.Count = 1
	}
	if p.ClipDuration <= 0 {
		p.ClipDuration = 5
	}
	if p.TermCount <= 0 {
		p.TermCount = 5
	}
	if p.Paragraphs <= 0 {
		p.Paragraphs = 1
	}
	if p.VoiceRate == 0 {
		p.VoiceRate = 1.0
	}
}
