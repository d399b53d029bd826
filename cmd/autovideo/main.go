package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/QHanh/AutoVideo/internal/config"
	"github.com/QHanh/AutoVideo/internal/llm"
	"github.com/QHanh/AutoVideo/internal/material"
	"github.com/QHanh/AutoVideo/internal/state"
	"github.com/QHanh/AutoVideo/internal/subtitle"
	"github.com/QHanh/AutoVideo/internal/task"
	"github.com/QHanh/AutoVideo/internal/video"
	"github.com/QHanh/AutoVideo/internal/voice"
)

func main() {
	// Load .env for local development; deployments use real env vars.
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", "config.yaml", "path to config file")
		subject    = flag.String("subject", "", "video subject")
		script     = flag.String("script", "", "pre-written script file (skips generation)")
		podcast    = flag.Bool("podcast", false, "generate a two-host podcast video")
		hosts      = flag.String("hosts", "Alex,Sam", "podcast host names, comma separated")
		stopAt     = flag.String("stop-at", "", "end the run after this stage")
		paramsFile = flag.String("params", "", "JSON file with full task params")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	for _, dir := range []string{cfg.Paths.Tasks, cfg.Paths.Songs, cfg.Paths.Fonts} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("create dir %s: %v", dir, err)
		}
	}

	store, err := state.New(cfg)
	if err != nil {
		log.Fatalf("state store: %v", err)
	}

	driver := buildDriver(cfg, store)
	taskID := uuid.NewString()
	ctx := context.Background()

	params := paramsFromConfig(cfg)
	if *paramsFile != "" {
		data, err := os.ReadFile(*paramsFile)
		if err != nil {
			log.Fatalf("read params: %v", err)
		}
		if err := json.Unmarshal(data, &params); err != nil {
			log.Fatalf("parse params: %v", err)
		}
	}
	if *subject != "" {
		params.Subject = *subject
	}
	if *script != "" {
		data, err := os.ReadFile(*script)
		if err != nil {
			log.Fatalf("read script: %v", err)
		}
		params.VideoScript = string(data)
	}
	if *stopAt != "" {
		params.StopAt = *stopAt
	}
	if params.Subject == "" && params.VideoScript == "" {
		log.Fatal("need -subject, -script or -params")
	}

	log.Printf("[main] task %s starting (subject=%q)", taskID, params.Subject)

	if *podcast {
		h1, h2 := splitHosts(*hosts)
		p := &task.PodcastParams{
			Params: params,
			Host1:  h1,
			Host2:  h2,
			Voice1: cfg.TTS.DefaultVoice,
			Voice2: cfg.TTS.DefaultVoice,
		}
		err = driver.StartPodcast(ctx, taskID, p)
	} else {
		err = driver.Start(ctx, taskID, params)
	}
	if err != nil {
		log.Fatalf("task %s: %v", taskID, err)
	}

	if record, ok := store.Get(taskID); ok {
		out, _ := json.MarshalIndent(record, "", "  ")
		log.Printf("[main] task %s result:\n%s", taskID, out)
	}
}

func buildDriver(cfg *config.Config, store state.Store) *task.Driver {
	scripts := llm.New(cfg.LLM.BaseURL, os.Getenv("LLM_API_KEY"), cfg.LLM.Model, cfg.LLM.Temperature)
	speech := voice.NewSpeech(cfg.TTS)
	trans := subtitle.NewTranscriber(cfg.Whisper.Binary, cfg.Whisper.Model, cfg.Whisper.Language)

	var search material.SearchFunc
	if key := os.Getenv("PEXELS_API_KEY"); key != "" {
		search = material.NewPexelsClient(key, cfg.Video.Aspect).Search
	}
	materials := material.NewService(search, nil)

	return task.NewDriver(cfg, store, scripts, speech, trans, materials,
		video.NewCompositor(), video.Generate)
}

// paramsFromConfig seeds task params from the config file defaults.
func paramsFromConfig(cfg *config.Config) task.Params {
	return task.Params{
		Voice:            cfg.TTS.DefaultVoice,
		Aspect:           cfg.Video.Aspect,
		ConcatMode:       cfg.Video.ConcatMode,
		TransitionMode:   cfg.Video.TransitionMode,
		ClipDuration:     cfg.Video.ClipDuration,
		Count:            cfg.Video.Count,
		SubtitleEnabled:  cfg.Subtitle.Enabled,
		SubtitleProvider: cfg.Subtitle.Provider,
		SubtitleStyle:    cfg.Subtitle.Style,
		FontName:         cfg.Subtitle.FontName,
		FontSize:         cfg.Subtitle.FontSize,
		TextColor:        cfg.Subtitle.TextColor,
		BackgroundColor:  cfg.Subtitle.BackgroundColor,
		StrokeColor:      cfg.Subtitle.StrokeColor,
		StrokeWidth:      cfg.Subtitle.StrokeWidth,
		Position:         cfg.Subtitle.Position,
		CustomPosition:   cfg.Subtitle.CustomPosition,
		VoiceVolume:      cfg.Video.VoiceVolume,
		BGMType:          cfg.Video.BGMType,
		BGMFile:          cfg.Video.BGMFile,
		BGMVolume:        cfg.Video.BGMVolume,
	}
}

func splitHosts(s string) (string, string) {
	h1, h2 := "Alex", "Sam"
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		h1 = parts[0]
	}
	if len(parts) > 1 {
		h2 = parts[1]
	}
	return h1, h2
}
