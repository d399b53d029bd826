package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/QHanh/AutoVideo/internal/config"
	"github.com/QHanh/AutoVideo/internal/llm"
	"github.com/QHanh/AutoVideo/internal/material"
	"github.com/QHanh/AutoVideo/internal/state"
	"github.com/QHanh/AutoVideo/internal/subtitle"
	"github.com/QHanh/AutoVideo/internal/video"
)

// Progress checkpoints for the fixed stages. The remaining half of the bar
// is split evenly across the per-video composition and finalization steps.
const (
	progressScript    = 5
	progressTerms     = 10
	progressAudio     = 20
	progressSubtitle  = 30
	progressMaterials = 40
	progressCompose   = 50
)

// ScriptService produces narration text. GenerateScript reports failures
// in-band with the llm error marker.
type ScriptService interface {
	GenerateScript(ctx context.Context, subject, language string, paragraphs int) string
	GenerateTerms(ctx context.Context, subject, script string, amount int) ([]string, error)
	GeneratePodcastScript(ctx context.Context, subject, content, language string) string
	GeneratePodcastDialogue(ctx context.Context, content, script, host1, host2, tone, language string) (string, string, error)
}

// SpeechService synthesizes narration audio and returns its timing source.
type SpeechService interface {
	Synthesize(ctx context.Context, text, voice string, rate float64, outFile string) (*subtitle.SubMaker, error)
	SynthesizePodcast(ctx context.Context, dialogueTTS, dialogueCaptions, host1, host2, voice1, voice2, outFile string) (*subtitle.SubMaker, error)
}

// Transcriber recovers caption lines from finished audio.
type Transcriber interface {
	Transcribe(ctx context.Context, audioFile string) ([]subtitle.Line, error)
}

// MaterialService returns ready-to-compose local materials for the search
// terms. Pre-supplied materials are passed through preprocessing only.
type MaterialService interface {
	Fetch(ctx context.Context, destDir string, terms []string, supplied []material.Info, clipDuration float64) ([]material.Info, error)
}

// Compositor renders the visual timeline against the narration.
type Compositor interface {
	CombineVideos(ctx context.Context, p video.CombineParams) error
	CombineImages(ctx context.Context, p video.CombineParams) error
}

// FinalizeFunc runs the last render pass (volume, music, captions).
type FinalizeFunc func(ctx context.Context, p video.FinalizeParams) error

// Driver wires the collaborators into the staged pipeline.
type Driver struct {
	cfg       *config.Config
	store     state.Store
	script    ScriptService
	speech    SpeechService
	trans     Transcriber
	materials MaterialService
	comp      Compositor
	finalize  FinalizeFunc
}

func NewDriver(cfg *config.Config, store state.Store, script ScriptService, speech SpeechService,
	trans Transcriber, materials MaterialService, comp Compositor, finalize FinalizeFunc) *Driver {
	return &Driver{
		cfg:       cfg,
		store:     store,
		script:    script,
		speech:    speech,
		trans:     trans,
		materials: materials,
		comp:      comp,
		finalize:  finalize,
	}
}

// fail marks the task FAILED, keeping whatever partial results have already
// been written, and returns the error.
func (d *Driver) fail(taskID string, progress int, err error) error {
	d.store.Update(taskID, state.StateFailed, progress, map[string]any{
		"error": err.Error(),
	})
	log.Printf("[task] %s failed: %v", taskID, err)
	return err
}

// complete marks the task COMPLETE at 100%.
func (d *Driver) complete(taskID string, fields map[string]any) {
	d.store.Update(taskID, state.StateComplete, 100, fields)
	log.Printf("[task] %s complete", taskID)
}

// Start runs the video pipeline for one task.
func (d *Driver) Start(ctx context.Context, taskID string, p Params) error {
	p.applyDefaults()
	taskDir := d.cfg.TaskDir(taskID)
	if err := os.MkdirAll(taskDir, 0o755); err != nil {
		return d.fail(taskID, 0, err)
	}
	d.store.Update(taskID, state.StateProcessing, 0, map[string]any{
		"task_id": taskID,
	})

	// Multiple outputs need distinct clip orderings, so sequential mode is
	// meaningless and random is forced.
	if p.Count > 1 {
		p.ConcatMode = string(video.ConcatRandom)
	}

	script, err := d.stageScript(ctx, taskID, &p, taskDir)
	if err != nil {
		return err
	}
	if p.StopAt == StageScript {
		d.complete(taskID, map[string]any{"script": script})
		return nil
	}

	terms, err := d.stageTerms(ctx, taskID, &p, script, taskDir)
	if err != nil {
		return err
	}
	if p.StopAt == StageTerms {
		d.complete(taskID, map[string]any{"terms": terms})
		return nil
	}

	audioFile, sm, err := d.stageAudio(ctx, taskID, script, p, taskDir)
	if err != nil {
		return err
	}
	if p.StopAt == StageAudio {
		d.complete(taskID, map[string]any{
			"audio_file":     audioFile,
			"audio_duration": sm.AudioDuration(),
		})
		return nil
	}

	subtitleFile, err := d.stageSubtitle(ctx, taskID, script, sm, audioFile, p, taskDir)
	if err != nil {
		return err
	}
	if p.StopAt == StageSubtitle {
		d.complete(taskID, map[string]any{"subtitle_file": subtitleFile})
		return nil
	}

	materials, err := d.stageMaterials(ctx, taskID, terms, p, taskDir)
	if err != nil {
		return err
	}
	if p.StopAt == StageMaterials {
		d.complete(taskID, map[string]any{"material_count": len(materials)})
		return nil
	}

	return d.stageCompose(ctx, taskID, p, audioFile, subtitleFile, materials, taskDir)
}

func (d *Driver) stageScript(ctx context.Context, taskID string, p *Params, taskDir string) (string, error) {
	script := p.VideoScript
	if script == "" {
		log.Printf("[task] %s generating script for %q", taskID, p.Subject)
		script = d.script.GenerateScript(ctx, p.Subject, p.Language, p.Paragraphs)
	}
	if llm.IsError(script) || script == "" {
		return "", d.fail(taskID, 0, fmt.Errorf("script generation failed: %s", script))
	}
	p.VideoScript = script
	d.saveScriptFile(taskDir, p)
	d.store.Update(taskID, state.StateProcessing, progressScript, map[string]any{
		"script": script,
	})
	return script, nil
}

func (d *Driver) stageTerms(ctx context.Context, taskID string, p *Params, script string, taskDir string) ([]string, error) {
	terms := p.VideoTerms
	if len(terms) == 0 && len(p.Materials) == 0 {
		var err error
		terms, err = d.script.GenerateTerms(ctx, p.Subject, script, p.TermCount)
		if err != nil {
			return nil, d.fail(taskID, progressScript, fmt.Errorf("term generation failed: %w", err))
		}
	}
	p.VideoTerms = terms
	d.saveScriptFile(taskDir, p)
	d.store.Update(taskID, state.StateProcessing, progressTerms, map[string]any{
		"terms": terms,
	})
	return terms, nil
}

func (d *Driver) stageAudio(ctx context.Context, taskID, script string, p Params, taskDir string) (string, *subtitle.SubMaker, error) {
	audioFile := filepath.Join(taskDir, "audio.mp3")
	sm, err := d.speech.Synthesize(ctx, script, p.Voice, p.VoiceRate, audioFile)
	if err != nil {
		return "", nil, d.fail(taskID, progressTerms, fmt.Errorf("speech synthesis failed: %w", err))
	}
	d.store.Update(taskID, state.StateProcessing, progressAudio, map[string]any{
		"audio_file":     audioFile,
		"audio_duration": sm.AudioDuration(),
	})
	return audioFile, sm, nil
}

// stageSubtitle writes the SRT file, aligning the script against the timing
// source, or falling back to whisper transcription when alignment cannot
// account for every phrase.
func (d *Driver) stageSubtitle(ctx context.Context, taskID, script string, sm *subtitle.SubMaker, audioFile string, p Params, taskDir string) (string, error) {
	if !p.SubtitleEnabled {
		d.store.Update(taskID, state.StateProcessing, progressSubtitle, nil)
		return "", nil
	}

	var lines []subtitle.Line
	var err error
	if p.SubtitleProvider != "whisper" {
		lines, err = subtitle.Align(script, sm)
		if err != nil {
			log.Printf("[task] %s alignment failed (%v), falling back to whisper", taskID, err)
		}
	}
	if lines == nil && d.trans != nil {
		lines, err = d.trans.Transcribe(ctx, audioFile)
	}
	// Captions are optional for a video run, so a caption failure degrades
	// instead of killing the task.
	if len(lines) == 0 {
		log.Printf("[task] %s continuing without captions: %v", taskID, err)
		d.store.Update(taskID, state.StateProcessing, progressSubtitle, nil)
		return "", nil
	}

	subtitleFile := filepath.Join(taskDir, "subtitle.srt")
	if err := subtitle.WriteSRT(lines, subtitleFile); err != nil {
		return "", d.fail(taskID, progressAudio, err)
	}
	d.store.Update(taskID, state.StateProcessing, progressSubtitle, map[string]any{
		"subtitle_file": subtitleFile,
	})
	return subtitleFile, nil
}

func (d *Driver) stageMaterials(ctx context.Context, taskID string, terms []string, p Params, taskDir string) ([]material.Info, error) {
	materials, err := d.materials.Fetch(ctx, filepath.Join(taskDir, "materials"), terms, p.Materials, p.ClipDuration)
	if err != nil {
		return nil, d.fail(taskID, progressSubtitle, fmt.Errorf("material fetch failed: %w", err))
	}
	d.store.Update(taskID, state.StateProcessing, progressMaterials, map[string]any{
		"material_count": len(materials),
	})
	return materials, nil
}

// stageCompose renders each requested output. The second half of the
// progress bar is split evenly: every video advances it once after
// composition and once after finalization.
func (d *Driver) stageCompose(ctx context.Context, taskID string, p Params, audioFile, subtitleFile string, materials []material.Info, taskDir string) error {
	aspect := video.ParseAspect(p.Aspect)
	width, height := aspect.Resolution()
	step := progressCompose / p.Count / 2
	progress := progressCompose
	d.store.Update(taskID, state.StateProcessing, progress, nil)

	var combined, finals []string
	for i := 0; i < p.Count; i++ {
		combinedFile := filepath.Join(taskDir, fmt.Sprintf("combined-%d.mp4", i+1))
		params := video.CombineParams{
			AudioFile:      audioFile,
			Materials:      materials,
			OutFile:        combinedFile,
			Aspect:         aspect,
			ConcatMode:     video.ParseConcatMode(p.ConcatMode),
			TransitionMode: video.ParseTransitionMode(p.TransitionMode),
			ClipDuration:   p.ClipDuration,
			Threads:        d.cfg.Video.Threads,
		}
		var err error
		if p.MaterialSource == "images" {
			err = d.comp.CombineImages(ctx, params)
		} else {
			err = d.comp.CombineVideos(ctx, params)
		}
		if err != nil {
			return d.fail(taskID, progress, fmt.Errorf("composition failed: %w", err))
		}
		combined = append(combined, combinedFile)
		progress += step
		d.store.Update(taskID, state.StateProcessing, progress, map[string]any{
			"combined_videos": combined,
		})

		finalFile := filepath.Join(taskDir, fmt.Sprintf("final-%d.mp4", i+1))
		err = d.finalize(ctx, video.FinalizeParams{
			VideoFile:    combinedFile,
			OutFile:      finalFile,
			SubtitleFile: subtitleFile,
			Captions: video.CaptionOptions{
				Style:           video.ParseCaptionStyle(p.SubtitleStyle),
				FontFile:        d.cfg.FontPath(p.FontName),
				FontSize:        p.FontSize,
				TextColor:       p.TextColor,
				StrokeColor:     p.StrokeColor,
				StrokeWidth:     p.StrokeWidth,
				BackgroundColor: p.BackgroundColor,
				Position:        p.Position,
				CustomPosition:  p.CustomPosition,
				VideoWidth:      width,
				VideoHeight:     height,
			},
			VoiceVolume: p.VoiceVolume,
			BGMType:     p.BGMType,
			BGMFile:     p.BGMFile,
			BGMVolume:   p.BGMVolume,
			SongsDir:    d.cfg.Paths.Songs,
			Threads:     d.cfg.Video.Threads,
		})
		if err != nil {
			return d.fail(taskID, progress, fmt.Errorf("finalization failed: %w", err))
		}
		finals = append(finals, finalFile)
		progress += step
		d.store.Update(taskID, state.StateProcessing, progress, map[string]any{
			"videos": finals,
		})
	}

	d.complete(taskID, map[string]any{
		"combined_videos": combined,
		"videos":          finals,
	})
	return nil
}

// StartPodcast runs the two-host dialogue pipeline. The generated dialogue
// streams are written back into the params and persisted with the task.
func (d *Driver) StartPodcast(ctx context.Context, taskID string, p *PodcastParams) error {
	p.applyDefaults()
	taskDir := d.cfg.TaskDir(taskID)
	if err := os.MkdirAll(taskDir, 0o755); err != nil {
		return d.fail(taskID, 0, err)
	}
	d.store.Update(taskID, state.StateProcessing, 0, map[string]any{
		"task_id": taskID,
		"type":    "podcast",
	})
	if p.Count > 1 {
		p.ConcatMode = string(video.ConcatRandom)
	}

	script := p.VideoScript
	if script == "" {
		script = d.script.GeneratePodcastScript(ctx, p.Subject, p.Content, p.Language)
	}
	if llm.IsError(script) || script == "" {
		return d.fail(taskID, 0, fmt.Errorf("podcast script generation failed: %s", script))
	}
	p.VideoScript = script

	ttsStream, captionStream, err := d.script.GeneratePodcastDialogue(
		ctx, p.Content, script, p.Host1, p.Host2, p.Tone, p.Language)
	if err != nil {
		return d.fail(taskID, 0, fmt.Errorf("dialogue generation failed: %w", err))
	}
	p.DialogueTTS = ttsStream
	p.DialogueCaptions = captionStream
	d.store.Update(taskID, state.StateProcessing, progressScript, map[string]any{
		"script":            script,
		"dialogue_tts":      ttsStream,
		"dialogue_captions": captionStream,
	})
	if p.StopAt == StageScript {
		d.complete(taskID, map[string]any{"script": script})
		return nil
	}

	// Terms come from the plain dialogue text, same as the video flow.
	terms, err := d.stageTerms(ctx, taskID, &p.Params, captionStream, taskDir)
	if err != nil {
		return err
	}
	if p.StopAt == StageTerms {
		d.complete(taskID, map[string]any{"terms": terms})
		return nil
	}

	audioFile := filepath.Join(taskDir, "audio.mp3")
	sm, err := d.speech.SynthesizePodcast(ctx, ttsStream, captionStream,
		p.Host1, p.Host2, p.Voice1, p.Voice2, audioFile)
	if err != nil {
		return d.fail(taskID, progressScript, fmt.Errorf("podcast synthesis failed: %w", err))
	}
	d.store.Update(taskID, state.StateProcessing, progressAudio, map[string]any{
		"audio_file":     audioFile,
		"audio_duration": sm.AudioDuration(),
	})
	if p.StopAt == StageAudio {
		d.complete(taskID, map[string]any{"audio_file": audioFile})
		return nil
	}

	// Captions come from the plain dialogue stream, never the tagged one.
	subtitleFile, err := d.stageSubtitle(ctx, taskID, captionStream, sm, audioFile, p.Params, taskDir)
	if err != nil {
		return err
	}
	if p.StopAt == StageSubtitle {
		d.complete(taskID, map[string]any{"subtitle_file": subtitleFile})
		return nil
	}

	materials, err := d.stageMaterials(ctx, taskID, p.VideoTerms, p.Params, taskDir)
	if err != nil {
		return err
	}
	if p.StopAt == StageMaterials {
		d.complete(taskID, map[string]any{"material_count": len(materials)})
		return nil
	}

	return d.stageCompose(ctx, taskID, p.Params, audioFile, subtitleFile, materials, taskDir)
}

// saveScriptFile persists the script, terms and request params next to the
// task artifacts so a run can be resumed or audited.
func (d *Driver) saveScriptFile(taskDir string, p *Params) {
	data, err := json.MarshalIndent(map[string]any{
		"script": p.VideoScript,
		"terms":  p.VideoTerms,
		"params": p,
	}, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(filepath.Join(taskDir, "script.json"), data, 0o644); err != nil {
		log.Printf("[task] could not save script.json: %v", err)
	}
}
