package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"mindbloom-backend/application/analysis"
	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/core/valueobjects"

	"go.uber.org/zap"
)

// Visualization generators.
const (
	GeneratorGemini = "gemini"
	GeneratorLocal  = "local"
)

const maxSceneElements = 6

// Visualizer describes memories as scenes.
type Visualizer struct {
	gen    ports.TextGenerator
	logger *zap.Logger
}

// NewVisualizer creates a visualizer. A nil or disabled generator yields
// locally built descriptions.
func NewVisualizer(gen ports.TextGenerator, logger *zap.Logger) *Visualizer {
	return &Visualizer{gen: gen, logger: logger}
}

type generatedScene struct {
	VisualDescription string   `json:"visual_description"`
	ColorPalette      []string `json:"color_palette"`
	SceneElements     []string `json:"scene_elements"`
	ImagePrompt       string   `json:"image_prompt"`
}

// Visualize returns a visualization of the memory. Generator failures fall
// back to the local description.
func (v *Visualizer) Visualize(ctx context.Context, title, content string, mood valueobjects.Mood) *entities.Visualization {
	if v.gen != nil && v.gen.Enabled() {
		var scene generatedScene
		err := v.gen.GenerateJSON(ctx, scenePrompt(title, content, mood), &scene)
		if err == nil && strings.TrimSpace(scene.VisualDescription) != "" {
			palette := scene.ColorPalette
			if len(palette) == 0 {
				palette = mood.Palette()
			}
			return &entities.Visualization{
				Description:   strings.TrimSpace(scene.VisualDescription),
				ColorPalette:  palette,
				SceneElements: nonNil(scene.SceneElements),
				ImagePrompt:   strings.TrimSpace(scene.ImagePrompt),
				Generator:     GeneratorGemini,
			}
		}
		if v.logger != nil {
			v.logger.Warn("Visualization generation failed, using local description", zap.Error(err))
		}
	}
	return LocalVisualization(title, content, mood)
}

// LocalVisualization builds a deterministic scene from the memory's themes,
// keywords and mood.
func LocalVisualization(title, content string, mood valueobjects.Mood) *entities.Visualization {
	f := analysis.Analyze(title + ". " + content)

	elements := append([]string{}, f.Themes...)
	for _, k := range f.Keywords {
		if len(elements) >= maxSceneElements {
			break
		}
		if !slices.Contains(elements, k) {
			elements = append(elements, k)
		}
	}

	setting := "a quiet, familiar place"
	if len(f.Themes) > 0 {
		setting = "a scene of " + strings.Join(f.Themes, " and ")
	}
	desc := fmt.Sprintf("A %s, softly lit watercolor of %s, remembering %q.", moodAdjective(mood), setting, title)
	return &entities.Visualization{
		Description:   desc,
		ColorPalette:  mood.Palette(),
		SceneElements: elements,
		ImagePrompt:   fmt.Sprintf("%s, %s palette, gentle watercolor style", setting, mood),
		Generator:     GeneratorLocal,
	}
}

func scenePrompt(title, content string, mood valueobjects.Mood) string {
	return fmt.Sprintf("Describe a gentle, comforting picture for a person with dementia of this memory.\n"+
		"Title: %q\nMood: %s\nMemory: %q\n\n"+
		"Return JSON with keys visual_description (two or three sentences), color_palette (three to five hex colors), "+
		"scene_elements (short nouns) and image_prompt (one line for an image model).", title, mood, content)
}

func moodAdjective(mood valueobjects.Mood) string {
	switch mood {
	case valueobjects.MoodHappy:
		return "warm and joyful"
	case valueobjects.MoodExcited:
		return "bright and lively"
	case valueobjects.MoodCalm:
		return "calm and peaceful"
	case valueobjects.MoodSad:
		return "tender and wistful"
	case valueobjects.MoodAnxious:
		return "soft and reassuring"
	default:
		return "gentle"
	}
}
