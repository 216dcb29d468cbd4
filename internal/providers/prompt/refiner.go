package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// TextGenerator is the single synchronous call the refiner needs from the
// Gemini client.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Refiner turns a user concept into a generation-ready video prompt, and
// optionally a matching text-to-music prompt. Both are one-shot calls with no
// retry; a transient provider failure propagates to the caller.
type Refiner struct {
	generator TextGenerator
}

// NewRefiner builds a Refiner over the provided text generator.
func NewRefiner(generator TextGenerator) (*Refiner, error) {
	if generator == nil {
		return nil, errors.New("prompt: text generator is required")
	}
	return &Refiner{generator: generator}, nil
}

// Refine expands a raw concept into a detailed single-paragraph video prompt.
func (r *Refiner) Refine(ctx context.Context, concept string) (string, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return "", errors.New("prompt: concept text is empty")
	}
	instruction := fmt.Sprintf(
		"You are a professional video director. Based on the following concept, "+
			"write a detailed, single-paragraph video generation prompt for a generative AI model like Google Veo: '%s'. "+
			"Technical specifications: 8K resolution, cinematic lighting, photorealistic.",
		concept,
	)
	refined, err := r.generator.GenerateText(ctx, instruction)
	if err != nil {
		return "", fmt.Errorf("refine prompt: %w", err)
	}
	return refined, nil
}

// MusicPrompt derives a text-to-music prompt that fits the refined video
// prompt's mood.
func (r *Refiner) MusicPrompt(ctx context.Context, videoPrompt string) (string, error) {
	instruction := fmt.Sprintf(
		"You are a professional music producer and sound designer. "+
			"Based on the following video description, create a detailed text-to-music generation prompt: '%s'. "+
			"Focus on mood, instruments, rhythm, and tempo. Keep it within 100 words.",
		videoPrompt,
	)
	musicPrompt, err := r.generator.GenerateText(ctx, instruction)
	if err != nil {
		return "", fmt.Errorf("music prompt: %w", err)
	}
	return musicPrompt, nil
}
