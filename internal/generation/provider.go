package generation

import (
	"context"

	"mediastudio/internal/providers/genai"
)

// ProviderClient is the slice of the Gemini client the generation pipeline
// depends on.
type ProviderClient interface {
	StartVideoGeneration(ctx context.Context, prompt, imageRef string) (*genai.Operation, error)
	GetOperation(ctx context.Context, op *genai.Operation) (*genai.OperationState, error)
	DownloadVideo(ctx context.Context, uri string) ([]byte, error)
}

// PromptRefiner prepares the persisted prompts before a job is created.
type PromptRefiner interface {
	Refine(ctx context.Context, concept string) (string, error)
	MusicPrompt(ctx context.Context, videoPrompt string) (string, error)
}
