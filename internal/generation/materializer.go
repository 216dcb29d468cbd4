package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mediastudio/internal/infra"
	"mediastudio/internal/providers/genai"
	"mediastudio/internal/storage"
)

var (
	// ErrNoResult means neither the last polled state nor a final re-query
	// surfaced any generated videos.
	ErrNoResult = errors.New("no result found")
	// ErrNoArtifactData means a video entry existed but carried neither
	// inline bytes nor a fetchable URI payload.
	ErrNoArtifactData = errors.New("no artifact data")
)

// Artifact is the durable reference to a materialized generation result.
type Artifact struct {
	StoreRef  string
	PublicURL string
}

// Materializer turns an operation's final state into a stored, publicly
// retrievable video artifact. It performs exactly one object-store write on
// success and none on failure.
type Materializer struct {
	client ProviderClient
	store  storage.BlobStore
	logger infra.Logger
}

// NewMaterializer wires the provider client used for the final re-query and
// URI downloads with the blob store artifacts are persisted to.
func NewMaterializer(client ProviderClient, store storage.BlobStore, logger infra.Logger) *Materializer {
	return &Materializer{client: client, store: store, logger: logger}
}

// Extract selects the first generated video out of the last polled state,
// re-querying once with the original handle when the state carries none, then
// obtains the bytes (inline or by URI fetch) and uploads them under a fresh
// generated_videos/ key.
func (m *Materializer) Extract(ctx context.Context, last *genai.OperationState, original *genai.Operation) (*Artifact, error) {
	videos := stateVideos(last)
	if len(videos) == 0 {
		state, err := m.client.GetOperation(ctx, original)
		if err != nil {
			return nil, fmt.Errorf("final operation lookup: %w", err)
		}
		videos = stateVideos(state)
	}
	if len(videos) == 0 {
		return nil, ErrNoResult
	}

	entry := videos[0]
	data := entry.Data
	if len(data) == 0 && entry.URI != "" {
		fetched, err := m.client.DownloadVideo(ctx, entry.URI)
		if err != nil {
			return nil, fmt.Errorf("fetch artifact: %w", err)
		}
		data = fetched
	}
	if len(data) == 0 {
		return nil, ErrNoArtifactData
	}

	key := fmt.Sprintf("generated_videos/veo_video_%s.mp4", uuid.NewString())
	object, err := m.store.Put(ctx, key, data, "video/mp4")
	if err != nil {
		return nil, fmt.Errorf("store artifact: %w", err)
	}

	m.logger.Info().
		Str("key", key).
		Int("bytes", len(data)).
		Msg("materializer: artifact stored")

	return &Artifact{StoreRef: object.StoreURI, PublicURL: object.PublicURL}, nil
}

func stateVideos(state *genai.OperationState) []genai.Video {
	if state == nil {
		return nil
	}
	return state.Videos
}
