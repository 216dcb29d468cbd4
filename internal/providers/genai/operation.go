package genai

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// doneKeywords are matched case-insensitively against string-shaped operation
// responses that carry no structured done flag.
var doneKeywords = []string{"SUCCEEDED", "DONE", "COMPLETED"}

// Video is a single generated artifact: either inline bytes or a fetchable URI.
type Video struct {
	Data []byte
	URI  string
}

// OperationState is the normalized, in-memory view of a long-running
// operation. Exactly one of the two shapes applies: a structured operation
// object (Done flag, optional videos, optional error) or a bare status string
// (StatusText set, Handle nil).
type OperationState struct {
	// Handle addresses the operation for the next poll. Nil for string-shaped
	// responses, which lose the operation name.
	Handle *Operation
	// Done is the structured completion flag.
	Done bool
	// StatusText holds the raw response when the provider returned a bare
	// string instead of an operation object.
	StatusText string
	// Videos holds the generated artifacts once the operation has a result.
	Videos []Video
	// ErrMessage carries the provider's error detail for a failed operation.
	ErrMessage string
}

// Finished reports whether the operation should be treated as complete: the
// structured done flag, or a completion keyword inside a string-shaped status.
func (s *OperationState) Finished() bool {
	if s == nil {
		return false
	}
	if s.Done {
		return true
	}
	if s.StatusText != "" {
		upper := strings.ToUpper(s.StatusText)
		for _, keyword := range doneKeywords {
			if strings.Contains(upper, keyword) {
				return true
			}
		}
	}
	return false
}

// decodeOperationState normalizes a raw poll response body. Structured
// operation objects are preferred; anything that fails to parse as one is
// kept verbatim as a status string so the poller can still keyword-match it.
func decodeOperationState(body []byte) *OperationState {
	trimmed := strings.TrimSpace(string(body))

	var envelope operationEnvelope
	if err := unmarshalStrictObject(body, &envelope); err == nil {
		state := &OperationState{Done: envelope.Done}
		if envelope.Name != "" {
			state.Handle = &Operation{Name: envelope.Name}
		}
		if envelope.Error != nil {
			state.ErrMessage = envelope.Error.Message
		}
		state.Videos = extractVideos(envelope.Response)
		if len(state.Videos) == 0 {
			state.Videos = extractVideos(envelope.Result)
		}
		return state
	}

	// A JSON string body decodes to its contents; any other unparseable
	// payload is carried through raw.
	var text string
	if err := json.Unmarshal(body, &text); err == nil {
		return &OperationState{StatusText: text}
	}
	return &OperationState{StatusText: trimmed}
}

// unmarshalStrictObject decodes body into v only when the payload is a JSON
// object, so bare strings fall through to the text-shaped branch.
func unmarshalStrictObject(body []byte, v any) error {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return fmt.Errorf("not a JSON object")
	}
	return json.Unmarshal([]byte(trimmed), v)
}

// extractVideos flattens the two result layouts the API emits: a top-level
// generatedVideos list and the generateVideoResponse.generatedSamples nesting.
func extractVideos(result *videosResult) []Video {
	if result == nil {
		return nil
	}
	entries := result.GeneratedVideos
	if len(entries) == 0 && result.VideoResponse != nil {
		entries = result.VideoResponse.GeneratedSamples
	}
	if len(entries) == 0 {
		return nil
	}
	videos := make([]Video, 0, len(entries))
	for _, entry := range entries {
		video := Video{URI: entry.Video.URI}
		encoded := entry.Video.BytesBase64
		if encoded == "" {
			encoded = entry.Video.VideoBytes
		}
		if encoded != "" {
			if data, err := base64.StdEncoding.DecodeString(encoded); err == nil {
				video.Data = data
			}
		}
		videos = append(videos, video)
	}
	return videos
}
