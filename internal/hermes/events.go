package hermes

import (
	"time"

	"github.com/MikeSquared-Agency/alibi/internal/excuse"
)

const (
	// SubjectGenerationCreated carries a GenerationEvent per successful generation.
	SubjectGenerationCreated = "alibi.generation.created"
	// SubjectInteractionRecorded carries an InteractionEvent per tracked action.
	SubjectInteractionRecorded = "alibi.interaction.recorded"
)

type GenerationEvent struct {
	GenerationID       string                    `json:"generation_id"`
	Scenario           excuse.Scenario           `json:"scenario"`
	Relationship       excuse.Relationship       `json:"relationship"`
	Timing             excuse.Timing             `json:"timing"`
	Transport          excuse.Transport          `json:"transport,omitempty"`
	BelievabilityLevel excuse.BelievabilityLevel `json:"believability_level"`
	Tone               excuse.Tone               `json:"tone"`
	SessionID          string                    `json:"session_id,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
}

// NewGenerationEvent builds the event for a generation. Personal context is
// left out of the event stream.
func NewGenerationEvent(generationID string, req excuse.Request, meta excuse.ClientMeta, at time.Time) GenerationEvent {
	return GenerationEvent{
		GenerationID:       generationID,
		Scenario:           req.Scenario,
		Relationship:       req.Relationship,
		Timing:             req.Timing,
		Transport:          req.Transport,
		BelievabilityLevel: req.BelievabilityLevel,
		Tone:               req.Tone,
		SessionID:          meta.SessionID,
		CreatedAt:          at.UTC(),
	}
}

type InteractionEvent struct {
	GenerationID string            `json:"generation_id"`
	ActionType   excuse.ActionType `json:"action_type"`
	FormatType   excuse.FormatType `json:"format_type,omitempty"`
	RecordedAt   time.Time         `json:"recorded_at"`
}

func NewInteractionEvent(in excuse.Interaction, at time.Time) InteractionEvent {
	return InteractionEvent{
		GenerationID: in.GenerationID,
		ActionType:   in.ActionType,
		FormatType:   in.FormatType,
		RecordedAt:   at.UTC(),
	}
}
