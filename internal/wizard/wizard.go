// Package wizard holds the four-step excuse wizard as an explicit state
// value. Every transition returns a new State; nothing is global.
package wizard

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/alibi/internal/excuse"
)

type Step int

const (
	StepScenario Step = iota + 1
	StepContext
	StepStyle
	StepResults
)

// ErrIncomplete is returned by Payload when a required field is unset.
var ErrIncomplete = errors.New("wizard form incomplete")

func (s Step) clamp() Step {
	switch {
	case s < StepScenario:
		return StepScenario
	case s > StepResults:
		return StepResults
	}
	return s
}

type Form struct {
	Scenario           excuse.Scenario           `json:"scenario,omitempty"`
	Relationship       excuse.Relationship       `json:"relationship,omitempty"`
	Timing             excuse.Timing             `json:"timing,omitempty"`
	Transport          excuse.Transport          `json:"transport,omitempty"`
	PersonalContext    string                    `json:"personalContext"`
	BelievabilityLevel excuse.BelievabilityLevel `json:"believabilityLevel,omitempty"`
	Tone               excuse.Tone               `json:"tone"`
}

// FormPatch updates the fields that are non-nil.
type FormPatch struct {
	Scenario           *excuse.Scenario
	Relationship       *excuse.Relationship
	Timing             *excuse.Timing
	Transport          *excuse.Transport
	PersonalContext    *string
	BelievabilityLevel *excuse.BelievabilityLevel
	Tone               *excuse.Tone
}

type State struct {
	Step         Step
	Form         Form
	Excuses      []excuse.Variant
	GenerationID string
	Error        string
}

func New() State {
	return State{Step: StepScenario, Form: Form{Tone: excuse.ToneCasual}}
}

func (s State) Next() State {
	s.Step = (s.Step + 1).clamp()
	s.Error = ""
	return s
}

func (s State) Previous() State {
	s.Step = (s.Step - 1).clamp()
	s.Error = ""
	return s
}

func (s State) SetStep(step Step) State {
	s.Step = step.clamp()
	s.Error = ""
	return s
}

func (s State) Update(p FormPatch) State {
	f := &s.Form
	if p.Scenario != nil {
		f.Scenario = *p.Scenario
	}
	if p.Relationship != nil {
		f.Relationship = *p.Relationship
	}
	if p.Timing != nil {
		f.Timing = *p.Timing
	}
	if p.Transport != nil {
		f.Transport = *p.Transport
	}
	if p.PersonalContext != nil {
		f.PersonalContext = *p.PersonalContext
	}
	if p.BelievabilityLevel != nil {
		f.BelievabilityLevel = *p.BelievabilityLevel
	}
	if p.Tone != nil {
		f.Tone = *p.Tone
	}
	s.Error = ""
	return s
}

func (s State) Reset() State {
	return New()
}

// WithResult stores a generation and moves to the results step.
func (s State) WithResult(excuses []excuse.Variant, generationID string) State {
	s.Excuses = excuses
	s.GenerationID = generationID
	s.Step = StepResults
	s.Error = ""
	return s
}

func (s State) WithError(msg string) State {
	s.Error = msg
	return s
}

// CanAdvance reports whether the current step has what it needs.
// Transport is never required.
func (s State) CanAdvance() bool {
	switch s.Step {
	case StepScenario:
		return s.Form.Scenario != ""
	case StepContext:
		return s.Form.Relationship != "" && s.Form.Timing != ""
	case StepStyle:
		return s.Form.BelievabilityLevel != ""
	default:
		return false
	}
}

// ShowTransport reports whether the transport question applies.
func (s State) ShowTransport() bool {
	return s.Form.Scenario.RequiresTransport()
}

// ShowFormalToggle reports whether the formal tone option is offered.
func (s State) ShowFormalToggle() bool {
	return s.Form.Relationship == excuse.RelationshipBoss || s.Form.Relationship == excuse.RelationshipTeacher
}

// Payload builds the generate request from the form.
func (s State) Payload() (excuse.Request, error) {
	f := s.Form
	var missing []string
	if f.Scenario == "" {
		missing = append(missing, "scenario")
	}
	if f.Relationship == "" {
		missing = append(missing, "relationship")
	}
	if f.Timing == "" {
		missing = append(missing, "timing")
	}
	if f.BelievabilityLevel == "" {
		missing = append(missing, "believabilityLevel")
	}
	if len(missing) > 0 {
		return excuse.Request{}, fmt.Errorf("%w: missing %v", ErrIncomplete, missing)
	}

	tone := f.Tone
	if tone == "" {
		tone = excuse.ToneCasual
	}
	return excuse.Request{
		Scenario:           f.Scenario,
		Relationship:       f.Relationship,
		Timing:             f.Timing,
		Transport:          f.Transport,
		PersonalContext:    f.PersonalContext,
		BelievabilityLevel: f.BelievabilityLevel,
		Tone:               tone,
	}, nil
}

// Snapshot is the persisted part of a State: the form and the step.
// Results and errors are not carried across sessions.
type Snapshot struct {
	Step Step `json:"currentStep"`
	Form Form `json:"formData"`
}

func (s State) Snapshot() Snapshot {
	return Snapshot{Step: s.Step, Form: s.Form}
}

// Restore rebuilds a State from a snapshot.
func Restore(snap Snapshot) State {
	st := New()
	st.Step = snap.Step.clamp()
	st.Form = snap.Form
	if st.Form.Tone == "" {
		st.Form.Tone = excuse.ToneCasual
	}
	return st
}

func MarshalSnapshot(s State) ([]byte, error) {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

func UnmarshalSnapshot(data []byte) (State, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return State{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return Restore(snap), nil
}
