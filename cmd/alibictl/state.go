package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MikeSquared-Agency/alibi/internal/wizard"
)

// savedState is what alibictl keeps between runs: the wizard snapshot plus
// the identifiers needed to follow up on the last generation.
type savedState struct {
	Wizard       json.RawMessage `json:"wizard"`
	GenerationID string          `json:"generationId,omitempty"`
	SessionID    string          `json:"sessionId,omitempty"`
}

type session struct {
	state        wizard.State
	generationID string
	sessionID    string
}

// loadSession reads path. A missing file yields a fresh wizard.
func loadSession(path string) (session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return session{state: wizard.New()}, nil
	}
	if err != nil {
		return session{}, fmt.Errorf("read state: %w", err)
	}

	var saved savedState
	if err := json.Unmarshal(data, &saved); err != nil {
		return session{}, fmt.Errorf("parse state: %w", err)
	}
	st := wizard.New()
	if len(saved.Wizard) > 0 {
		st, err = wizard.UnmarshalSnapshot(saved.Wizard)
		if err != nil {
			return session{}, err
		}
	}
	return session{state: st, generationID: saved.GenerationID, sessionID: saved.SessionID}, nil
}

func saveSession(path string, s session) error {
	snap, err := wizard.MarshalSnapshot(s.state)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(savedState{
		Wizard:       snap,
		GenerationID: s.generationID,
		SessionID:    s.sessionID,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
