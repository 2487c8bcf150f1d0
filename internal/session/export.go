package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the portable session file format. ModelVersion records the
// catalog the state was computed against so a later import can flag
// drift; the state itself is the source of truth.
type Envelope struct {
	ExportedAt   time.Time       `json:"exportedAt"`
	ModelVersion string          `json:"modelVersion"`
	State        json.RawMessage `json:"state"`
}

// Export wraps a session state in an envelope and marshals it, indented
// for hand inspection.
func Export(st *State, modelVersion string, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	env := Envelope{
		ExportedAt:   now.UTC(),
		ModelVersion: modelVersion,
		State:        raw,
	}
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return out, nil
}

// ImportState parses an export envelope and returns the normalized
// state. A payload without a state object is rejected; legacy flight
// plan shapes are migrated during unmarshalling.
func ImportState(data []byte) (*State, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse export file: %w", err)
	}
	if len(env.State) == 0 || string(env.State) == "null" {
		return nil, fmt.Errorf("invalid export file: missing state")
	}
	st := NewState()
	if err := json.Unmarshal(env.State, st); err != nil {
		return nil, fmt.Errorf("parse session state: %w", err)
	}
	st.Normalize()
	return st, nil
}
