package wizard

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// SnapshotVersion changes whenever State's serialized shape does. Snapshots of
// any other version are ignored.
const SnapshotVersion = 1

var ErrSnapshotVersion = errors.New("wizard snapshot version mismatch")

type Snapshot struct {
	Version int       `json:"version"`
	Variant Variant   `json:"variant"`
	SavedAt time.Time `json:"savedAt"`
	State   *State    `json:"state"`
}

func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode wizard snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses data and returns ErrSnapshotVersion for snapshots
// written by another schema version.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode wizard snapshot: %w", err)
	}
	if s.Version != SnapshotVersion || s.State == nil {
		return nil, ErrSnapshotVersion
	}
	return &s, nil
}
