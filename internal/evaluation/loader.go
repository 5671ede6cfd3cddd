package evaluation

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cartlane/sessionrec/internal/domain/entities"
)

// LoadGoldenSessions reads and parses a golden session set from a JSON file.
func LoadGoldenSessions(path string) ([]GoldenSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden sessions file: %w", err)
	}

	var sessions []GoldenSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("failed to parse golden sessions: %w", err)
	}

	return sessions, nil
}

// ValidateGoldenSessions checks that all golden sessions have required fields and valid values.
func ValidateGoldenSessions(sessions []GoldenSession) error {
	seen := make(map[string]struct{}, len(sessions))

	for i, s := range sessions {
		if s.ID == "" {
			return fmt.Errorf("session at index %d: missing id", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("session at index %d: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = struct{}{}

		if len(s.Events) == 0 {
			return fmt.Errorf("session %q: no events to replay", s.ID)
		}
		for j, e := range s.Events {
			if e.ItemID == "" {
				return fmt.Errorf("session %q: event at index %d missing item_id", s.ID, j)
			}
			if !entities.EventType(e.EventType).IsValid() {
				return fmt.Errorf("session %q: event at index %d has invalid event_type %q", s.ID, j, e.EventType)
			}
		}

		if len(s.Holdout) == 0 {
			return fmt.Errorf("session %q: empty holdout", s.ID)
		}
		for j, itemID := range s.Holdout {
			if itemID == "" {
				return fmt.Errorf("session %q: holdout entry at index %d is empty", s.ID, j)
			}
		}
	}

	return nil
}
