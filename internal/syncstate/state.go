package syncstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// State is the inter-run memory of the synchronizer: the cutoff timestamp
// and the remote-page-id to article-id mapping. The on-disk encoding is a
// JSON object {lastSyncTime, syncedPages} consumed by other tooling, so the
// field names are a wire contract.
type State struct {
	LastSyncTime time.Time         `json:"lastSyncTime"`
	SyncedPages  map[string]string `json:"syncedPages"`
}

// Article returns the local article id mapped to pageID, empty if none.
func (s *State) Article(pageID string) string {
	return s.SyncedPages[pageID]
}

// Store persists State as a single JSON file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted state. A missing file is a first run and yields
// the epoch-zero default; a corrupt file is an error, not silently reset,
// because resetting would re-create every article under a fresh id.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return defaultState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading sync state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing sync state %s: %w", s.path, err)
	}
	if state.SyncedPages == nil {
		state.SyncedPages = make(map[string]string)
	}
	if state.LastSyncTime.IsZero() {
		state.LastSyncTime = time.Unix(0, 0).UTC()
	}
	return &state, nil
}

// Save writes the full state, replacing the previous file atomically via a
// temp file and rename so a crash mid-write never leaves partial JSON.
func (s *Store) Save(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding sync state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sync-state-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing sync state: %w", err)
	}
	return nil
}

func defaultState() *State {
	return &State{
		LastSyncTime: time.Unix(0, 0).UTC(),
		SyncedPages:  make(map[string]string),
	}
}
