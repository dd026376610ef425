package gradient

import (
	"encoding/json"
	"fmt"

	"github.com/lightpanel/lightpaneld/internal/storage"
)

// BucketName is the kv bucket holding saved presets.
const BucketName = "gradients"

// Store persists gradient presets in the shared kv store.
type Store struct {
	bucket *storage.Bucket
}

// NewStore creates a preset store over the given bucket.
func NewStore(bucket *storage.Bucket) *Store {
	return &Store{bucket: bucket}
}

// Save validates and persists a preset, returning its ID.
func (s *Store) Save(p *Preset) (string, error) {
	blob, err := Export(p)
	if err != nil {
		return "", err
	}

	// Store raw JSON so the saved blob round-trips byte-exact on export.
	if err := s.bucket.Store(p.ID, json.RawMessage(blob), nil); err != nil {
		return "", fmt.Errorf("failed to save gradient preset: %w", err)
	}

	return p.ID, nil
}

// Get loads a preset by ID. Returns nil if not found.
func (s *Store) Get(id string) (*Preset, error) {
	data, err := s.bucket.Get(id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode stored preset %s: %w", id, err)
	}

	return &p, nil
}

// List returns all saved presets.
func (s *Store) List() ([]*Preset, error) {
	keys, err := s.bucket.Keys()
	if err != nil {
		return nil, err
	}

	presets := make([]*Preset, 0, len(keys))
	for _, key := range keys {
		p, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if p != nil {
			presets = append(presets, p)
		}
	}

	return presets, nil
}

// Delete removes a preset. Returns true if it existed.
func (s *Store) Delete(id string) (bool, error) {
	return s.bucket.Delete(id)
}
