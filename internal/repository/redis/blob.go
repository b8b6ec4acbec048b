package redis

import (
	"encoding/json"

	"stocksense/pkg/errors"
)

// schemaVersion is bumped when a persisted blob layout changes.
// Blobs with an unknown version are treated as absent so callers fall
// back to defaults instead of failing on stale data.
const schemaVersion = 1

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

func marshalVersioned(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Version: schemaVersion, Data: data})
}

// unmarshalVersioned decodes a versioned blob. Corrupt payloads and
// version mismatches return errors.ErrNotFound wrapped with the cause
// so callers substitute defaults.
func unmarshalVersioned(raw []byte, v interface{}) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errors.Wrapf(errors.ErrNotFound, "corrupt blob: %v", err)
	}
	if env.Version != schemaVersion {
		return errors.Wrapf(errors.ErrNotFound, "unsupported blob version %d", env.Version)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return errors.Wrapf(errors.ErrNotFound, "corrupt blob payload: %v", err)
	}
	return nil
}
