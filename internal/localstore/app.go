package localstore

import (
	"encoding/json"
	"time"
)

// CacheEnvelope wraps the cached vehicle list with the time it was
// written, so the UI can show "last cached at".
type CacheEnvelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// SetVehiculosCache stores data inside a {data, timestamp} envelope
// under the cache key.
func (s *Store) SetVehiculosCache(data any, timestamp string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		s.logf("failed to encode %s payload: %v", VehiculosCacheKey, err)
		return err
	}
	return s.SetJSON(VehiculosCacheKey, CacheEnvelope{Data: raw, Timestamp: timestamp})
}

// GetVehiculosCache decodes the envelope's payload into out and returns
// the write timestamp. A missing envelope, or one whose payload does not
// decode, reads as a miss.
func (s *Store) GetVehiculosCache(out any) (string, bool, error) {
	var env CacheEnvelope
	ok, err := s.GetJSON(VehiculosCacheKey, &env)
	if err != nil || !ok {
		return "", false, err
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		s.logf("failed to decode %s payload: %v", VehiculosCacheKey, err)
		return "", false, nil
	}
	return env.Timestamp, true, nil
}

// SetLastSyncTime records when the cache last merged with the server.
func (s *Store) SetLastSyncTime(timestamp string) error {
	return s.SetItem(LastSyncKey, timestamp)
}

// GetLastSyncTime returns the recorded sync timestamp, "" when never synced.
func (s *Store) GetLastSyncTime() (string, error) {
	return s.GetItem(LastSyncKey)
}

// ShouldSync reports whether more than the given number of minutes has
// passed since the last sync. Never having synced, or an unreadable
// timestamp, both count as stale.
func (s *Store) ShouldSync(minutes int) bool {
	last, err := s.GetLastSyncTime()
	if err != nil || last == "" {
		return true
	}
	t, err := time.Parse(time.RFC3339, last)
	if err != nil {
		return true
	}
	return time.Since(t) >= time.Duration(minutes)*time.Minute
}

// SetUserPreferences stores opaque user preferences.
func (s *Store) SetUserPreferences(prefs any) error {
	return s.SetJSON(UserPreferencesKey, prefs)
}

// GetUserPreferences loads user preferences into out.
func (s *Store) GetUserPreferences(out any) (bool, error) {
	return s.GetJSON(UserPreferencesKey, out)
}
