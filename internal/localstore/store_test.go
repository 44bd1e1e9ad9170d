package localstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetGetItem(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetItem("k", "v"))
	got, err := s.GetItem("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	// absent key reads as empty, not as an error
	got, err = s.GetItem("missing")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestJSONRoundTripAndDecodeFailure(t *testing.T) {
	s := newTestStore(t)

	type prefs struct {
		Theme string `json:"theme"`
	}
	require.NoError(t, s.SetJSON("prefs", prefs{Theme: "dark"}))

	var out prefs
	ok, err := s.GetJSON("prefs", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", out.Theme)

	// garbage payload reads as a miss
	require.NoError(t, s.SetItem("bad", "{not json"))
	ok, err = s.GetJSON("bad", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.GetJSON("missing", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveAndKeys(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetItem("a", "1"))
	require.NoError(t, s.SetItem("b", "2"))

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)

	require.NoError(t, s.RemoveItem("a"))
	// removing an absent key is a no-op
	require.NoError(t, s.RemoveItem("a"))

	keys, err = s.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b"}, keys)
}

func TestClearWipesEverything(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetItem(DeviceIDKey, "device-x"))
	require.NoError(t, s.SetItem(VehiculosKey, "[]"))
	require.NoError(t, s.Clear())

	got, err := s.GetItem(DeviceIDKey)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestVehiculosCacheEnvelopeRoundTrip(t *testing.T) {
	s := newTestStore(t)

	type row struct {
		ID string `json:"id_vehiculo"`
	}

	var out []row
	_, ok, err := s.GetVehiculosCache(&out)
	require.NoError(t, err)
	assert.False(t, ok)

	stamp := time.Now().UTC().Format(time.RFC3339)
	require.NoError(t, s.SetVehiculosCache([]row{{ID: "a"}, {ID: "b"}}, stamp))

	got, ok, err := s.GetVehiculosCache(&out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stamp, got)
	assert.Equal(t, []row{{ID: "a"}, {ID: "b"}}, out)

	// envelope whose payload does not decode reads as a miss
	require.NoError(t, s.SetItem(VehiculosCacheKey, `{"data":"not-a-list","timestamp":"x"}`))
	var rows []row
	_, ok, err = s.GetVehiculosCache(&rows)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShouldSync(t *testing.T) {
	s := newTestStore(t)

	// never synced
	assert.True(t, s.ShouldSync(5))

	require.NoError(t, s.SetLastSyncTime(time.Now().UTC().Format(time.RFC3339)))
	assert.False(t, s.ShouldSync(5))

	old := time.Now().Add(-10 * time.Minute).UTC().Format(time.RFC3339)
	require.NoError(t, s.SetLastSyncTime(old))
	assert.True(t, s.ShouldSync(5))

	// unparseable timestamp counts as stale
	require.NoError(t, s.SetLastSyncTime("not-a-time"))
	assert.True(t, s.ShouldSync(5))
}
