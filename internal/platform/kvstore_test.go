package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	require.NoError(t, s.Set("k", "v"))
	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Delete("k"))
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("mirror", `[{"id":"a1"}]`))
	require.NoError(t, s.Set("other", "x"))
	require.NoError(t, s.Delete("other"))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)

	v, ok := reopened.Get("mirror")
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a1"}]`, v)

	_, ok = reopened.Get("other")
	assert.False(t, ok)
}

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "never-written.json"))
	require.NoError(t, err)
	_, ok := s.Get("anything")
	assert.False(t, ok)
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	_, ok := s.Get("anything")
	assert.False(t, ok)

	// Writing repairs the file
	require.NoError(t, s.Set("k", "v"))
	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	v, ok := reopened.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestFileStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "store.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", "v"))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFakeClock_AdvanceFiresInOrder(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))

	var order []string
	clock.AfterFunc(20, func() { order = append(order, "b") })
	clock.AfterFunc(10, func() { order = append(order, "a") })
	clock.AfterFunc(30, func() { order = append(order, "c") })

	clock.Advance(25)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, clock.PendingTimers())

	clock.Advance(5)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestFakeClock_StoppedTimerNeverFires(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))

	fired := false
	timer := clock.AfterFunc(10, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports already stopped")

	clock.Advance(100)
	assert.False(t, fired)
	assert.Zero(t, clock.PendingTimers())
}

func TestFakeClock_CallbackMaySchedule(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))

	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			clock.AfterFunc(10, tick)
		}
	}
	clock.AfterFunc(10, tick)

	// Chained timers that come due within the window all fire
	clock.Advance(30)
	assert.Equal(t, 3, count)
}
