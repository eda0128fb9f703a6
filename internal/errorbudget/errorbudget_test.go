package errorbudget

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAccumulatesPerHost(t *testing.T) {
	tr := New()
	defer tr.Close()

	tr.Record("host-a.example.com", KindConnect, 0)
	tr.Record("host-a.example.com", KindSchemeProbe, 0)
	tr.Record("host-b.example.com", KindVhostTransport, 403)

	assert.True(t, tr.HasErrors("host-a.example.com"))
	assert.False(t, tr.HasErrors("unseen.example.com"))

	hs := tr.HostStats("host-a.example.com")
	require.NotNil(t, hs)
	assert.Equal(t, uint32(2), hs.Count)
	assert.Equal(t, uint32(1), hs.ByKind[KindConnect])
	assert.Equal(t, uint32(1), hs.ByKind[KindSchemeProbe])

	hsB := tr.HostStats("host-b.example.com")
	require.NotNil(t, hsB)
	assert.Equal(t, 403, hsB.LastStatus)

	snap := tr.Snapshot()
	assert.Equal(t, uint64(3), snap.TotalErrors)
	assert.Equal(t, uint64(2), snap.UniqueHosts)
}

func TestHostStatsNilForUnknownHost(t *testing.T) {
	tr := New()
	defer tr.Close()
	assert.Nil(t, tr.HostStats("never-seen.example.com"))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "error-budget.cache")

	tr := New()
	tr.Record("persisted.example.com", KindConnect, 0)
	require.NoError(t, tr.Save(path))
	tr.Close()

	loaded, err := Load(path)
	require.NoError(t, err)
	defer loaded.Close()

	assert.True(t, loaded.HasErrors("persisted.example.com"))
}

func TestClassifyPreservesNil(t *testing.T) {
	assert.Nil(t, Classify(KindConnect, nil))
}

func TestClassifyWrapsError(t *testing.T) {
	base := errors.New("connection refused")
	wrapped := Classify(KindConnect, base)
	require.Error(t, wrapped)
	assert.Contains(t, wrapped.Error(), "connection refused")
}
