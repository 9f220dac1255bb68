package snapshot_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titguild/guildboard/internal/modules/companies"
	"github.com/titguild/guildboard/internal/modules/snapshot"
	guildtest "github.com/titguild/guildboard/internal/testing"
)

func newTestArchive(t *testing.T) (*snapshot.Archive, func()) {
	t.Helper()

	db, cleanup := guildtest.NewTestDB(t, "snapshots")
	archive := snapshot.NewArchive(db.Conn(), zerolog.Nop())
	require.NoError(t, archive.InitSchema())
	return archive, cleanup
}

func TestArchiveRecordAndLoad(t *testing.T) {
	archive, cleanup := newTestArchive(t)
	defer cleanup()

	ds := guildtest.NewDatasetFixture()
	token, err := snapshot.Fingerprint(ds)
	require.NoError(t, err)

	require.NoError(t, archive.Record(ds, token))

	loaded, err := archive.Load(token)
	require.NoError(t, err)
	require.Len(t, loaded, len(ds))
	assert.Equal(t, ds[0].Name, loaded[0].Name)
	assert.Equal(t, ds[0].Goods, loaded[0].Goods)
}

func TestArchiveLoadUnknownToken(t *testing.T) {
	archive, cleanup := newTestArchive(t)
	defer cleanup()

	loaded, err := archive.Load(snapshot.Token("v1:deadbeef"))
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestArchiveSkipsConsecutiveDuplicates(t *testing.T) {
	archive, cleanup := newTestArchive(t)
	defer cleanup()

	ds := guildtest.NewDatasetFixture()
	token, err := snapshot.Fingerprint(ds)
	require.NoError(t, err)

	require.NoError(t, archive.Record(ds, token))
	require.NoError(t, archive.Record(ds, token))

	other := companies.Dataset{{Name: "Other"}}
	otherToken, err := snapshot.Fingerprint(other)
	require.NoError(t, err)
	require.NoError(t, archive.Record(other, otherToken))

	// Pruning to one entry must leave the latest state, proving the
	// duplicate record never landed as a second row.
	require.NoError(t, archive.Prune(1))

	loaded, err := archive.Load(token)
	require.NoError(t, err)
	assert.Nil(t, loaded, "earlier state pruned away")

	latest, err := archive.Load(otherToken)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "Other", latest[0].Name)
}

func TestArchivePruneKeepsAtLeastOne(t *testing.T) {
	archive, cleanup := newTestArchive(t)
	defer cleanup()

	ds := guildtest.NewDatasetFixture()
	token, err := snapshot.Fingerprint(ds)
	require.NoError(t, err)
	require.NoError(t, archive.Record(ds, token))

	require.NoError(t, archive.Prune(0))

	loaded, err := archive.Load(token)
	require.NoError(t, err)
	assert.NotNil(t, loaded)
}
