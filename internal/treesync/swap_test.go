package treesync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klauern/pdparty/internal/util"
)

func TestParseWorkName(t *testing.T) {
	tests := map[string]struct {
		base   string
		name   string
		marker string
		ok     bool
	}{
		"stage":             {base: "examples.stage-" + stagedID, name: "examples", marker: stageMarker, ok: true},
		"parked":            {base: "abs.old-" + parkedID, name: "abs", marker: oldMarker, ok: true},
		"dotted entry":      {base: "README.txt.old-" + parkedID, name: "README.txt", marker: oldMarker, ok: true},
		"marker in name":    {base: "a.stage-b.old-" + parkedID, name: "a.stage-b", marker: oldMarker, ok: true},
		"no uuid":           {base: "examples.stage-1234", ok: false},
		"no marker":         {base: "examples-" + stagedID, ok: false},
		"empty entry name":  {base: ".old-" + parkedID, ok: false},
		"shorter than uuid": {base: "x", ok: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			n, m, ok := parseWorkName(tt.base)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, n)
			assert.Equal(t, tt.marker, m)
		})
	}
}

func TestRecoverEntry_OnlyTouchesOwnItems(t *testing.T) {
	p := newTestPair(t,
		map[string]string{"a": "new a", "a.stage-b": "new b"},
		map[string]string{
			".pdsync/a.stage-b.old-" + parkedID + "/x": "parked b",
			".pdsync/a.stage-" + stagedID + "/x":       "stale a stage",
			".pdsync/notes.txt":                        "unrelated",
		},
	)
	s := newTestSynchronizer(t, Options{})

	require.NoError(t, s.recoverEntry(p.Dest, "a"))

	tree := util.ReadTree(t, p.Dest)
	assert.NotContains(t, tree, ".pdsync/a.stage-"+stagedID+"/x")
	assert.Equal(t, "parked b", tree[".pdsync/a.stage-b.old-"+parkedID+"/x"])
	assert.Equal(t, "unrelated", tree[".pdsync/notes.txt"])
}

func TestSynchronize_DestinationNeverListed(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	p := newTestPair(t,
		map[string]string{"examples/a.pd": "new", "abs/b.pd": "b"},
		map[string]string{"examples/a.pd": "old", "mysketch/main.pd": "mine"},
	)
	// Entries can still be looked up and renamed by name, but not listed.
	require.NoError(t, os.Chmod(p.Dest, 0o300))
	t.Cleanup(func() { _ = os.Chmod(p.Dest, 0o755) })

	s := newTestSynchronizer(t, Options{})
	report, err := s.Synchronize(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"added:abs", "replaced:examples"}, actions(report))
	assert.True(t, report.Success())

	require.NoError(t, os.Chmod(p.Dest, 0o755))
	tree := util.ReadTree(t, p.Dest)
	assert.Equal(t, "new", tree["examples/a.pd"])
	assert.Equal(t, "mine", tree["mysketch/main.pd"])
	assertNoArtifacts(t, p.Dest)
}

func TestSynchronize_SkipsReservedSourceEntry(t *testing.T) {
	p := newTestPair(t, map[string]string{
		".pdsync/junk": "not managed",
		"abs/a.pd":     "a",
	}, nil)

	s := newTestSynchronizer(t, Options{})
	report, err := s.Synchronize(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"added:abs"}, actions(report))
	assertNoArtifacts(t, p.Dest)
}
