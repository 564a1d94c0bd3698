package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klauern/pdparty/internal/registry"
	"github.com/klauern/pdparty/internal/treesync"
)

func sampleReport() *treesync.Report {
	start := time.Now()
	return &treesync.Report{
		Tree: "lib",
		Items: []treesync.Item{
			{Name: "abs", Action: treesync.ActionAdded, Bytes: 100},
			{Name: "examples", Action: treesync.ActionReplaced, Bytes: 50},
			{Name: "rj", Action: treesync.ActionUnchanged},
		},
		Started:  start,
		Finished: start.Add(200 * time.Millisecond),
	}
}

func TestSyncFinished(t *testing.T) {
	m := New()
	m.SyncFinished(sampleReport())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncEntries.WithLabelValues("lib", "added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncEntries.WithLabelValues("lib", "replaced")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncEntries.WithLabelValues("lib", "unchanged")))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.SyncBytes.WithLabelValues("lib")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncRuns.WithLabelValues("lib", "complete")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SyncDuration))
}

func TestSyncFinished_Outcomes(t *testing.T) {
	m := New()

	partial := sampleReport()
	partial.Items = append(partial.Items, treesync.Item{Name: "bad", Action: treesync.ActionFailed, Err: errors.New("denied")})
	m.SyncFinished(partial)

	incomplete := sampleReport()
	incomplete.Incomplete = true
	m.SyncFinished(incomplete)

	dry := sampleReport()
	dry.DryRun = true
	m.SyncFinished(dry)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncRuns.WithLabelValues("lib", "partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncRuns.WithLabelValues("lib", "incomplete")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SyncRuns.WithLabelValues("lib", "complete")), "dry runs are not recorded")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SyncEntries.WithLabelValues("lib", "added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncEntries.WithLabelValues("lib", "failed")))
}

func TestStateChanged(t *testing.T) {
	m := New()
	m.StateChanged(registry.OSC, registry.StateUninitialized, registry.StateActive)
	m.StateChanged(registry.OSC, registry.StateActive, registry.StateSuspended)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubsystemState.WithLabelValues("osc", "suspended")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SubsystemState.WithLabelValues("osc", "active")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubsystemTransitions.WithLabelValues("osc", "active")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubsystemTransitions.WithLabelValues("osc", "suspended")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.SyncFinished(sampleReport())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `pdparty_sync_entries_total{action="added",tree="lib"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	m := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, addr) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + addr + "/metrics")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "process_"), "expected process collector output")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
