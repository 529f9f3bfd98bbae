package executor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ve-data-science/vedatool/internal/reconcile"
	"github.com/ve-data-science/vedatool/internal/scan"
	"github.com/ve-data-science/vedatool/internal/transfer"
)

var (
	localEP  = Endpoint{ID: "ep-local", Root: "/home/user/repo"}
	remoteEP = Endpoint{ID: "ep-remote", Root: "/projects/ve"}

	baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func entry(path string, size int64, origin scan.Origin) *scan.Entry {
	return &scan.Entry{Path: path, Size: size, ModTime: baseTime, Origin: origin}
}

func TestExecute_UploadThenInSync(t *testing.T) {
	client := transfer.NewMemory()
	client.AddFile(localEP.ID, "/home/user/repo/data/a.csv", 10, baseTime)

	local := []*scan.Entry{entry("data/a.csv", 10, scan.OriginLocal)}
	declared := []string{"data/a.csv"}

	result := reconcile.Reconcile(declared, local, nil, reconcile.Options{})
	require.Equal(t, reconcile.StatusLocalOnly, result["data/a.csv"].Status)

	report, err := New(client, localEP, remoteEP).Execute(context.Background(), result)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.True(t, client.HasFile(remoteEP.ID, "/projects/ve/data/a.csv"))

	// a second reconciliation over the converged stores plans nothing
	remote := []*scan.Entry{entry("data/a.csv", 10, scan.OriginRemote)}
	after := reconcile.Reconcile(declared, local, remote, reconcile.Options{})
	assert.Equal(t, reconcile.StatusInSync, after["data/a.csv"].Status)
	assert.True(t, after.Plan().IsEmpty())
}

func TestExecute_DownloadUsesRemoteAsSource(t *testing.T) {
	client := transfer.NewMemory()
	client.AddFile(remoteEP.ID, "/projects/ve/data/b.csv", 20, baseTime)

	remote := []*scan.Entry{entry("data/b.csv", 20, scan.OriginRemote)}
	result := reconcile.Reconcile([]string{"data/b.csv"}, nil, remote, reconcile.Options{})

	report, err := New(client, localEP, remoteEP).Execute(context.Background(), result)
	require.NoError(t, err)
	assert.True(t, report.OK())

	require.Len(t, client.Copies, 1)
	request := client.Copies[0]
	assert.Equal(t, remoteEP.ID, request.SourceEndpoint)
	assert.Equal(t, localEP.ID, request.DestinationEndpoint)
	assert.Equal(t, "/projects/ve/data/b.csv", request.SourcePath)
	assert.Equal(t, "/home/user/repo/data/b.csv", request.DestinationPath)
}

func TestExecute_PartialFailureKeepsGoing(t *testing.T) {
	client := transfer.NewMemory()
	// only one of the two planned uploads has its source registered
	client.AddFile(localEP.ID, "/home/user/repo/ok.csv", 1, baseTime)

	local := []*scan.Entry{
		entry("ok.csv", 1, scan.OriginLocal),
		entry("broken.csv", 2, scan.OriginLocal),
	}
	result := reconcile.Reconcile([]string{"ok.csv", "broken.csv"}, local, nil, reconcile.Options{})

	report, err := New(client, localEP, remoteEP).Execute(context.Background(), result)
	require.NoError(t, err)

	assert.False(t, report.OK())
	require.Len(t, report.Outcomes, 2)
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "broken.csv", failed[0].Action.Path)
	assert.ErrorIs(t, failed[0].Err, transfer.ErrRemoteUnavailable)
	assert.True(t, client.HasFile(remoteEP.ID, "/projects/ve/ok.csv"))
}

func TestExecute_AuthFailureAbortsRun(t *testing.T) {
	client := transfer.NewMemory()
	client.AuthErr = transfer.ErrRemoteAuth
	client.AddFile(localEP.ID, "/home/user/repo/a.csv", 1, baseTime)

	local := []*scan.Entry{entry("a.csv", 1, scan.OriginLocal)}
	result := reconcile.Reconcile([]string{"a.csv"}, local, nil, reconcile.Options{})

	_, err := New(client, localEP, remoteEP).Execute(context.Background(), result)
	assert.ErrorIs(t, err, transfer.ErrRemoteAuth)
	assert.Empty(t, client.Copies)
}

func TestExecute_EmptyPlanSkipsAuth(t *testing.T) {
	client := transfer.NewMemory()
	client.AuthErr = errors.New("should not be called")

	report, err := New(client, localEP, remoteEP).Execute(context.Background(), reconcile.Result{})
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Empty(t, report.Outcomes)
}

func TestExecute_RecordsJournalOnSuccess(t *testing.T) {
	journal := reconcile.NewJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, journal.Open())
	defer journal.Close()

	client := transfer.NewMemory()
	client.AddFile(localEP.ID, "/home/user/repo/a.csv", 10, baseTime)

	local := []*scan.Entry{entry("a.csv", 10, scan.OriginLocal)}
	result := reconcile.Reconcile([]string{"a.csv"}, local, nil, reconcile.Options{})

	report, err := New(client, localEP, remoteEP, WithJournal(journal), WithWorkers(1)).
		Execute(context.Background(), result)
	require.NoError(t, err)
	require.True(t, report.OK())

	recorded, err := journal.Get("a.csv")
	require.NoError(t, err)
	require.NotNil(t, recorded)
	assert.Equal(t, int64(10), recorded.Size)
	assert.True(t, baseTime.Equal(recorded.ModTime))
}
