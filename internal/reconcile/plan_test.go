package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ve-data-science/vedatool/internal/scan"
)

func TestPlan_Directions(t *testing.T) {
	declared := []string{"up.csv", "down.csv", "push.csv", "pull.csv", "same.csv", "clash.csv", "gone.csv"}
	local := []*scan.Entry{
		localEntry("up.csv", 10, t1, ""),
		localEntry("push.csv", 10, t2, ""),
		localEntry("pull.csv", 10, t0, ""),
		localEntry("same.csv", 4, t1, ""),
		localEntry("clash.csv", 7, t1, ""),
	}
	remote := []*scan.Entry{
		remoteEntry("down.csv", 20, t1),
		remoteEntry("push.csv", 12, t0),
		remoteEntry("pull.csv", 12, t2),
		remoteEntry("same.csv", 4, t1),
		remoteEntry("clash.csv", 8, t1),
	}

	plan := Reconcile(declared, local, remote, Options{}).Plan()

	byPath := make(map[string]ActionType, len(plan.Actions))
	for _, action := range plan.Actions {
		byPath[action.Path] = action.Type
	}

	assert.Equal(t, map[string]ActionType{
		"up.csv":   ActionUpload,
		"push.csv": ActionUpload,
		"down.csv": ActionDownload,
		"pull.csv": ActionDownload,
	}, byPath, "only the four unambiguous statuses act, and never against the newer side")
}

func TestPlan_OrderedByPath(t *testing.T) {
	declared := []string{"c.csv", "a.csv", "b.csv"}
	local := []*scan.Entry{
		localEntry("c.csv", 1, t1, ""),
		localEntry("a.csv", 1, t1, ""),
		localEntry("b.csv", 1, t1, ""),
	}

	plan := Reconcile(declared, local, nil, Options{}).Plan()

	require.Len(t, plan.Actions, 3)
	assert.Equal(t, "a.csv", plan.Actions[0].Path)
	assert.Equal(t, "b.csv", plan.Actions[1].Path)
	assert.Equal(t, "c.csv", plan.Actions[2].Path)
}

func TestPlan_EmptyWhenClean(t *testing.T) {
	declared := []string{"a.csv"}
	local := []*scan.Entry{localEntry("a.csv", 1, t1, "")}
	remote := []*scan.Entry{remoteEntry("a.csv", 1, t1)}

	result := Reconcile(declared, local, remote, Options{})
	assert.True(t, result.Clean())
	assert.True(t, result.Plan().IsEmpty())
}
