// Package executor applies a transfer plan against the transfer service,
// fanning copies out over a bounded worker pool and recording per-path
// outcomes so one failed transfer never aborts the rest of the run.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ve-data-science/vedatool/internal/reconcile"
	"github.com/ve-data-science/vedatool/internal/transfer"
)

// DefaultWorkers bounds concurrent transfer submissions. The transfer
// service queues tasks server-side, so a small pool is enough to keep it
// saturated.
const DefaultWorkers = 4

// Endpoint pairs a transfer endpoint id with the directory on it that
// corresponds to the repository root.
type Endpoint struct {
	ID   string
	Root string
}

// Outcome is the result of one attempted transfer action.
type Outcome struct {
	Action reconcile.Action
	Err    error
}

// Report collects the outcomes of a plan execution.
type Report struct {
	Outcomes []Outcome
}

// OK reports whether every action succeeded.
func (r *Report) OK() bool {
	for _, o := range r.Outcomes {
		if o.Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the outcomes that carry an error, ordered by path.
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Executor submits plan actions to a transfer client and, on success,
// records the new in-sync observation in the journal.
type Executor struct {
	client  transfer.Client
	local   Endpoint
	remote  Endpoint
	journal *reconcile.Journal
	workers int
}

// Option configures an Executor.
type Option func(*Executor)

// WithWorkers overrides the worker pool size.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithJournal makes the executor record each successful transfer as the
// path's last-known in-sync state.
func WithJournal(journal *reconcile.Journal) Option {
	return func(e *Executor) {
		e.journal = journal
	}
}

func New(client transfer.Client, local, remote Endpoint, opts ...Option) *Executor {
	executor := &Executor{
		client:  client,
		local:   local,
		remote:  remote,
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(executor)
	}
	return executor
}

// Execute derives the plan from a reconciliation result and runs it. All
// actions are attempted even when some fail; the returned error is non-nil
// only when the executor could not run at all (for example a failed
// authentication).
func (e *Executor) Execute(ctx context.Context, result reconcile.Result) (*Report, error) {
	plan := result.Plan()
	if plan.IsEmpty() {
		return &Report{}, nil
	}

	if err := e.client.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("authenticate with transfer service: %w", err)
	}

	report := &Report{Outcomes: make([]Outcome, 0, len(plan.Actions))}
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.workers)

	for _, action := range plan.Actions {
		group.Go(func() error {
			err := e.run(groupCtx, action, result[action.Path])
			if err != nil {
				slog.Error("transfer failed", "type", action.Type, "path", action.Path, "error", err)
			} else {
				slog.Info("transfer complete", "type", action.Type, "path", action.Path, "size", action.Size)
			}

			mu.Lock()
			report.Outcomes = append(report.Outcomes, Outcome{Action: action, Err: err})
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return report, err
	}

	sort.Slice(report.Outcomes, func(i, j int) bool {
		return report.Outcomes[i].Action.Path < report.Outcomes[j].Action.Path
	})
	return report, nil
}

func (e *Executor) run(ctx context.Context, action reconcile.Action, state *reconcile.PathState) error {
	request := &transfer.CopyRequest{
		SourceEndpoint:      e.local.ID,
		DestinationEndpoint: e.remote.ID,
		SourcePath:          path.Join(e.local.Root, action.Path),
		DestinationPath:     path.Join(e.remote.Root, action.Path),
	}
	source := state.Local
	if action.Type == reconcile.ActionDownload {
		request.SourceEndpoint, request.DestinationEndpoint = request.DestinationEndpoint, request.SourceEndpoint
		request.SourcePath = path.Join(e.remote.Root, action.Path)
		request.DestinationPath = path.Join(e.local.Root, action.Path)
		source = state.Remote
	}

	if err := e.client.Copy(ctx, request); err != nil {
		return err
	}

	if e.journal != nil && source != nil {
		entry := &reconcile.JournalEntry{
			Path:    action.Path,
			MD5:     source.Checksum,
			Size:    source.Size,
			ModTime: source.ModTime,
		}
		if err := e.journal.Set(entry); err != nil {
			return fmt.Errorf("record transfer in journal: %w", err)
		}
	}
	return nil
}
