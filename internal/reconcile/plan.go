package reconcile

// ActionType is the direction of one transfer action.
type ActionType string

const (
	ActionUpload   ActionType = "upload"
	ActionDownload ActionType = "download"
)

// Action is one planned copy, always moving from the newer side to the
// older side.
type Action struct {
	Type ActionType
	Path string
	Size int64
}

// Plan is the ordered sequence of actions derived from the unambiguous
// statuses. Conflicts and undeclared paths never generate an action; they
// are surfaced for human review instead.
type Plan struct {
	Actions []Action
}

func (p *Plan) IsEmpty() bool {
	return len(p.Actions) == 0
}

// Plan derives the transfer plan from a reconciliation result, ordered by
// path.
func (r Result) Plan() *Plan {
	plan := &Plan{}

	for _, path := range r.Paths() {
		state := r[path]
		switch state.Status {
		case StatusLocalOnly, StatusStaleRemote:
			plan.Actions = append(plan.Actions, Action{
				Type: ActionUpload,
				Path: path,
				Size: state.Local.Size,
			})
		case StatusRemoteOnly, StatusStaleLocal:
			plan.Actions = append(plan.Actions, Action{
				Type: ActionDownload,
				Path: path,
				Size: state.Remote.Size,
			})
		}
	}

	return plan
}
