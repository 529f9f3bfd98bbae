package reconcile

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	headerColor  = color.New(color.FgHiCyan, color.Bold).SprintFunc()
	warnColor    = color.New(color.FgHiYellow).SprintFunc()
	problemColor = color.New(color.FgHiRed).SprintFunc()
	okColor      = color.New(color.FgHiGreen).SprintFunc()
)

type renderSection struct {
	title  string
	status Status
	paint  func(a ...interface{}) string
}

var renderSections = []renderSection{
	{"Remote only (need download)", StatusRemoteOnly, warnColor},
	{"Local only (need upload)", StatusLocalOnly, warnColor},
	{"Remote outdated (local is newer)", StatusStaleRemote, warnColor},
	{"Local outdated (remote is newer)", StatusStaleLocal, warnColor},
	{"Conflicts (both sides changed)", StatusConflict, problemColor},
	{"Undeclared (not in any manifest)", StatusUndeclared, problemColor},
	{"Missing (declared but absent everywhere)", StatusMissing, problemColor},
	{"Up to date", StatusInSync, okColor},
}

// Render formats the result as a human-readable table grouped by status.
func (r Result) Render() string {
	var b strings.Builder

	for _, section := range renderSections {
		states := r.Filter(section.status)

		fmt.Fprintf(&b, "%s\n", headerColor(section.title))
		if len(states) == 0 {
			fmt.Fprintf(&b, "  - no files\n")
			continue
		}

		for _, state := range states {
			fmt.Fprintf(&b, "  - %s%s\n", section.paint(state.Path), renderDetail(state))
		}
	}

	counts := r.Counts()
	fmt.Fprintf(&b, "\n%d files checked, %d in sync\n", len(r), counts[StatusInSync])

	return b.String()
}

func renderDetail(state *PathState) string {
	switch state.Status {
	case StatusLocalOnly:
		return fmt.Sprintf(" (%s)", humanize.Bytes(uint64(state.Local.Size)))
	case StatusRemoteOnly:
		return fmt.Sprintf(" (%s)", humanize.Bytes(uint64(state.Remote.Size)))
	case StatusStaleLocal, StatusStaleRemote, StatusConflict:
		return fmt.Sprintf(" (local %s, remote %s)",
			state.Local.ModTime.Format("2006-01-02 15:04:05"),
			state.Remote.ModTime.Format("2006-01-02 15:04:05"))
	case StatusUndeclared:
		return fmt.Sprintf(" (%s)", state.Underlying)
	default:
		return ""
	}
}
