package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/klauern/boxsync/internal/model"
)

// Action is the outcome of one host attempt.
type Action string

const (
	// ActionUploaded indicates the target reached the host.
	ActionUploaded Action = "uploaded"
	// ActionFailed indicates the attempt failed; see HostResult.Err.
	ActionFailed Action = "failed"
)

// HostResult is the outcome of syncing to one host.
type HostResult struct {
	Host   model.Host
	Target model.SyncTarget
	Action Action
	// Err is a *errs.TransportError, *errs.NotFoundError or
	// *errs.FileSystemError when Action is ActionFailed.
	Err      error
	Duration time.Duration
}

// Success reports whether the upload went through.
func (r HostResult) Success() bool {
	return r.Action == ActionUploaded
}

// Results holds one HostResult per host, in registry order.
type Results []HostResult

// Succeeded returns the successful attempts.
func (rs Results) Succeeded() Results {
	return rs.filter(ActionUploaded)
}

// Failed returns the failed attempts.
func (rs Results) Failed() Results {
	return rs.filter(ActionFailed)
}

func (rs Results) filter(a Action) Results {
	var out Results
	for _, r := range rs {
		if r.Action == a {
			out = append(out, r)
		}
	}
	return out
}

// Success reports whether every host succeeded.
func (rs Results) Success() bool {
	return len(rs.Failed()) == 0
}

// Err returns the first failure, or nil.
func (rs Results) Err() error {
	for _, r := range rs {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// Summary returns e.g. "synced script hello.js: 2 uploaded, 1 failed".
func (rs Results) Summary() string {
	if len(rs) == 0 {
		return "nothing synced"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "synced %s: %d uploaded", rs[0].Target.Display(), len(rs.Succeeded()))
	if n := len(rs.Failed()); n > 0 {
		fmt.Fprintf(&sb, ", %d failed", n)
	}
	return sb.String()
}
