// Package vcerrors defines the sentinel error kinds raised by the
// versioning engine, wrapped in the teacher's pkg/errors status-code
// convention so callers can either do a plain errors.Is check against a
// sentinel or ask for its StatusCode via errors.StatusOf.
package vcerrors

import (
	"errors"

	vcstatus "github.com/mongovc/mongovc/pkg/errors"
)

// Sentinel errors for every illegal-state or precondition failure the
// engine can report. Use errors.Is against these, never string matching.
var (
	// ErrNotInitialized is returned when an operation requires init to
	// have run first.
	ErrNotInitialized = vcstatus.FailedPrecond("collection is not initialized").WithCode("NotInitialized")

	// ErrAlreadyInitialized is returned by init on an already-tracked
	// collection, which init leaves unmodified.
	ErrAlreadyInitialized = vcstatus.AlreadyExists("collection is already initialized").WithCode("AlreadyInitialized")

	// ErrInvalidVersion is returned when a referenced (n, branch) pair
	// does not exist in the log tree.
	ErrInvalidVersion = vcstatus.InvalidArgument("invalid version").WithCode("InvalidVersion")

	// ErrBranchExists is returned by create_branch when the name is taken.
	ErrBranchExists = vcstatus.AlreadyExists("branch already exists").WithCode("BranchExists")

	// ErrUnknownBranch is returned when a named branch has no branch record.
	ErrUnknownBranch = vcstatus.NotFound("unknown branch").WithCode("UnknownBranch")

	// ErrUncommittedChanges is returned by checkout when changed is true
	// and neither stash nor discard_changes was used first.
	ErrUncommittedChanges = vcstatus.FailedPrecond("uncommitted changes present").WithCode("UncommittedChanges")

	// ErrDetachedWithoutBranch is returned by register when detached with
	// changes and no explicit branch was given.
	ErrDetachedWithoutBranch = vcstatus.FailedPrecond("detached head requires an explicit branch to register").WithCode("DetachedWithoutBranch")

	// ErrNonFastForward is returned by push when the remote tip is not an
	// ancestor of the local tip on the same branch.
	ErrNonFastForward = vcstatus.FailedPrecond("push rejected: not a fast-forward").WithCode("NonFastForward")

	// ErrAutoMergeFailed is returned by pull when the three-way merge
	// produces one or more conflicts.
	ErrAutoMergeFailed = vcstatus.FailedPrecond("automatic merge produced conflicts").WithCode("AutoMergeFailed")

	// ErrUnresolvedConflicts is returned by register/push while
	// has_conflicts is true.
	ErrUnresolvedConflicts = vcstatus.FailedPrecond("unresolved conflicts present").WithCode("UnresolvedConflicts")

	// ErrListenerStalled is returned when a fence times out waiting for
	// the change listener to catch up to its sentinel.
	ErrListenerStalled = vcstatus.Unavailable("change listener did not catch up to fence sentinel in time").WithCode("ListenerStalled")

	// ErrLockTimeout is returned when the cross-process lock could not be
	// acquired within the configured bound.
	ErrLockTimeout = vcstatus.Unavailable("timed out acquiring collection lock").WithCode("LockTimeout")

	// ErrLockLost is returned when a held lock's record no longer shows
	// this process as holder (e.g. it was force-released externally).
	ErrLockLost = vcstatus.Internal("lock lost while held").WithCode("LockLost")

	// ErrDatabaseError wraps otherwise-unclassified transport/transaction
	// failures from the underlying database driver.
	ErrDatabaseError = vcstatus.Unavailable("database error").WithCode("DatabaseError")
)

// Is reports whether err matches target per errors.Is semantics; exported
// for call sites that prefer vcerrors.Is(err, vcerrors.ErrBranchExists)
// over importing the standard errors package for a single check.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
