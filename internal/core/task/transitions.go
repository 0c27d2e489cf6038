package task

// allowedNext returns the statuses an ordinary progress update may move a
// task to from the given status. A same-status entry means a progress note.
// COMPLETED only leaves through Reopen; CANCELLED never leaves.
func allowedNext(from Status) []Status {
	switch from {
	case StatusPending:
		return []Status{StatusPending, StatusInProgress, StatusBlocked, StatusCancelled}
	case StatusInProgress:
		return []Status{StatusInProgress, StatusCompleted, StatusBlocked, StatusCancelled}
	case StatusBlocked:
		return []Status{StatusBlocked, StatusPending, StatusInProgress, StatusCancelled}
	case StatusCompleted:
		return []Status{StatusCompleted}
	case StatusCancelled:
		return nil
	default:
		return nil
	}
}

// CanTransition reports whether a progress update may move a task from one
// status to another.
func CanTransition(from, to Status) bool {
	for _, s := range allowedNext(from) {
		if s == to {
			return true
		}
	}
	return false
}
