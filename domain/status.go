package domain

import (
	"fmt"
	"strings"
)

// Status is the progress state shared by every entity kind.
type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// DefaultStatus is the status of freshly created entities.
const DefaultStatus = StatusNew

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", Invalid(fmt.Sprintf("unknown status %q", value))
	}
	return status, nil
}

// DeriveEpicStatus computes an epic's status from the statuses of its subtasks.
// An empty set or an all-NEW set is NEW, an all-DONE set is DONE, and anything
// mixed or containing IN_PROGRESS is IN_PROGRESS.
func DeriveEpicStatus(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusNew
	}
	distinct := make(map[Status]struct{}, 3)
	for _, s := range statuses {
		distinct[s] = struct{}{}
	}
	if _, ok := distinct[StatusInProgress]; ok || len(distinct) > 1 {
		return StatusInProgress
	}
	if _, ok := distinct[StatusDone]; ok {
		return StatusDone
	}
	return StatusNew
}
