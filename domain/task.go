package domain

import (
	"slices"
	"strings"
)

// UnassignedID marks an entity that has not been stored yet. Generated ids start at 1.
const UnassignedID = 0

// Kind names one of the three entity collections. The value doubles as the
// type tag of the snapshot format.
type Kind string

const (
	KindTask    Kind = "Task"
	KindEpic    Kind = "Epic"
	KindSubtask Kind = "Subtask"
)

// Label returns the lower-case name used in messages.
func (k Kind) Label() string {
	return strings.ToLower(string(k))
}

// ParseKind maps a type tag back to its Kind.
func ParseKind(tag string) (Kind, bool) {
	switch Kind(tag) {
	case KindTask, KindEpic, KindSubtask:
		return Kind(tag), true
	default:
		return "", false
	}
}

// Entity is implemented by Task, Epic and Subtask.
type Entity interface {
	Kind() Kind
	Identity() int
	Details() Base
}

// Base holds the fields every entity kind carries.
type Base struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

func (b Base) Identity() int {
	return b.ID
}

func (b Base) Details() Base {
	return b
}

// Validate checks the fields every persisted entity must satisfy.
func (b Base) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrBlankName
	}
	if strings.TrimSpace(b.Description) == "" {
		return ErrBlankDescription
	}
	if !b.Status.Valid() {
		return Invalid("unknown status " + string(b.Status))
	}
	return nil
}

// Task is a standalone work item whose status is set by the caller.
type Task struct {
	Base
}

// NewTask builds an unsaved task.
func NewTask(name, description string, status Status) (Task, error) {
	t := Task{Base: newBase(name, description, status)}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

func (Task) Kind() Kind { return KindTask }

// WithStatus returns a copy of the task carrying the given status.
func (t Task) WithStatus(status Status) Task {
	t.Status = status
	return t
}

// Epic groups subtasks. Its status is always derived from them.
type Epic struct {
	Base
	SubtaskIDs []int `json:"subtask_ids"`
}

// NewEpic builds an unsaved, empty epic.
func NewEpic(name, description string) (Epic, error) {
	e := Epic{Base: newBase(name, description, DefaultStatus)}
	if err := e.Validate(); err != nil {
		return Epic{}, err
	}
	return e, nil
}

func (Epic) Kind() Kind { return KindEpic }

// Clone returns a copy that shares no memory with e.
func (e Epic) Clone() Epic {
	e.SubtaskIDs = slices.Clone(e.SubtaskIDs)
	if e.SubtaskIDs == nil {
		e.SubtaskIDs = []int{}
	}
	return e
}

// HasSubtask reports whether id is listed by the epic.
func (e Epic) HasSubtask(id int) bool {
	return slices.Contains(e.SubtaskIDs, id)
}

// Subtask belongs to exactly one epic.
type Subtask struct {
	Base
	EpicID int `json:"epic_id"`
}

// NewSubtask builds an unsaved subtask. The owning epic is assigned when the
// subtask is added to the store.
func NewSubtask(name, description string, status Status) (Subtask, error) {
	s := Subtask{Base: newBase(name, description, status)}
	if err := s.Validate(); err != nil {
		return Subtask{}, err
	}
	return s, nil
}

func (Subtask) Kind() Kind { return KindSubtask }

// WithStatus returns a copy of the subtask carrying the given status.
func (s Subtask) WithStatus(status Status) Subtask {
	s.Status = status
	return s
}

func newBase(name, description string, status Status) Base {
	if status == "" {
		status = DefaultStatus
	}
	return Base{
		ID:          UnassignedID,
		Name:        name,
		Description: description,
		Status:      status,
	}
}
