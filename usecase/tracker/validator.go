package tracker

import (
	"fmt"

	"github.com/fastygo/tracker/domain"
)

// Validator holds the creation and update rules that do not depend on store state.
type Validator struct{}

func (Validator) ValidateNewTask(t domain.Task) error {
	if err := validateUnassigned(domain.KindTask, t.ID); err != nil {
		return err
	}
	return t.Validate()
}

// ValidateNewEpic additionally requires the epic to start empty and NEW.
func (Validator) ValidateNewEpic(e domain.Epic) error {
	if err := validateUnassigned(domain.KindEpic, e.ID); err != nil {
		return err
	}
	if len(e.SubtaskIDs) > 0 {
		return domain.AlreadyExists(domain.KindEpic, e.ID, "new epic must not have subtasks")
	}
	if e.Status != domain.DefaultStatus {
		return domain.AlreadyExists(domain.KindEpic, e.ID, "new epic must have the default status")
	}
	return e.Validate()
}

// ValidateNewSubtask rejects subtasks that already name an epic; the owner is
// assigned by the add call.
func (Validator) ValidateNewSubtask(s domain.Subtask) error {
	if err := validateUnassigned(domain.KindSubtask, s.ID); err != nil {
		return err
	}
	if s.EpicID != domain.UnassignedID {
		return domain.AlreadyExists(domain.KindSubtask, s.ID, fmt.Sprintf("subtask already belongs to epic %d", s.EpicID))
	}
	return s.Validate()
}

// EnsureSameEpic rejects updates that move a subtask to another epic.
func (Validator) EnsureSameEpic(stored, updated domain.Subtask) error {
	if stored.EpicID != updated.EpicID {
		return domain.Invalid(fmt.Sprintf("subtask %d belongs to epic %d and cannot move to epic %d",
			stored.ID, stored.EpicID, updated.EpicID))
	}
	return nil
}

func validateUnassigned(kind domain.Kind, id int) error {
	if id != domain.UnassignedID {
		return domain.AlreadyExists(kind, id, fmt.Sprintf("new %s must not carry an id, got %d", kind.Label(), id))
	}
	return nil
}
