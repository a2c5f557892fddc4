package transport

import (
	"strings"

	"github.com/fastygo/tracker/domain"
)

type TaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// EpicRequest accepts subtask_ids only so the store can reject a list that
// differs from the stored one.
type EpicRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SubtaskIDs  []int  `json:"subtask_ids"`
}

type SubtaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	EpicID      int    `json:"epic_id"`
}

// ParseStatus converts an optional status field. A blank value yields
// fallback.
func ParseStatus(value string, fallback domain.Status) (domain.Status, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return domain.ParseStatus(value)
}

// Task builds the domain task with the given id.
func (r TaskRequest) Task(id int, fallback domain.Status) (domain.Task, error) {
	status, err := ParseStatus(r.Status, fallback)
	if err != nil {
		return domain.Task{}, err
	}
	return domain.Task{Base: domain.Base{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Status:      status,
	}}, nil
}

func (r EpicRequest) Epic(id int) domain.Epic {
	return domain.Epic{
		Base: domain.Base{
			ID:          id,
			Name:        r.Name,
			Description: r.Description,
			Status:      domain.DefaultStatus,
		},
		SubtaskIDs: r.SubtaskIDs,
	}
}

// Subtask builds the domain subtask. A zero epic_id falls back to epicID.
func (r SubtaskRequest) Subtask(id, epicID int, fallback domain.Status) (domain.Subtask, error) {
	status, err := ParseStatus(r.Status, fallback)
	if err != nil {
		return domain.Subtask{}, err
	}
	if r.EpicID != domain.UnassignedID {
		epicID = r.EpicID
	}
	return domain.Subtask{
		Base: domain.Base{
			ID:          id,
			Name:        r.Name,
			Description: r.Description,
			Status:      status,
		},
		EpicID: epicID,
	}, nil
}
