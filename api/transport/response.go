package transport

import (
	"encoding/json"

	"github.com/fastygo/tracker/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// EntityResponse is a kind-tagged view of any entity, used where kinds mix.
type EntityResponse struct {
	Kind        domain.Kind   `json:"kind"`
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      domain.Status `json:"status"`
	SubtaskIDs  []int         `json:"subtask_ids,omitempty"`
	EpicID      int           `json:"epic_id,omitempty"`
}

func NewEntityResponse(entity domain.Entity) EntityResponse {
	base := entity.Details()
	resp := EntityResponse{
		Kind:        entity.Kind(),
		ID:          base.ID,
		Name:        base.Name,
		Description: base.Description,
		Status:      base.Status,
	}
	switch e := entity.(type) {
	case domain.Epic:
		resp.SubtaskIDs = e.SubtaskIDs
	case domain.Subtask:
		resp.EpicID = e.EpicID
	}
	return resp
}

func NewEntityResponses(entities []domain.Entity) []EntityResponse {
	out := make([]EntityResponse, 0, len(entities))
	for _, e := range entities {
		out = append(out, NewEntityResponse(e))
	}
	return out
}
