package tracker

import (
	"fmt"
	"maps"
	"slices"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/history"
)

// state is everything a mutation may touch. It is cloned before a persisted
// mutation so a failed save can be undone.
type state struct {
	tasks    map[int]domain.Task
	epics    map[int]domain.Epic
	subtasks map[int]domain.Subtask
	nextID   int
	history  *history.Tracker
}

func newState() *state {
	return &state{
		tasks:    make(map[int]domain.Task),
		epics:    make(map[int]domain.Epic),
		subtasks: make(map[int]domain.Subtask),
		nextID:   1,
		history:  history.New(),
	}
}

func (s *state) clone() *state {
	c := &state{
		tasks:    maps.Clone(s.tasks),
		epics:    make(map[int]domain.Epic, len(s.epics)),
		subtasks: maps.Clone(s.subtasks),
		nextID:   s.nextID,
		history:  s.history.Clone(),
	}
	for id, e := range s.epics {
		c.epics[id] = e.Clone()
	}
	return c
}

func (s *state) generateID() int {
	id := s.nextID
	s.nextID++
	return id
}

// snapshot lists tasks, then epics, then subtasks, each ordered by id.
func (s *state) snapshot() []domain.Entity {
	out := make([]domain.Entity, 0, len(s.tasks)+len(s.epics)+len(s.subtasks))
	for _, t := range sortedValues(s.tasks) {
		out = append(out, t)
	}
	for _, e := range sortedValues(s.epics) {
		out = append(out, e.Clone())
	}
	for _, st := range sortedValues(s.subtasks) {
		out = append(out, st)
	}
	return out
}

// epicStatus derives the status of an epic from the subtasks it lists.
func (s *state) epicStatus(epic domain.Epic) (domain.Status, error) {
	statuses := make([]domain.Status, 0, len(epic.SubtaskIDs))
	for _, id := range epic.SubtaskIDs {
		sub, ok := s.subtasks[id]
		if !ok {
			return "", domain.Internal(fmt.Sprintf("epic %d lists missing subtask %d", epic.ID, id))
		}
		statuses = append(statuses, sub.Status)
	}
	return domain.DeriveEpicStatus(statuses), nil
}

// storeEpic recomputes the epic's status and writes it back.
func (s *state) storeEpic(epic domain.Epic) (domain.Epic, error) {
	status, err := s.epicStatus(epic)
	if err != nil {
		return domain.Epic{}, err
	}
	epic = epic.Clone()
	epic.Status = status
	s.epics[epic.ID] = epic
	return epic, nil
}

// restore fills an empty state from a loaded snapshot, checking every
// invariant a running store maintains.
func (s *state) restore(entities []domain.Entity) error {
	maxID := 0
	seen := make(map[int]struct{}, len(entities))
	for _, entity := range entities {
		id := entity.Identity()
		if id <= domain.UnassignedID {
			return domain.Persistence(fmt.Sprintf("%s has invalid id %d", entity.Kind().Label(), id), nil)
		}
		if _, dup := seen[id]; dup {
			return domain.Persistence(fmt.Sprintf("duplicate id %d", id), nil)
		}
		seen[id] = struct{}{}
		if err := entity.Details().Validate(); err != nil {
			return domain.Persistence(fmt.Sprintf("%s %d", entity.Kind().Label(), id), err)
		}

		switch e := entity.(type) {
		case domain.Task:
			s.tasks[id] = e
		case domain.Epic:
			s.epics[id] = e.Clone()
		case domain.Subtask:
			s.subtasks[id] = e
		default:
			return domain.Persistence(fmt.Sprintf("unsupported entity %T", entity), nil)
		}
		maxID = max(maxID, id)
	}

	for id, sub := range s.subtasks {
		epic, ok := s.epics[sub.EpicID]
		if !ok {
			return domain.Persistence(fmt.Sprintf("subtask %d references missing epic %d", id, sub.EpicID), nil)
		}
		if !epic.HasSubtask(id) {
			return domain.Persistence(fmt.Sprintf("epic %d does not list subtask %d", sub.EpicID, id), nil)
		}
	}
	for id, epic := range s.epics {
		listed := make(map[int]struct{}, len(epic.SubtaskIDs))
		for _, subID := range epic.SubtaskIDs {
			if _, dup := listed[subID]; dup {
				return domain.Persistence(fmt.Sprintf("epic %d lists subtask %d twice", id, subID), nil)
			}
			listed[subID] = struct{}{}
			sub, ok := s.subtasks[subID]
			if !ok || sub.EpicID != id {
				return domain.Persistence(fmt.Sprintf("epic %d lists subtask %d it does not own", id, subID), nil)
			}
		}
		if _, err := s.storeEpic(epic); err != nil {
			return err
		}
	}

	s.nextID = maxID + 1
	return nil
}

func sortedValues[V any](m map[int]V) []V {
	out := make([]V, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[id])
	}
	return out
}
