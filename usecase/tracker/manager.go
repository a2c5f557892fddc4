// Package tracker is the entity store: tasks, epics and subtasks, their
// referential integrity, derived epic statuses and the view history.
package tracker

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

// Stats summarizes the store contents.
type Stats struct {
	Tasks    int `json:"tasks"`
	Epics    int `json:"epics"`
	Subtasks int `json:"subtasks"`
	History  int `json:"history"`
}

// Manager owns the three collections. All operations are serialized by a
// single lock because invariants span collections; reads share it.
type Manager struct {
	mu        sync.RWMutex
	st        *state
	repo      repository.SnapshotRepository
	validator Validator
	logger    *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithRepository saves the full snapshot to repo after every mutation.
func WithRepository(repo repository.SnapshotRepository) Option {
	return func(m *Manager) {
		m.repo = repo
	}
}

// New creates an empty store.
func New(logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		st:     newState(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load builds a store from the snapshot held by repo and keeps saving to it.
// The id generator continues after the largest loaded id.
func Load(ctx context.Context, repo repository.SnapshotRepository, logger *zap.Logger) (*Manager, error) {
	entities, err := repo.Load(ctx)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodePersistence) {
			return nil, err
		}
		return nil, domain.Persistence("load snapshot", err)
	}

	m := New(logger, WithRepository(repo))
	if err := m.st.restore(entities); err != nil {
		return nil, err
	}
	m.logger.Info("snapshot loaded",
		zap.Int("entities", len(entities)),
		zap.Int("next_id", m.st.nextID))
	return m, nil
}

// Tasks returns every task ordered by id.
func (m *Manager) Tasks() []domain.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.st.tasks)
}

// Epics returns every epic ordered by id.
func (m *Manager) Epics() []domain.Epic {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := sortedValues(m.st.epics)
	for i := range out {
		out[i] = out[i].Clone()
	}
	return out
}

// Subtasks returns every subtask ordered by id.
func (m *Manager) Subtasks() []domain.Subtask {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.st.subtasks)
}

func (m *Manager) Task(id int) (domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.task(id)
}

func (m *Manager) Epic(id int) (domain.Epic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.epic(id)
}

func (m *Manager) Subtask(id int) (domain.Subtask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.subtask(id)
}

// ViewTask returns the task and records the access in the history.
func (m *Manager) ViewTask(id int) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.st.task(id)
	if err != nil {
		return domain.Task{}, err
	}
	m.st.history.Add(t)
	return t, nil
}

// ViewEpic returns the epic and records the access in the history.
func (m *Manager) ViewEpic(id int) (domain.Epic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.st.epic(id)
	if err != nil {
		return domain.Epic{}, err
	}
	m.st.history.Add(e.Clone())
	return e, nil
}

// ViewSubtask returns the subtask and records the access in the history.
func (m *Manager) ViewSubtask(id int) (domain.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.st.subtask(id)
	if err != nil {
		return domain.Subtask{}, err
	}
	m.st.history.Add(s)
	return s, nil
}

// History returns viewed entities, least recently viewed first.
func (m *Manager) History() []domain.Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.history.Entries()
}

// EpicSubtasks resolves the epic's subtask list in order. A listed subtask
// that is missing is an internal error.
func (m *Manager) EpicSubtasks(id int) ([]domain.Subtask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	epic, err := m.st.epic(id)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Subtask, 0, len(epic.SubtaskIDs))
	for _, subID := range epic.SubtaskIDs {
		sub, ok := m.st.subtasks[subID]
		if !ok {
			return nil, domain.Internal(fmt.Sprintf("epic %d lists missing subtask %d", id, subID))
		}
		out = append(out, sub)
	}
	return out, nil
}

// Snapshot returns tasks, epics and subtasks in codec order.
func (m *Manager) Snapshot() []domain.Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.snapshot()
}

func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Tasks:    len(m.st.tasks),
		Epics:    len(m.st.epics),
		Subtasks: len(m.st.subtasks),
		History:  m.st.history.Len(),
	}
}

// AddTask stores a new task under a freshly generated id.
func (m *Manager) AddTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	task.Status = defaultStatus(task.Status)
	var created domain.Task
	err := m.mutate(ctx, "add_task", func(st *state) error {
		if err := m.validator.ValidateNewTask(task); err != nil {
			return err
		}
		task.ID = st.generateID()
		st.tasks[task.ID] = task
		created = task
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return created, nil
}

// AddEpic stores a new, empty epic.
func (m *Manager) AddEpic(ctx context.Context, epic domain.Epic) (domain.Epic, error) {
	epic.Status = defaultStatus(epic.Status)
	var created domain.Epic
	err := m.mutate(ctx, "add_epic", func(st *state) error {
		if err := m.validator.ValidateNewEpic(epic); err != nil {
			return err
		}
		epic.ID = st.generateID()
		stored, err := st.storeEpic(epic)
		if err != nil {
			return err
		}
		created = stored
		return nil
	})
	if err != nil {
		return domain.Epic{}, err
	}
	return created, nil
}

// AddSubtask stores a new subtask under the epic and refreshes the epic's status.
func (m *Manager) AddSubtask(ctx context.Context, subtask domain.Subtask, epicID int) (domain.Subtask, error) {
	subtask.Status = defaultStatus(subtask.Status)
	var created domain.Subtask
	err := m.mutate(ctx, "add_subtask", func(st *state) error {
		if err := m.validator.ValidateNewSubtask(subtask); err != nil {
			return err
		}
		epic, ok := st.epics[epicID]
		if !ok {
			return domain.NotFound(domain.KindEpic, epicID)
		}

		subtask.ID = st.generateID()
		subtask.EpicID = epicID
		st.subtasks[subtask.ID] = subtask

		epic.SubtaskIDs = append(slices.Clone(epic.SubtaskIDs), subtask.ID)
		if _, err := st.storeEpic(epic); err != nil {
			return err
		}
		created = subtask
		return nil
	})
	if err != nil {
		return domain.Subtask{}, err
	}
	return created, nil
}

// UpdateTask replaces name, description and status of an existing task.
func (m *Manager) UpdateTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	var updated domain.Task
	err := m.mutate(ctx, "update_task", func(st *state) error {
		if _, ok := st.tasks[task.ID]; !ok {
			return domain.NotFound(domain.KindTask, task.ID)
		}
		if err := task.Validate(); err != nil {
			return err
		}
		st.tasks[task.ID] = task
		updated = task
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return updated, nil
}

// UpdateEpic replaces name and description. The status is recomputed from the
// stored subtasks; a non-empty subtask list that differs from the stored one
// is rejected.
func (m *Manager) UpdateEpic(ctx context.Context, epic domain.Epic) (domain.Epic, error) {
	var updated domain.Epic
	err := m.mutate(ctx, "update_epic", func(st *state) error {
		stored, ok := st.epics[epic.ID]
		if !ok {
			return domain.NotFound(domain.KindEpic, epic.ID)
		}
		if len(epic.SubtaskIDs) > 0 && !slices.Equal(epic.SubtaskIDs, stored.SubtaskIDs) {
			return domain.Invalid(fmt.Sprintf("epic %d subtask list does not match the stored one", epic.ID))
		}

		next := stored.Clone()
		next.Name = epic.Name
		next.Description = epic.Description
		if err := next.Validate(); err != nil {
			return err
		}
		result, err := st.storeEpic(next)
		if err != nil {
			return err
		}
		updated = result
		return nil
	})
	if err != nil {
		return domain.Epic{}, err
	}
	return updated, nil
}

// UpdateSubtask replaces name, description and status; the epic must stay the same.
func (m *Manager) UpdateSubtask(ctx context.Context, subtask domain.Subtask) (domain.Subtask, error) {
	var updated domain.Subtask
	err := m.mutate(ctx, "update_subtask", func(st *state) error {
		stored, ok := st.subtasks[subtask.ID]
		if !ok {
			return domain.NotFound(domain.KindSubtask, subtask.ID)
		}
		if err := m.validator.EnsureSameEpic(stored, subtask); err != nil {
			return err
		}
		if err := subtask.Validate(); err != nil {
			return err
		}
		epic, ok := st.epics[subtask.EpicID]
		if !ok {
			return domain.Internal(fmt.Sprintf("subtask %d references missing epic %d", subtask.ID, subtask.EpicID))
		}

		st.subtasks[subtask.ID] = subtask
		if _, err := st.storeEpic(epic); err != nil {
			return err
		}
		updated = subtask
		return nil
	})
	if err != nil {
		return domain.Subtask{}, err
	}
	return updated, nil
}

// DeleteTask removes and returns the task.
func (m *Manager) DeleteTask(ctx context.Context, id int) (domain.Task, error) {
	var removed domain.Task
	err := m.mutate(ctx, "delete_task", func(st *state) error {
		t, ok := st.tasks[id]
		if !ok {
			return domain.NotFound(domain.KindTask, id)
		}
		delete(st.tasks, id)
		st.history.Remove(id)
		removed = t
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return removed, nil
}

// DeleteEpic removes the epic together with all of its subtasks.
func (m *Manager) DeleteEpic(ctx context.Context, id int) (domain.Epic, error) {
	var removed domain.Epic
	err := m.mutate(ctx, "delete_epic", func(st *state) error {
		epic, ok := st.epics[id]
		if !ok {
			return domain.NotFound(domain.KindEpic, id)
		}
		for _, subID := range epic.SubtaskIDs {
			delete(st.subtasks, subID)
			st.history.Remove(subID)
		}
		delete(st.epics, id)
		st.history.Remove(id)
		removed = epic.Clone()
		return nil
	})
	if err != nil {
		return domain.Epic{}, err
	}
	return removed, nil
}

// DeleteSubtask removes the subtask from the store and from its epic.
func (m *Manager) DeleteSubtask(ctx context.Context, id int) (domain.Subtask, error) {
	var removed domain.Subtask
	err := m.mutate(ctx, "delete_subtask", func(st *state) error {
		sub, ok := st.subtasks[id]
		if !ok {
			return domain.NotFound(domain.KindSubtask, id)
		}
		epic, ok := st.epics[sub.EpicID]
		if !ok {
			return domain.Internal(fmt.Sprintf("subtask %d references missing epic %d", id, sub.EpicID))
		}

		delete(st.subtasks, id)
		st.history.Remove(id)
		epic.SubtaskIDs = slices.DeleteFunc(slices.Clone(epic.SubtaskIDs), func(v int) bool { return v == id })
		if _, err := st.storeEpic(epic); err != nil {
			return err
		}
		removed = sub
		return nil
	})
	if err != nil {
		return domain.Subtask{}, err
	}
	return removed, nil
}

// DeleteAllTasks removes every task.
func (m *Manager) DeleteAllTasks(ctx context.Context) error {
	return m.mutate(ctx, "delete_all_tasks", func(st *state) error {
		for id := range st.tasks {
			st.history.Remove(id)
		}
		clear(st.tasks)
		return nil
	})
}

// DeleteAllEpics removes every epic and, with them, every subtask.
func (m *Manager) DeleteAllEpics(ctx context.Context) error {
	return m.mutate(ctx, "delete_all_epics", func(st *state) error {
		for id := range st.epics {
			st.history.Remove(id)
		}
		for id := range st.subtasks {
			st.history.Remove(id)
		}
		clear(st.epics)
		clear(st.subtasks)
		return nil
	})
}

// DeleteAllSubtasks removes every subtask; each epic becomes empty and NEW.
func (m *Manager) DeleteAllSubtasks(ctx context.Context) error {
	return m.mutate(ctx, "delete_all_subtasks", func(st *state) error {
		for id := range st.subtasks {
			st.history.Remove(id)
		}
		clear(st.subtasks)
		for id, epic := range st.epics {
			epic.SubtaskIDs = []int{}
			epic.Status = domain.StatusNew
			st.epics[id] = epic
		}
		return nil
	})
}

// mutate runs fn under the write lock and then persists the snapshot. fn must
// validate before it changes st. On any failure the state from before the call
// is put back.
func (m *Manager) mutate(ctx context.Context, op string, fn func(st *state) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var backup *state
	if m.repo != nil {
		backup = m.st.clone()
	}

	if err := fn(m.st); err != nil {
		if backup != nil {
			m.st = backup
		}
		m.logger.Debug("operation rejected", zap.String("operation", op), zap.Error(err))
		return err
	}

	if m.repo != nil {
		if err := m.repo.Save(ctx, m.st.snapshot()); err != nil {
			m.st = backup
			m.logger.Error("snapshot save failed", zap.String("operation", op), zap.Error(err))
			if domain.IsDomainError(err, domain.ErrCodePersistence) {
				return err
			}
			return domain.Persistence("save snapshot", err)
		}
	}

	m.logger.Debug("operation applied", zap.String("operation", op))
	return nil
}

func (s *state) task(id int) (domain.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return domain.Task{}, domain.NotFound(domain.KindTask, id)
	}
	return t, nil
}

func (s *state) epic(id int) (domain.Epic, error) {
	e, ok := s.epics[id]
	if !ok {
		return domain.Epic{}, domain.NotFound(domain.KindEpic, id)
	}
	return e.Clone(), nil
}

func (s *state) subtask(id int) (domain.Subtask, error) {
	st, ok := s.subtasks[id]
	if !ok {
		return domain.Subtask{}, domain.NotFound(domain.KindSubtask, id)
	}
	return st, nil
}

func defaultStatus(s domain.Status) domain.Status {
	if s == "" {
		return domain.DefaultStatus
	}
	return s
}
