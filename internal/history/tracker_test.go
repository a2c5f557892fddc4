package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/history"
)

func task(id int) domain.Task {
	return domain.Task{Base: domain.Base{ID: id, Name: "n", Description: "d", Status: domain.StatusNew}}
}

func ids(entries []domain.Entity) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Identity())
	}
	return out
}

func TestTracker_Add(t *testing.T) {
	t.Run("keeps view order", func(t *testing.T) {
		tr := history.New()
		tr.Add(task(1))
		tr.Add(task(2))
		tr.Add(task(3))

		assert.Equal(t, []int{1, 2, 3}, ids(tr.Entries()))
		assert.Equal(t, 3, tr.Len())
	})

	t.Run("re-view relocates without duplicating", func(t *testing.T) {
		tr := history.New()
		tr.Add(task(1))
		tr.Add(task(2))
		tr.Add(task(1))

		assert.Equal(t, []int{2, 1}, ids(tr.Entries()))
		assert.Equal(t, 2, tr.Len())
	})

	t.Run("re-view of the newest entry is stable", func(t *testing.T) {
		tr := history.New()
		tr.Add(task(1))
		tr.Add(task(2))
		tr.Add(task(2))

		assert.Equal(t, []int{1, 2}, ids(tr.Entries()))
	})

	t.Run("stores the value seen at view time", func(t *testing.T) {
		tr := history.New()
		tr.Add(task(1))
		tr.Add(task(1).WithStatus(domain.StatusDone))

		entries := tr.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, domain.StatusDone, entries[0].Details().Status)
	})

	t.Run("nil entity is ignored", func(t *testing.T) {
		tr := history.New()
		tr.Add(nil)
		assert.Zero(t, tr.Len())
	})
}

func TestTracker_Remove(t *testing.T) {
	t.Run("head middle and tail", func(t *testing.T) {
		tr := history.New()
		for i := 1; i <= 5; i++ {
			tr.Add(task(i))
		}

		tr.Remove(1)
		tr.Remove(3)
		tr.Remove(5)

		assert.Equal(t, []int{2, 4}, ids(tr.Entries()))
		assert.Equal(t, 2, tr.Len())
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		tr := history.New()
		tr.Add(task(1))
		tr.Remove(42)

		assert.Equal(t, []int{1}, ids(tr.Entries()))
	})

	t.Run("removing the only entry empties the log", func(t *testing.T) {
		tr := history.New()
		tr.Add(task(1))
		tr.Remove(1)

		assert.Empty(t, tr.Entries())
		tr.Add(task(2))
		assert.Equal(t, []int{2}, ids(tr.Entries()))
	})

	t.Run("freed slots are reused", func(t *testing.T) {
		tr := history.New()
		for round := 0; round < 100; round++ {
			tr.Add(task(1))
			tr.Add(task(2))
			tr.Remove(1)
		}
		assert.Equal(t, []int{2}, ids(tr.Entries()))
	})
}

func TestTracker_EntriesIsACopy(t *testing.T) {
	tr := history.New()
	tr.Add(task(1))

	entries := tr.Entries()
	entries[0] = task(99)

	assert.Equal(t, []int{1}, ids(tr.Entries()))
}

func TestTracker_CloneIsIndependent(t *testing.T) {
	tr := history.New()
	tr.Add(task(1))
	tr.Add(task(2))

	clone := tr.Clone()
	tr.Remove(1)
	tr.Add(task(3))

	assert.Equal(t, []int{2, 3}, ids(tr.Entries()))
	assert.Equal(t, []int{1, 2}, ids(clone.Entries()))
}
