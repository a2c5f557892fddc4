package codec_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/codec"
)

func sampleEntities() []domain.Entity {
	return []domain.Entity{
		domain.Task{Base: domain.Base{ID: 1, Name: "Task", Description: "Task description", Status: domain.StatusDone}},
		domain.Epic{Base: domain.Base{ID: 2, Name: "Epic", Description: "Epic description", Status: domain.StatusInProgress}, SubtaskIDs: []int{3, 4}},
		domain.Epic{Base: domain.Base{ID: 5, Name: "Empty", Description: "No subtasks", Status: domain.StatusNew}, SubtaskIDs: []int{}},
		domain.Subtask{Base: domain.Base{ID: 3, Name: "Sub A", Description: "first", Status: domain.StatusNew}, EpicID: 2},
		domain.Subtask{Base: domain.Base{ID: 4, Name: "Sub B", Description: "second", Status: domain.StatusInProgress}, EpicID: 2},
	}
}

func TestMarshalLine(t *testing.T) {
	tests := []struct {
		name   string
		entity domain.Entity
		want   string
	}{
		{
			name:   "task",
			entity: domain.Task{Base: domain.Base{ID: 7, Name: "Buy milk", Description: "2 liters", Status: domain.StatusNew}},
			want:   "Task,7,Buy milk,2 liters,NEW",
		},
		{
			name:   "epic with subtasks",
			entity: domain.Epic{Base: domain.Base{ID: 2, Name: "Move", Description: "flat", Status: domain.StatusInProgress}, SubtaskIDs: []int{3, 4}},
			want:   "Epic,2,Move,flat,IN_PROGRESS,3,4",
		},
		{
			name:   "empty epic",
			entity: domain.Epic{Base: domain.Base{ID: 2, Name: "Move", Description: "flat", Status: domain.StatusNew}},
			want:   "Epic,2,Move,flat,NEW",
		},
		{
			name:   "subtask",
			entity: domain.Subtask{Base: domain.Base{ID: 3, Name: "Pack", Description: "boxes", Status: domain.StatusDone}, EpicID: 2},
			want:   "Subtask,3,Pack,boxes,DONE,2",
		},
		{
			name:   "comma in name is quoted",
			entity: domain.Task{Base: domain.Base{ID: 1, Name: "a,b", Description: "c", Status: domain.StatusNew}},
			want:   `Task,1,"a,b",c,NEW`,
		},
		{
			name:   "carriage return and backslash are escaped",
			entity: domain.Task{Base: domain.Base{ID: 1, Name: "a\r\nb", Description: `C:\tmp`, Status: domain.StatusNew}},
			want:   "Task,1,\"a\\r\nb\",C:\\\\tmp,NEW",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.MarshalLine(tt.entity)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalLine(t *testing.T) {
	t.Run("subtask", func(t *testing.T) {
		got, err := codec.UnmarshalLine("Subtask,3,Pack,boxes,DONE,2")
		require.NoError(t, err)
		assert.Equal(t, domain.Subtask{Base: domain.Base{ID: 3, Name: "Pack", Description: "boxes", Status: domain.StatusDone}, EpicID: 2}, got)
	})

	t.Run("status is case-insensitive", func(t *testing.T) {
		got, err := codec.UnmarshalLine("Task,1,a,b,in_progress")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, got.Details().Status)
	})

	failures := map[string]string{
		"unknown tag":          "Story,1,a,b,NEW",
		"malformed id":         "Task,x,a,b,NEW",
		"malformed status":     "Task,1,a,b,LATER",
		"malformed epic link":  "Subtask,3,a,b,NEW,two",
		"missing epic link":    "Subtask,3,a,b,NEW",
		"malformed subtask id": "Epic,2,a,b,NEW,3,x",
		"too few fields":       "Task,1,a",
		"trailing task fields": "Task,1,a,b,NEW,9",
	}
	for name, line := range failures {
		t.Run(name, func(t *testing.T) {
			_, err := codec.UnmarshalLine(line)
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodePersistence), "got %v", err)
		})
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	entities := sampleEntities()
	entities = append(entities,
		domain.Task{Base: domain.Base{ID: 9, Name: `quote " and, comma`, Description: "line\nbreak", Status: domain.StatusNew}},
		domain.Task{Base: domain.Base{ID: 10, Name: "a\r\nb", Description: "c\rd", Status: domain.StatusNew}},
		domain.Task{Base: domain.Base{ID: 11, Name: `literal \r and \\`, Description: "trailing\r", Status: domain.StatusNew}},
		domain.Subtask{Base: domain.Base{ID: 12, Name: "\r\n", Description: `\`, Status: domain.StatusDone}, EpicID: 5},
	)

	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, entities))

	decoded, err := codec.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, entities, decoded)
}

func TestMarshalUnmarshalLine_CarriageReturns(t *testing.T) {
	entities := []domain.Entity{
		domain.Task{Base: domain.Base{ID: 1, Name: "a\r\nb", Description: "c\rd", Status: domain.StatusNew}},
		domain.Epic{Base: domain.Base{ID: 2, Name: `back\slash`, Description: "\r", Status: domain.StatusNew}, SubtaskIDs: []int{}},
		domain.Subtask{Base: domain.Base{ID: 3, Name: `\r is text`, Description: "x\r\n\r\ny", Status: domain.StatusDone}, EpicID: 2},
	}
	for _, e := range entities {
		line, err := codec.MarshalLine(e)
		require.NoError(t, err)
		assert.NotContains(t, line, "\r")

		got, err := codec.UnmarshalLine(line)
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
}

func TestEncode_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, sampleEntities()[:2]))

	assert.Equal(t,
		codec.Header+"\n"+
			"Task,1,Task,Task description,DONE\n"+
			"Epic,2,Epic,Epic description,IN_PROGRESS,3,4\n",
		buf.String())
}

func TestDecode(t *testing.T) {
	t.Run("header only", func(t *testing.T) {
		got, err := codec.Decode(strings.NewReader(codec.Header + "\n"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("header without newline", func(t *testing.T) {
		got, err := codec.Decode(strings.NewReader(codec.Header))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("wrong header", func(t *testing.T) {
		_, err := codec.Decode(strings.NewReader("wrong header\nTask,1,a,b,NEW\n"))
		require.Error(t, err)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodePersistence))
	})

	t.Run("empty document", func(t *testing.T) {
		_, err := codec.Decode(strings.NewReader(""))
		assert.True(t, domain.IsDomainError(err, domain.ErrCodePersistence))
	})

	t.Run("bad record", func(t *testing.T) {
		_, err := codec.Decode(strings.NewReader(codec.Header + "\nTask,1,a,b,NEW\nNope,2,a,b,NEW\n"))
		assert.True(t, domain.IsDomainError(err, domain.ErrCodePersistence))
	})
}
