package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusBlocked, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusBlocked, true},
		{StatusInProgress, StatusPending, false},
		{StatusBlocked, StatusInProgress, true},
		{StatusBlocked, StatusPending, true},
		{StatusBlocked, StatusCompleted, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusCompleted, true},
		{StatusCancelled, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in    string
		want  Status
		valid bool
	}{
		{"pending", StatusPending, true},
		{"in-progress", StatusInProgress, true},
		{"In Progress", StatusInProgress, true},
		{"COMPLETED", StatusCompleted, true},
		{"done", Status("DONE"), false},
		{"", Status(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseStatus(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestUpdate_EventTime(t *testing.T) {
	created := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	legacy := created.Add(time.Hour)
	edited := created.Add(2 * time.Hour)

	t.Run("createdAt wins", func(t *testing.T) {
		got, ok := Update{CreatedAt: created, Timestamp: &legacy, UpdatedAt: &edited}.EventTime()
		assert.True(t, ok)
		assert.Equal(t, created, got)
	})

	t.Run("timestamp fallback", func(t *testing.T) {
		got, ok := Update{Timestamp: &legacy, UpdatedAt: &edited}.EventTime()
		assert.True(t, ok)
		assert.Equal(t, legacy, got)
	})

	t.Run("updatedAt fallback", func(t *testing.T) {
		got, ok := Update{UpdatedAt: &edited}.EventTime()
		assert.True(t, ok)
		assert.Equal(t, edited, got)
	})

	t.Run("none", func(t *testing.T) {
		_, ok := Update{}.EventTime()
		assert.False(t, ok)
	})
}

func TestTask_Clone(t *testing.T) {
	at := time.Now()
	orig := Task{
		ID:          "t",
		CompletedAt: &at,
		Updates:     []Update{{ID: "u", Replies: []Reply{{ID: "r"}}}},
	}

	c := orig.Clone()
	c.Updates[0].Replies[0].Message = "changed"
	c.Updates[0].Remarks = "changed"
	*c.CompletedAt = at.Add(time.Hour)

	assert.Empty(t, orig.Updates[0].Replies[0].Message)
	assert.Empty(t, orig.Updates[0].Remarks)
	assert.Equal(t, at, *orig.CompletedAt)
}
