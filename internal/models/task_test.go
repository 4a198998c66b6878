package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTaskOwnedBy(t *testing.T) {
	creator := uuid.New()
	assignee := uuid.New()
	stranger := uuid.New()

	t.Run("creator owns the task", func(t *testing.T) {
		task := &Task{CreatedBy: creator}
		assert.True(t, task.OwnedBy(creator))
	})

	t.Run("assignee owns the task", func(t *testing.T) {
		task := &Task{CreatedBy: creator, AssigneeID: &assignee}
		assert.True(t, task.OwnedBy(assignee))
	})

	t.Run("nil assignee does not own for anyone but the creator", func(t *testing.T) {
		task := &Task{CreatedBy: creator, AssigneeID: nil}
		assert.False(t, task.OwnedBy(stranger))
		assert.True(t, task.OwnedBy(creator))
	})

	t.Run("unrelated user does not own", func(t *testing.T) {
		task := &Task{CreatedBy: creator, AssigneeID: &assignee}
		assert.False(t, task.OwnedBy(stranger))
	})
}
