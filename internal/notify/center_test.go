package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenter(t *testing.T) {
	c := NewCenter(nil)

	c.Error("Request failed with status code 500")
	c.Success("Task created")

	pending := c.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, LevelError, pending[0].Level)
	assert.Equal(t, LevelSuccess, pending[1].Level)
	assert.NotEqual(t, pending[0].ID, pending[1].ID)

	assert.True(t, c.Dismiss(pending[0].ID))
	assert.False(t, c.Dismiss(pending[0].ID))
	require.Len(t, c.Pending(), 1)

	drained := c.Drain()
	require.Len(t, drained, 1)
	assert.Equal(t, "Task created", drained[0].Message)
	assert.Empty(t, c.Pending())
}
