package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusIsCancelled(t *testing.T) {
	assert.True(t, StatusCancelledByPatient.IsCancelled())
	assert.True(t, StatusCancelledByDoctor.IsCancelled())
	assert.False(t, StatusScheduled.IsCancelled())
	assert.False(t, StatusCompleted.IsCancelled())
	assert.False(t, StatusNoShow.IsCancelled())
}

func TestStatusWireStrings(t *testing.T) {
	assert.Equal(t, "Scheduled", string(StatusScheduled))
	assert.Equal(t, "Completed", string(StatusCompleted))
	assert.Equal(t, "Cancelled by Patient", string(StatusCancelledByPatient))
	assert.Equal(t, "Cancelled by Doctor", string(StatusCancelledByDoctor))
	assert.Equal(t, "No Show", string(StatusNoShow))
}
