package dbtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayUsesLocation(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 20:00 UTC is already the next day in Kolkata.
	now := time.Date(2024, 9, 14, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-09-14", FormatDate(Today(now, time.UTC)))
	assert.Equal(t, "2024-09-15", FormatDate(Today(now, kolkata)))
}

func TestBeforeIgnoresClock(t *testing.T) {
	due, err := ParseDate("2024-09-01")
	require.NoError(t, err)

	assert.False(t, Before(due, time.Date(2024, 9, 1, 23, 59, 0, 0, time.UTC)))
	assert.True(t, Before(due, time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)))
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("01/09/2024")
	assert.Error(t, err)
}
