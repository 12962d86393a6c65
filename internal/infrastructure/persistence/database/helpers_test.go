package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampFormats(t *testing.T) {
	cases := []string{
		"2026-03-15T12:30:45.123456789Z",
		"2026-03-15T12:30:45Z",
		"2026-03-15 12:30:45.123456789+00:00",
		"2026-03-15 12:30:45",
	}

	for _, value := range cases {
		ts, err := ParseTimestamp(value)
		require.NoError(t, err, value)
		assert.Equal(t, 2026, ts.Year())
		assert.Equal(t, 45, ts.Second())
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	_, err := ParseTimestamp("not a timestamp")
	assert.Error(t, err)
}
