package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTime_JSON(t *testing.T) {
	ts := LocalTime(time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local))
	b, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-01 10:30:00"`, string(b))
}
