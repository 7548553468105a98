package utils

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestTimer_StopLogsOperation(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	timer := NewTimer("generate_cards", log)
	d := timer.StopWithFields(map[string]interface{}{"deck_id": int64(3)})

	assert.GreaterOrEqual(t, int64(d), int64(0))
	assert.Contains(t, buf.String(), "generate_cards")
	assert.Contains(t, buf.String(), `"deck_id":3`)
}
