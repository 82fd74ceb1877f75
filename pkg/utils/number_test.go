package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTwo(t *testing.T) {
	assert.Equal(t, 5.0, RoundTwo(5.004))
	assert.Equal(t, 5.01, RoundTwo(5.006))
	assert.Equal(t, -1.12, RoundTwo(-1.123))
	assert.Equal(t, 0.0, RoundTwo(0))
}

func TestFormatVolume(t *testing.T) {
	assert.Equal(t, "3.80億", FormatVolume(3.8e8))
	assert.Equal(t, "2.50萬", FormatVolume(25000))
	assert.Equal(t, "999", FormatVolume(999))
}
