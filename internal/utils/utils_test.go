package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomPassword(t *testing.T) {
	pw := GenerateRandomPassword(12)
	assert.Len(t, []rune(pw), 12)
	assert.Empty(t, GenerateRandomPassword(0))

	assert.NotContains(t, GenerateRandomPassword(256), "0")
	assert.NotContains(t, GenerateRandomPassword(256), "l")
}

func TestValidateZoneID(t *testing.T) {
	for _, id := range []string{"zone24", "library-2f", "a", "east_gate"} {
		assert.NoError(t, ValidateZoneID(id), id)
	}
	for _, id := range []string{"", "Zone24", "-lead", "has space", "a:b", string(make([]byte, 65))} {
		assert.Error(t, ValidateZoneID(id), id)
	}
}
