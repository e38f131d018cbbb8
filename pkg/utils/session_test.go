package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSessionID_ProducesValidID(t *testing.T) {
	id := GenerateSessionID("203.0.113.7Mozilla/5.0")
	assert.Len(t, id, 16)
	assert.True(t, ValidateSessionID(id))

	// Same fingerprint within the same hour bucket yields the same id.
	assert.Equal(t, id, GenerateSessionID("203.0.113.7Mozilla/5.0"))
	assert.NotEqual(t, id, GenerateSessionID("198.51.100.1Mozilla/5.0"))
}

func TestValidateSessionID_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		valid     bool
	}{
		{"empty", "", false},
		{"too short", "abc123", false},
		{"too long", "abcdef0123456789ff", false},
		{"non-hex", "zzzzzzzzzzzzzzzz", false},
		{"valid", "abcdef0123456789", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateSessionID(tt.sessionID))
		})
	}
}
