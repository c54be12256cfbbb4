package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "ja***@example.com", maskEmail("jane@example.com"))
	assert.Equal(t, "***@example.com", maskEmail("jo@example.com"))
	assert.Equal(t, "***@example.com", maskEmail("j@example.com"))
	assert.Equal(t, "***", maskEmail("not-an-email"))
}
