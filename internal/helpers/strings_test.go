package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitAndTrim(" a, b ,,c ", ","))
	assert.Empty(t, SplitAndTrim(" , ", ","))
}

func TestSafeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":            "report.pdf",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\photo.png`: "photo.png",
		"":                      "upload",
		"..":                    "upload",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeFilename(in), in)
	}
}
