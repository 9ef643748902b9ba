package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSuspiciousAttachment(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"invoice.PDF.exe", true},
		{"invoice.pdf", false},
		{"script.JS", true},
		{"run.bat", true},
		{"setup.CMD", true},
		{"screensaver.scr", true},
		{"macro.vbs", true},
		{"app.jar", true},
		{"archive.zip", false},
		{"exe", false},
		{"notes.json", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSuspiciousAttachment(tt.filename), tt.filename)
	}
}

func TestDangerousExtensions_ReturnsCopy(t *testing.T) {
	exts := DangerousExtensions()
	assert.Equal(t, []string{".exe", ".bat", ".cmd", ".scr", ".js", ".vbs", ".jar"}, exts)

	exts[0] = ".txt"
	assert.True(t, IsSuspiciousAttachment("a.exe"))
}
