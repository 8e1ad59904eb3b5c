package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloadFilename(t *testing.T) {
	tests := map[string]string{
		"Modular Brew Station": "council-ai-modular-brew-station.png",
		"Compact   Pour\tOver": "council-ai-compact-pour-over.png",
		"AERO":                 "council-ai-aero.png",
		"Café\u00a0Noir":       "council-ai-café-noir.png",
		"":                     "council-ai-.png",
	}
	for title, want := range tests {
		assert.Equal(t, want, DownloadFilename(title), title)
	}
}
