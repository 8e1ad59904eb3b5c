package services

import (
	"context"

	"github.com/qiqi-070707/council-ai/internal/models"
)

// SynthesisRequest is everything the backend needs for one workshop.
type SynthesisRequest struct {
	Prompt      string
	Image       *models.InlineImage
	Constraints models.Constraints
}

// Synthesizer produces a complete debate and two solutions in one call.
// Implementations return either a full, valid result or an error.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*models.DesignResult, error)
}
