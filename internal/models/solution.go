package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidResult marks a synthesis result that breaks the data contract.
var ErrInvalidResult = errors.New("invalid design result")

const (
	SolutionCount  = 2
	HighlightCount = 3
)

type Evaluation struct {
	TechnicalFeasibility  float64 `json:"technicalFeasibility"`
	MarketCompetitiveness float64 `json:"marketCompetitiveness"`
	Aesthetics            float64 `json:"aesthetics"`
	Usability             float64 `json:"usability"`
	Innovation            float64 `json:"innovation"`
}

func (e Evaluation) values() []float64 {
	return []float64{
		e.TechnicalFeasibility,
		e.MarketCompetitiveness,
		e.Aesthetics,
		e.Usability,
		e.Innovation,
	}
}

// Average is the arithmetic mean of all five scores.
func (e Evaluation) Average() float64 {
	vals := e.values()
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// AverageLabel is the synthesis score as shown on the result page.
func (e Evaluation) AverageLabel() string {
	return fmt.Sprintf("%.1f", e.Average())
}

type ScoreBar struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Bars returns the charted metrics. Innovation only contributes to the average.
func (e Evaluation) Bars() []ScoreBar {
	return []ScoreBar{
		{Name: "Feasibility", Score: e.TechnicalFeasibility},
		{Name: "Market", Score: e.MarketCompetitiveness},
		{Name: "Aesthetics", Score: e.Aesthetics},
		{Name: "Usability", Score: e.Usability},
	}
}

func (e Evaluation) Validate() error {
	names := []string{"technicalFeasibility", "marketCompetitiveness", "aesthetics", "usability", "innovation"}
	for i, v := range e.values() {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: %s score %.1f outside [0,100]", ErrInvalidResult, names[i], v)
		}
	}
	return nil
}

type DesignSolution struct {
	ImageURL         string     `json:"imageUrl"` // data URI, empty when image generation failed
	Title            string     `json:"title"`
	ConsensusSummary string     `json:"consensusSummary"`
	Evaluation       Evaluation `json:"evaluation"`
	Highlights       []string   `json:"highlights"`
}

func (s DesignSolution) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: solution title is empty", ErrInvalidResult)
	}
	if len(s.Highlights) != HighlightCount {
		return fmt.Errorf("%w: solution %q has %d highlights, want %d",
			ErrInvalidResult, s.Title, len(s.Highlights), HighlightCount)
	}
	return s.Evaluation.Validate()
}

type DesignResult struct {
	Solutions  []DesignSolution `json:"solutions"`
	Transcript Transcript       `json:"debateHistory"`
}

func (r *DesignResult) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: missing result", ErrInvalidResult)
	}
	if len(r.Solutions) != SolutionCount {
		return fmt.Errorf("%w: got %d solutions, want %d", ErrInvalidResult, len(r.Solutions), SolutionCount)
	}
	for _, s := range r.Solutions {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for i, m := range r.Transcript {
		if !m.Role.Valid() {
			return fmt.Errorf("%w: message %d has unknown role %q", ErrInvalidResult, i, m.Role)
		}
	}
	return nil
}
