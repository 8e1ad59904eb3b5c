package models

import "fmt"

type Mode string

const (
	ModeQuick Mode = "quick" // three debate rounds
	ModeDeep  Mode = "deep"  // adds a second challenge round
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeQuick, "":
		return ModeQuick, nil
	case ModeDeep:
		return ModeDeep, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

type Constraints struct {
	Purpose        string `json:"purpose"`
	BrandTone      string `json:"brandTone"`
	TargetAudience string `json:"targetAudience"`
	PricePoint     string `json:"pricePoint"`
	Mode           Mode   `json:"mode"`
}

// DefaultConstraints mirrors the initial state of the input form.
func DefaultConstraints() Constraints {
	return Constraints{
		PricePoint: "Premium",
		Mode:       ModeQuick,
	}
}
