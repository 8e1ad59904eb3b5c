package models

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed roster.yaml
var defaultRoster []byte

// ErrIncompleteRoster is returned when the roster does not describe every role.
var ErrIncompleteRoster = errors.New("roster does not cover every role")

// Participant is the presentation identity of a role. None of it affects
// playback except the role itself, which the filter matches on.
type Participant struct {
	Role       Role   `yaml:"role" json:"role"`
	Short      string `yaml:"short" json:"short"`
	Side       string `yaml:"side" json:"side"` // "left" or "right"
	Color      string `yaml:"color" json:"color"`
	Background string `yaml:"background" json:"background"`
	Border     string `yaml:"border" json:"border"`
	Icon       string `yaml:"icon" json:"icon"` // SVG path data
}

type Roster struct {
	byRole map[Role]Participant
}

type rosterFile struct {
	Participants []Participant `yaml:"participants"`
}

// DefaultRoster parses the embedded roster. It panics on a broken roster since
// the file ships with the binary.
func DefaultRoster() *Roster {
	r, err := ParseRoster(defaultRoster)
	if err != nil {
		panic(fmt.Sprintf("embedded roster: %v", err))
	}
	return r
}

// ParseRoster decodes a YAML roster and checks that it maps every role exactly once.
func ParseRoster(data []byte) (*Roster, error) {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	byRole := make(map[Role]Participant, len(Roles))
	for _, p := range f.Participants {
		if !p.Role.Valid() {
			return nil, fmt.Errorf("roster lists unknown role %q", p.Role)
		}
		if _, dup := byRole[p.Role]; dup {
			return nil, fmt.Errorf("roster lists role %q twice", p.Role)
		}
		if p.Side != "left" && p.Side != "right" {
			return nil, fmt.Errorf("roster role %q has invalid side %q", p.Role, p.Side)
		}
		if p.Short == "" {
			p.Short = p.Role.Short()
		}
		byRole[p.Role] = p
	}

	for _, r := range Roles {
		if _, ok := byRole[r]; !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrIncompleteRoster, r)
		}
	}
	return &Roster{byRole: byRole}, nil
}

// Lookup returns the identity for role. Unknown roles get the Market Researcher
// styling.
func (r *Roster) Lookup(role Role) Participant {
	if p, ok := r.byRole[role]; ok {
		return p
	}
	p := r.byRole[RoleMarket]
	p.Role = role
	p.Short = role.Short()
	return p
}

// Participants returns identities in seating order.
func (r *Roster) Participants() []Participant {
	out := make([]Participant, 0, len(Roles))
	for _, role := range Roles {
		out = append(out, r.byRole[role])
	}
	return out
}
