package models

import (
	"fmt"
	"strings"
)

// Role identifies one of the five workshop participants. The wire value is the
// full title the synthesis backend is asked to use.
type Role string

const (
	RoleCPO    Role = "Chief Product Officer"
	RoleDesign Role = "Senior Industrial Designer"
	RoleTech   Role = "Technical Director"
	RoleUX     Role = "UX Researcher"
	RoleMarket Role = "Market Researcher"
)

// Roles lists every participant in seating order.
var Roles = []Role{RoleCPO, RoleDesign, RoleTech, RoleUX, RoleMarket}

var shortNames = map[Role]string{
	RoleCPO:    "CPO",
	RoleDesign: "DESIGN",
	RoleTech:   "TECH",
	RoleUX:     "UX",
	RoleMarket: "MARKET",
}

func (r Role) Valid() bool {
	_, ok := shortNames[r]
	return ok
}

// Short returns the compact label used on the participant bar.
func (r Role) Short() string {
	if s, ok := shortNames[r]; ok {
		return s
	}
	return "AGENT"
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts a full title or a short label, case-insensitively.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, r := range Roles {
		if strings.EqualFold(s, string(r)) || strings.EqualFold(s, shortNames[r]) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}
