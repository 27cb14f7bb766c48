package game

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	minPlayerNameLength = 2
	maxPlayerNameLength = 50
	minTeamNameLength   = 1
	maxTeamNameLength   = 50
)

// Role is the only authorization signal a player carries.
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
)

func IsValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RolePlayer:
		return true
	default:
		return false
	}
}

func ParseRole(s string) (Role, error) {
	if !IsValidRole(s) {
		return "", invalid("role", `must be "admin" or "player"`)
	}
	return Role(s), nil
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func IsValidPlayerName(name string) bool {
	return nameLengthWithin(name, minPlayerNameLength, maxPlayerNameLength)
}

func IsValidTeamName(name string) bool {
	return nameLengthWithin(name, minTeamNameLength, maxTeamNameLength)
}

func validatePlayerName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if !IsValidPlayerName(trimmed) {
		return "", invalid("name", fmt.Sprintf("must be between %d and %d characters", minPlayerNameLength, maxPlayerNameLength))
	}
	return trimmed, nil
}

func validateTeamName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if !IsValidTeamName(trimmed) {
		return "", invalid("name", fmt.Sprintf("must be between %d and %d characters", minTeamNameLength, maxTeamNameLength))
	}
	return trimmed, nil
}

func nameLengthWithin(name string, lo, hi int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n >= lo && n <= hi
}
