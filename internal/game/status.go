package game

import "fmt"

// PhotoStatus is the persisted review state of a photo.
type PhotoStatus string

const (
	StatusPending  PhotoStatus = "pending"
	StatusApproved PhotoStatus = "approved"
	StatusRejected PhotoStatus = "rejected"
)

// Decision is a reviewer action on a pending photo.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// transitions is the whole state machine: only pending photos move, and only once.
var transitions = map[PhotoStatus]map[Decision]PhotoStatus{
	StatusPending: {
		DecisionApprove: StatusApproved,
		DecisionReject:  StatusRejected,
	},
	StatusApproved: {},
	StatusRejected: {},
}

func IsValidStatus(s string) bool {
	_, ok := transitions[PhotoStatus(s)]
	return ok
}

func ParseStatus(s string) (PhotoStatus, error) {
	if !IsValidStatus(s) {
		return "", invalid("status", fmt.Sprintf("%q is not one of pending, approved, rejected", s))
	}
	return PhotoStatus(s), nil
}

func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionApprove, DecisionReject:
		return Decision(s), nil
	default:
		return "", invalid("action", fmt.Sprintf("%q must be approve or reject", s))
	}
}

// CanTransition reports whether decision is allowed from current.
func CanTransition(current PhotoStatus, decision Decision) bool {
	_, ok := transitions[current][decision]
	return ok
}

// Next returns the state reached by applying decision to current.
func Next(current PhotoStatus, decision Decision) (PhotoStatus, bool) {
	next, ok := transitions[current][decision]
	return next, ok
}

func (s PhotoStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s PhotoStatus) CanBeReviewed() bool {
	return s == StatusPending
}
