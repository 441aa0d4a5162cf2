package enums

import "fmt"

// AssignmentStatus tracks the binding between an order and a delivery agent.
type AssignmentStatus string

const (
	AssignmentStatusUnassigned AssignmentStatus = "unassigned"
	AssignmentStatusAssigned   AssignmentStatus = "assigned"
	AssignmentStatusAccepted   AssignmentStatus = "accepted"
	AssignmentStatusRejected   AssignmentStatus = "rejected"
)

var validAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusUnassigned,
	AssignmentStatusAssigned,
	AssignmentStatusAccepted,
	AssignmentStatusRejected,
}

// String implements fmt.Stringer.
func (a AssignmentStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AssignmentStatus.
func (a AssignmentStatus) IsValid() bool {
	for _, candidate := range validAssignmentStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsAssignable reports whether an order in this assignment state may be
// offered to agents again.
func (a AssignmentStatus) IsAssignable() bool {
	return a == AssignmentStatusUnassigned || a == AssignmentStatusRejected
}

// ParseAssignmentStatus converts raw input into an AssignmentStatus.
func ParseAssignmentStatus(value string) (AssignmentStatus, error) {
	for _, candidate := range validAssignmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment status %q", value)
}
