package enums

import "fmt"

// CodeStatus tracks the lifecycle of a verification code.
type CodeStatus string

const (
	CodeStatusPending   CodeStatus = "pending"
	CodeStatusVerified  CodeStatus = "verified"
	CodeStatusExpired   CodeStatus = "expired"
	CodeStatusCancelled CodeStatus = "cancelled"
)

var validCodeStatuses = []CodeStatus{
	CodeStatusPending,
	CodeStatusVerified,
	CodeStatusExpired,
	CodeStatusCancelled,
}

// String implements fmt.Stringer.
func (c CodeStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CodeStatus.
func (c CodeStatus) IsValid() bool {
	for _, candidate := range validCodeStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCodeStatus converts raw input into a CodeStatus.
func ParseCodeStatus(value string) (CodeStatus, error) {
	for _, candidate := range validCodeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid code status %q", value)
}
