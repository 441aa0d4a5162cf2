package enums

import "fmt"

// CodePurpose names the gated transition a verification code protects.
type CodePurpose string

const (
	CodePurposePickupConfirmation   CodePurpose = "pickup_confirmation"
	CodePurposeDeliveryConfirmation CodePurpose = "delivery_confirmation"
)

var validCodePurposes = []CodePurpose{
	CodePurposePickupConfirmation,
	CodePurposeDeliveryConfirmation,
}

// String implements fmt.Stringer.
func (c CodePurpose) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CodePurpose.
func (c CodePurpose) IsValid() bool {
	for _, candidate := range validCodePurposes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCodePurpose converts raw input into a CodePurpose.
func ParseCodePurpose(value string) (CodePurpose, error) {
	for _, candidate := range validCodePurposes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid code purpose %q", value)
}
