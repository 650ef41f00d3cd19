package enums

import "fmt"

// MediaKind classifies what an uploaded file is used for.
type MediaKind string

const (
	MediaKindPaymentProof MediaKind = "PAYMENT_PROOF"
	MediaKindProductPhoto MediaKind = "PRODUCT_PHOTO"
	MediaKindAvatar       MediaKind = "AVATAR"
)

var validMediaKinds = []MediaKind{
	MediaKindPaymentProof,
	MediaKindProductPhoto,
	MediaKindAvatar,
}

// IsValid reports whether the value is a known MediaKind.
func (m MediaKind) IsValid() bool {
	for _, candidate := range validMediaKinds {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaKind converts raw input into a MediaKind.
func ParseMediaKind(value string) (MediaKind, error) {
	for _, candidate := range validMediaKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media kind %q", value)
}
