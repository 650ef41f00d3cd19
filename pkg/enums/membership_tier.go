package enums

import "fmt"

// MembershipTier is the paid subscription tier attached to a user.
type MembershipTier string

const (
	MembershipTierNone   MembershipTier = "NONE"
	MembershipTierBronze MembershipTier = "BRONZE"
	MembershipTierSilver MembershipTier = "SILVER"
	MembershipTierGold   MembershipTier = "GOLD"
)

var validMembershipTiers = []MembershipTier{
	MembershipTierNone,
	MembershipTierBronze,
	MembershipTierSilver,
	MembershipTierGold,
}

// String implements fmt.Stringer.
func (m MembershipTier) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MembershipTier.
func (m MembershipTier) IsValid() bool {
	for _, candidate := range validMembershipTiers {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsPaid reports whether the tier is a purchasable tier.
func (m MembershipTier) IsPaid() bool {
	return m != MembershipTierNone && m.IsValid()
}

// ParseMembershipTier converts raw input into a MembershipTier.
func ParseMembershipTier(value string) (MembershipTier, error) {
	for _, candidate := range validMembershipTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid membership tier %q", value)
}
