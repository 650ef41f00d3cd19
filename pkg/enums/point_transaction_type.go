package enums

import "fmt"

// PointTransactionType classifies entries in the point ledger.
type PointTransactionType string

const (
	PointTransactionEarn        PointTransactionType = "EARN"
	PointTransactionSpend       PointTransactionType = "SPEND"
	PointTransactionAdminAdjust PointTransactionType = "ADMIN_ADJUST"
	PointTransactionEventReward PointTransactionType = "EVENT_REWARD"
	PointTransactionMembership  PointTransactionType = "MEMBERSHIP"
)

var validPointTransactionTypes = []PointTransactionType{
	PointTransactionEarn,
	PointTransactionSpend,
	PointTransactionAdminAdjust,
	PointTransactionEventReward,
	PointTransactionMembership,
}

// String implements fmt.Stringer.
func (p PointTransactionType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PointTransactionType.
func (p PointTransactionType) IsValid() bool {
	for _, candidate := range validPointTransactionTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsDebit reports whether the type subtracts from the balance.
func (p PointTransactionType) IsDebit() bool {
	return p == PointTransactionSpend || p == PointTransactionMembership
}

// ParsePointTransactionType converts raw input into a PointTransactionType.
func ParsePointTransactionType(value string) (PointTransactionType, error) {
	for _, candidate := range validPointTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid point transaction type %q", value)
}
