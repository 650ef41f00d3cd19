package types

// WheelPrize is one weighted slot on the lucky wheel. Points may be zero
// for a "better luck next time" slot.
type WheelPrize struct {
	Label  string `json:"label"`
	Points int64  `json:"points"`
	Weight int    `json:"weight"`
}

// WheelPrizes is the jsonb-serialized prize list on the event config.
type WheelPrizes []WheelPrize

// TotalWeight sums the slot weights; zero means the wheel cannot spin.
func (w WheelPrizes) TotalWeight() int {
	total := 0
	for _, prize := range w {
		if prize.Weight > 0 {
			total += prize.Weight
		}
	}
	return total
}

// Pick returns the prize at the given roll in [0, TotalWeight).
func (w WheelPrizes) Pick(roll int) (WheelPrize, bool) {
	if roll < 0 {
		return WheelPrize{}, false
	}
	for _, prize := range w {
		if prize.Weight <= 0 {
			continue
		}
		if roll < prize.Weight {
			return prize, true
		}
		roll -= prize.Weight
	}
	return WheelPrize{}, false
}
