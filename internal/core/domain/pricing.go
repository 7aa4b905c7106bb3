package domain

type PricingCategory string

const (
	PricingStandard   PricingCategory = "standard"
	PricingStudent    PricingCategory = "etudiant"
	PricingUnder16    PricingCategory = "-16"
	PricingUnemployed PricingCategory = "chomeur"
)

// PricingRules maps each fare class to its per-seat price.
var PricingRules = map[PricingCategory]float64{
	PricingStandard:   12,
	PricingStudent:    9,
	PricingUnder16:    7,
	PricingUnemployed: 8,
}

// PricePerSeat falls back to the standard rate for unknown categories.
func PricePerSeat(category PricingCategory) float64 {
	if price, ok := PricingRules[category]; ok {
		return price
	}
	return PricingRules[PricingStandard]
}

func TotalPrice(category PricingCategory, seats int) float64 {
	return float64(seats) * PricePerSeat(category)
}
