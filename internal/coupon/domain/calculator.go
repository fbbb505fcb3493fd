package domain

// ComputeDiscount returns the discount for baseAmount in minor units.
// Percentage discounts round down; MaxDiscount caps either discount
// type when set; fixed discounts never exceed baseAmount. The result
// is always in [0, baseAmount].
func ComputeDiscount(c Coupon, baseAmount int64) int64 {
	if baseAmount <= 0 {
		return 0
	}

	var discount int64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = baseAmount * c.DiscountValue / 100
	case DiscountFixed:
		discount = c.DiscountValue
	default:
		return 0
	}

	if c.MaxDiscount > 0 && discount > c.MaxDiscount {
		discount = c.MaxDiscount
	}
	if discount < 0 {
		return 0
	}
	if discount > baseAmount {
		discount = baseAmount
	}
	return discount
}
