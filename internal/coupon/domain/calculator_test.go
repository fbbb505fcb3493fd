package domain_test

import (
	"testing"

	"github.com/itfy/evoting/internal/coupon/domain"
)

func TestComputeDiscount(t *testing.T) {
	cases := []struct {
		name   string
		coupon domain.Coupon
		base   int64
		want   int64
	}{
		{
			name:   "percentage",
			coupon: domain.Coupon{DiscountType: domain.DiscountPercentage, DiscountValue: 10},
			base:   20000,
			want:   2000,
		},
		{
			name:   "percentage capped by max discount",
			coupon: domain.Coupon{DiscountType: domain.DiscountPercentage, DiscountValue: 10, MaxDiscount: 1500},
			base:   20000,
			want:   1500,
		},
		{
			name:   "percentage rounds down",
			coupon: domain.Coupon{DiscountType: domain.DiscountPercentage, DiscountValue: 33},
			base:   100,
			want:   33,
		},
		{
			name:   "fixed",
			coupon: domain.Coupon{DiscountType: domain.DiscountFixed, DiscountValue: 500},
			base:   2000,
			want:   500,
		},
		{
			name:   "fixed capped by max discount",
			coupon: domain.Coupon{DiscountType: domain.DiscountFixed, DiscountValue: 3000, MaxDiscount: 1000},
			base:   20000,
			want:   1000,
		},
		{
			name:   "fixed clamped to base amount",
			coupon: domain.Coupon{DiscountType: domain.DiscountFixed, DiscountValue: 3000},
			base:   2000,
			want:   2000,
		},
		{
			name:   "zero base",
			coupon: domain.Coupon{DiscountType: domain.DiscountPercentage, DiscountValue: 50},
			base:   0,
			want:   0,
		},
		{
			name:   "unknown type",
			coupon: domain.Coupon{DiscountType: "bogus", DiscountValue: 50},
			base:   1000,
			want:   0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.ComputeDiscount(tc.coupon, tc.base)
			if got != tc.want {
				t.Fatalf("expected discount %d, got %d", tc.want, got)
			}
		})
	}
}
