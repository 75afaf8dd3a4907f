package deal

// FilterConfig holds the acceptance thresholds for one vendor. Optional
// thresholds are pointers; nil means the predicate is not applied.
type FilterConfig struct {
	MinDiscountPct   int
	MaxDiscountPct   *int
	MaxOriginalPrice *float64
	MinOrderCount    *int
	MinRating        *float64
}

// Accept reports whether a deal clears every configured threshold. The
// predicates are independent; all must pass. A configured order-count or
// rating floor against a record that carries no such signal rejects the
// record, since it cannot be verified against the requested bar.
func (c FilterConfig) Accept(d Deal) bool {
	if d.DiscountPct < c.MinDiscountPct {
		return false
	}
	// Strictly above the cap rejects; equal-to-cap is accepted.
	if c.MaxDiscountPct != nil && d.DiscountPct > *c.MaxDiscountPct {
		return false
	}
	if c.MaxOriginalPrice != nil && d.OriginalPrice > *c.MaxOriginalPrice {
		return false
	}
	if c.MinOrderCount != nil {
		if d.OrderCount == nil || *d.OrderCount < *c.MinOrderCount {
			return false
		}
	}
	if c.MinRating != nil {
		if d.Rating == nil || *d.Rating < *c.MinRating {
			return false
		}
	}
	return true
}
