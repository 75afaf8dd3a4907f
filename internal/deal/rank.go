package deal

import "sort"

// Rank orders deals by discount percentage descending and truncates the
// result to maxPosts. The sort is stable, so deals with equal discounts keep
// their input order (all of vendor A's accepted deals in query order,
// followed by vendor B's). A non-positive maxPosts yields an empty slice.
func Rank(deals []Deal, maxPosts int) []Deal {
	if maxPosts <= 0 {
		return nil
	}

	ranked := make([]Deal, len(deals))
	copy(ranked, deals)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DiscountPct > ranked[j].DiscountPct
	})

	if len(ranked) > maxPosts {
		ranked = ranked[:maxPosts]
	}
	return ranked
}
