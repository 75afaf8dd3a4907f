package deal

import (
	"math"
	"strconv"
	"strings"

	"chollobot/pkg/errs"
)

// aliExpressCurrency is the fallback symbol for a vendor that does not
// report one: the affiliate query is pinned to EUR.
const aliExpressCurrency = "€"

// DiscountPct derives the integer discount percentage from an original and
// an offer price. A non-positive original price yields an error, never a
// division panic.
func DiscountPct(original, offer float64) (int, error) {
	if original <= 0 {
		return 0, errs.NewNormalization("", "non-positive original price")
	}
	return int(math.Round(100 * (original - offer) / original)), nil
}

// NormalizeAmazon converts a raw PA-API record into a Deal. The category is
// the search bucket label the caller queried with; the detail page URL
// already carries the partner tag. Records without usable prices are
// rejected with a normalization error.
func NormalizeAmazon(rec AmazonRecord, category string) (Deal, error) {
	provider := string(SourceAmazon)

	offer := rec.Price
	if offer <= 0 {
		return Deal{}, errs.NewNormalization(provider, "missing or non-positive offer price")
	}

	orig := rec.SavingBasis
	if orig <= 0 && rec.SavingsAmount > 0 {
		orig = rec.Price + rec.SavingsAmount
	}
	if orig <= 0 {
		return Deal{}, errs.NewNormalization(provider, "missing or non-positive original price")
	}

	discount := rec.SavingsPct
	if !rec.HasSavings || discount <= 0 {
		d, err := DiscountPct(orig, offer)
		if err != nil {
			return Deal{}, errs.NewNormalization(provider, "cannot derive discount")
		}
		discount = d
	}

	return Deal{
		Source:        SourceAmazon,
		Category:      category,
		Title:         rec.Title,
		ImageURL:      rec.ImageURL,
		OriginalPrice: orig,
		OfferPrice:    offer,
		Currency:      rec.Currency,
		DiscountPct:   discount,
		AffiliateURL:  rec.DetailPageURL,
		Rating:        rec.Rating,
		OrderCount:    rec.ReviewCount,
	}, nil
}

// NormalizeAliExpress converts a raw affiliate product record into a Deal.
// Prices arrive as strings; a vendor-supplied discount field wins over the
// price-derived percentage, with any trailing '%' stripped before parsing.
func NormalizeAliExpress(rec AliExpressRecord, category string) (Deal, error) {
	provider := string(SourceAliExpress)

	orig, err := parsePrice(rec.OriginalPrice)
	if err != nil {
		return Deal{}, errs.NewNormalization(provider, "missing or non-positive original price")
	}
	offer, err := parsePrice(rec.SalePrice)
	if err != nil {
		return Deal{}, errs.NewNormalization(provider, "missing or non-positive offer price")
	}

	var discount int
	if d := strings.TrimSpace(rec.Discount); d != "" {
		discount, err = strconv.Atoi(strings.TrimSuffix(d, "%"))
		if err != nil {
			return Deal{}, errs.NewNormalization(provider, "unparsable discount field")
		}
	} else {
		discount, err = DiscountPct(orig, offer)
		if err != nil {
			return Deal{}, errs.NewNormalization(provider, "cannot derive discount")
		}
	}

	return Deal{
		Source:        SourceAliExpress,
		Category:      category,
		Title:         rec.Title,
		ImageURL:      rec.ImageURL,
		OriginalPrice: orig,
		OfferPrice:    offer,
		Currency:      aliExpressCurrency,
		DiscountPct:   discount,
		AffiliateURL:  rec.DetailPageURL,
		Rating:        parseEvaluateRate(rec.EvaluateRate),
		OrderCount:    rec.OrderVolume,
	}, nil
}

// parsePrice parses a vendor price string, rejecting absent or
// non-positive values.
func parsePrice(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errs.NewNormalization("", "non-positive price")
	}
	return v, nil
}

// parseEvaluateRate maps the vendor's "96.5%" positive-feedback figure onto
// the common 0-5 rating scale. Missing or malformed rates yield nil so the
// filter can fail closed when a minimum rating is configured.
func parseEvaluateRate(s string) *float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return nil
	}
	pct, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	rating := pct / 20
	return &rating
}
