package deal

// Source identifies the vendor catalog a deal came from
type Source string

const (
	SourceAmazon     Source = "Amazon"
	SourceAliExpress Source = "AliExpress"
)

// Deal represents a normalized discounted product ready for
// filtering, ranking and publishing. Once constructed it is never mutated.
type Deal struct {
	Source        Source   `json:"source"`
	Category      string   `json:"category"`
	Title         string   `json:"title"`
	ImageURL      string   `json:"image_url"`
	OriginalPrice float64  `json:"original_price"`
	OfferPrice    float64  `json:"offer_price"`
	Currency      string   `json:"currency"`
	DiscountPct   int      `json:"discount_pct"`
	AffiliateURL  string   `json:"affiliate_url"`
	Rating        *float64 `json:"rating,omitempty"`
	OrderCount    *int     `json:"order_count,omitempty"`
}

// AmazonRecord is the raw search record extracted from a PA-API item.
// Zero-valued numeric fields mean the vendor did not report them.
type AmazonRecord struct {
	Title         string
	ImageURL      string
	DetailPageURL string
	Price         float64
	Currency      string
	SavingBasis   float64
	SavingsAmount float64
	SavingsPct    int
	HasSavings    bool
	Rating        *float64
	ReviewCount   *int
}

// AliExpressRecord is the raw product record from the affiliate product
// query. Prices arrive as strings and the discount may carry a trailing '%'.
type AliExpressRecord struct {
	Title         string
	ImageURL      string
	DetailPageURL string
	OriginalPrice string
	SalePrice     string
	Discount      string
	OrderVolume   *int
	EvaluateRate  string
}
