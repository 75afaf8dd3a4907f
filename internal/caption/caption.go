// Package caption renders the MarkdownV2 message body that accompanies a
// published deal photo.
package caption

import (
	"fmt"
	"strings"
	"time"

	"chollobot/helpers"
	"chollobot/internal/deal"
)

// maxTitleRunes caps the product title. Truncation happens before escaping
// so it can never split an escape sequence.
const maxTitleRunes = 120

const (
	offerLabel      = "Ver oferta"
	priceDisclaimer = "Precios y disponibilidad pueden cambiar."
	affiliateNotice = "Aviso afiliados: puedo ganar comisión por compras que cumplan requisitos."
)

// Formatter renders deal captions using the vendor's local civil time.
type Formatter struct {
	loc *time.Location
}

// NewFormatter creates a formatter pinned to Europe/Madrid. When the tzdata
// is unavailable the CET offset is used so the worker still runs.
func NewFormatter() *Formatter {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		loc = time.FixedZone("CET", 60*60)
	}
	return &Formatter{loc: loc}
}

// Format renders the caption for one deal. The body mixes markup constructs
// with escaped literal text: the title/category and footer lines are fully
// escaped, prices are escaped inside strikethrough/bold markers, the
// discount sits in inline code with a U+2212 minus, and the affiliate URL
// stays raw inside the link-target position.
func (f *Formatter) Format(d deal.Deal, now time.Time) string {
	title := helpers.EscapeMarkdownV2(helpers.TruncateRunes(d.Title, maxTitleRunes))
	category := helpers.EscapeMarkdownV2(d.Category)
	currency := helpers.EscapeMarkdownV2(d.Currency)
	origPrice := helpers.EscapeMarkdownV2(fmt.Sprintf("%.2f", d.OriginalPrice))
	offerPrice := helpers.EscapeMarkdownV2(fmt.Sprintf("%.2f", d.OfferPrice))

	line1 := fmt.Sprintf("🛍️ *%s* — _%s_", title, category)
	line2 := fmt.Sprintf("~%s%s~ ➜ *%s%s* `(−%d%%)`", origPrice, currency, offerPrice, currency, d.DiscountPct)
	line3 := fmt.Sprintf("🔗 [%s](%s)", offerLabel, d.AffiliateURL)

	line4 := helpers.EscapeMarkdownV2(fmt.Sprintf("🕒 %s — %s", now.In(f.loc).Format("02/01 15:04"), priceDisclaimer))
	line5 := helpers.EscapeMarkdownV2(fmt.Sprintf("Fuente: %s.", d.Source))
	line6 := helpers.EscapeMarkdownV2(affiliateNotice)

	// Blank separator between the offer block and the footer.
	return strings.Join([]string{line1, line2, line3, "\n" + line4, line5, line6}, "\n")
}
