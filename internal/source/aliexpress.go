package source

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"chollobot/helpers"
	"chollobot/internal/deal"
	"chollobot/logger"
	"chollobot/pkg/errs"
	"chollobot/services/cache"
)

// DefaultAliExpressKeywords are the queries run when none are configured.
// AliExpress has no per-bucket category labels; every deal is labeled with
// the vendor name itself.
var DefaultAliExpressKeywords = []string{
	"auriculares bluetooth", "ssd", "zapatillas", "smartwatch", "masajeador", "monitor",
}

const (
	aliExpressEndpoint = "https://api-sg.aliexpress.com/sync"
	aliExpressPageSize = 10
	aliExpressCategory = "AliExpress"
)

// AliExpressConfig configures the affiliate API source
type AliExpressConfig struct {
	AppKey     string
	AppSecret  string
	TrackingID string
	Filter     deal.FilterConfig
	Keywords   []string
}

// AliExpressSource fetches discounted products through the Open Platform
// affiliate API. Accepted candidates additionally need their promotion link
// resolved; a product without one is dropped, since an unlinkable product
// may never be published.
type AliExpressSource struct {
	BaseSource
	client   *aliExpressClient
	keywords []string
}

var _ Source = (*AliExpressSource)(nil)

// NewAliExpressSource creates a new AliExpress source
func NewAliExpressSource(cfg AliExpressConfig, cacheSvc cache.CacheService) *AliExpressSource {
	keywords := cfg.Keywords
	if len(keywords) == 0 {
		keywords = DefaultAliExpressKeywords
	}
	return &AliExpressSource{
		BaseSource: BaseSource{
			Provider:  string(deal.SourceAliExpress),
			CacheKey:  "aliexpress_rate_limited",
			CacheSvc:  cacheSvc,
			BlockTime: 300 * time.Second,
			Filter:    cfg.Filter,
		},
		client: &aliExpressClient{
			appKey:     cfg.AppKey,
			appSecret:  cfg.AppSecret,
			trackingID: cfg.TrackingID,
			endpoint:   aliExpressEndpoint,
		},
		keywords: keywords,
	}
}

// FetchDeals queries every keyword, normalizes, filters and resolves the
// promotion link per accepted candidate. Per-keyword and per-item failures
// are logged and skipped.
func (s *AliExpressSource) FetchDeals(ctx context.Context) ([]deal.Deal, error) {
	if err := s.blocked(); err != nil {
		return nil, errs.NewRateLimit(s.Provider, s.BlockTime)
	}

	log := logger.ForSource(s.GetName())
	var deals []deal.Deal

	for _, kw := range s.keywords {
		records, err := s.client.queryProducts(ctx, kw, aliExpressPageSize)
		if err != nil {
			s.noteRateLimit(err)
			log.Error().Err(err).Str("keyword", kw).Msg("query failed")
			continue
		}

		for _, rec := range records {
			d, err := deal.NormalizeAliExpress(rec, aliExpressCategory)
			if err != nil {
				log.Debug().Err(err).Msg("record dropped")
				continue
			}
			if !s.Filter.Accept(d) {
				continue
			}

			link, err := s.client.generateLink(ctx, rec.DetailPageURL)
			if err != nil || link == "" {
				// No resolvable promotion link is a valid, non-fatal outcome.
				log.Debug().Err(err).Str("title", d.Title).Msg("no promotion link")
				continue
			}
			d.AffiliateURL = link
			deals = append(deals, d)
		}
	}

	log.Info().Int("count", len(deals)).Msg("fetched deals")
	return deals, nil
}

// aliExpressClient is a minimal TOP-protocol client for the two affiliate
// methods this worker uses. Every call is a form POST with the system
// parameters plus a sha256-HMAC signature over the sorted key/value pairs.
type aliExpressClient struct {
	appKey     string
	appSecret  string
	trackingID string
	endpoint   string
}

type aliProduct struct {
	ProductTitle        string `json:"product_title"`
	ProductMainImageURL string `json:"product_main_image_url"`
	ProductDetailURL    string `json:"product_detail_url"`
	OriginalPrice       string `json:"original_price"`
	TargetSalePrice     string `json:"target_sale_price"`
	Discount            string `json:"discount"`
	LastestVolume       *int   `json:"lastest_volume"`
	EvaluateRate        string `json:"evaluate_rate"`
}

type productQueryResponse struct {
	Result struct {
		RespResult struct {
			Result struct {
				Products struct {
					Product []aliProduct `json:"product"`
				} `json:"products"`
			} `json:"result"`
		} `json:"resp_result"`
	} `json:"aliexpress_affiliate_product_query_response"`
	ErrorResponse *topError `json:"error_response"`
}

type linkGenerateResponse struct {
	Result struct {
		RespResult struct {
			Result struct {
				PromotionLinks struct {
					PromotionLink []struct {
						PromotionLink string `json:"promotion_link"`
						SourceValue   string `json:"source_value"`
					} `json:"promotion_link"`
				} `json:"promotion_links"`
			} `json:"result"`
		} `json:"resp_result"`
	} `json:"aliexpress_affiliate_link_generate_response"`
	ErrorResponse *topError `json:"error_response"`
}

type topError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// queryProducts runs one aliexpress.affiliate.product.query call
func (c *aliExpressClient) queryProducts(ctx context.Context, keywords string, pageSize int) ([]deal.AliExpressRecord, error) {
	provider := string(deal.SourceAliExpress)

	body, err := c.call(ctx, "aliexpress.affiliate.product.query", map[string]string{
		"keywords":        keywords,
		"page_size":       strconv.Itoa(pageSize),
		"target_currency": "EUR",
		"target_language": "ES",
		"tracking_id":     c.trackingID,
	})
	if err != nil {
		return nil, errs.NewSearch(provider, "product query failed", err)
	}

	var resp productQueryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errs.NewSearch(provider, "unparsable product query response", err)
	}
	if resp.ErrorResponse != nil {
		return nil, errs.NewSearch(provider, resp.ErrorResponse.Msg, nil)
	}

	products := resp.Result.RespResult.Result.Products.Product
	records := make([]deal.AliExpressRecord, 0, len(products))
	for _, p := range products {
		records = append(records, deal.AliExpressRecord{
			Title:         p.ProductTitle,
			ImageURL:      p.ProductMainImageURL,
			DetailPageURL: p.ProductDetailURL,
			OriginalPrice: p.OriginalPrice,
			SalePrice:     p.TargetSalePrice,
			Discount:      p.Discount,
			OrderVolume:   p.LastestVolume,
			EvaluateRate:  p.EvaluateRate,
		})
	}
	return records, nil
}

// generateLink resolves a detail page URL into a tracked promotion link.
// An empty string with nil error means the vendor had no link for the item.
func (c *aliExpressClient) generateLink(ctx context.Context, detailURL string) (string, error) {
	provider := string(deal.SourceAliExpress)

	body, err := c.call(ctx, "aliexpress.affiliate.link.generate", map[string]string{
		"promotion_link_type": "0",
		"source_values":       detailURL,
		"tracking_id":         c.trackingID,
	})
	if err != nil {
		return "", errs.NewLink(provider, "link generate failed", err)
	}

	var resp linkGenerateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errs.NewLink(provider, "unparsable link generate response", err)
	}
	if resp.ErrorResponse != nil {
		return "", errs.NewLink(provider, resp.ErrorResponse.Msg, nil)
	}

	links := resp.Result.RespResult.Result.PromotionLinks.PromotionLink
	if len(links) == 0 {
		return "", nil
	}
	return links[0].PromotionLink, nil
}

// call sends one signed TOP request and returns the raw response body
func (c *aliExpressClient) call(ctx context.Context, method string, biz map[string]string) ([]byte, error) {
	params := map[string]string{
		"method":      method,
		"app_key":     c.appKey,
		"sign_method": "sha256",
		"timestamp":   strconv.FormatInt(time.Now().UnixMilli(), 10),
		"format":      "json",
		"v":           "2.0",
	}
	for k, v := range biz {
		params[k] = v
	}
	params["sign"] = c.signature(params)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	return helpers.Do(req)
}

// signature computes the TOP sha256-HMAC over the concatenation of the
// sorted key/value pairs, uppercase hex encoded.
func (c *aliExpressClient) signature(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}

	mac := hmac.New(sha256.New, []byte(c.appSecret))
	mac.Write([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}
