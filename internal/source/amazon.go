package source

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chollobot/helpers"
	"chollobot/internal/deal"
	"chollobot/logger"
	"chollobot/pkg/errs"
	"chollobot/services/cache"
)

// DefaultAmazonBuckets are the search buckets queried when none are
// configured: a category label for the caption, the PA-API search index,
// and the keywords rotated inside that index.
var DefaultAmazonBuckets = []SearchBucket{
	{Category: "Tecnología", Index: "Electronics", Keywords: []string{"ssd", "monitor", "ratón", "teclado", "smartwatch"}},
	{Category: "Salud", Index: "HealthPersonalCare", Keywords: []string{"cepillo dental", "masajeador", "oxímetro", "vitamina"}},
	{Category: "Moda", Index: "Fashion", Keywords: []string{"zapatillas", "chaqueta", "mochila", "reloj"}},
}

const amazonItemsPerKeyword = 10

// AmazonConfig configures the PA-API source
type AmazonConfig struct {
	AccessKey   string
	SecretKey   string
	PartnerTag  string
	Host        string
	Region      string
	Marketplace string
	Filter      deal.FilterConfig
	Buckets     []SearchBucket
}

// AmazonSource fetches discounted products through the Product Advertising
// API. Detail page URLs already carry the partner tag, so no separate link
// resolution step is needed.
type AmazonSource struct {
	BaseSource
	client  *amazonClient
	buckets []SearchBucket
}

var _ Source = (*AmazonSource)(nil)

// NewAmazonSource creates a new Amazon source
func NewAmazonSource(cfg AmazonConfig, cacheSvc cache.CacheService) *AmazonSource {
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = DefaultAmazonBuckets
	}
	return &AmazonSource{
		BaseSource: BaseSource{
			Provider:  string(deal.SourceAmazon),
			CacheKey:  "amazon_rate_limited",
			CacheSvc:  cacheSvc,
			BlockTime: 300 * time.Second,
			Filter:    cfg.Filter,
		},
		client: &amazonClient{
			accessKey:   cfg.AccessKey,
			secretKey:   cfg.SecretKey,
			partnerTag:  cfg.PartnerTag,
			host:        cfg.Host,
			region:      cfg.Region,
			marketplace: cfg.Marketplace,
		},
		buckets: buckets,
	}
}

// FetchDeals queries every bucket keyword, normalizes and filters the
// results. A failed keyword is logged and skipped; it never aborts the
// remaining keywords.
func (s *AmazonSource) FetchDeals(ctx context.Context) ([]deal.Deal, error) {
	if err := s.blocked(); err != nil {
		return nil, errs.NewRateLimit(s.Provider, s.BlockTime)
	}

	log := logger.ForSource(s.GetName())
	var deals []deal.Deal

	for _, bucket := range s.buckets {
		for _, kw := range bucket.Keywords {
			records, err := s.client.searchItems(ctx, kw, bucket.Index, amazonItemsPerKeyword)
			if err != nil {
				s.noteRateLimit(err)
				log.Error().Err(err).Str("keyword", kw).Msg("search failed")
				continue
			}

			for _, rec := range records {
				d, err := deal.NormalizeAmazon(rec, bucket.Category)
				if err != nil {
					log.Debug().Err(err).Msg("record dropped")
					continue
				}
				if !s.Filter.Accept(d) {
					continue
				}
				deals = append(deals, d)
			}
		}
	}

	log.Info().Int("count", len(deals)).Msg("fetched deals")
	return deals, nil
}

// amazonClient is a minimal PA-API v5 SearchItems client. Requests are
// signed with AWS Signature Version 4; the service name is fixed by the
// API, not by the region.
type amazonClient struct {
	accessKey   string
	secretKey   string
	partnerTag  string
	host        string
	region      string
	marketplace string
	endpoint    string // overrides the https://host URL, used by tests
}

const (
	amazonService = "ProductAdvertisingAPI"
	amazonPath    = "/paapi5/searchitems"
	amazonTarget  = "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.SearchItems"
)

var amazonResources = []string{
	"ItemInfo.Title",
	"Images.Primary.Large",
	"Offers.Listings.Price",
	"Offers.Listings.SavingBasis",
	"CustomerReviews.Count",
	"CustomerReviews.StarRating",
}

type searchItemsRequest struct {
	Keywords    string   `json:"Keywords"`
	SearchIndex string   `json:"SearchIndex"`
	ItemCount   int      `json:"ItemCount"`
	PartnerTag  string   `json:"PartnerTag"`
	PartnerType string   `json:"PartnerType"`
	Marketplace string   `json:"Marketplace"`
	Resources   []string `json:"Resources"`
}

type searchItemsResponse struct {
	SearchResult struct {
		Items []paapiItem `json:"Items"`
	} `json:"SearchResult"`
	Errors []struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
	} `json:"Errors"`
}

type paapiItem struct {
	DetailPageURL string `json:"DetailPageURL"`
	ItemInfo      struct {
		Title struct {
			DisplayValue string `json:"DisplayValue"`
		} `json:"Title"`
	} `json:"ItemInfo"`
	Images struct {
		Primary struct {
			Large struct {
				URL string `json:"URL"`
			} `json:"Large"`
		} `json:"Primary"`
	} `json:"Images"`
	Offers struct {
		Listings []struct {
			Price struct {
				Amount   float64 `json:"Amount"`
				Currency string  `json:"Currency"`
				Savings  *struct {
					Amount     float64 `json:"Amount"`
					Percentage int     `json:"Percentage"`
				} `json:"Savings"`
			} `json:"Price"`
			SavingBasis *struct {
				Amount float64 `json:"Amount"`
			} `json:"SavingBasis"`
		} `json:"Listings"`
	} `json:"Offers"`
	CustomerReviews struct {
		Count      *int `json:"Count"`
		StarRating *struct {
			Value float64 `json:"Value"`
		} `json:"StarRating"`
	} `json:"CustomerReviews"`
}

// searchItems runs one SearchItems call and flattens the response into raw
// records for the normalizer.
func (c *amazonClient) searchItems(ctx context.Context, keywords, index string, count int) ([]deal.AmazonRecord, error) {
	payload, err := json.Marshal(searchItemsRequest{
		Keywords:    keywords,
		SearchIndex: index,
		ItemCount:   count,
		PartnerTag:  c.partnerTag,
		PartnerType: "Associates",
		Marketplace: c.marketplace,
		Resources:   amazonResources,
	})
	if err != nil {
		return nil, err
	}

	endpoint := c.endpoint
	if endpoint == "" {
		endpoint = "https://" + c.host + amazonPath
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.sign(req, payload, time.Now().UTC())

	body, err := helpers.Do(req)
	if err != nil {
		return nil, errs.NewSearch(string(deal.SourceAmazon), "searchitems request failed", err)
	}

	var resp searchItemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errs.NewSearch(string(deal.SourceAmazon), "unparsable searchitems response", err)
	}
	if len(resp.Errors) > 0 {
		return nil, errs.NewSearch(string(deal.SourceAmazon),
			fmt.Sprintf("%s: %s", resp.Errors[0].Code, resp.Errors[0].Message), nil)
	}

	records := make([]deal.AmazonRecord, 0, len(resp.SearchResult.Items))
	for _, it := range resp.SearchResult.Items {
		if len(it.Offers.Listings) == 0 {
			continue
		}
		listing := it.Offers.Listings[0]

		rec := deal.AmazonRecord{
			Title:         it.ItemInfo.Title.DisplayValue,
			ImageURL:      it.Images.Primary.Large.URL,
			DetailPageURL: it.DetailPageURL,
			Price:         listing.Price.Amount,
			Currency:      listing.Price.Currency,
			ReviewCount:   it.CustomerReviews.Count,
		}
		if listing.SavingBasis != nil {
			rec.SavingBasis = listing.SavingBasis.Amount
		}
		if listing.Price.Savings != nil {
			rec.HasSavings = true
			rec.SavingsAmount = listing.Price.Savings.Amount
			rec.SavingsPct = listing.Price.Savings.Percentage
		}
		if it.CustomerReviews.StarRating != nil {
			rating := it.CustomerReviews.StarRating.Value
			rec.Rating = &rating
		}
		records = append(records, rec)
	}
	return records, nil
}

// sign applies AWS Signature Version 4 to the request headers
func (c *amazonClient) sign(req *http.Request, payload []byte, now time.Time) {
	amzDate := now.Format("20060102T150405Z")
	dateStamp := now.Format("20060102")

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Content-Encoding", "amz-1.0")
	req.Header.Set("X-Amz-Date", amzDate)
	req.Header.Set("X-Amz-Target", amazonTarget)

	canonicalHeaders := strings.Join([]string{
		"content-encoding:amz-1.0",
		"content-type:application/json; charset=utf-8",
		"host:" + c.host,
		"x-amz-date:" + amzDate,
		"x-amz-target:" + amazonTarget,
	}, "\n") + "\n"
	signedHeaders := "content-encoding;content-type;host;x-amz-date;x-amz-target"

	payloadHash := sha256.Sum256(payload)
	canonicalRequest := strings.Join([]string{
		http.MethodPost,
		amazonPath,
		"",
		canonicalHeaders,
		signedHeaders,
		hex.EncodeToString(payloadHash[:]),
	}, "\n")

	scope := strings.Join([]string{dateStamp, c.region, amazonService, "aws4_request"}, "/")
	requestHash := sha256.Sum256([]byte(canonicalRequest))
	stringToSign := strings.Join([]string{
		"AWS4-HMAC-SHA256",
		amzDate,
		scope,
		hex.EncodeToString(requestHash[:]),
	}, "\n")

	key := hmacSHA256([]byte("AWS4"+c.secretKey), dateStamp)
	key = hmacSHA256(key, c.region)
	key = hmacSHA256(key, amazonService)
	key = hmacSHA256(key, "aws4_request")
	signature := hex.EncodeToString(hmacSHA256(key, stringToSign))

	req.Header.Set("Authorization", fmt.Sprintf(
		"AWS4-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		c.accessKey, scope, signedHeaders, signature,
	))
}

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}
