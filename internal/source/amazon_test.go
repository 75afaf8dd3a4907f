package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chollobot/internal/deal"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	cache map[string][]byte
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, &mockError{message: "cache miss"}
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.cache[key] = value
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	delete(m.cache, key)
	return nil
}

type mockError struct {
	message string
}

func (e *mockError) Error() string {
	return e.message
}

const searchItemsFixture = `{
	"SearchResult": {
		"Items": [
			{
				"DetailPageURL": "https://www.amazon.es/dp/B0DEAL?tag=mytag-21",
				"ItemInfo": {"Title": {"DisplayValue": "SSD 1TB NVMe"}},
				"Images": {"Primary": {"Large": {"URL": "https://img.example.com/ssd.jpg"}}},
				"Offers": {"Listings": [{
					"Price": {"Amount": 75.0, "Currency": "EUR", "Savings": {"Amount": 25.0, "Percentage": 25}},
					"SavingBasis": {"Amount": 100.0}
				}]},
				"CustomerReviews": {"Count": 321, "StarRating": {"Value": 4.5}}
			},
			{
				"DetailPageURL": "https://www.amazon.es/dp/B0FULL?tag=mytag-21",
				"ItemInfo": {"Title": {"DisplayValue": "Monitor sin descuento"}},
				"Images": {"Primary": {"Large": {"URL": "https://img.example.com/mon.jpg"}}},
				"Offers": {"Listings": [{
					"Price": {"Amount": 199.0, "Currency": "EUR"}
				}]}
			},
			{
				"DetailPageURL": "https://www.amazon.es/dp/B0NOOFFER",
				"ItemInfo": {"Title": {"DisplayValue": "Sin ofertas"}}
			}
		]
	}
}`

func newTestAmazonSource(endpoint string, filter deal.FilterConfig, cacheSvc *MockCacheService) *AmazonSource {
	s := NewAmazonSource(AmazonConfig{
		AccessKey:   "AKIDEXAMPLE",
		SecretKey:   "secret",
		PartnerTag:  "mytag-21",
		Host:        "webservices.amazon.es",
		Region:      "eu-west-1",
		Marketplace: "www.amazon.es",
		Filter:      filter,
		Buckets: []SearchBucket{
			{Category: "Tecnología", Index: "Electronics", Keywords: []string{"ssd"}},
		},
	}, cacheSvc)
	s.client.endpoint = endpoint
	return s
}

func TestAmazonFetchDeals(t *testing.T) {
	var gotAuth, gotTarget string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTarget = r.Header.Get("X-Amz-Target")
		w.Write([]byte(searchItemsFixture))
	}))
	defer ts.Close()

	s := newTestAmazonSource(ts.URL, deal.FilterConfig{MinDiscountPct: 25}, NewMockCacheService())
	deals, err := s.FetchDeals(context.Background())

	assert.NoError(t, err)
	assert.Len(t, deals, 1)
	assert.Equal(t, "SSD 1TB NVMe", deals[0].Title)
	assert.Equal(t, "Tecnología", deals[0].Category)
	assert.Equal(t, 100.0, deals[0].OriginalPrice)
	assert.Equal(t, 75.0, deals[0].OfferPrice)
	assert.Equal(t, 25, deals[0].DiscountPct)
	assert.Equal(t, "https://www.amazon.es/dp/B0DEAL?tag=mytag-21", deals[0].AffiliateURL)
	assert.Equal(t, 4.5, *deals[0].Rating)

	// The request must be SigV4 signed
	assert.Contains(t, gotAuth, "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/")
	assert.Contains(t, gotAuth, "SignedHeaders=content-encoding;content-type;host;x-amz-date;x-amz-target")
	assert.Equal(t, amazonTarget, gotTarget)
}

func TestAmazonFetchDealsKeywordFailureIsSkipped(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	s := newTestAmazonSource(ts.URL, deal.FilterConfig{MinDiscountPct: 25}, NewMockCacheService())
	deals, err := s.FetchDeals(context.Background())

	// A failed keyword is logged and skipped, never fatal
	assert.NoError(t, err)
	assert.Empty(t, deals)
}

func TestAmazonFetchDealsRateLimitSetsBlock(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	mockCache := NewMockCacheService()
	s := newTestAmazonSource(ts.URL, deal.FilterConfig{MinDiscountPct: 25}, mockCache)

	deals, err := s.FetchDeals(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, deals)

	// The throttling response must have set the block key
	_, err = mockCache.Get("amazon_rate_limited")
	assert.NoError(t, err)

	// And the next run is refused outright
	_, err = s.FetchDeals(context.Background())
	assert.Error(t, err)
}
