package hotels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/tooeasytravel/hotel-bot/internal/errors"
	"github.com/tooeasytravel/hotel-bot/pkg/config"
	"github.com/tooeasytravel/hotel-bot/pkg/metrics"
)

const (
	endpointCitySearch     = "/locations/v3/search"
	endpointPropertyList   = "/properties/v2/list"
	endpointPropertyDetail = "/properties/v2/detail"

	sortCheapestFirst = "PRICE_LOW_TO_HIGH"

	resultWindowSize = 10
	maxAttempts      = 4
)

// Client talks to the hotel-search HTTP API with client-side rate limiting,
// bounded retries and a circuit breaker in front of the transport.
type Client struct {
	baseURL string
	apiKey  string
	host    string
	locale  string
	siteID  int64

	hc      *http.Client
	limiter *rate.Limiter
	breaker *apperrors.CircuitBreaker
	log     *slog.Logger
}

// NewClient builds a Client from configuration.
func NewClient(cfg config.HotelsConfig, log *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("hotels: api key is required")
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		host:    cfg.Host,
		locale:  cfg.Locale,
		siteID:  cfg.SiteID,
		hc:      &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		breaker: apperrors.NewCircuitBreaker(apperrors.BreakerConfig{}),
		log:     log.With("component", "hotels_client"),
	}, nil
}

// wire shapes, kept private to this package.

type citySearchResponse struct {
	Results []struct {
		Type        string `json:"type"`
		GaiaID      string `json:"gaiaId"`
		RegionNames struct {
			ShortName string `json:"shortName"`
			FullName  string `json:"fullName"`
		} `json:"regionNames"`
	} `json:"sr"`
}

type propertyListRequest struct {
	Currency    string      `json:"currency"`
	Locale      string      `json:"locale"`
	SiteID      int64       `json:"siteId"`
	Destination destination `json:"destination"`
	CheckIn     wireDate    `json:"checkInDate"`
	CheckOut    wireDate    `json:"checkOutDate"`
	Rooms       []room      `json:"rooms"`
	ResultsFrom int         `json:"resultsStartingIndex"`
	ResultsSize int         `json:"resultsSize"`
	Sort        string      `json:"sort,omitempty"`
}

type destination struct {
	RegionID string `json:"regionId"`
}

type wireDate struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

type room struct {
	Adults   int        `json:"adults"`
	Children []childAge `json:"children"`
}

type childAge struct {
	Age int `json:"age"`
}

type propertyListResponse struct {
	Data struct {
		PropertySearch struct {
			Properties []struct {
				ID              string `json:"id"`
				Name            string `json:"name"`
				DestinationInfo struct {
					DistanceFromDestination struct {
						Unit  string  `json:"unit"`
						Value float64 `json:"value"`
					} `json:"distanceFromDestination"`
				} `json:"destinationInfo"`
				Price struct {
					Lead struct {
						Amount       float64 `json:"amount"`
						CurrencyInfo struct {
							Code string `json:"code"`
						} `json:"currencyInfo"`
					} `json:"lead"`
				} `json:"price"`
			} `json:"properties"`
		} `json:"propertySearch"`
	} `json:"data"`
}

type propertyDetailRequest struct {
	Currency   string `json:"currency"`
	Locale     string `json:"locale"`
	SiteID     int64  `json:"siteId"`
	PropertyID string `json:"propertyId"`
}

type propertyDetailResponse struct {
	Data struct {
		PropertyInfo struct {
			Summary struct {
				Location struct {
					Address struct {
						AddressLine string `json:"addressLine"`
					} `json:"address"`
				} `json:"location"`
			} `json:"summary"`
			PropertyGallery struct {
				Images []struct {
					Image struct {
						URL string `json:"url"`
					} `json:"image"`
				} `json:"images"`
			} `json:"propertyGallery"`
		} `json:"propertyInfo"`
	} `json:"data"`
}

// SearchCities implements API.
func (c *Client) SearchCities(ctx context.Context, name string) ([]CityCandidate, error) {
	url := fmt.Sprintf("%s%s?q=%s&locale=%s&siteid=%d", c.baseURL, endpointCitySearch, urlQueryEscape(name), c.locale, c.siteID)

	var resp citySearchResponse
	if err := c.do(ctx, http.MethodGet, endpointCitySearch, url, nil, &resp); err != nil {
		return nil, err
	}

	candidates := make([]CityCandidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Type != "CITY" {
			continue
		}
		if r.GaiaID == "" {
			continue
		}
		label := r.RegionNames.FullName
		if label == "" {
			label = r.RegionNames.ShortName
		}
		candidates = append(candidates, CityCandidate{Name: label, RegionID: r.GaiaID})
	}
	if len(candidates) == 0 {
		return nil, ErrNoCitiesFound
	}
	return candidates, nil
}

// SearchProperties implements API. The occupancy is fixed for every search:
// one room, two adults and two children aged 5 and 7.
func (c *Client) SearchProperties(ctx context.Context, req PropertiesRequest) ([]Property, error) {
	payload := propertyListRequest{
		Currency: "USD",
		Locale:   c.locale,
		SiteID:   c.siteID,
		Destination: destination{
			RegionID: req.RegionID,
		},
		CheckIn:  wireDate{Day: req.CheckIn.Day, Month: req.CheckIn.Month, Year: req.CheckIn.Year},
		CheckOut: wireDate{Day: req.CheckOut.Day, Month: req.CheckOut.Month, Year: req.CheckOut.Year},
		Rooms: []room{
			{Adults: 2, Children: []childAge{{Age: 5}, {Age: 7}}},
		},
		ResultsFrom: 0,
		ResultsSize: resultWindowSize,
	}
	if req.SortCheapestFirst {
		payload.Sort = sortCheapestFirst
	}

	var resp propertyListResponse
	url := c.baseURL + endpointPropertyList
	if err := c.do(ctx, http.MethodPost, endpointPropertyList, url, payload, &resp); err != nil {
		return nil, err
	}

	props := resp.Data.PropertySearch.Properties
	out := make([]Property, 0, len(props))
	for _, p := range props {
		out = append(out, Property{
			ID:            p.ID,
			Name:          p.Name,
			DistanceValue: p.DestinationInfo.DistanceFromDestination.Value,
			DistanceUnit:  p.DestinationInfo.DistanceFromDestination.Unit,
			Price:         p.Price.Lead.Amount,
			CurrencyCode:  p.Price.Lead.CurrencyInfo.Code,
		})
	}
	return out, nil
}

// PropertyDetail implements API.
func (c *Client) PropertyDetail(ctx context.Context, id string) (*PropertyDetail, error) {
	payload := propertyDetailRequest{
		Currency:   "USD",
		Locale:     c.locale,
		SiteID:     c.siteID,
		PropertyID: id,
	}

	var resp propertyDetailResponse
	url := c.baseURL + endpointPropertyDetail
	if err := c.do(ctx, http.MethodPost, endpointPropertyDetail, url, payload, &resp); err != nil {
		return nil, err
	}

	detail := &PropertyDetail{
		AddressLine: resp.Data.PropertyInfo.Summary.Location.Address.AddressLine,
	}
	for _, img := range resp.Data.PropertyInfo.PropertyGallery.Images {
		if img.Image.URL != "" {
			detail.ImageURLs = append(detail.ImageURLs, img.Image.URL)
		}
	}
	return detail, nil
}

// do runs one logical API call through the limiter and breaker, retrying on
// 429 and transient 5xx with exponential backoff, honoring Retry-After.
func (c *Client) do(ctx context.Context, method, endpoint, url string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	err := c.breaker.Call(func() error {
		return c.doOnce(ctx, method, url, body, out)
	})
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordAPIRequest(endpoint, status, time.Since(start))

	if err != nil {
		if err == apperrors.ErrCircuitOpen {
			c.log.WarnContext(ctx, "hotels api circuit open", "endpoint", endpoint)
		}
		return apperrors.NewExternalAPIError("hotels", err)
	}
	return nil
}

func (c *Client) doOnce(ctx context.Context, method, url string, body, out any) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var reader io.Reader
		if body != nil {
			buf, err := json.Marshal(body)
			if err != nil {
				return err
			}
			reader = bytes.NewReader(buf)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		if c.host != "" {
			req.Header.Set("X-RapidAPI-Host", c.host)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if attempt < maxAttempts-1 && sleepCtx(ctx, backoff(attempt)) {
				continue
			}
			return lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(attempt)
			}
			lastErr = fmt.Errorf("hotels: remote status %d", resp.StatusCode)
			if attempt < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("hotels: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * 250 * time.Millisecond
}

func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func urlQueryEscape(s string) string {
	return url.QueryEscape(s)
}
