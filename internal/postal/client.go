package postal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"receiptd/internal/providers"
	"receiptd/internal/structures"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/width"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidPostalCode = errors.New("postal code must be 7 digits")
	ErrLookupFailed      = errors.New("postal code lookup failed")
	ErrNoResults         = errors.New("no address found for postal code")
	ErrLookupDisabled    = errors.New("postal code lookup is disabled")
)

// Candidate is one address match. Fragments run from prefecture down to town.
type Candidate struct {
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
	Town       string `json:"town"`
}

func (c Candidate) Address() string {
	return c.Prefecture + c.City + c.Town
}

type zipcloudResponse struct {
	Status  int     `json:"status"`
	Message *string `json:"message"`
	Results []struct {
		Address1 string `json:"address1"`
		Address2 string `json:"address2"`
		Address3 string `json:"address3"`
		Zipcode  string `json:"zipcode"`
	} `json:"results"`
}

type Client struct {
	enabled  bool
	endpoint string
	http     *http.Client
	timeout  time.Duration
	cache    providers.CacheProviderInterface
	limiter  *rate.Limiter
	group    singleflight.Group
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
}

func NewClient(conf *structures.Config, cache providers.CacheProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *Client {
	pc := conf.Postal
	limit := rate.Inf
	if pc.RatePerSecond > 0 {
		limit = rate.Limit(pc.RatePerSecond)
	}
	burst := max(pc.Burst, 1)
	timeout := pc.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		enabled:  pc.Enabled,
		endpoint: pc.Endpoint,
		http:     &http.Client{Timeout: timeout},
		timeout:  timeout,
		cache:    cache,
		limiter:  rate.NewLimiter(limit, burst),
		logger:   logger,
		metrics:  metrics,
	}
}

// Normalize folds full-width digits, drops hyphens and checks for exactly
// seven digits.
func Normalize(code string) (string, error) {
	folded := width.Fold.String(strings.TrimSpace(code))
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-', r == 'ー', r == '‐', r == '−', r == ' ', r == '〒':
		default:
			return "", ErrInvalidPostalCode
		}
	}
	if b.Len() != 7 {
		return "", ErrInvalidPostalCode
	}
	return b.String(), nil
}

func cacheKey(code string) string {
	return "postal:" + code
}

// Lookup resolves a postal code to address candidates. Identical lookups
// running at the same time share one request; the shared request is detached
// from any single caller's cancellation and bounded by the client timeout.
func (c *Client) Lookup(ctx context.Context, code string) ([]Candidate, error) {
	if !c.enabled {
		return nil, ErrLookupDisabled
	}
	normalized, err := Normalize(code)
	if err != nil {
		c.metrics.IncPostalLookups("invalid")
		return nil, err
	}

	if cached, ok := c.cache.Get(cacheKey(normalized)); ok {
		var candidates []Candidate
		if err := json.Unmarshal(cached, &candidates); err == nil {
			c.metrics.IncPostalLookups("cached")
			return candidates, nil
		}
	}

	ch := c.group.DoChan(normalized, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.fetch(shared, normalized)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		c.metrics.IncPostalLookups("error")
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, ctx.Err())
	}
	v, err := res.Val, res.Err
	if err != nil {
		switch {
		case errors.Is(err, ErrNoResults):
			c.metrics.IncPostalLookups("not_found")
		default:
			c.metrics.IncPostalLookups("error")
			c.logger.Warnf(providers.TypePostal, "Lookup %s failed: %s", normalized, err)
		}
		return nil, err
	}

	c.metrics.IncPostalLookups("ok")
	candidates := v.([]Candidate)
	out := make([]Candidate, len(candidates))
	copy(out, candidates)
	return out, nil
}

func (c *Client) fetch(ctx context.Context, code string) ([]Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, err)
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, err)
	}
	q := u.Query()
	q.Set("zipcode", code)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, err)
	}
	defer resp.Body.Close()
	c.logger.Debugf(providers.TypePostal, "GET %s -> %d in %s", u.Redacted(), resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}

	var body zipcloudResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, err)
	}
	if body.Status != 0 && body.Status != http.StatusOK {
		msg := ""
		if body.Message != nil {
			msg = *body.Message
		}
		return nil, fmt.Errorf("%w: status %d %s", ErrLookupFailed, body.Status, msg)
	}
	if len(body.Results) == 0 {
		return nil, ErrNoResults
	}

	candidates := make([]Candidate, 0, len(body.Results))
	for _, r := range body.Results {
		candidates = append(candidates, Candidate{Prefecture: r.Address1, City: r.Address2, Town: r.Address3})
	}
	if data, err := json.Marshal(candidates); err == nil {
		c.cache.Set(cacheKey(code), data)
	}
	return candidates, nil
}

// FillAddress returns the first candidate's address when current is blank.
// Text the user already typed is never replaced.
func FillAddress(current string, candidates []Candidate) (string, bool) {
	if strings.TrimSpace(current) != "" || len(candidates) == 0 {
		return current, false
	}
	return candidates[0].Address(), true
}
