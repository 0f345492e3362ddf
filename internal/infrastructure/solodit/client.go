package solodit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"VulnMatcher/internal/cache"
	"VulnMatcher/internal/domain"
	"VulnMatcher/internal/search"
)

const (
	// DefaultBaseURL is the public knowledge-service endpoint.
	DefaultBaseURL = "https://solodit.cyfrin.io/api/v1/solodit"

	apiKeyHeader   = "X-Cyfrin-API-Key"
	defaultTimeout = 15 * time.Second

	// maxAttempts bounds retries: one initial call plus two more.
	maxAttempts       = 3
	defaultRetryAfter = 2 * time.Second
	backoffStep       = 500 * time.Millisecond
)

// Options configures a Client. APIKey is the only required field.
type Options struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	CacheTTL   time.Duration
	CacheSize  int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client executes findings searches against the knowledge service with retry,
// rate-limit cooperation, and result caching. A single instance is safe to
// share across goroutines; concurrent searches each run their own round-trip.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *cache.Store
	logger  *slog.Logger

	// sleep is swapped out by tests; retries block the calling goroutine.
	sleep func(time.Duration)
}

// New validates the credential and wires the HTTP transport and cache.
// A missing API key is a construction-time failure, not a per-call one.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, &APIError{
			Kind:    KindConfig,
			Message: "API key not provided (set SOLODIT_API_KEY)",
		}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = cache.DefaultTTL
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  opts.APIKey,
		http:    httpClient,
		cache:   cache.New(ttl, opts.CacheSize),
		logger:  logger,
		sleep:   time.Sleep,
	}, nil
}

// Search runs one findings query. Cached results are returned verbatim without
// touching the network; fresh results are cached on the way out unless the
// request opts out.
func (c *Client) Search(ctx context.Context, req search.Request) (*domain.SearchResult, error) {
	key := req.CacheKey()
	if !req.NoCache {
		if cached, ok := c.cache.Get(key); ok {
			if result, ok := cached.(*domain.SearchResult); ok {
				c.logger.Debug("cache hit", "key_prefix", truncate(key, 50))
				return result, nil
			}
		}
	}

	body, err := c.post(ctx, "/findings", req.Body())
	if err != nil {
		return nil, err
	}

	result, err := parseSearchResult(body, c.logger)
	if err != nil {
		return nil, err
	}

	if !req.NoCache {
		c.cache.Put(key, result)
	}
	return result, nil
}

// FindByID looks a finding up by id or slug used as a keyword query.
// Returns nil without error when nothing matches.
func (c *Client) FindByID(ctx context.Context, id string) (*domain.Finding, error) {
	result, err := c.Search(ctx, search.Request{Keywords: id, PageSize: 1})
	if err != nil {
		return nil, err
	}
	if len(result.Findings) == 0 {
		return nil, nil
	}
	return &result.Findings[0], nil
}

// similarTags maps common vulnerability-type names to the service's tag
// vocabulary. Unknown types fall through to the raw name as a single tag.
var similarTags = map[string][]string{
	"reentrancy":     {"Reentrancy", "CEI", "External Call"},
	"access_control": {"Access Control", "Authentication", "Admin"},
	"oracle":         {"Oracle", "Price Manipulation", "TWAP"},
	"flash_loan":     {"Flash Loan", "Price Manipulation"},
	"rounding":       {"Rounding", "Precision", "Decimals"},
	"overflow":       {"Overflow", "Underflow", "SafeMath"},
	"delegatecall":   {"Delegatecall", "Proxy"},
	"signature":      {"Signature", "ECDSA", "EIP-712"},
	"frontrunning":   {"Frontrunning", "MEV", "Sandwich"},
	"dos":            {"DOS", "Gas Limit", "Denial-Of-Service"},
	"timestamp":      {"Timestamp", "block.timestamp"},
	"randomness":     {"Randomness", "Cryptography"},
}

// SearchSimilar finds high-quality findings of a named vulnerability type,
// sorted by quality descending.
func (c *Client) SearchSimilar(ctx context.Context, vulnerabilityType, protocolType string, minQuality float64, maxResults int) ([]domain.Finding, error) {
	lookup := strings.ReplaceAll(strings.ToLower(vulnerabilityType), " ", "_")
	tags, ok := similarTags[lookup]
	if !ok {
		tags = []string{vulnerabilityType}
	}

	c.logger.Info("searching similar findings", "type", vulnerabilityType, "tags", tags)

	req := search.Request{
		Tags:            tags,
		QualityScoreMin: &minQuality,
		SortField:       search.SortQuality,
		PageSize:        maxResults,
	}
	if protocolType != "" {
		req.ProtocolCategory = []string{protocolType}
	}

	result, err := c.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	return result.Findings, nil
}

// post implements the retry policy: three total attempts, Retry-After honored
// on 429, linear backoff on timeouts and transport failures, immediate failure
// on 401/403.
func (c *Client) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + endpoint
	var lastErr *APIError

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		c.logger.Debug("api request", "endpoint", endpoint, "attempt", attempt)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("new request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(apiKeyHeader, c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = transportError(err)
			c.logger.Warn("request failed", "endpoint", endpoint, "attempt", attempt, "error", err)
			if attempt < maxAttempts {
				c.sleep(time.Duration(attempt) * backoffStep)
				continue
			}
			break
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfter(resp.Header.Get("Retry-After"))
			drain(resp)
			lastErr = &APIError{
				Kind:       KindUnavailable,
				Message:    "rate limited",
				StatusCode: resp.StatusCode,
				RetryAfter: wait,
			}
			c.logger.Warn("rate limited", "retry_after", wait, "attempt", attempt)
			if attempt < maxAttempts {
				c.sleep(wait)
				continue
			}

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			drain(resp)
			return nil, &APIError{
				Kind:       KindAuth,
				Message:    "authentication failed, check your API key",
				StatusCode: resp.StatusCode,
			}

		case resp.StatusCode >= http.StatusBadRequest:
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			resp.Body.Close()
			lastErr = &APIError{
				Kind:       KindUnavailable,
				Message:    "unexpected status " + resp.Status + ": " + strings.TrimSpace(string(snippet)),
				StatusCode: resp.StatusCode,
			}
			c.logger.Warn("unexpected status", "status", resp.Status, "attempt", attempt)
			if attempt < maxAttempts {
				c.sleep(time.Duration(attempt) * backoffStep)
				continue
			}

		default:
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, &APIError{Kind: KindMalformed, Message: "read response", Err: err}
			}
			return data, nil
		}
	}

	if lastErr == nil {
		lastErr = &APIError{Kind: KindUnavailable, Message: "max retries exceeded"}
	}
	return nil, lastErr
}

func transportError(err error) *APIError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{Kind: KindUnavailable, Message: "request timed out", Err: err}
	}
	return &APIError{Kind: KindUnavailable, Message: "request failed", Err: err}
}

// retryAfter parses the Retry-After header as seconds, defaulting to 2 on a
// missing or unusable value.
func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
