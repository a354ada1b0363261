package exchange

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://coincheck.com"
	defaultTimeout = 10 * time.Second
)

var ErrNoCredentials = errors.New("coincheck: access key or secret is empty")

type Config struct {
	BaseURL         string
	AccessKey       string
	SecretAccessKey string
	// APISleep is the minimum spacing between two consecutive API calls.
	APISleep time.Duration
	Timeout  time.Duration
}

// Client talks to the Coincheck REST API. All calls share one limiter, so the
// configured spacing holds for every caller of the same client.
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	apiSecret string
	limiter   *rate.Limiter

	nonceMu   sync.Mutex
	lastNonce int64
	now       func() time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	limit := rate.Inf
	if cfg.APISleep > 0 {
		limit = rate.Every(cfg.APISleep)
	}
	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.AccessKey,
		apiSecret: cfg.SecretAccessKey,
		limiter:   rate.NewLimiter(limit, 1),
		now:       time.Now,
	}
}

func (c *Client) SetCreds(key, secret string) { c.apiKey, c.apiSecret = key, secret }

// nonce must grow strictly between private calls.
func (c *Client) nonce() string {
	c.nonceMu.Lock()
	defer c.nonceMu.Unlock()
	n := c.now().UnixMilli()
	if n <= c.lastNonce {
		n = c.lastNonce + 1
	}
	c.lastNonce = n
	return strconv.FormatInt(n, 10)
}

func (c *Client) sign(nonce, url, body string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(nonce + url + body))
	return hex.EncodeToString(h.Sum(nil))
}

// do sends one request after waiting for the limiter and returns status and body.
// Only transport failures are errors; the caller decides what a status means.
func (c *Client) do(ctx context.Context, method, path string, body []byte, private bool) (int, []byte, error) {
	if private && (c.apiKey == "" || c.apiSecret == "") {
		return 0, nil, ErrNoCredentials
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, errors.Wrap(err, "coincheck: rate limiter")
	}

	url := c.baseURL + path
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "coincheck: build %s %s", method, path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if private {
		nonce := c.nonce()
		req.Header.Set("ACCESS-KEY", c.apiKey)
		req.Header.Set("ACCESS-NONCE", nonce)
		req.Header.Set("ACCESS-SIGNATURE", c.sign(nonce, url, string(body)))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "coincheck: %s %s", method, path)
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.Wrapf(err, "coincheck: read %s %s", method, path)
	}
	return resp.StatusCode, rb, nil
}
