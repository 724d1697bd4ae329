package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgError "github.com/jivitsolutions/jivit-site/pkg/error"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const (
	HeaderEvent     = "X-Jivit-Event"
	HeaderSignature = "X-Hub-Signature-256"
)

type Options struct {
	URLs    []string
	Secret  string
	Timeout time.Duration
	Retries int
	// Backoff is the wait before the second attempt; it doubles afterwards.
	Backoff time.Duration
}

// Client posts JSON events to every configured URL.
type Client struct {
	opts Options
	http *fasthttp.Client
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	return &Client{
		opts: opts,
		http: &fasthttp.Client{
			Name:         "jivit-site-webhook",
			ReadTimeout:  opts.Timeout,
			WriteTimeout: opts.Timeout,
		},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && len(c.opts.URLs) > 0
}

// Send delivers payload to every URL. It returns the joined delivery errors.
func (c *Client) Send(ctx context.Context, event string, payload any) error {
	if !c.Enabled() {
		return nil
	}

	body, err := json.Marshal(map[string]any{
		"event":     event,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"payload":   payload,
	})
	if err != nil {
		return pkgError.WebhookError{Cause: fmt.Sprintf("failed to marshal body: %v", err)}
	}

	var errs []error
	for _, url := range c.opts.URLs {
		if err := c.deliver(ctx, url, event, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Client) deliver(ctx context.Context, url, event string, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set(HeaderEvent, event)
	if c.opts.Secret != "" {
		req.Header.Set(HeaderSignature, "sha256="+Sign(body, c.opts.Secret))
	}
	req.SetBody(body)

	wait := c.opts.Backoff
	var lastErr error
	for attempt := 1; attempt <= c.opts.Retries; attempt++ {
		resp.Reset()
		err := c.http.DoTimeout(req, resp, c.opts.Timeout)
		if err == nil {
			status := resp.StatusCode()
			if status >= 200 && status < 300 {
				logrus.Debugf("[WEBHOOK] %s delivered to %s on attempt %d", event, url, attempt)
				return nil
			}
			lastErr = pkgError.WebhookError{URL: url, Status: status}
		} else {
			lastErr = pkgError.WebhookError{URL: url, Cause: err.Error()}
		}
		logrus.Warnf("[WEBHOOK] attempt %d to %s failed: %v", attempt, url, lastErr)

		if attempt == c.opts.Retries {
			break
		}
		select {
		case <-ctx.Done():
			return pkgError.WebhookError{URL: url, Cause: ctx.Err().Error()}
		case <-time.After(wait):
		}
		wait *= 2
	}
	return lastErr
}

// Sign returns the hex HMAC-SHA256 of body, as sent in X-Hub-Signature-256.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
