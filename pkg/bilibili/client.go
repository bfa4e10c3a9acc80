package bilibili

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bilifollow/pkg/config"
	"bilifollow/pkg/errors"
	"bilifollow/pkg/logger"
	"bilifollow/pkg/pacer"
	"bilifollow/pkg/ratelimit"
	"bilifollow/pkg/session"
)

// Client talks to the platform's relation endpoints. Every outbound request
// passes the steady rate gate before it leaves; failure-driven pacing is the
// caller's job (see pkg/pacer and pkg/batch).
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	sess       *session.Session
	gate       ratelimit.Limiter
	logger     logger.Logger
	pageSize   int
}

// NewClient creates a platform API client bound to a session
func NewClient(cfg *config.APIConfig, sess *session.Session, gate ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if gate == nil {
		gate = ratelimit.None{}
	}

	userAgent := cfg.UserAgent
	if sess.UserAgent != "" {
		userAgent = sess.UserAgent
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		headers: map[string]string{
			"User-Agent": userAgent,
			"Referer":    "https://www.bilibili.com/",
			"Cookie":     sess.CookieHeader(),
		},
		sess:     sess,
		gate:     gate,
		logger:   log,
		pageSize: cfg.PageSize,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Followings fetches one page of the session account's following list
func (c *Client) Followings(ctx context.Context, page, pageSize int) (*FollowingPage, error) {
	vmid, err := c.sess.UserID()
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: fmt.Sprintf("cannot determine account ID: %v", err),
		}
	}

	var result FollowingPage
	url := FollowingsURL(c.baseURL, vmid, page, pageSize)
	if err := c.getJSON(ctx, url, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AllFollowings walks every page of the following list, pacing page fetches
// through p and retrying rate-limited or transient pages until the pacer
// says to abort. The records fetched so far are returned alongside any
// error, so a partial sync is still usable.
func (c *Client) AllFollowings(ctx context.Context, p *pacer.Pacer) ([]FollowRecord, error) {
	pageSize := c.pageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	var all []FollowRecord
	page := 1
	for {
		if err := p.Wait(ctx); err != nil {
			return all, err
		}

		fp, err := c.Followings(ctx, page, pageSize)
		outcome := Classify(err)
		p.Record(outcome)

		if err != nil {
			if outcome.Kind == pacer.KindFatal {
				return all, err
			}
			if p.ShouldAbort() {
				return all, fmt.Errorf("following list fetch aborted: %w", err)
			}
			c.logger.WarnWithFields("retrying following page", map[string]interface{}{
				"page":     page,
				"error":    err.Error(),
				"failures": p.Failures(),
			})
			continue
		}

		all = append(all, fp.List...)
		c.logger.DebugWithFields("fetched following page", map[string]interface{}{
			"page":  page,
			"count": len(fp.List),
			"total": fp.Total,
		})

		if len(fp.List) < pageSize {
			break
		}
		if fp.Total > 0 && len(all) >= fp.Total {
			break
		}
		page++
	}

	return all, nil
}

// Follow adds mid to the session account's following list. Following an
// account that is already followed succeeds.
func (c *Client) Follow(ctx context.Context, mid int64) error {
	return c.modify(ctx, mid, ActFollow, CodeAlreadyFollowing)
}

// Unfollow removes mid from the session account's following list.
// Unfollowing an account that is not followed succeeds.
func (c *Client) Unfollow(ctx context.Context, mid int64) error {
	return c.modify(ctx, mid, ActUnfollow, CodeNotFollowing)
}

// modify posts a relation mutation. alreadyCode is the platform code that
// means the relation is already in the desired state.
func (c *Client) modify(ctx context.Context, mid int64, act, alreadyCode int) error {
	form := ModifyForm(mid, act, c.sess.CSRF())

	env, err := c.postForm(ctx, ModifyURL(c.baseURL), form.Encode())
	if err != nil {
		return err
	}
	if env.Code == alreadyCode {
		c.logger.DebugWithFields("relation already in desired state", map[string]interface{}{
			"mid":  mid,
			"act":  act,
			"code": env.Code,
		})
		return nil
	}
	return codeError(env.Code, env.Message)
}

// Nav fetches the signed-in account's identity; used to verify the session
func (c *Client) Nav(ctx context.Context) (*NavInfo, error) {
	var info NavInfo
	if err := c.getJSON(ctx, NavURL(c.baseURL), &info); err != nil {
		return nil, err
	}
	if !info.IsLogin {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "session is not logged in",
			Code:    CodeNotLoggedIn,
		}
	}
	return &info, nil
}

// getJSON performs a GET request and decodes the envelope's data payload
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}

	env, err := c.do(req)
	if err != nil {
		return err
	}
	if err := codeError(env.Code, env.Message); err != nil {
		return err
	}

	if target != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return &errors.Error{
				Type:    errors.ErrorTypeParsing,
				Message: fmt.Sprintf("failed to parse response data: %v", err),
			}
		}
	}
	return nil
}

// postForm performs a form POST and returns the raw envelope; callers
// interpret the code themselves because mutations treat some non-zero codes
// as success.
func (c *Client) postForm(ctx context.Context, url, body string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

// do applies headers, passes the steady gate, executes the request and
// decodes the response envelope
func (c *Client) do(req *http.Request) (*envelope, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	if err := c.gate.Wait(req.Context()); err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("request gate interrupted: %v", err),
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("API request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}
	defer resp.Body.Close()

	logger.LogRequest(req.Method, req.URL.String(), resp.StatusCode, duration)

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse response envelope", map[string]interface{}{
			"url":          req.URL.String(),
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse envelope: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return &env, nil
}

// checkResponseStatus maps HTTP-level failures to typed errors. Most
// platform signal arrives in the envelope code instead; this only catches
// transport-level rejections.
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "authentication rejected",
			Code:    resp.StatusCode,
		}
	case http.StatusNotFound:
		return &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case http.StatusPreconditionFailed, http.StatusTooManyRequests:
		// The platform throttles with 412 as well as 429
		return &errors.Error{
			Type:       errors.ErrorTypeRateLimit,
			Message:    "request throttled",
			Code:       resp.StatusCode,
			RetryAfter: parseRetryAfter(resp),
		}
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	default:
		if resp.StatusCode >= 500 {
			return &errors.Error{
				Type:    errors.ErrorTypeServerError,
				Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
				Code:    resp.StatusCode,
			}
		}
		if resp.StatusCode >= 400 {
			return &errors.Error{
				Type:    errors.ErrorTypeUnknown,
				Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
				Code:    resp.StatusCode,
			}
		}
		return nil
	}
}

// parseRetryAfter reads the delay-seconds form of the Retry-After header
func parseRetryAfter(resp *http.Response) time.Duration {
	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// codeError maps a platform envelope code to a typed error
func codeError(code int, message string) error {
	if code == CodeOK {
		return nil
	}
	if message == "" {
		message = "unknown error"
	}

	switch code {
	case CodeRiskControl, CodeUnfollowTooOften:
		return &errors.Error{
			Type:    errors.ErrorTypeRateLimit,
			Message: message,
			Code:    code,
		}
	case CodeNotLoggedIn:
		return &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: message,
			Code:    code,
		}
	default:
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: message,
			Code:    code,
		}
	}
}
