// Package lesson fetches title and description of a British Council lesson
// page to ground the conversation prompt. Fetch never fails: any problem is
// reported in the returned Result.
package lesson

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/util"
)

const (
	AllowedHost = "learnenglish.britishcouncil.org"

	DefaultTimeout = 10 * time.Second

	maxBody        = 2 << 20 // 2 MiB
	maxTitle       = 200
	maxDescription = 600
)

const (
	ReasonInvalidURL  = "invalid_url"
	ReasonFetchFailed = "fetch_failed"
)

type Result struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	OK          bool   `json:"ok"`
	Reason      string `json:"reason,omitempty"`
}

func failed(reason string) Result { return Result{Reason: reason} }

type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewFetcher builds a Fetcher on top of rt (http.DefaultTransport when nil).
// Redirects are never followed.
func NewFetcher(rt http.RoundTripper, timeout time.Duration) *Fetcher {
	if rt == nil {
		rt = http.DefaultTransport
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client: &http.Client{
			Transport: rt,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout: timeout,
	}
}

// Allowed reports whether raw may be fetched at all. Only https on the
// default port of AllowedHost passes.
func Allowed(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u == nil {
		return false
	}
	if u.Scheme != "https" || u.User != nil || u.Opaque != "" {
		return false
	}
	if p := u.Port(); p != "" && p != "443" {
		return false
	}
	return strings.EqualFold(u.Hostname(), AllowedHost)
}

func (f *Fetcher) Fetch(ctx context.Context, raw string) Result {
	if !Allowed(raw) {
		return failed(ReasonInvalidURL)
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	body, err := f.get(ctx, strings.TrimSpace(raw))
	if err != nil {
		return failed(ReasonFetchFailed)
	}
	meta, err := extract(body)
	if err != nil {
		return failed(ReasonFetchFailed)
	}

	title := util.ClampRunes(util.CollapseSpace(meta.title), maxTitle)
	desc := util.ClampRunes(util.CollapseSpace(meta.description), maxDescription)
	if title == "" && desc == "" {
		return failed(ReasonFetchFailed)
	}
	return Result{Title: title, Description: desc, OK: true}
}

func (f *Fetcher) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "EnglishFlowBot/1.0 (lesson context)")
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxBody {
		return nil, fmt.Errorf("response too large (%d > %d)", len(b), maxBody)
	}
	return b, nil
}
