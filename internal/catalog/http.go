package catalog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/http2"

	t "neotables/internal/types"
)

const UserAgent = "neotables/0.1"

// NewHTTPClient returns a client whose transport negotiates HTTP/2 with
// GitHub and keeps connections alive across the many small fetches of a run.
func NewHTTPClient(timeout time.Duration) (*http.Client, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConnsPerHost = 8
	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, fmt.Errorf("catalog: configure http2: %w", err)
	}
	return &http.Client{Transport: tr, Timeout: timeout}, nil
}

type HTTPConfig struct {
	BaseURL string
	// Ref selects the branch or tag for the contents API.
	Ref   string
	Token string
}

type httpSource struct {
	client *http.Client
	base   string
	token  string
}

func newHTTPSource(client *http.Client, base, token string) httpSource {
	if client == nil {
		client = http.DefaultClient
	}
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return httpSource{client: client, base: base, token: strings.TrimSpace(token)}
}

// get issues a GET and classifies failures: 404 is ErrSourceNotFound,
// network errors and 429/5xx are transient, anything else is permanent.
func (h httpSource) get(ctx context.Context, name, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewPermanentError(err)
	}
	req.Header.Set("User-Agent", UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransientFetchError{Name: name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientFetchError{Name: name, Err: err}
	}
	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, notFound(name)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return nil, &TransientFetchError{Name: name, Err: fmt.Errorf("http %d", resp.StatusCode)}
	default:
		return nil, NewPermanentError(fmt.Errorf("catalog: fetch %s: http %d", name, resp.StatusCode))
	}
}

// RawSource reads files from a raw-content host such as
// raw.githubusercontent.com. It cannot enumerate.
type RawSource struct {
	httpSource
}

func NewRawSource(client *http.Client, cfg HTTPConfig) *RawSource {
	return &RawSource{httpSource: newHTTPSource(client, cfg.BaseURL, cfg.Token)}
}

func (r *RawSource) Origin() t.Origin { return t.OriginRemote }
func (r *RawSource) Key() string      { return "raw:" + r.base }

func (r *RawSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	return r.get(ctx, name, r.base+strings.TrimLeft(name, "/"), "text/plain")
}

func (r *RawSource) List(context.Context, string) ([]string, error) {
	return nil, ErrListUnsupported
}

// ContentsSource reads files through the GitHub contents API, which wraps
// file bodies in base64 JSON and can list directories.
type ContentsSource struct {
	httpSource
	ref string
}

type contentsFile struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

func NewContentsSource(client *http.Client, cfg HTTPConfig) *ContentsSource {
	ref := strings.TrimSpace(cfg.Ref)
	if ref == "" {
		ref = "master"
	}
	return &ContentsSource{httpSource: newHTTPSource(client, cfg.BaseURL, cfg.Token), ref: ref}
}

func (c *ContentsSource) Origin() t.Origin { return t.OriginRemote }
func (c *ContentsSource) Key() string      { return "contents:" + c.base + "@" + c.ref }

func (c *ContentsSource) url(name string) string {
	return c.base + strings.TrimLeft(name, "/") + "?ref=" + c.ref
}

func (c *ContentsSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	raw, err := c.get(ctx, name, c.url(name), "application/vnd.github+json")
	if err != nil {
		return nil, err
	}
	var f contentsFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, NewPermanentError(fmt.Errorf("catalog: decode %s: %w", name, err))
	}
	if f.Type == "dir" {
		return nil, notFound(name)
	}
	if f.Encoding != "base64" {
		return nil, NewPermanentError(fmt.Errorf("catalog: unexpected encoding %q for %s", f.Encoding, name))
	}
	body, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(f.Content, "\n", ""))
	if err != nil {
		return nil, NewPermanentError(fmt.Errorf("catalog: decode %s: %w", name, err))
	}
	return body, nil
}

// List reads the directory part of prefix and keeps the files whose full
// name starts with prefix.
func (c *ContentsSource) List(ctx context.Context, prefix string) ([]string, error) {
	dir := prefix[:strings.LastIndex(prefix, "/")+1]
	raw, err := c.get(ctx, dir, c.url(strings.TrimSuffix(dir, "/")), "application/vnd.github+json")
	if errors.Is(err, ErrSourceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []contentsFile
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, NewPermanentError(fmt.Errorf("catalog: decode listing %s: %w", dir, err))
	}
	var names []string
	for _, e := range entries {
		if e.Type != "file" {
			continue
		}
		if name := dir + e.Name; strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
