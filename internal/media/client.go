package media

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sukalov/hymnarium/internal/logger"
	"github.com/sukalov/hymnarium/internal/utils/e"
)

// Object is a fetched media object. The caller closes Body.
type Object struct {
	Body          io.ReadCloser
	StatusCode    int
	ContentType   string
	ContentLength int64
	ContentRange  string
	AcceptRanges  string
}

// Client fetches objects from R2 with signed requests.
type Client struct {
	httpClient *http.Client
	signer     Signer
	creds      Credentials
	now        func() time.Time
}

// NewClient creates a new R2 object client
func NewClient(signer Signer, creds Credentials) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				// objects are relayed byte for byte
				DisableCompression: true,
			},
		},
		signer: signer,
		creds:  creds,
		now:    time.Now,
	}
}

// Ready reports a configuration error when credentials are incomplete.
func (c *Client) Ready() error {
	return c.creds.Validate()
}

// Fetch retrieves key. rangeHeader, when set, is forwarded as the Range
// header and is not part of the signature.
func (c *Client) Fetch(ctx context.Context, key, rangeHeader string) (*Object, error) {
	signed, err := c.signer.Sign(key, c.creds, c.now())
	if err != nil {
		return nil, err
	}
	req, err := signed.HTTPRequest(ctx)
	if err != nil {
		return nil, e.Mark(e.ErrUpstream, "build media request", err)
	}
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("failed to fetch from R2", "key", key, "error", err.Error())
		return nil, e.Mark(e.ErrUpstream, "fetch media "+key, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, e.Mark(e.ErrNotFound, "media "+key, nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		logger.Error("R2 returned an error status", "key", key, "status", resp.StatusCode, "body", string(body))
		return nil, e.Mark(e.ErrUpstream, fmt.Sprintf("fetch media %s: status %d", key, resp.StatusCode), nil)
	}

	obj := &Object{
		Body:          resp.Body,
		StatusCode:    resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		ContentRange:  resp.Header.Get("Content-Range"),
		AcceptRanges:  resp.Header.Get("Accept-Ranges"),
	}
	if obj.ContentLength < 0 {
		if n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); err == nil {
			obj.ContentLength = n
		}
	}
	return obj, nil
}

// Exists issues a signed HEAD for key. Any failure counts as absent.
func (c *Client) Exists(ctx context.Context, key string) bool {
	signed, err := c.signer.SignMethod(http.MethodHead, key, c.creds, c.now())
	if err != nil {
		logger.Debug("skipping existence check", "key", key, "error", err.Error())
		return false
	}
	req, err := signed.HTTPRequest(ctx)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}
