package media

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sukalov/hymnarium/internal/utils/e"
)

const (
	algorithm = "AWS4-HMAC-SHA256"
	region    = "auto"
	service   = "s3"
	terminal  = "aws4_request"

	// EmptyPayloadHash is the hex SHA-256 of the empty string.
	EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	UnsignedPayload  = "UNSIGNED-PAYLOAD"

	amzDateFormat = "20060102T150405Z"
)

// PayloadMode selects how the payload hash enters the signature. It is fixed
// per deployment.
type PayloadMode int

const (
	// ModeEmptyHash signs host and x-amz-date with the empty-body hash.
	ModeEmptyHash PayloadMode = iota
	// ModeUnsignedPayload also signs x-amz-content-sha256: UNSIGNED-PAYLOAD.
	ModeUnsignedPayload
)

func ParsePayloadMode(s string) (PayloadMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "empty-hash":
		return ModeEmptyHash, nil
	case "unsigned-payload":
		return ModeUnsignedPayload, nil
	}
	return 0, e.Mark(e.ErrConfiguration, fmt.Sprintf("unknown signing mode %q", s), nil)
}

// Credentials for the R2 S3-compatible API.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	AccountID       string
}

// Validate reports a configuration error naming every missing field.
func (c Credentials) Validate() error {
	var missing []string
	if c.AccessKeyID == "" {
		missing = append(missing, "access key id")
	}
	if c.SecretAccessKey == "" {
		missing = append(missing, "secret access key")
	}
	if c.AccountID == "" {
		missing = append(missing, "account id")
	}
	if len(missing) > 0 {
		return e.Mark(e.ErrConfiguration, "missing required R2 credentials: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// SignedRequest is valid only around AmzDate.
type SignedRequest struct {
	Method  string
	URL     string
	Host    string
	Headers map[string]string
	AmzDate string

	CanonicalRequest string
	StringToSign     string
	Signature        string
}

// Signer produces SigV4 requests for objects in one bucket.
type Signer struct {
	Bucket string
	Mode   PayloadMode
	// Endpoint overrides the scheme and host, e.g. for a local emulator.
	// When empty, the virtual-hosted R2 endpoint of the bucket is used.
	Endpoint string
}

func (s Signer) origin(accountID string) (scheme, host string, err error) {
	if s.Endpoint != "" {
		u, err := url.Parse(s.Endpoint)
		if err != nil || u.Host == "" {
			return "", "", e.Mark(e.ErrConfiguration, fmt.Sprintf("invalid endpoint %q", s.Endpoint), err)
		}
		return u.Scheme, u.Host, nil
	}
	host = accountID + ".r2.cloudflarestorage.com"
	if s.Bucket != "" {
		host = s.Bucket + "." + host
	}
	return "https", host, nil
}

// Sign builds a signed GET for key at the given instant.
func (s Signer) Sign(key string, creds Credentials, at time.Time) (*SignedRequest, error) {
	return s.SignMethod(http.MethodGet, key, creds, at)
}

// SignMethod signs a bodiless request. The key is passed through literally
// as the path.
func (s Signer) SignMethod(method, key string, creds Credentials, at time.Time) (*SignedRequest, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	scheme, host, err := s.origin(creds.AccountID)
	if err != nil {
		return nil, err
	}

	amzDate := at.UTC().Format(amzDateFormat)
	dateStamp := amzDate[:8]
	path := "/" + strings.TrimPrefix(key, "/")

	headers := map[string]string{
		"host":       host,
		"x-amz-date": amzDate,
	}
	names := []string{"host", "x-amz-date"}
	payloadHash := EmptyPayloadHash
	if s.Mode == ModeUnsignedPayload {
		payloadHash = UnsignedPayload
		headers["x-amz-content-sha256"] = UnsignedPayload
		names = []string{"host", "x-amz-content-sha256", "x-amz-date"}
	}

	var canonicalHeaders strings.Builder
	for _, name := range names {
		canonicalHeaders.WriteString(name + ":" + headers[name] + "\n")
	}
	signedHeaders := strings.Join(names, ";")

	canonicalRequest := strings.Join([]string{
		method,
		path,
		"",
		canonicalHeaders.String(),
		signedHeaders,
		payloadHash,
	}, "\n")

	scope := strings.Join([]string{dateStamp, region, service, terminal}, "/")
	stringToSign := strings.Join([]string{
		algorithm,
		amzDate,
		scope,
		hexSHA256(canonicalRequest),
	}, "\n")

	signature := hex.EncodeToString(hmacSHA256(signingKey(creds.SecretAccessKey, dateStamp), stringToSign))

	out := map[string]string{
		"x-amz-date": amzDate,
		"Authorization": fmt.Sprintf("%s Credential=%s/%s,SignedHeaders=%s,Signature=%s",
			algorithm, creds.AccessKeyID, scope, signedHeaders, signature),
	}
	if v, ok := headers["x-amz-content-sha256"]; ok {
		out["x-amz-content-sha256"] = v
	}

	return &SignedRequest{
		Method:           method,
		URL:              scheme + "://" + host + path,
		Host:             host,
		Headers:          out,
		AmzDate:          amzDate,
		CanonicalRequest: canonicalRequest,
		StringToSign:     stringToSign,
		Signature:        signature,
	}, nil
}

// HTTPRequest converts the signed request into an *http.Request.
func (r *SignedRequest) HTTPRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Host = r.Host
	for name, value := range r.Headers {
		req.Header.Set(name, value)
	}
	return req, nil
}

func signingKey(secret, dateStamp string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), dateStamp)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, terminal)
}

func hmacSHA256(key []byte, message string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	return mac.Sum(nil)
}

func hexSHA256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
