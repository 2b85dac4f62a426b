package media

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sukalov/hymnarium/internal/utils/e"
)

var (
	testCreds = Credentials{
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		AccountID:       "abc123",
	}
	testTime = time.Date(2024, time.March, 5, 7, 8, 9, 0, time.UTC)
)

func refHMAC(key []byte, msg string) []byte {
	m := hmac.New(sha256.New, key)
	m.Write([]byte(msg))
	return m.Sum(nil)
}

func TestSignEmptyHashMode(t *testing.T) {
	s := Signer{Bucket: "hymnarium"}
	req, err := s.Sign("audio/1985/1985/en_007.mp3", testCreds, testTime)
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "https://hymnarium.abc123.r2.cloudflarestorage.com/audio/1985/1985/en_007.mp3", req.URL)
	assert.Equal(t, "20240305T070809Z", req.AmzDate)

	wantCanonical := "GET\n" +
		"/audio/1985/1985/en_007.mp3\n" +
		"\n" +
		"host:hymnarium.abc123.r2.cloudflarestorage.com\n" +
		"x-amz-date:20240305T070809Z\n" +
		"\n" +
		"host;x-amz-date\n" +
		EmptyPayloadHash
	assert.Equal(t, wantCanonical, req.CanonicalRequest)

	sum := sha256.Sum256([]byte(wantCanonical))
	wantStringToSign := "AWS4-HMAC-SHA256\n20240305T070809Z\n20240305/auto/s3/aws4_request\n" + hex.EncodeToString(sum[:])
	assert.Equal(t, wantStringToSign, req.StringToSign)

	key := refHMAC([]byte("AWS4"+testCreds.SecretAccessKey), "20240305")
	key = refHMAC(key, "auto")
	key = refHMAC(key, "s3")
	key = refHMAC(key, "aws4_request")
	wantSignature := hex.EncodeToString(refHMAC(key, wantStringToSign))
	assert.Equal(t, wantSignature, req.Signature)

	assert.Equal(t,
		"AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20240305/auto/s3/aws4_request,SignedHeaders=host;x-amz-date,Signature="+wantSignature,
		req.Headers["Authorization"])
	assert.Equal(t, "20240305T070809Z", req.Headers["x-amz-date"])
	assert.NotContains(t, req.Headers, "x-amz-content-sha256")
}

func TestSignUnsignedPayloadMode(t *testing.T) {
	s := Signer{Bucket: "hymnarium", Mode: ModeUnsignedPayload}
	req, err := s.Sign("sheet-music/1985/PianoSheet_NewHymnal_en_012_2.png", testCreds, testTime)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(req.CanonicalRequest,
		"host:hymnarium.abc123.r2.cloudflarestorage.com\n"+
			"x-amz-content-sha256:UNSIGNED-PAYLOAD\n"+
			"x-amz-date:20240305T070809Z\n"+
			"\n"+
			"host;x-amz-content-sha256;x-amz-date\n"+
			"UNSIGNED-PAYLOAD"))
	assert.Equal(t, UnsignedPayload, req.Headers["x-amz-content-sha256"])
	assert.Contains(t, req.Headers["Authorization"], "SignedHeaders=host;x-amz-content-sha256;x-amz-date,")
}

func TestSignIsDeterministic(t *testing.T) {
	s := Signer{Bucket: "hymnarium"}
	a, err := s.Sign("audio/1985/1941/007.mp3", testCreds, testTime)
	require.NoError(t, err)
	b, err := s.Sign("audio/1985/1941/007.mp3", testCreds, testTime)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSignSecretOnlyAffectsSignature(t *testing.T) {
	s := Signer{Bucket: "hymnarium"}
	a, err := s.Sign("audio/1985/1941/007.mp3", testCreds, testTime)
	require.NoError(t, err)

	other := testCreds
	other.SecretAccessKey = "another-secret"
	b, err := s.Sign("audio/1985/1941/007.mp3", other, testTime)
	require.NoError(t, err)

	assert.Equal(t, a.CanonicalRequest, b.CanonicalRequest)
	assert.Equal(t, a.StringToSign, b.StringToSign)
	assert.NotEqual(t, a.Signature, b.Signature)
	assert.NotEqual(t, a.Headers["Authorization"], b.Headers["Authorization"])
}

func TestSignUsesUTC(t *testing.T) {
	s := Signer{Bucket: "hymnarium"}
	local := testTime.In(time.FixedZone("Moscow Time", 3*60*60))
	req, err := s.Sign("a", testCreds, local)
	require.NoError(t, err)
	assert.Equal(t, "20240305T070809Z", req.AmzDate)
}

func TestSignRejectsMissingCredentials(t *testing.T) {
	for _, field := range []string{"access", "secret", "account"} {
		t.Run(field, func(t *testing.T) {
			creds := testCreds
			switch field {
			case "access":
				creds.AccessKeyID = ""
			case "secret":
				creds.SecretAccessKey = ""
			case "account":
				creds.AccountID = ""
			}
			req, err := Signer{Bucket: "hymnarium"}.Sign("a", creds, testTime)
			assert.Nil(t, req)
			assert.ErrorIs(t, err, e.ErrConfiguration)
		})
	}
}

func TestSignWithEndpointOverride(t *testing.T) {
	s := Signer{Bucket: "hymnarium", Endpoint: "http://127.0.0.1:9000"}
	req, err := s.Sign("/audio/x.mp3", testCreds, testTime)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/audio/x.mp3", req.URL)
	assert.Contains(t, req.CanonicalRequest, "\n/audio/x.mp3\n")
	assert.Contains(t, req.CanonicalRequest, "host:127.0.0.1:9000\n")
}

func TestParsePayloadMode(t *testing.T) {
	mode, err := ParsePayloadMode("unsigned-payload")
	require.NoError(t, err)
	assert.Equal(t, ModeUnsignedPayload, mode)

	mode, err = ParsePayloadMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeEmptyHash, mode)

	_, err = ParsePayloadMode("chunked")
	assert.ErrorIs(t, err, e.ErrConfiguration)
}

func TestEmptyPayloadHashConstant(t *testing.T) {
	sum := sha256.Sum256(nil)
	assert.Equal(t, hex.EncodeToString(sum[:]), EmptyPayloadHash)
}
