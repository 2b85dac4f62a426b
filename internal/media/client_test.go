package media

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sukalov/hymnarium/internal/utils/e"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, Signer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	signer := Signer{Bucket: "hymnarium", Endpoint: srv.URL}
	client := NewClient(signer, testCreds)
	client.now = func() time.Time { return testTime }
	return client, signer
}

func TestFetchSendsSignedRequestAndForwardsRange(t *testing.T) {
	var client *Client
	var signer Signer
	client, signer = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		want, err := signer.Sign(r.URL.Path, testCreds, testTime)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if r.Header.Get("Authorization") != want.Headers["Authorization"] ||
			r.Header.Get("x-amz-date") != "20240305T070809Z" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.Header.Get("Range") != "bytes=0-3" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Content-Range", "bytes 0-3/10")
		w.Header().Set("Content-Length", "4")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = io.WriteString(w, "ID3x")
	})

	obj, err := client.Fetch(context.Background(), "audio/1985/1985/en_007.mp3", "bytes=0-3")
	require.NoError(t, err)
	defer obj.Body.Close()

	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "ID3x", string(body))
	assert.Equal(t, http.StatusPartialContent, obj.StatusCode)
	assert.Equal(t, "audio/mpeg", obj.ContentType)
	assert.Equal(t, "bytes 0-3/10", obj.ContentRange)
	assert.Equal(t, int64(4), obj.ContentLength)
}

func TestFetchClassifiesStatuses(t *testing.T) {
	tests := []struct {
		status int
		marker error
	}{
		{http.StatusNotFound, e.ErrNotFound},
		{http.StatusForbidden, e.ErrUpstream},
		{http.StatusInternalServerError, e.ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			obj, err := client.Fetch(context.Background(), "audio/x.mp3", "")
			assert.Nil(t, obj)
			assert.ErrorIs(t, err, tt.marker)
		})
	}
}

func TestFetchWithoutCredentialsMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	client := NewClient(Signer{Endpoint: srv.URL}, Credentials{AccessKeyID: "id", AccountID: "acct"})
	_, err := client.Fetch(context.Background(), "audio/x.mp3", "")
	assert.ErrorIs(t, err, e.ErrConfiguration)
	assert.ErrorIs(t, client.Ready(), e.ErrConfiguration)
	assert.False(t, client.Exists(context.Background(), "audio/x.mp3"))
	assert.Equal(t, int32(0), calls.Load())
}

func TestExistsUsesHead(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path == "/sheet-music/1985/PianoSheet_NewHymnal_en_001.png" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	ctx := context.Background()
	assert.True(t, client.Exists(ctx, "sheet-music/1985/PianoSheet_NewHymnal_en_001.png"))
	assert.False(t, client.Exists(ctx, "sheet-music/1985/PianoSheet_NewHymnal_en_001_1.png"))
}
