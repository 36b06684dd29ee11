package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosspost/internal/dbmysql"
)

// rewriteTransport sends every request to the test server regardless of the
// hardcoded platform hosts.
type rewriteTransport struct {
	target *url.URL
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func testClient(t *testing.T, handler http.Handler) *http.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return &http.Client{Transport: &rewriteTransport{target: target}}
}

func testAccount() *dbmysql.ConnectedAccount {
	return &dbmysql.ConnectedAccount{
		UserID:         7,
		AccessToken:    "tok-123",
		PlatformUserID: "user-456",
		IsActive:       true,
	}
}

func TestTwitterPublish(t *testing.T) {
	var gotAuth string
	var gotText string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req struct {
			Text string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotText = req.Text
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]string{"id": "1450001"}})
	}))

	out := NewTwitterAdapter(client).Publish(context.Background(), testAccount(), "hello", nil)

	require.True(t, out.Success, out.Reason)
	assert.Equal(t, "1450001", out.ExternalID)
	assert.Equal(t, "https://twitter.com/i/status/1450001", out.URL)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "hello", gotText)
}

func TestTwitterPublishRejection(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"duplicate content"}`))
	}))

	out := NewTwitterAdapter(client).Publish(context.Background(), testAccount(), "hello", nil)

	require.False(t, out.Success)
	assert.Contains(t, out.Reason, "duplicate content")
}

func TestFacebookPublishUsesPageTarget(t *testing.T) {
	var gotPath string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "tok-123", r.Form.Get("access_token"))
		assert.Equal(t, "hello", r.Form.Get("message"))
		json.NewEncoder(w).Encode(map[string]string{"id": "page_post_1"})
	}))

	account := testAccount()
	pageID := "page-99"
	account.PageID = &pageID

	out := NewFacebookAdapter(client).Publish(context.Background(), account, "hello", nil)

	require.True(t, out.Success, out.Reason)
	assert.Equal(t, "/v18.0/page-99/feed", gotPath)
	assert.Equal(t, "https://facebook.com/page_post_1", out.URL)
}

func TestFacebookPublishWithoutTarget(t *testing.T) {
	account := testAccount()
	account.PlatformUserID = ""

	out := NewFacebookAdapter(nil).Publish(context.Background(), account, "hello", nil)

	require.False(t, out.Success)
	assert.Equal(t, "no postable target", out.Reason)
}

func TestInstagramPublishRequiresMedia(t *testing.T) {
	out := NewInstagramAdapter(nil).Publish(context.Background(), testAccount(), "hello", nil)

	require.False(t, out.Success)
	assert.Equal(t, "media required", out.Reason)
}

func TestInstagramSingleImageTwoPhase(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		require.NoError(t, r.ParseForm())
		switch {
		case strings.HasSuffix(r.URL.Path, "/media"):
			assert.Equal(t, "http://media/1.jpg", r.Form.Get("image_url"))
			json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
		case strings.HasSuffix(r.URL.Path, "/media_publish"):
			assert.Equal(t, "container-1", r.Form.Get("creation_id"))
			json.NewEncoder(w).Encode(map[string]string{"id": "ig-post-1"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	out := NewInstagramAdapter(client).Publish(context.Background(), testAccount(), "hello", []string{"http://media/1.jpg"})

	require.True(t, out.Success, out.Reason)
	assert.Equal(t, "ig-post-1", out.ExternalID)
	assert.Equal(t, []string{"/v18.0/user-456/media", "/v18.0/user-456/media_publish"}, paths)
}

func TestInstagramCarouselPartialFailure(t *testing.T) {
	var mu sync.Mutex
	containers := 0
	published := false
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		mu.Lock()
		defer mu.Unlock()
		if strings.HasSuffix(r.URL.Path, "/media_publish") {
			published = true
			json.NewEncoder(w).Encode(map[string]string{"id": "never"})
			return
		}
		containers++
		if containers == 2 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"media unavailable"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "c1"})
	}))

	out := NewInstagramAdapter(client).Publish(context.Background(), testAccount(), "hello",
		[]string{"http://media/1.jpg", "http://media/2.jpg", "http://media/3.jpg"})

	require.False(t, out.Success)
	assert.Contains(t, out.Reason, "carousel item failed")
	assert.Contains(t, out.Reason, "media unavailable")
	assert.False(t, published, "a partial carousel must never be published")
	assert.Equal(t, 2, containers, "remaining items are not attempted after a failure")
}

func TestInstagramCarouselPublishesAllItems(t *testing.T) {
	var mu sync.Mutex
	var childIDs []string
	var carouselChildren string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		mu.Lock()
		defer mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/media_publish"):
			json.NewEncoder(w).Encode(map[string]string{"id": "ig-carousel-1"})
		case r.Form.Get("is_carousel_item") == "true":
			id := "child-" + r.Form.Get("image_url")
			childIDs = append(childIDs, id)
			json.NewEncoder(w).Encode(map[string]string{"id": id})
		default:
			assert.Equal(t, "CAROUSEL", r.Form.Get("media_type"))
			carouselChildren = r.Form.Get("children")
			json.NewEncoder(w).Encode(map[string]string{"id": "carousel-container"})
		}
	}))

	out := NewInstagramAdapter(client).Publish(context.Background(), testAccount(), "hello",
		[]string{"a", "b"})

	require.True(t, out.Success, out.Reason)
	assert.Len(t, childIDs, 2)
	assert.Equal(t, strings.Join(childIDs, ","), carouselChildren)
	assert.Equal(t, "https://www.instagram.com/p/ig-carousel-1/", out.URL)
}

func TestLinkedInPublish(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "urn:li:person:user-456", payload["author"])
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "urn:li:share:987"})
	}))

	out := NewLinkedInAdapter(client).Publish(context.Background(), testAccount(), "hello", nil)

	require.True(t, out.Success, out.Reason)
	assert.Equal(t, "987", out.ExternalID)
	assert.Equal(t, "https://linkedin.com/feed/update/urn:li:share:987", out.URL)
}

func TestYouTubePublishRequiresMedia(t *testing.T) {
	out := NewYouTubeAdapter(nil).Publish(context.Background(), testAccount(), "hello", nil)

	require.False(t, out.Success)
	assert.Equal(t, "media required", out.Reason)
}

func TestYouTubeTitleTruncation(t *testing.T) {
	long := strings.Repeat("x", 150)
	title := truncateTitle(long)
	assert.Len(t, title, 100)
	assert.True(t, strings.HasSuffix(title, "..."))

	assert.Equal(t, "short", truncateTitle("short"))

	multibyte := truncateTitle(strings.Repeat("é", 120))
	assert.True(t, utf8.ValidString(multibyte), "truncation must not cut a rune in half")
	assert.Equal(t, 100, utf8.RuneCountInString(multibyte))
	assert.True(t, strings.HasSuffix(multibyte, "..."))
}

func TestRegistryValidate(t *testing.T) {
	reg := NewRegistryWith(NewTwitterAdapter(nil), NewFacebookAdapter(nil))

	assert.NoError(t, reg.Validate([]string{Twitter, Facebook}))
	assert.Error(t, reg.Validate([]string{Twitter, "myspace"}))

	_, ok := reg.Lookup(Twitter)
	assert.True(t, ok)
	_, ok = reg.Lookup(YouTube)
	assert.False(t, ok)

	assert.Equal(t, []string{Facebook, Twitter}, reg.IDs())
}
