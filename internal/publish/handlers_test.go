package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosspost/internal/common"
	"crosspost/internal/dbmysql"
	"crosspost/internal/platform"
)

type fakePostStore struct {
	posts map[uint64]*dbmysql.Post
}

func (s *fakePostStore) GetPostByID(ctx context.Context, postID uint64) (*dbmysql.Post, error) {
	post, ok := s.posts[postID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return post, nil
}

func newTestRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/publish", h.Dispatch).Methods("POST")
	r.HandleFunc("/publish/{postID}", h.Results).Methods("GET")
	r.HandleFunc("/publish/{postID}/retry/{platformID}", h.Retry).Methods("POST")
	return r
}

func handlerFixture(adapters ...platform.Adapter) (*Handler, *fixture) {
	f := newFixture(adapters...)
	store := &fakePostStore{posts: map[uint64]*dbmysql.Post{42: testPost()}}
	return NewHandler(f.orch, store), f
}

func asUser(req *http.Request, userID uint64) *http.Request {
	return req.WithContext(common.WithUserID(req.Context(), userID))
}

func TestDispatchEndpoint(t *testing.T) {
	tw := &stubAdapter{id: platform.Twitter, outcome: platform.Published("t1", "http://t/1")}
	h, f := handlerFixture(tw)
	router := newTestRouter(h)

	body := strings.NewReader(`{"postId":42,"platformIds":["twitter"]}`)
	req := asUser(httptest.NewRequest(http.MethodPost, "/publish", body), 7)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	var resp []common.PublishResultResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, uint64(42), resp[0].PostID)
	assert.Equal(t, "twitter", resp[0].PlatformID)
	assert.Equal(t, string(common.PublishPending), resp[0].Status)

	f.orch.Wait()
}

func TestDispatchEndpointOwnership(t *testing.T) {
	h, _ := handlerFixture(&stubAdapter{id: platform.Twitter})
	router := newTestRouter(h)

	t.Run("foreign post", func(t *testing.T) {
		body := strings.NewReader(`{"postId":42,"platformIds":["twitter"]}`)
		req := asUser(httptest.NewRequest(http.MethodPost, "/publish", body), 999)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("missing post", func(t *testing.T) {
		body := strings.NewReader(`{"postId":404,"platformIds":["twitter"]}`)
		req := asUser(httptest.NewRequest(http.MethodPost, "/publish", body), 7)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("no auth", func(t *testing.T) {
		body := strings.NewReader(`{"postId":42,"platformIds":["twitter"]}`)
		req := httptest.NewRequest(http.MethodPost, "/publish", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestResultsEndpoint(t *testing.T) {
	tw := &stubAdapter{id: platform.Twitter, outcome: platform.Published("t1", "http://t/1")}
	h, f := handlerFixture(tw)
	router := newTestRouter(h)

	body := strings.NewReader(`{"postId":42,"platformIds":["twitter"]}`)
	dispatch := asUser(httptest.NewRequest(http.MethodPost, "/publish", body), 7)
	router.ServeHTTP(httptest.NewRecorder(), dispatch)
	f.orch.Wait()

	req := asUser(httptest.NewRequest(http.MethodGet, "/publish/42", nil), 7)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp []common.PublishResultResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, string(common.PublishPublished), resp[0].Status)
	assert.Equal(t, 100, resp[0].Progress)
	require.NotNil(t, resp[0].PostURL)
}

func TestRetryEndpoint(t *testing.T) {
	tw := &stubAdapter{id: platform.Twitter, outcome: platform.Failure("token expired")}
	h, f := handlerFixture(tw)
	router := newTestRouter(h)

	body := strings.NewReader(`{"postId":42,"platformIds":["twitter"]}`)
	dispatch := asUser(httptest.NewRequest(http.MethodPost, "/publish", body), 7)
	router.ServeHTTP(httptest.NewRecorder(), dispatch)
	f.orch.Wait()

	tw.setOutcome(platform.Published("t2", "http://t/2"))

	req := asUser(httptest.NewRequest(http.MethodPost, "/publish/42/retry/twitter", nil), 7)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp common.PublishResultResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, string(common.PublishPending), resp.Status)
	assert.Nil(t, resp.Error)

	f.orch.Wait()

	row := f.results.stored(t, 42, platform.Twitter)
	assert.Equal(t, common.PublishPublished, row.Status)
}

func TestRetryEndpointWithoutRecord(t *testing.T) {
	h, _ := handlerFixture(&stubAdapter{id: platform.Twitter})
	router := newTestRouter(h)

	req := asUser(httptest.NewRequest(http.MethodPost, "/publish/42/retry/twitter", nil), 7)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
