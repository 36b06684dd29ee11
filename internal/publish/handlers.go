package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"crosspost/internal/common"
	"crosspost/internal/dbmysql"
)

// PostStore is the slice of the post store the publish API needs for
// ownership checks.
type PostStore interface {
	GetPostByID(ctx context.Context, postID uint64) (*dbmysql.Post, error)
}

// Handler exposes the publish engine over HTTP. Ownership of the post is
// verified here, before anything reaches the orchestrator.
type Handler struct {
	orch  *Orchestrator
	posts PostStore
}

func NewHandler(orch *Orchestrator, posts PostStore) *Handler {
	return &Handler{orch: orch, posts: posts}
}

type dispatchRequest struct {
	PostID      uint64   `json:"postId"`
	PlatformIDs []string `json:"platformIds"`
}

// Dispatch handles POST /publish. Returns 202 with the initial records;
// the executions continue asynchronously.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFrom(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "bad payload")
		return
	}

	post := h.ownedPost(w, r, userID, req.PostID)
	if post == nil {
		return
	}

	records, err := h.orch.Dispatch(r.Context(), post, req.PlatformIDs)
	if err != nil {
		common.WriteError(w, common.HTTPStatus(err), err.Error())
		return
	}

	common.WriteJSON(w, http.StatusAccepted, toResponses(records))
}

// Results handles GET /publish/{postID} for polling.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFrom(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	postID, err := strconv.ParseUint(mux.Vars(r)["postID"], 10, 64)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if post := h.ownedPost(w, r, userID, postID); post == nil {
		return
	}

	records, err := h.orch.Results(r.Context(), postID)
	if err != nil {
		common.WriteError(w, common.HTTPStatus(err), err.Error())
		return
	}

	common.WriteJSON(w, http.StatusOK, toResponses(records))
}

// Retry handles POST /publish/{postID}/retry/{platformID}.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFrom(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["postID"], 10, 64)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post := h.ownedPost(w, r, userID, postID)
	if post == nil {
		return
	}

	record, err := h.orch.Retry(r.Context(), post, vars["platformID"])
	if err != nil {
		common.WriteError(w, common.HTTPStatus(err), err.Error())
		return
	}

	common.WriteJSON(w, http.StatusOK, record.ToResponse())
}

// ownedPost fetches the post and enforces ownership, writing the error
// response itself. Returns nil when the request is already answered.
func (h *Handler) ownedPost(w http.ResponseWriter, r *http.Request, userID, postID uint64) *dbmysql.Post {
	post, err := h.posts.GetPostByID(r.Context(), postID)
	if err != nil {
		common.WriteError(w, common.HTTPStatus(err), "post not found")
		return nil
	}
	if post.UserID != userID {
		common.WriteError(w, http.StatusForbidden, "not authorized for this post")
		return nil
	}
	return post
}

func toResponses(records []*dbmysql.PublishResult) []common.PublishResultResponse {
	out := make([]common.PublishResultResponse, len(records))
	for i, r := range records {
		out[i] = r.ToResponse()
	}
	return out
}
