package post

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"crosspost/internal/common"
)

type Handler struct {
	service PostService
}

func NewHandler(service PostService) *Handler {
	return &Handler{service: service}
}

// List handles GET /posts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFrom(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	posts, err := h.service.ListPosts(r.Context(), userID)
	if err != nil {
		common.WriteError(w, common.HTTPStatus(err), err.Error())
		return
	}
	common.WriteJSON(w, http.StatusOK, posts)
}

// Create handles POST /posts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFrom(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var input CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		common.WriteError(w, http.StatusBadRequest, "bad payload")
		return
	}

	post, err := h.service.CreatePost(r.Context(), userID, input)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	common.WriteJSON(w, http.StatusCreated, post)
}

// Get handles GET /posts/{postID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
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

	post, err := h.service.GetPost(r.Context(), userID, postID)
	if err != nil {
		common.WriteError(w, common.HTTPStatus(err), err.Error())
		return
	}
	common.WriteJSON(w, http.StatusOK, post)
}

// Update handles PUT /posts/{postID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
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

	var input CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		common.WriteError(w, http.StatusBadRequest, "bad payload")
		return
	}

	post, err := h.service.UpdatePost(r.Context(), userID, postID, input)
	if err != nil {
		common.WriteError(w, common.HTTPStatus(err), err.Error())
		return
	}
	common.WriteJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /posts/{postID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeletePost(r.Context(), userID, postID); err != nil {
		common.WriteError(w, common.HTTPStatus(err), err.Error())
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}
