package account

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"crosspost/internal/common"
)

type Handler struct {
	service AccountService
}

func NewHandler(service AccountService) *Handler {
	return &Handler{service: service}
}

// List handles GET /accounts
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFrom(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	accounts, err := h.service.ListAccounts(r.Context(), userID)
	if err != nil {
		common.WriteError(w, common.HTTPStatus(err), err.Error())
		return
	}
	common.WriteJSON(w, http.StatusOK, accounts)
}

// Connect handles POST /accounts/connect/{platformID} and returns the
// authorization URL the frontend should redirect to.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFrom(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	platformID := mux.Vars(r)["platformID"]

	authURL, err := h.service.BeginConnect(r.Context(), userID, platformID)
	if err != nil {
		common.WriteError(w, common.HTTPStatus(err), err.Error())
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"auth_url": authURL})
}

// Callback handles POST /accounts/callback/{platformID}. The frontend
// forwards the code and state it received from the platform redirect.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFrom(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	platformID := mux.Vars(r)["platformID"]

	var req struct {
		Code  string `json:"code"`
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		common.WriteError(w, http.StatusBadRequest, "code is required")
		return
	}
	if req.State != "" {
		stateUser, err := ParseState(req.State)
		if err != nil || stateUser != userID {
			common.WriteError(w, http.StatusBadRequest, "state mismatch")
			return
		}
	}

	acct, err := h.service.CompleteConnect(r.Context(), userID, platformID, req.Code)
	if err != nil {
		common.WriteError(w, common.HTTPStatus(err), err.Error())
		return
	}
	common.WriteJSON(w, http.StatusCreated, acct)
}

// Disconnect handles DELETE /accounts/{platformID}
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFrom(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	platformID := mux.Vars(r)["platformID"]

	if err := h.service.Disconnect(r.Context(), userID, platformID); err != nil {
		common.WriteError(w, common.HTTPStatus(err), err.Error())
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"message": "disconnected"})
}
