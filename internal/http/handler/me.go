package handler

import (
	"net/http"

	"checkclient/internal/auth"
)

type MeHandler struct {
	Users *auth.Registry
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	if u, ok := h.Users.Get(uid); ok {
		writeJSON(w, http.StatusOK, map[string]any{"user": u})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": uid})
}
