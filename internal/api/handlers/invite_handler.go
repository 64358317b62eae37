package handlers

import (
	"net/http"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/client"
	"github.com/TWRT/law-office/internal/invite"
	"github.com/sirupsen/logrus"
)

// InviteHandler serves the send-invite function: {email, nombre, empleadoId} in, {success, message, userId} out.
type InviteHandler struct {
	dispatcher client.InviteDispatcher
	log        *logrus.Entry
}

func NewInviteHandler(dispatcher client.InviteDispatcher, log *logrus.Entry) *InviteHandler {
	return &InviteHandler{dispatcher: dispatcher, log: log}
}

func (h *InviteHandler) SendInvite(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("operation", "handlers.Invite.SendInvite")

	var reqBody client.InviteRequest
	if err := decodeJSON(r, &reqBody); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: invite.MsgRequired})
		return
	}

	res, err := h.dispatcher.Dispatch(r.Context(), reqBody)
	if err != nil {
		switch apperrors.CodeOf(err) {
		case apperrors.CodeValidation, apperrors.CodeAlreadyRegistered:
			writeError(w, log, err)
		default:
			log.WithError(err).Error("send invite")
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: invite.MsgFailed})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": invite.MsgSent,
		"userId":  res.AuthUserID,
	})
}
