package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rewear-app/rewear-backend/api/responses"
	"github.com/rewear-app/rewear-backend/api/validators"
	messagesvc "github.com/rewear-app/rewear-backend/internal/messages"
	"github.com/rewear-app/rewear-backend/pkg/enums"
	pkgerrors "github.com/rewear-app/rewear-backend/pkg/errors"
	"github.com/rewear-app/rewear-backend/pkg/logger"
)

// SendMessage appends a chat line to a request thread.
func SendMessage(svc messagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "messages service unavailable"))
			return
		}

		var payload sendMessageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toSendInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.Send(r.Context(), callerID(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

// ListRequestMessages returns a request's thread for its participants.
func ListRequestMessages(svc messagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "messages service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		messages, err := svc.ListByRequest(r.Context(), requestID, callerID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, messages)
	}
}

type sendMessageRequest struct {
	RequestID string  `json:"request_id" validate:"required"`
	Content   string  `json:"content" validate:"required"`
	Type      *string `json:"type,omitempty"`
}

func (r sendMessageRequest) toSendInput() (messagesvc.SendMessageInput, error) {
	requestID, err := uuid.Parse(strings.TrimSpace(r.RequestID))
	if err != nil {
		return messagesvc.SendMessageInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request id")
	}

	var msgType *enums.MessageType
	if r.Type != nil {
		parsed, err := enums.ParseMessageType(strings.TrimSpace(*r.Type))
		if err != nil {
			return messagesvc.SendMessageInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid message type")
		}
		msgType = &parsed
	}

	return messagesvc.SendMessageInput{
		RequestID: requestID,
		Content:   r.Content,
		Type:      msgType,
	}, nil
}
