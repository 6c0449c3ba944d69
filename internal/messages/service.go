package messages

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rewear-app/rewear-backend/internal/users"
	"github.com/rewear-app/rewear-backend/pkg/db/models"
	"github.com/rewear-app/rewear-backend/pkg/enums"
	pkgerrors "github.com/rewear-app/rewear-backend/pkg/errors"
)

type requestReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Request, error)
}

type userReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
}

// Service exposes the request-scoped chat.
type Service interface {
	Send(ctx context.Context, callerID uuid.UUID, input SendMessageInput) (*MessageDTO, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID, callerID uuid.UUID) ([]MessageDTO, error)
}

type service struct {
	repo     Repository
	requests requestReader
	users    userReader
}

// NewService builds a messaging service with the required dependencies.
func NewService(repo Repository, requests requestReader, userReader userReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("messages repository required")
	}
	if requests == nil {
		return nil, fmt.Errorf("requests reader required")
	}
	if userReader == nil {
		return nil, fmt.Errorf("users reader required")
	}
	return &service{repo: repo, requests: requests, users: userReader}, nil
}

func (s *service) Send(ctx context.Context, callerID uuid.UUID, input SendMessageInput) (*MessageDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content required")
	}

	msgType := enums.MessageTypeText
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid message type")
		}
		msgType = *input.Type
	}

	request, err := s.requests.FindByID(ctx, input.RequestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
	}
	if request.RequesterID != callerID && request.OwnerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only request participants can send messages")
	}

	message, err := s.repo.Create(ctx, &models.Message{
		RequestID: input.RequestID,
		SenderID:  callerID,
		Content:   input.Content,
		Type:      msgType,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
	}
	return FromModel(message), nil
}

// ListByRequest is the one fail-quiet read: unauthenticated callers, missing
// requests, and non-participants all get an empty transcript, never an error.
func (s *service) ListByRequest(ctx context.Context, requestID uuid.UUID, callerID uuid.UUID) ([]MessageDTO, error) {
	empty := []MessageDTO{}
	if callerID == uuid.Nil || requestID == uuid.Nil {
		return empty, nil
	}

	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return empty, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
	}
	if request.RequesterID != callerID && request.OwnerID != callerID {
		return empty, nil
	}

	rows, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}

	senderIDs := make([]uuid.UUID, 0, 2)
	seen := map[uuid.UUID]struct{}{}
	for i := range rows {
		if _, ok := seen[rows[i].SenderID]; ok {
			continue
		}
		seen[rows[i].SenderID] = struct{}{}
		senderIDs = append(senderIDs, rows[i].SenderID)
	}

	senders, err := s.users.FindByIDs(ctx, senderIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load message senders")
	}

	result := make([]MessageDTO, 0, len(rows))
	for i := range rows {
		dto := *FromModel(&rows[i])
		if sender, ok := senders[rows[i].SenderID]; ok {
			dto.Sender = users.SummaryFromModel(sender, false)
		}
		result = append(result, dto)
	}
	return result, nil
}
