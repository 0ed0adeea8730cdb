package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"supplier-portal/internal/model"
	"supplier-portal/internal/store"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ComplaintReply is a manager's answer to a pending complaint
type ComplaintReply struct {
	Email string `json:"email"`
	Text  string `json:"text"`
}

// ComplaintService lists complaints and records manager answers
type ComplaintService struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
}

// NewComplaintService creates a complaint service
func NewComplaintService(s store.Store, log *zap.Logger) *ComplaintService {
	return &ComplaintService{store: s, log: log, now: time.Now}
}

// List returns complaints, optionally only those with the given status
func (s *ComplaintService) List(ctx context.Context, status model.ComplaintStatus) ([]*model.Complaint, error) {
	if status != "" && status != model.ComplaintPending && status != model.ComplaintAnswered {
		return nil, invalid(fmt.Sprintf("Status desconhecido: %s.", status))
	}
	return s.store.ListComplaints(ctx, status)
}

// Respond answers a pending complaint. Answered complaints are terminal.
func (s *ComplaintService) Respond(ctx context.Context, id string, reply ComplaintReply, manager string) (*model.Complaint, error) {
	email := strings.TrimSpace(reply.Email)
	text := strings.TrimSpace(reply.Text)

	var problems []string
	if email == "" {
		problems = append(problems, "Informe o e-mail de destino.")
	} else if _, err := mail.ParseAddress(email); err != nil {
		problems = append(problems, "E-mail de destino inválido.")
	}
	if text == "" {
		problems = append(problems, "Escreva a resposta antes de enviar.")
	}
	if len(problems) > 0 {
		return nil, invalid(problems...)
	}

	errAnswered := errors.New("already answered")
	now := s.now()
	updated, err := s.store.UpdateComplaint(ctx, id, func(c *model.Complaint) error {
		if c.Status == model.ComplaintAnswered {
			return errAnswered
		}
		c.Status = model.ComplaintAnswered
		c.Response = &model.ComplaintResponse{
			ID:          ulid.Make().String(),
			Email:       email,
			Text:        text,
			RespondedBy: manager,
			RespondedAt: now,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errAnswered) {
			return nil, wrapError(ErrConflict, "Reclamação já respondida.", err)
		}
		return nil, storeError(err, "Reclamação não encontrada.")
	}

	s.log.Info("Complaint answered",
		zap.String("complaint_id", id),
		zap.String("response_id", updated.Response.ID),
		zap.String("email", email),
		zap.String("manager", manager))
	return updated, nil
}
