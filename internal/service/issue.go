package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"supplier-portal/internal/model"
	"supplier-portal/internal/store"
	"supplier-portal/prometheus"

	"go.uber.org/zap"
)

// Validation messages for issue reports
const (
	MsgIssueTypeRequired    = "Selecione o tipo de problema."
	MsgDescriptionRequired  = "Descreva o problema detalhadamente."
	MsgAffectedItemRequired = "Selecione ao menos um item da OC que teve problema."
)

const defaultIssueAuthor = "Colaborador"

// AffectedItemInput points at one order item touched by the problem
type AffectedItemInput struct {
	ItemID string `json:"item_id"`
	// Quantity defaults to the ordered quantity when zero
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

// IssueReport is a problem raised against an order
type IssueReport struct {
	Reference   string              `json:"reference"`
	Type        model.IssueType     `json:"type"`
	Description string              `json:"description"`
	Items       []AffectedItemInput `json:"items"`
	Attachments []string            `json:"attachments"`
	Author      string              `json:"author"`
}

// IssueQuery filters the ledger. SupplierID matches records whose order is
// linked to the supplier or that share its segment.
type IssueQuery struct {
	OrderID    string
	Segment    string
	Status     model.IssueStatus
	SupplierID string
}

// IssueService reads and appends to the issue ledger
type IssueService struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
}

// NewIssueService creates an issue service
func NewIssueService(s store.Store, log *zap.Logger) *IssueService {
	return &IssueService{store: s, log: log, now: time.Now}
}

// List returns the ledger entries matching q, newest first
func (s *IssueService) List(ctx context.Context, q IssueQuery) ([]*model.IssueRecord, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, invalid(fmt.Sprintf("Status desconhecido: %s.", q.Status))
	}

	issues, err := s.store.ListIssues(ctx, model.IssueFilter{
		OrderID: NormalizeReference(q.OrderID),
		Segment: q.Segment,
		Status:  q.Status,
	})
	if err != nil {
		return nil, err
	}
	if q.SupplierID == "" {
		return issues, nil
	}

	sp, err := s.store.GetSupplier(ctx, q.SupplierID)
	if err != nil {
		return nil, storeError(err, supplierNotFound)
	}
	refs, err := s.store.OrderReferences(ctx, sp.ID)
	if err != nil {
		return nil, err
	}
	linked := make(map[string]bool, len(refs))
	for _, ref := range refs {
		linked[strings.ToUpper(ref)] = true
	}

	out := make([]*model.IssueRecord, 0, len(issues))
	for _, r := range issues {
		if linked[strings.ToUpper(r.OrderID)] || (sp.Segment != "" && r.Segment == sp.Segment) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ForSupplier returns the issues related to a supplier
func (s *IssueService) ForSupplier(ctx context.Context, supplierID string) ([]*model.IssueRecord, error) {
	return s.List(ctx, IssueQuery{SupplierID: supplierID})
}

// Report validates and appends an issue with status Aberto. Every broken
// rule is reported at once and nothing is stored when any rule fails.
func (s *IssueService) Report(ctx context.Context, report IssueReport) (*model.IssueRecord, error) {
	match, err := resolveOrder(ctx, s.store, report.Reference)
	if err != nil {
		return nil, err
	}
	sp := match.Supplier

	var problems []string
	if report.Type == "" {
		problems = append(problems, MsgIssueTypeRequired)
	} else if !report.Type.Valid() {
		problems = append(problems, fmt.Sprintf("Tipo de problema desconhecido: %s.", report.Type))
	}
	description := strings.TrimSpace(report.Description)
	if description == "" {
		problems = append(problems, MsgDescriptionRequired)
	}

	affected := make([]model.AffectedItem, 0, len(report.Items))
	seen := make(map[string]bool)
	for _, in := range report.Items {
		item, ok := sp.FindItem(in.ItemID)
		if !ok {
			problems = append(problems, fmt.Sprintf("Item %s não pertence à OC.", in.ItemID))
			continue
		}
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true

		qty := in.Quantity
		if qty <= 0 {
			qty = item.Quantity
		}
		affected = append(affected, model.AffectedItem{
			Name:     item.Name,
			Quantity: qty,
			Note:     strings.TrimSpace(in.Note),
		})
	}
	if report.Type.ItemRelated() && len(report.Items) == 0 {
		problems = append(problems, MsgAffectedItemRequired)
	}

	if len(problems) > 0 {
		prometheus.RecordIssueReport("rejected")
		return nil, invalid(problems...)
	}

	attachments := make([]string, 0, len(report.Attachments))
	for _, name := range report.Attachments {
		if name = strings.TrimSpace(name); name != "" {
			attachments = append(attachments, name)
		}
	}
	author := strings.TrimSpace(report.Author)
	if author == "" {
		author = defaultIssueAuthor
	}

	record := &model.IssueRecord{
		Date:                s.now().Format(time.DateOnly),
		OrderID:             match.Reference,
		Segment:             sp.Segment,
		Type:                report.Type,
		AffectedItemsCount:  len(affected),
		AffectedItemsDetail: affected,
		AttachmentsCount:    len(attachments),
		AttachmentsList:     attachments,
		Status:              model.IssueOpen,
		Description:         description,
		Author:              author,
	}
	if err := s.store.CreateIssue(ctx, record); err != nil {
		return nil, storeError(err, orderNotFound)
	}

	prometheus.RecordIssueReport("created")
	s.log.Info("Issue reported",
		zap.String("issue_id", record.ID),
		zap.String("order_id", record.OrderID),
		zap.String("type", string(record.Type)))
	return record, nil
}

// AdvanceStatus moves an issue forward in its lifecycle. Steps may be
// skipped but never reversed.
func (s *IssueService) AdvanceStatus(ctx context.Context, id string, status model.IssueStatus) (*model.IssueRecord, error) {
	if !status.Valid() {
		return nil, invalid(fmt.Sprintf("Status desconhecido: %s.", status))
	}

	errBackward := errors.New("backward transition")
	updated, err := s.store.UpdateIssue(ctx, id, func(r *model.IssueRecord) error {
		if status.Rank() <= r.Status.Rank() {
			return errBackward
		}
		r.Status = status
		return nil
	})
	if err != nil {
		if errors.Is(err, errBackward) {
			return nil, wrapError(ErrConflict, "O status só pode avançar (Aberto → Em análise → Fechado).", err)
		}
		return nil, storeError(err, "Registro de problema não encontrado.")
	}

	s.log.Info("Issue status advanced", zap.String("issue_id", id), zap.String("status", string(status)))
	return updated, nil
}
