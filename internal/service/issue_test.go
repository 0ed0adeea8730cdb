package service

import (
	"context"
	"testing"
	"time"

	"supplier-portal/internal/model"

	"github.com/stretchr/testify/require"
)

func newTestIssueService(t *testing.T) *IssueService {
	t.Helper()
	svc := NewIssueService(newSeededStore(t), nopLogger())
	svc.now = func() time.Time { return time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestReportIssueRequiresAffectedItem(t *testing.T) {
	svc := newTestIssueService(t)
	ctx := context.Background()

	_, err := svc.Report(ctx, IssueReport{
		Reference:   "OC-2025-001",
		Type:        model.IssueDefectiveProduct,
		Description: "Cabos com isolamento rompido.",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{MsgAffectedItemRequired}, verr.Problems)

	all, err := svc.List(ctx, IssueQuery{})
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestReportIssueCollectsEveryProblem(t *testing.T) {
	svc := newTestIssueService(t)

	_, err := svc.Report(context.Background(), IssueReport{Reference: "OC-2025-001", Description: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{MsgIssueTypeRequired, MsgDescriptionRequired}, verr.Problems)

	_, err = svc.Report(context.Background(), IssueReport{
		Reference: "OC-2025-001",
		Type:      model.IssueOrderMismatch,
		Items:     []AffectedItemInput{{ItemID: "i9"}},
	})
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 2)
	require.Equal(t, MsgDescriptionRequired, verr.Problems[0])
	require.Contains(t, verr.Problems[1], "i9")
}

func TestReportIssue(t *testing.T) {
	svc := newTestIssueService(t)
	ctx := context.Background()

	record, err := svc.Report(ctx, IssueReport{
		Reference:   "fluig-123456",
		Type:        model.IssueLateDelivery,
		Description: "  Entrega com 3 dias de atraso.  ",
		Items: []AffectedItemInput{
			{ItemID: "i3", Note: "lote parcial"},
			{ItemID: "i1", Quantity: 10},
		},
		Attachments: []string{"nf.pdf", " "},
	})
	require.NoError(t, err)
	require.Equal(t, "RP-2025-0044", record.ID)
	require.Equal(t, "2025-11-03", record.Date)
	require.Equal(t, "FLUIG-123456", record.OrderID)
	require.Equal(t, "Logística", record.Segment)
	require.Equal(t, model.IssueOpen, record.Status)
	require.Equal(t, "Entrega com 3 dias de atraso.", record.Description)
	require.Equal(t, defaultIssueAuthor, record.Author)
	require.Equal(t, 2, record.AffectedItemsCount)
	require.Equal(t, model.AffectedItem{Name: "Parafuso M6", Quantity: 200, Note: "lote parcial"}, record.AffectedItemsDetail[0])
	require.Equal(t, 10, record.AffectedItemsDetail[1].Quantity)
	require.Equal(t, 1, record.AttachmentsCount)

	byOrder, err := svc.List(ctx, IssueQuery{OrderID: "fluig-123456"})
	require.NoError(t, err)
	require.Len(t, byOrder, 1)
}

func TestReportIssueNonItemType(t *testing.T) {
	svc := newTestIssueService(t)

	record, err := svc.Report(context.Background(), IssueReport{
		Reference:   "OC-2025-002",
		Type:        model.IssueNoResponse,
		Description: "Sem retorno há duas semanas.",
		Author:      "Maria",
	})
	require.NoError(t, err)
	require.Equal(t, 0, record.AffectedItemsCount)
	require.NotNil(t, record.AffectedItemsDetail)
	require.Equal(t, "Maria", record.Author)
}

func TestReportIssueUnknownOrder(t *testing.T) {
	svc := newTestIssueService(t)

	_, err := svc.Report(context.Background(), IssueReport{Reference: "ZZZ-000", Type: model.IssueOther, Description: "x"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestIssuesForSupplier(t *testing.T) {
	svc := newTestIssueService(t)
	ctx := context.Background()

	issues, err := svc.ForSupplier(ctx, "1")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, "RP-2025-0043", issues[0].ID)

	issues, err = svc.ForSupplier(ctx, "3")
	require.NoError(t, err)
	require.Empty(t, issues)

	_, err = svc.ForSupplier(ctx, "404")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListIssuesFilters(t *testing.T) {
	svc := newTestIssueService(t)
	ctx := context.Background()

	closed, err := svc.List(ctx, IssueQuery{Status: model.IssueClosed, Segment: "Logística"})
	require.NoError(t, err)
	require.Len(t, closed, 1)

	open, err := svc.List(ctx, IssueQuery{Status: model.IssueOpen})
	require.NoError(t, err)
	require.Empty(t, open)

	_, err = svc.List(ctx, IssueQuery{Status: "Reaberto"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestAdvanceStatus(t *testing.T) {
	svc := newTestIssueService(t)
	ctx := context.Background()

	record, err := svc.Report(ctx, IssueReport{Reference: "OC-2025-002", Type: model.IssuePoorService, Description: "Atendente rude."})
	require.NoError(t, err)

	updated, err := svc.AdvanceStatus(ctx, record.ID, model.IssueReviewing)
	require.NoError(t, err)
	require.Equal(t, model.IssueReviewing, updated.Status)

	_, err = svc.AdvanceStatus(ctx, record.ID, model.IssueOpen)
	require.ErrorIs(t, err, ErrConflict)
	_, err = svc.AdvanceStatus(ctx, record.ID, model.IssueReviewing)
	require.ErrorIs(t, err, ErrConflict)

	updated, err = svc.AdvanceStatus(ctx, record.ID, model.IssueClosed)
	require.NoError(t, err)
	require.Equal(t, model.IssueClosed, updated.Status)

	_, err = svc.AdvanceStatus(ctx, "RP-2025-0043", model.IssueClosed)
	require.ErrorIs(t, err, ErrConflict)
	_, err = svc.AdvanceStatus(ctx, "RP-0000-0000", model.IssueClosed)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.AdvanceStatus(ctx, record.ID, "Cancelado")
	require.ErrorIs(t, err, ErrValidation)
}

func TestAdvanceStatusCanSkip(t *testing.T) {
	svc := newTestIssueService(t)
	ctx := context.Background()

	record, err := svc.Report(ctx, IssueReport{Reference: "OC-2025-002", Type: model.IssueOther, Description: "Outro problema."})
	require.NoError(t, err)

	updated, err := svc.AdvanceStatus(ctx, record.ID, model.IssueClosed)
	require.NoError(t, err)
	require.Equal(t, model.IssueClosed, updated.Status)
}
