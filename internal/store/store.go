// Package store holds the supplier registry and the issue/complaint ledger
// behind one interface, with an in-memory and a PostgreSQL implementation.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"supplier-portal/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a record with the same key already exists
	ErrDuplicate = errors.New("record already exists")
)

// SupplierMutation changes a supplier in place. Returning an error aborts the
// update and leaves the stored record untouched.
type SupplierMutation func(s *model.Supplier) error

// IssueMutation changes an issue record in place
type IssueMutation func(r *model.IssueRecord) error

// ComplaintMutation changes a complaint in place
type ComplaintMutation func(c *model.Complaint) error

// Store is the persistence boundary for every domain record. Every returned
// record is a copy; changes only take effect through the Update methods.
type Store interface {
	ListSuppliers(ctx context.Context) ([]*model.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*model.Supplier, error)
	UpdateSupplier(ctx context.Context, id string, mutate SupplierMutation) (*model.Supplier, error)
	AddSuppliers(ctx context.Context, suppliers []*model.Supplier) error

	ResolveOrder(ctx context.Context, reference string) (string, error)
	OrderReferences(ctx context.Context, supplierID string) ([]string, error)

	ListIssues(ctx context.Context, filter model.IssueFilter) ([]*model.IssueRecord, error)
	GetIssue(ctx context.Context, id string) (*model.IssueRecord, error)
	CreateIssue(ctx context.Context, record *model.IssueRecord) error
	UpdateIssue(ctx context.Context, id string, mutate IssueMutation) (*model.IssueRecord, error)

	ListComplaints(ctx context.Context, status model.ComplaintStatus) ([]*model.Complaint, error)
	UpdateComplaint(ctx context.Context, id string, mutate ComplaintMutation) (*model.Complaint, error)

	// Seed loads data when the registry is empty and reports whether it did
	Seed(ctx context.Context, data SeedData) (bool, error)
}

// issueIDPrefix returns the id prefix for a record, taken from the year of
// its date or of now when the date is unset
func issueIDPrefix(r *model.IssueRecord, now time.Time) string {
	year := now.Year()
	if d, err := time.Parse(time.DateOnly, r.Date); err == nil {
		year = d.Year()
	}
	return fmt.Sprintf("RP-%d-", year)
}

// nextIssueID returns the id following the highest existing one for prefix
func nextIssueID(prefix string, existing []string) string {
	highest := 0
	for _, id := range existing {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%04d", prefix, highest+1)
}

func matchesIssue(r *model.IssueRecord, f model.IssueFilter) bool {
	if f.OrderID != "" && !strings.EqualFold(r.OrderID, f.OrderID) {
		return false
	}
	if f.Segment != "" && r.Segment != f.Segment {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

func cloneIssue(r *model.IssueRecord) *model.IssueRecord {
	c := *r
	c.AffectedItemsDetail = append(c.AffectedItemsDetail[:0:0], r.AffectedItemsDetail...)
	c.AttachmentsList = append(c.AttachmentsList[:0:0], r.AttachmentsList...)
	c.Normalize()
	return &c
}

func cloneComplaint(c *model.Complaint) *model.Complaint {
	out := *c
	if c.Response != nil {
		resp := *c.Response
		out.Response = &resp
	}
	return &out
}

func prepareSupplier(s *model.Supplier) {
	s.Normalize()
	for i := range s.Items {
		s.Items[i].SupplierID = s.ID
		s.Items[i].Position = i
	}
	for i := range s.WarningLogs {
		s.WarningLogs[i].SupplierID = s.ID
	}
}
