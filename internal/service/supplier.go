// Package service holds the portal's use cases on top of the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"supplier-portal/internal/model"
	"supplier-portal/internal/penalty"
	"supplier-portal/internal/scoring"
	"supplier-portal/internal/store"
	"supplier-portal/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllSegments is the segment filter value that matches every supplier
const AllSegments = "Todos"

// LowScoreThreshold marks suppliers counted as low score on the dashboard
const LowScoreThreshold = 2.5

const supplierNotFound = "Fornecedor não encontrado."

// RankingFilter narrows the ranking. Empty fields match everything.
type RankingFilter struct {
	Query   string
	Segment string
}

// RankedSupplier is one ranking row
type RankedSupplier struct {
	Position       int                    `json:"position"`
	Supplier       *model.Supplier        `json:"supplier"`
	Classification scoring.Classification `json:"classification"`
}

// SupplierDetail is a supplier with its derived status
type SupplierDetail struct {
	Supplier          *model.Supplier        `json:"supplier"`
	Classification    scoring.Classification `json:"classification"`
	State             penalty.State          `json:"state"`
	RemainingWarnings int                    `json:"remaining_warnings"`
}

// Dashboard holds the management counters
type Dashboard struct {
	Total             int `json:"total"`
	Blocked           int `json:"blocked"`
	LowScore          int `json:"low_score"`
	PendingComplaints int `json:"pending_complaints"`
}

// SupplierService serves the registry views
type SupplierService struct {
	store store.Store
	log   *zap.Logger
}

// NewSupplierService creates a supplier service
func NewSupplierService(s store.Store, log *zap.Logger) *SupplierService {
	return &SupplierService{store: s, log: log}
}

// Ranking returns the filtered suppliers best first, positions starting at 1
func (s *SupplierService) Ranking(ctx context.Context, filter RankingFilter) ([]RankedSupplier, error) {
	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}

	segment := strings.TrimSpace(filter.Segment)
	matched := make([]*model.Supplier, 0, len(suppliers))
	for _, sp := range suppliers {
		if segment != "" && segment != AllSegments && sp.Segment != segment {
			continue
		}
		if !matchesQuery(sp, filter.Query) {
			continue
		}
		matched = append(matched, sp)
	}

	ranked := scoring.Rank(matched)
	rows := make([]RankedSupplier, 0, len(ranked))
	for i, sp := range ranked {
		rows = append(rows, RankedSupplier{
			Position:       i + 1,
			Supplier:       sp,
			Classification: scoring.Classify(sp.AverageScore),
		})
	}
	return rows, nil
}

// Segments returns the distinct segments sorted, preceded by AllSegments
func (s *SupplierService) Segments(ctx context.Context) ([]string, error) {
	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	segments := []string{}
	for _, sp := range suppliers {
		if sp.Segment == "" || seen[sp.Segment] {
			continue
		}
		seen[sp.Segment] = true
		segments = append(segments, sp.Segment)
	}
	sort.Strings(segments)
	return append([]string{AllSegments}, segments...), nil
}

// Detail returns one supplier with its classification and penalty state
func (s *SupplierService) Detail(ctx context.Context, id string) (*SupplierDetail, error) {
	sp, err := s.store.GetSupplier(ctx, id)
	if err != nil {
		return nil, storeError(err, supplierNotFound)
	}
	return detailOf(sp), nil
}

func detailOf(sp *model.Supplier) *SupplierDetail {
	return &SupplierDetail{
		Supplier:          sp,
		Classification:    scoring.Classify(sp.AverageScore),
		State:             penalty.StateOf(sp),
		RemainingWarnings: penalty.Remaining(sp),
	}
}

// Search returns the suppliers matching query in registry order
func (s *SupplierService) Search(ctx context.Context, query string) ([]*model.Supplier, error) {
	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*model.Supplier, 0, len(suppliers))
	for _, sp := range suppliers {
		if matchesQuery(sp, query) {
			out = append(out, sp)
		}
	}
	return out, nil
}

// Import adds new suppliers in one batch. Missing ids are generated; a
// supplier imported with three or more warnings arrives blocked.
func (s *SupplierService) Import(ctx context.Context, suppliers []*model.Supplier) ([]*model.Supplier, error) {
	if len(suppliers) == 0 {
		return nil, invalid("Nenhum fornecedor para importar.")
	}

	// Item ids are unique across the whole registry
	itemIDs, err := s.itemIDs(ctx)
	if err != nil {
		return nil, err
	}

	var problems []string
	for i, sp := range suppliers {
		row := i + 1
		if sp == nil {
			problems = append(problems, fmt.Sprintf("Linha %d: registro vazio.", row))
			continue
		}
		for j := range sp.Items {
			id := strings.TrimSpace(sp.Items[j].ID)
			sp.Items[j].ID = id
			if id == "" {
				continue
			}
			if itemIDs[id] {
				problems = append(problems, fmt.Sprintf("Linha %d: item %q já existe.", row, id))
			}
			itemIDs[id] = true
		}
		sp.Name = strings.TrimSpace(sp.Name)
		if sp.Name == "" {
			problems = append(problems, fmt.Sprintf("Linha %d: informe a razão social.", row))
		}
		if !inRange(sp.AverageScore) || !inRange(sp.Criteria.Quality) || !inRange(sp.Criteria.Delivery) || !inRange(sp.Criteria.Support) {
			problems = append(problems, fmt.Sprintf("Linha %d: notas devem estar entre 0 e 5.", row))
		}
		if sp.Warnings < 0 || sp.Volume < 0 || sp.Occurrences < 0 {
			problems = append(problems, fmt.Sprintf("Linha %d: contadores não podem ser negativos.", row))
		}
	}
	if len(problems) > 0 {
		return nil, invalid(problems...)
	}

	for _, sp := range suppliers {
		sp.ID = strings.TrimSpace(sp.ID)
		if sp.ID == "" {
			sp.ID = uuid.New().String()
		}
		for j := range sp.Items {
			if sp.Items[j].ID == "" {
				sp.Items[j].ID = uuid.New().String()
			}
		}
		if sp.Warnings >= penalty.BlockThreshold {
			sp.IsBlocked = true
		}
		sp.Normalize()
	}

	if err := s.store.AddSuppliers(ctx, suppliers); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(ErrConflict, "Já existe fornecedor com o mesmo identificador.")
		}
		return nil, err
	}

	prometheus.RecordSupplierOperation("import")
	s.log.Info("Suppliers imported", zap.Int("count", len(suppliers)))
	return suppliers, nil
}

func (s *SupplierService) itemIDs(ctx context.Context) (map[string]bool, error) {
	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool)
	for _, sp := range suppliers {
		for _, item := range sp.Items {
			ids[item.ID] = true
		}
	}
	return ids, nil
}

// Dashboard counts suppliers and pending complaints
func (s *SupplierService) Dashboard(ctx context.Context) (*Dashboard, error) {
	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.store.ListComplaints(ctx, model.ComplaintPending)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Total: len(suppliers), PendingComplaints: len(pending)}
	for _, sp := range suppliers {
		if sp.IsBlocked {
			d.Blocked++
		}
		if sp.AverageScore < LowScoreThreshold {
			d.LowScore++
		}
	}
	prometheus.UpdateBlockedSuppliers(d.Blocked)
	return d, nil
}

// matchesQuery reports whether the query is a case-insensitive substring of
// the name or equals the tax id once punctuation is ignored
func matchesQuery(sp *model.Supplier, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(sp.Name), strings.ToLower(query)) {
		return true
	}
	if strings.Contains(sp.TaxID, query) {
		return true
	}
	digits := onlyDigits(query)
	return digits != "" && strings.Contains(onlyDigits(sp.TaxID), digits)
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func inRange(v float64) bool {
	return v >= 0 && v <= 5
}

// storeError maps store errors to service kinds
func storeError(err error, notFound string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return wrapError(ErrNotFound, notFound, err)
	case errors.Is(err, store.ErrDuplicate):
		return wrapError(ErrConflict, "Registro já existe.", err)
	default:
		return err
	}
}
