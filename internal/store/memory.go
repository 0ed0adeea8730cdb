package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"supplier-portal/internal/model"
)

// MemoryStore keeps every record in process memory
type MemoryStore struct {
	mu         sync.RWMutex
	suppliers  map[string]*model.Supplier
	order      []string
	links      map[string]string
	issues     map[string]*model.IssueRecord
	complaints map[string]*model.Complaint
	now        func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		suppliers:  make(map[string]*model.Supplier),
		links:      make(map[string]string),
		issues:     make(map[string]*model.IssueRecord),
		complaints: make(map[string]*model.Complaint),
		now:        time.Now,
	}
}

func (m *MemoryStore) ListSuppliers(ctx context.Context) ([]*model.Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Supplier, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.suppliers[id].Clone())
	}
	return out, nil
}

func (m *MemoryStore) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.suppliers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) UpdateSupplier(ctx context.Context, id string, mutate SupplierMutation) (*model.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.suppliers[id]
	if !ok {
		return nil, ErrNotFound
	}

	working := current.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.ID = id
	working.UpdatedAt = m.now()
	prepareSupplier(working)

	m.suppliers[id] = working
	return working.Clone(), nil
}

func (m *MemoryStore) AddSuppliers(ctx context.Context, suppliers []*model.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(suppliers))
	for _, s := range suppliers {
		if _, exists := m.suppliers[s.ID]; exists || seen[s.ID] {
			return ErrDuplicate
		}
		seen[s.ID] = true
	}

	now := m.now()
	for _, s := range suppliers {
		c := s.Clone()
		prepareSupplier(c)
		c.CreatedAt = now
		c.UpdatedAt = now
		m.suppliers[c.ID] = c
		m.order = append(m.order, c.ID)
	}
	return nil
}

func (m *MemoryStore) ResolveOrder(ctx context.Context, reference string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.links[reference]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

func (m *MemoryStore) OrderReferences(ctx context.Context, supplierID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	refs := []string{}
	for ref, id := range m.links {
		if id == supplierID {
			refs = append(refs, ref)
		}
	}
	sort.Strings(refs)
	return refs, nil
}

func (m *MemoryStore) ListIssues(ctx context.Context, filter model.IssueFilter) ([]*model.IssueRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*model.IssueRecord{}
	for _, r := range m.issues {
		if matchesIssue(r, filter) {
			out = append(out, cloneIssue(r))
		}
	}
	sortIssues(out)
	return out, nil
}

func (m *MemoryStore) GetIssue(ctx context.Context, id string) (*model.IssueRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneIssue(r), nil
}

func (m *MemoryStore) CreateIssue(ctx context.Context, record *model.IssueRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record.ID == "" {
		existing := make([]string, 0, len(m.issues))
		for id := range m.issues {
			existing = append(existing, id)
		}
		record.ID = nextIssueID(issueIDPrefix(record, m.now()), existing)
	}
	if _, exists := m.issues[record.ID]; exists {
		return ErrDuplicate
	}

	m.issues[record.ID] = cloneIssue(record)
	return nil
}

func (m *MemoryStore) UpdateIssue(ctx context.Context, id string, mutate IssueMutation) (*model.IssueRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.issues[id]
	if !ok {
		return nil, ErrNotFound
	}

	working := cloneIssue(current)
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.ID = id

	m.issues[id] = working
	return cloneIssue(working), nil
}

func (m *MemoryStore) ListComplaints(ctx context.Context, status model.ComplaintStatus) ([]*model.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*model.Complaint{}
	for _, c := range m.complaints {
		if status == "" || c.Status == status {
			out = append(out, cloneComplaint(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) UpdateComplaint(ctx context.Context, id string, mutate ComplaintMutation) (*model.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}

	working := cloneComplaint(current)
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.ID = id

	m.complaints[id] = working
	return cloneComplaint(working), nil
}

func (m *MemoryStore) Seed(ctx context.Context, data SeedData) (bool, error) {
	m.mu.RLock()
	empty := len(m.suppliers) == 0
	m.mu.RUnlock()
	if !empty {
		return false, nil
	}

	if err := m.AddSuppliers(ctx, data.Suppliers); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, link := range data.OrderLinks {
		m.links[strings.ToUpper(link.Reference)] = link.SupplierID
	}
	for _, r := range data.Issues {
		m.issues[r.ID] = cloneIssue(r)
	}
	for _, c := range data.Complaints {
		m.complaints[c.ID] = cloneComplaint(c)
	}
	return true, nil
}

// sortIssues orders newest first, then by id
func sortIssues(issues []*model.IssueRecord) {
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Date != issues[j].Date {
			return issues[i].Date > issues[j].Date
		}
		return issues[i].ID < issues[j].ID
	})
}
