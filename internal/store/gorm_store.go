package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"supplier-portal/internal/model"
	"supplier-portal/prometheus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists the registry in PostgreSQL through gorm
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore wraps an open gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// Models lists every table the store needs, in migration order
func Models() []interface{} {
	return []interface{}{
		&model.Supplier{},
		&model.OrderItem{},
		&model.WarningLog{},
		&model.OrderLink{},
		&model.IssueRecord{},
		&model.Complaint{},
	}
}

func withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("WarningLogs", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

func (g *GormStore) ListSuppliers(ctx context.Context) ([]*model.Supplier, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var suppliers []*model.Supplier
	if err := withAssociations(g.db.WithContext(ctx)).Order("created_at, id").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	for _, s := range suppliers {
		s.Normalize()
	}
	return suppliers, nil
}

func (g *GormStore) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var s model.Supplier
	if err := withAssociations(g.db.WithContext(ctx)).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	s.Normalize()
	return &s, nil
}

// UpdateSupplier locks the supplier row for the duration of the mutation and
// rewrites its warning log in the same transaction
func (g *GormStore) UpdateSupplier(ctx context.Context, id string, mutate SupplierMutation) (*model.Supplier, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	var updated *model.Supplier
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Supplier
		err := withAssociations(tx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&current, "id = ?", id).Error
		if err != nil {
			return translate(err)
		}
		current.Normalize()

		if err := mutate(&current); err != nil {
			return err
		}
		current.ID = id
		current.UpdatedAt = g.now()

		if err := tx.Omit(clause.Associations).Save(&current).Error; err != nil {
			return err
		}
		if err := tx.Where("supplier_id = ?", id).Delete(&model.WarningLog{}).Error; err != nil {
			return err
		}
		for i := range current.WarningLogs {
			current.WarningLogs[i].ID = 0
			current.WarningLogs[i].SupplierID = id
		}
		if len(current.WarningLogs) > 0 {
			if err := tx.Create(&current.WarningLogs).Error; err != nil {
				return err
			}
		}

		updated = &current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (g *GormStore) AddSuppliers(ctx context.Context, suppliers []*model.Supplier) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if len(suppliers) == 0 {
		return nil
	}
	for _, s := range suppliers {
		prepareSupplier(s)
	}
	return translate(g.db.WithContext(ctx).Create(&suppliers).Error)
}

func (g *GormStore) ResolveOrder(ctx context.Context, reference string) (string, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var link model.OrderLink
	if err := g.db.WithContext(ctx).First(&link, "reference = ?", reference).Error; err != nil {
		return "", translate(err)
	}
	return link.SupplierID, nil
}

func (g *GormStore) OrderReferences(ctx context.Context, supplierID string) ([]string, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	refs := []string{}
	err := g.db.WithContext(ctx).Model(&model.OrderLink{}).
		Where("supplier_id = ?", supplierID).
		Order("reference").
		Pluck("reference", &refs).Error
	return refs, err
}

func (g *GormStore) ListIssues(ctx context.Context, filter model.IssueFilter) ([]*model.IssueRecord, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := g.db.WithContext(ctx)
	if filter.OrderID != "" {
		query = query.Where("UPPER(order_id) = ?", strings.ToUpper(filter.OrderID))
	}
	if filter.Segment != "" {
		query = query.Where("segment = ?", filter.Segment)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	issues := []*model.IssueRecord{}
	if err := query.Order("date desc, id").Find(&issues).Error; err != nil {
		return nil, err
	}
	for _, r := range issues {
		r.Normalize()
	}
	return issues, nil
}

func (g *GormStore) GetIssue(ctx context.Context, id string) (*model.IssueRecord, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var r model.IssueRecord
	if err := g.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	r.Normalize()
	return &r, nil
}

func (g *GormStore) CreateIssue(ctx context.Context, record *model.IssueRecord) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if record.ID == "" {
			prefix := issueIDPrefix(record, g.now())
			var existing []string
			err := tx.Model(&model.IssueRecord{}).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id LIKE ?", prefix+"%").
				Pluck("id", &existing).Error
			if err != nil {
				return err
			}
			record.ID = nextIssueID(prefix, existing)
		}
		record.Normalize()
		return translate(tx.Create(record).Error)
	})
}

func (g *GormStore) UpdateIssue(ctx context.Context, id string, mutate IssueMutation) (*model.IssueRecord, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	var updated *model.IssueRecord
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.IssueRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, "id = ?", id).Error
		if err != nil {
			return translate(err)
		}
		current.Normalize()

		if err := mutate(&current); err != nil {
			return err
		}
		current.ID = id
		if err := tx.Save(&current).Error; err != nil {
			return err
		}
		updated = &current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (g *GormStore) ListComplaints(ctx context.Context, status model.ComplaintStatus) ([]*model.Complaint, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := g.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	complaints := []*model.Complaint{}
	if err := query.Order("date, id").Find(&complaints).Error; err != nil {
		return nil, err
	}
	for _, c := range complaints {
		if c.Response != nil && c.Response.ID == "" {
			c.Response = nil
		}
	}
	return complaints, nil
}

func (g *GormStore) UpdateComplaint(ctx context.Context, id string, mutate ComplaintMutation) (*model.Complaint, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	var updated *model.Complaint
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Complaint
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, "id = ?", id).Error
		if err != nil {
			return translate(err)
		}
		if current.Response != nil && current.Response.ID == "" {
			current.Response = nil
		}

		if err := mutate(&current); err != nil {
			return err
		}
		current.ID = id
		if err := tx.Save(&current).Error; err != nil {
			return err
		}
		updated = &current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (g *GormStore) Seed(ctx context.Context, data SeedData) (bool, error) {
	var count int64
	if err := g.db.WithContext(ctx).Model(&model.Supplier{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range data.Suppliers {
			prepareSupplier(s)
		}
		if err := tx.Create(&data.Suppliers).Error; err != nil {
			return err
		}
		links := make([]model.OrderLink, 0, len(data.OrderLinks))
		for _, link := range data.OrderLinks {
			link.Reference = strings.ToUpper(link.Reference)
			links = append(links, link)
		}
		if len(links) > 0 {
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}
		if len(data.Issues) > 0 {
			if err := tx.Create(&data.Issues).Error; err != nil {
				return err
			}
		}
		if len(data.Complaints) > 0 {
			if err := tx.Create(&data.Complaints).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
