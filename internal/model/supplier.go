package model

import (
	"time"
)

// Criteria holds the three rating dimensions of a supplier, each in [0,5]
type Criteria struct {
	Quality  float64 `json:"quality" gorm:"type:numeric(3,2);default:0"`
	Delivery float64 `json:"delivery" gorm:"type:numeric(3,2);default:0"`
	Support  float64 `json:"support" gorm:"type:numeric(3,2);default:0"`
}

// OrderItem is one line of a purchase order placed with the supplier
type OrderItem struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(50)"`
	SupplierID string `json:"-" gorm:"type:varchar(50);index;not null"`
	Position   int    `json:"-" gorm:"not null;default:0"`
	Name       string `json:"name" gorm:"type:varchar(200);not null"`
	Quantity   int    `json:"quantity"`
	Unit       string `json:"unit" gorm:"type:varchar(20)"`
}

// WarningLog is one strike applied to a supplier. Entries are never edited.
type WarningLog struct {
	ID         uint   `json:"-" gorm:"primaryKey"`
	SupplierID string `json:"-" gorm:"type:varchar(50);index;not null"`
	Date       string `json:"date" gorm:"type:varchar(10);not null"`
	Reason     string `json:"reason" gorm:"type:text"`
	Manager    string `json:"manager" gorm:"type:varchar(100)"`
}

// Supplier represents a vendor rated by internal staff
type Supplier struct {
	ID            string       `json:"id" gorm:"primaryKey;type:varchar(50)"`
	Name          string       `json:"name" gorm:"type:varchar(200);index;not null"`
	TaxID         string       `json:"tax_id" gorm:"type:varchar(20);index"`
	Contact       string       `json:"contact" gorm:"type:varchar(200)"`
	AverageScore  float64      `json:"average_score" gorm:"type:numeric(3,2);default:0"`
	Criteria      Criteria     `json:"criteria" gorm:"embedded;embeddedPrefix:criteria_"`
	Volume        int          `json:"volume" gorm:"default:0"`
	Occurrences   int          `json:"occurrences" gorm:"default:0"`
	Segment       string       `json:"segment" gorm:"type:varchar(100);index"`
	Items         []OrderItem  `json:"items" gorm:"foreignKey:SupplierID"`
	Warnings      int          `json:"warnings" gorm:"default:0"`
	IsBlocked     bool         `json:"is_blocked" gorm:"default:false"`
	LastAuditDate string       `json:"last_audit_date,omitempty" gorm:"type:varchar(10)"`
	WarningLogs   []WarningLog `json:"warning_logs" gorm:"foreignKey:SupplierID"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Normalize replaces absent sequences with empty ones
func (s *Supplier) Normalize() {
	if s.Items == nil {
		s.Items = []OrderItem{}
	}
	if s.WarningLogs == nil {
		s.WarningLogs = []WarningLog{}
	}
}

// Clone returns a deep copy so callers never share slices with the registry
func (s *Supplier) Clone() *Supplier {
	c := *s
	c.Items = append([]OrderItem{}, s.Items...)
	c.WarningLogs = append([]WarningLog{}, s.WarningLogs...)
	return &c
}

// FindItem returns the order item with the given id
func (s *Supplier) FindItem(id string) (OrderItem, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return OrderItem{}, false
}

// OrderLink associates a purchase order or process identifier with a supplier
type OrderLink struct {
	Reference  string `json:"reference" gorm:"primaryKey;type:varchar(50)"`
	SupplierID string `json:"supplier_id" gorm:"type:varchar(50);index;not null"`
}
