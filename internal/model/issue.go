package model

import (
	"gorm.io/datatypes"
)

// IssueType is the closed set of problem categories a report can carry
type IssueType string

const (
	IssueLateDelivery     IssueType = "Atraso na entrega"
	IssueDefectiveProduct IssueType = "Produto com defeito"
	IssueOrderMismatch    IssueType = "Divergência no pedido"
	IssuePoorService      IssueType = "Atendimento insatisfatório"
	IssueNoResponse       IssueType = "Falta de retorno"
	IssueOther            IssueType = "Outro"
)

// IssueTypes lists every accepted issue type in display order
var IssueTypes = []IssueType{
	IssueLateDelivery,
	IssueDefectiveProduct,
	IssueOrderMismatch,
	IssuePoorService,
	IssueNoResponse,
	IssueOther,
}

// Valid reports whether t belongs to the closed set
func (t IssueType) Valid() bool {
	for _, known := range IssueTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ItemRelated reports whether reports of this type must point at order items
func (t IssueType) ItemRelated() bool {
	return t == IssueLateDelivery || t == IssueDefectiveProduct || t == IssueOrderMismatch
}

// IssueStatus is the lifecycle of a historical issue record
type IssueStatus string

const (
	IssueOpen      IssueStatus = "Aberto"
	IssueReviewing IssueStatus = "Em análise"
	IssueClosed    IssueStatus = "Fechado"
)

// Rank orders the statuses; transitions may only increase it
func (s IssueStatus) Rank() int {
	switch s {
	case IssueOpen:
		return 1
	case IssueReviewing:
		return 2
	case IssueClosed:
		return 3
	default:
		return 0
	}
}

// Valid reports whether s is a known status
func (s IssueStatus) Valid() bool {
	return s.Rank() > 0
}

// AffectedItem describes one order item touched by a reported issue
type AffectedItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

// IssueRecord is a problem reported against a purchase order
type IssueRecord struct {
	ID                  string                            `json:"id" gorm:"primaryKey;type:varchar(30)"`
	Date                string                            `json:"date" gorm:"type:varchar(10);index"`
	OrderID             string                            `json:"order_id" gorm:"type:varchar(50);index"`
	Segment             string                            `json:"segment" gorm:"type:varchar(100);index"`
	Type                IssueType                         `json:"type" gorm:"type:varchar(50)"`
	AffectedItemsCount  int                               `json:"affected_items_count"`
	AffectedItemsDetail datatypes.JSONSlice[AffectedItem] `json:"affected_items_detail"`
	AttachmentsCount    int                               `json:"attachments_count"`
	AttachmentsList     datatypes.JSONSlice[string]       `json:"attachments_list"`
	Status              IssueStatus                       `json:"status" gorm:"type:varchar(20);index"`
	Description         string                            `json:"description" gorm:"type:text"`
	Author              string                            `json:"author" gorm:"type:varchar(100)"`
}

// Normalize replaces absent sequences with empty ones
func (r *IssueRecord) Normalize() {
	if r.AffectedItemsDetail == nil {
		r.AffectedItemsDetail = datatypes.JSONSlice[AffectedItem]{}
	}
	if r.AttachmentsList == nil {
		r.AttachmentsList = datatypes.JSONSlice[string]{}
	}
}

// IssueFilter narrows ledger listings. Empty fields match everything.
type IssueFilter struct {
	OrderID string
	Segment string
	Status  IssueStatus
}
