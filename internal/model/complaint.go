package model

import "time"

// ComplaintStatus is the simplified workflow used for complaints awaiting a
// manager answer. It is deliberately distinct from IssueStatus.
type ComplaintStatus string

const (
	ComplaintPending  ComplaintStatus = "Pendente"
	ComplaintAnswered ComplaintStatus = "Respondido"
)

// ComplaintResponse is the answer a manager sent back to the supplier
type ComplaintResponse struct {
	ID          string    `json:"id" gorm:"type:varchar(26)"`
	Email       string    `json:"email" gorm:"type:varchar(200)"`
	Text        string    `json:"text" gorm:"type:text"`
	RespondedBy string    `json:"responded_by" gorm:"type:varchar(100)"`
	RespondedAt time.Time `json:"responded_at"`
}

// Complaint is a grievance raised against a supplier awaiting a manager answer
type Complaint struct {
	ID            string             `json:"id" gorm:"primaryKey;type:varchar(30)"`
	SupplierName  string             `json:"supplier_name" gorm:"type:varchar(200)"`
	SupplierEmail string             `json:"supplier_email" gorm:"type:varchar(200)"`
	Date          string             `json:"date" gorm:"type:varchar(10)"`
	Type          IssueType          `json:"type" gorm:"type:varchar(50)"`
	Description   string             `json:"description" gorm:"type:text"`
	Status        ComplaintStatus    `json:"status" gorm:"type:varchar(20);index"`
	Response      *ComplaintResponse `json:"response,omitempty" gorm:"embedded;embeddedPrefix:response_"`
}
