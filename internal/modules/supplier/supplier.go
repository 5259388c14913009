package supplier

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a company units are bought from. Only IsActive changes after creation.
type Supplier struct {
	ID            uuid.UUID `json:"id"`
	CompanyName   string    `json:"company_name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	SupplierType  string    `json:"supplier_type,omitempty"`
	PaymentTerms  string    `json:"payment_terms,omitempty"`
	Country       string    `json:"country"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateRequest is the payload for registering a supplier.
type CreateRequest struct {
	CompanyName   string `json:"company_name" validate:"required,max=200"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	SupplierType  string `json:"supplier_type"`
	PaymentTerms  string `json:"payment_terms"`
	Country       string `json:"country"`
}

// Supplier types seen in practice. Others are accepted as free text.
const (
	TypeAuction  = "Auction"
	TypeTradeIn  = "Trade-in"
	TypeDealer   = "Dealer"
	TypeDistrict = "School District"
)
