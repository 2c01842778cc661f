package suppliers

import "time"

// Supplier represents a goods supplier. Phone is the one mandatory contact
// channel; the rest are optional.
type Supplier struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ContactPerson *string   `json:"contact_person,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Phone         string    `json:"phone"`
	Address       *string   `json:"address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SuppliedProduct is a product row as seen from a supplier association.
type SuppliedProduct struct {
	ProductID   int64  `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
}

// CreateSupplierRequest carries the fields for a new supplier.
type CreateSupplierRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	ContactPerson *string `json:"contact_person,omitempty"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string  `json:"phone" validate:"required,max=50"`
	Address       *string `json:"address,omitempty"`
}

// UpdateSupplierRequest replaces the mutable supplier fields.
type UpdateSupplierRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	ContactPerson *string `json:"contact_person,omitempty"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string  `json:"phone" validate:"required,max=50"`
	Address       *string `json:"address,omitempty"`
}
