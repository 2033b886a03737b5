package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product represents a product on sale at the till.
type Product struct {
	ID        string                      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string                      `json:"name" gorm:"type:varchar(255);not null;index" validate:"required,max=255"`
	Price     float64                     `json:"price" gorm:"not null" validate:"gte=0"`
	Variety   datatypes.JSONSlice[string] `json:"variety"`
	Stock     int                         `json:"stock" gorm:"not null;default:0" validate:"gte=0"`
	Barcode   *string                     `json:"barcode" gorm:"type:varchar(64);uniqueIndex" validate:"omitempty,max=64"`
	Images    datatypes.JSONSlice[string] `json:"images" validate:"dive,trustedimage"`
	CreatedAt time.Time                   `json:"createdAt"`
	UpdatedAt time.Time                   `json:"updatedAt"`
}

// BeforeCreate assigns an ID and replaces nil lists with empty ones so the
// JSON columns never hold null.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Normalize()
	return nil
}

// Normalize trims the name, turns an empty barcode into NULL and makes sure
// the list fields are non-nil.
func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	if p.Barcode != nil {
		b := strings.TrimSpace(*p.Barcode)
		if b == "" {
			p.Barcode = nil
		} else {
			p.Barcode = &b
		}
	}
	if p.Variety == nil {
		p.Variety = datatypes.JSONSlice[string]{}
	}
	if p.Images == nil {
		p.Images = datatypes.JSONSlice[string]{}
	}
}

// CreateProductRequest is the admin payload for a new product. Price and
// stock are pointers so a missing field can be told apart from zero.
type CreateProductRequest struct {
	Name    string   `json:"name" validate:"required"`
	Price   *float64 `json:"price" validate:"required"`
	Variety []string `json:"variety"`
	Stock   *int     `json:"stock" validate:"required"`
	Barcode *string  `json:"barcode"`
	Images  []string `json:"images"`
}

// ToProduct builds the record to insert.
func (r CreateProductRequest) ToProduct() *Product {
	p := &Product{
		Name:    r.Name,
		Variety: r.Variety,
		Barcode: r.Barcode,
		Images:  r.Images,
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	p.Normalize()
	return p
}

// UpdateProductRequest is a partial update; nil fields are left untouched.
type UpdateProductRequest struct {
	Name    *string   `json:"name"`
	Price   *float64  `json:"price"`
	Variety *[]string `json:"variety"`
	Stock   *int      `json:"stock"`
	Barcode *string   `json:"barcode"`
	Images  *[]string `json:"images"`
}

// Apply merges the request into p.
func (r UpdateProductRequest) Apply(p *Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Variety != nil {
		p.Variety = *r.Variety
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.Barcode != nil {
		b := *r.Barcode
		p.Barcode = &b
	}
	if r.Images != nil {
		p.Images = *r.Images
	}
	p.Normalize()
}
