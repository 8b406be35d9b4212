package models

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
)

// CategoryModel is the persistence model for the Category aggregate root.
type CategoryModel struct {
	AggregateModel
	Title    string     `gorm:"type:varchar(100);not null"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
	IsActive bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Title:             m.Title,
		ParentID:          m.ParentID,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Title = c.Title
	m.ParentID = c.ParentID
	m.IsActive = c.IsActive
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	AggregateModel
	SKU        string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Title      string    `gorm:"type:varchar(200);not null"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index"`
	IsActive   bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SKU:               m.SKU,
		Title:             m.Title,
		CategoryID:        m.CategoryID,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.SKU = p.SKU
	m.Title = p.Title
	m.CategoryID = p.CategoryID
	m.IsActive = p.IsActive
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
