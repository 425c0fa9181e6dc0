package models

import "github.com/storefront/backend/internal/domain/shop"

// ShopPageModel is the persistence model for static pages
type ShopPageModel struct {
	ID       int    `gorm:"primaryKey"`
	ParentID *int   `gorm:"index"`
	PageKey  string `gorm:"type:varchar(100)"`
	Title    string `gorm:"type:varchar(255);not null"`
	Content  string `gorm:"type:text"`
	Link     string `gorm:"type:varchar(500)"`
	Position int    `gorm:"not null;default:0"`
	ShopIDs  string `gorm:"column:shop_ids;type:varchar(255)"`
}

// TableName returns the table name for GORM
func (ShopPageModel) TableName() string {
	return "shop_pages"
}

// ToDomain converts the model to a page without parent or children
func (m *ShopPageModel) ToDomain() *shop.Page {
	p := &shop.Page{
		ID:       m.ID,
		Key:      m.PageKey,
		Title:    m.Title,
		Content:  m.Content,
		Link:     m.Link,
		Position: m.Position,
		ShopIDs:  ParseIDList(m.ShopIDs),
	}
	if m.ParentID != nil {
		p.ParentID = *m.ParentID
	}
	return p
}
