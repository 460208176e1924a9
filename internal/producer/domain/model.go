package domain

import "time"

// Producer is an external commission source such as a lender aggregator.
type Producer struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	OrgID     int64     `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:ux_producers_org_code,priority:1"`
	Code      string    `json:"code" gorm:"type:text;not null;uniqueIndex:ux_producers_org_code,priority:2"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Producer) TableName() string { return "producers" }

// BkgeClass is a brokerage classification code (upfront, trail, clawback...).
type BkgeClass struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	OrgID     int64     `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:ux_bkge_classes_org_code,priority:1"`
	Code      string    `json:"code" gorm:"type:text;not null;uniqueIndex:ux_bkge_classes_org_code,priority:2"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (BkgeClass) TableName() string { return "bkge_classes" }
