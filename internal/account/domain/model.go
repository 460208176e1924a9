package domain

import "time"

// ClientAccount is a producer's loan or client reference. Accounts appear
// the first time a producer reports them and stay unallocated until a deal
// is assigned.
type ClientAccount struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	OrgID      int64     `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:ux_client_accounts_code,priority:1"`
	ProducerID int64     `json:"producer_id" gorm:"not null;uniqueIndex:ux_client_accounts_code,priority:2"`
	ClientCode string    `json:"client_code" gorm:"type:text;not null;uniqueIndex:ux_client_accounts_code,priority:3"`
	Name       string    `json:"name" gorm:"type:text;not null;default:''"`
	DealID     *int64    `json:"deal_id,omitempty" gorm:"index"`
	CreatedBy  int64     `json:"created_by" gorm:"not null;default:0"`
	UpdatedBy  int64     `json:"updated_by" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ClientAccount) TableName() string { return "client_accounts" }

// Allocated reports whether a deal is assigned.
func (a ClientAccount) Allocated() bool { return a.DealID != nil && *a.DealID != 0 }
