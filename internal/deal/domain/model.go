package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Agent is a person who receives commission: an internal adviser or an
// external referrer.
type Agent struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	OrgID       int64     `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:ux_agents_org_code,priority:1"`
	Code        string    `json:"code" gorm:"type:text;not null;uniqueIndex:ux_agents_org_code,priority:2"`
	FirstName   string    `json:"first_name" gorm:"type:text;not null"`
	LastName    string    `json:"last_name" gorm:"type:text;not null"`
	IsGSTExempt bool      `json:"is_gst_exempt" gorm:"column:is_gst_exempt;not null;default:false"`
	IsExternal  bool      `json:"is_external" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Agent) TableName() string { return "agents" }

// Deal groups the client accounts that share one commission split.
type Deal struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	OrgID     int64     `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:ux_deals_org_code,priority:1"`
	Code      string    `json:"code" gorm:"type:text;not null;uniqueIndex:ux_deals_org_code,priority:2"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	AgentID   int64     `json:"agent_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Deal) TableName() string { return "deals" }

// SplitRule allocates a percentage of a deal's commission to an agent. A
// nil AgentID means the deal's own agent. Filters narrow the rule to one
// producer or brokerage class.
type SplitRule struct {
	ID                int64           `json:"id" gorm:"primaryKey"`
	OrgID             int64           `json:"organization_id" gorm:"column:org_id;not null;index"`
	DealID            int64           `json:"deal_id" gorm:"not null;index"`
	AgentID           *int64          `json:"agent_id,omitempty"`
	ProducerFilterID  *int64          `json:"producer_filter_id,omitempty"`
	BkgeClassFilterID *int64          `json:"bkge_class_filter_id,omitempty"`
	Percentage        decimal.Decimal `json:"percentage" gorm:"type:numeric(9,4);not null"`
	Position          int             `json:"position" gorm:"not null;default:0"`
}

func (SplitRule) TableName() string { return "deal_splits" }

// DealWithRules is a deal and its split rules ordered by position.
type DealWithRules struct {
	Deal
	Rules []SplitRule
}
