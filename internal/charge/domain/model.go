package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ScheduleStatus string

const (
	ScheduleStatusOpen   ScheduleStatus = "OPEN"
	ScheduleStatusClosed ScheduleStatus = "CLOSED"
)

type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusClosed   Status = "CLOSED"
	StatusDeferred Status = "DEFERRED"
)

// ChargeType classifies recurring deductions such as desk fees.
type ChargeType struct {
	ID                int64  `json:"id" gorm:"primaryKey"`
	OrgID             int64  `json:"organization_id" gorm:"column:org_id;not null;index"`
	Code              string `json:"code" gorm:"type:text;not null"`
	Name              string `json:"name" gorm:"type:text;not null"`
	BkgeClassID       int64  `json:"bkge_class_id" gorm:"not null"`
	ProducerFilterID  *int64 `json:"producer_filter_id,omitempty"`
	BkgeClassFilterID *int64 `json:"bkge_class_filter_id,omitempty"`
}

func (ChargeType) TableName() string { return "charge_types" }

// ChargeSchedule raises one charge per commission period while the period
// end falls in [StartDate, EndDate). A nil EndDate never expires.
type ChargeSchedule struct {
	ID                  int64           `json:"id" gorm:"primaryKey"`
	OrgID               int64           `json:"organization_id" gorm:"column:org_id;not null;index"`
	ChargeTypeID        int64           `json:"charge_type_id" gorm:"not null;index"`
	PayingAgentID       int64           `json:"paying_agent_id" gorm:"not null"`
	ReceivingAgentID    int64           `json:"receiving_agent_id" gorm:"not null"`
	Frequency           string          `json:"frequency" gorm:"type:text;not null;default:'MONTHLY'"`
	AllowPartialPayment bool            `json:"allow_partial_payment" gorm:"not null;default:false"`
	RollBalance         bool            `json:"roll_balance" gorm:"not null;default:false"`
	Status              ScheduleStatus  `json:"status" gorm:"type:text;not null;default:'OPEN'"`
	Priority            int             `json:"priority" gorm:"not null;default:0"`
	StartDate           time.Time       `json:"start_date" gorm:"not null"`
	EndDate             *time.Time      `json:"end_date,omitempty"`
	Amount              decimal.Decimal `json:"amount" gorm:"type:numeric(20,4);not null"`
	GST                 decimal.Decimal `json:"gst" gorm:"column:gst;type:numeric(20,4);not null"`
}

func (ChargeSchedule) TableName() string { return "charge_schedules" }

// Covers reports whether the schedule raises a charge for a period ending
// on endDate.
func (s ChargeSchedule) Covers(endDate time.Time) bool {
	if s.Status != ScheduleStatusOpen || s.StartDate.After(endDate) {
		return false
	}
	return s.EndDate == nil || s.EndDate.After(endDate)
}

// Charge is one period's instance of a schedule. Rolled charges point at
// the charge they carry forward.
type Charge struct {
	ID                 int64           `json:"id" gorm:"primaryKey"`
	OrgID              int64           `json:"organization_id" gorm:"column:org_id;not null;index"`
	CommissionPeriodID int64           `json:"commission_period_id" gorm:"not null;index"`
	OriginalChargeID   *int64          `json:"original_charge_id,omitempty" gorm:"index"`
	ScheduleID         int64           `json:"schedule_id" gorm:"not null;index"`
	PayingAgentID      int64           `json:"paying_agent_id" gorm:"not null"`
	ReceivingAgentID   int64           `json:"receiving_agent_id" gorm:"not null"`
	TotalAmount        decimal.Decimal `json:"total_amount" gorm:"type:numeric(20,4);not null"`
	TotalGST           decimal.Decimal `json:"total_gst" gorm:"column:total_gst;type:numeric(20,4);not null"`
	OutstandingAmount  decimal.Decimal `json:"outstanding_amount" gorm:"type:numeric(20,4);not null"`
	OutstandingGST     decimal.Decimal `json:"outstanding_gst" gorm:"column:outstanding_gst;type:numeric(20,4);not null"`
	Status             Status          `json:"status" gorm:"type:text;not null;default:'OPEN'"`
	CreatedAt          time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Charge) TableName() string { return "charges" }

// RollingCharge is an open charge with the schedule fields rollover needs.
type RollingCharge struct {
	Charge
	RollBalance bool `json:"roll_balance"`
	Priority    int  `json:"priority"`
}

// RollResult counts what a rollover did to charges.
type RollResult struct {
	Deferred     int `json:"deferred"`
	Closed       int `json:"closed"`
	Instantiated int `json:"instantiated"`
}
