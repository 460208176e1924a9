package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/commission/internal/config"
	dealdomain "github.com/smallbiznis/commission/internal/deal/domain"
	"github.com/smallbiznis/commission/pkg/money"
)

// SplitInput is one line item with the deal it is allocated under.
type SplitInput struct {
	LineItemID  int64
	ProducerID  int64
	BkgeClassID int64
	Amount      decimal.Decimal
	GST         decimal.Decimal
	DealAgentID int64
	Rules       []dealdomain.SplitRule
}

// OverAllocationError reports rules that allocate more than 100% of a line
// item under the reject policy.
type OverAllocationError struct {
	LineItemID int64
	Total      decimal.Decimal
}

func (e *OverAllocationError) Error() string {
	return fmt.Sprintf("line item %d allocates %s%%", e.LineItemID, e.Total.String())
}

// BusinessRule marks the error as caused by deal configuration.
func (e *OverAllocationError) BusinessRule() bool { return true }

// Engine splits line items into fees. It holds no state and the same input
// always yields the same fees.
type Engine struct {
	policy string
	places int32
}

// NewEngine builds an engine from the commission settings.
func NewEngine(cfg config.CommissionConfig) Engine {
	policy := cfg.OverAllocationPolicy
	if policy == "" {
		policy = config.OverAllocationReject
	}
	return Engine{policy: policy, places: cfg.RoundingPlaces}
}

// Applies reports whether rule matches the producer and brokerage class.
func Applies(rule dealdomain.SplitRule, producerID, bkgeClassID int64) bool {
	if rule.ProducerFilterID != nil && *rule.ProducerFilterID != producerID {
		return false
	}
	if rule.BkgeClassFilterID != nil && *rule.BkgeClassFilterID != bkgeClassID {
		return false
	}
	return true
}

// Split allocates the item's amount and GST across the applicable rules.
// Under 100% the remainder goes to the deal agent. Whenever the allocation
// is complete the last fee takes the rounding residue, so the fees sum to
// the item exactly.
func (e Engine) Split(item SplitInput) ([]Fee, error) {
	var applicable []dealdomain.SplitRule
	total := decimal.Zero
	for _, rule := range item.Rules {
		if Applies(rule, item.ProducerID, item.BkgeClassID) {
			applicable = append(applicable, rule)
			total = total.Add(rule.Percentage)
		}
	}

	hundred := money.Hundred()
	over := total.GreaterThan(hundred)
	divisor := hundred
	if over {
		switch e.policy {
		case config.OverAllocationScale:
			divisor = total
		case config.OverAllocationAllow:
		default:
			return nil, &OverAllocationError{LineItemID: item.LineItemID, Total: total}
		}
	}

	fees := make([]Fee, 0, len(applicable)+1)
	for _, rule := range applicable {
		agentID := item.DealAgentID
		if rule.AgentID != nil && *rule.AgentID != 0 {
			agentID = *rule.AgentID
		}
		ruleID := rule.ID
		fees = append(fees, Fee{
			LineItemID:  item.LineItemID,
			AgentID:     agentID,
			SplitRuleID: &ruleID,
			Amount:      e.share(item.Amount, rule.Percentage, divisor),
			GST:         e.share(item.GST, rule.Percentage, divisor),
		})
	}

	if over && e.policy == config.OverAllocationAllow {
		return fees, nil
	}
	if total.LessThan(hundred) {
		fees = append(fees, Fee{LineItemID: item.LineItemID, AgentID: item.DealAgentID})
	}

	last := len(fees) - 1
	amount, gst := item.Amount, item.GST
	for _, f := range fees[:last] {
		amount = amount.Sub(f.Amount)
		gst = gst.Sub(f.GST)
	}
	fees[last].Amount = amount
	fees[last].GST = gst
	return fees, nil
}

func (e Engine) share(value, pct, divisor decimal.Decimal) decimal.Decimal {
	return value.Mul(pct).Div(divisor).Round(e.places)
}
