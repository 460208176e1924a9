package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("journal_not_found")
	ErrUnbalancedJournal   = errors.New("unbalanced_journal")
	ErrCommitInProgress    = errors.New("commit_in_progress")
	ErrDealNotFound        = errors.New("deal_not_found")
)

// UnallocatedAccountsError lists the client accounts on a journal that have
// no deal. The journal cannot be committed until they are assigned.
type UnallocatedAccountsError struct {
	Codes []string
}

func (e *UnallocatedAccountsError) Error() string {
	return "unallocated accounts: " + strings.Join(e.Codes, ", ")
}

func (e *UnallocatedAccountsError) BusinessRule() bool { return true }
