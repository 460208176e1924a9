package domain

import "context"

type Service interface {
	// Commit splits every line item of an OPEN journal into fees, posts them
	// to the ledger and closes the journal, all or nothing. Committing a
	// closed journal changes nothing.
	Commit(ctx context.Context, journalID, actorID int64) (*Result, error)
	Get(ctx context.Context, journalID int64) (*JournalCommit, error)
}
