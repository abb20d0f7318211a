package transfer

import (
	"context"

	"github.com/poscore/backend/internal/domain/inventory"
	"github.com/poscore/backend/internal/domain/transfer"
)

// TransactionScope provides transactional access to the repositories a
// transfer operation touches. Sending a transfer mutates the transfer,
// its source batches, the ledger and the stock level cache; all of it
// commits or rolls back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within
// a transaction
type TransactionalRepositories interface {
	// TransferRepo returns the transfer repository scoped to the current transaction
	TransferRepo() transfer.Repository
	// LedgerRepo returns the ledger repository scoped to the current transaction
	LedgerRepo() inventory.LedgerRepository
	// BatchRepo returns the batch repository scoped to the current transaction
	BatchRepo() inventory.BatchRepository
	// StockLevelRepo returns the stock level repository scoped to the current transaction
	StockLevelRepo() inventory.StockLevelRepository
}

// NoOpTransactionScope runs functions without a real transaction, for tests.
type NoOpTransactionScope struct {
	transferRepo   transfer.Repository
	ledgerRepo     inventory.LedgerRepository
	batchRepo      inventory.BatchRepository
	stockLevelRepo inventory.StockLevelRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	transferRepo transfer.Repository,
	ledgerRepo inventory.LedgerRepository,
	batchRepo inventory.BatchRepository,
	stockLevelRepo inventory.StockLevelRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		transferRepo:   transferRepo,
		ledgerRepo:     ledgerRepo,
		batchRepo:      batchRepo,
		stockLevelRepo: stockLevelRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// TransferRepo returns the transfer repository.
func (s *NoOpTransactionScope) TransferRepo() transfer.Repository { return s.transferRepo }

// LedgerRepo returns the ledger repository.
func (s *NoOpTransactionScope) LedgerRepo() inventory.LedgerRepository { return s.ledgerRepo }

// BatchRepo returns the batch repository.
func (s *NoOpTransactionScope) BatchRepo() inventory.BatchRepository { return s.batchRepo }

// StockLevelRepo returns the stock level repository.
func (s *NoOpTransactionScope) StockLevelRepo() inventory.StockLevelRepository {
	return s.stockLevelRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
