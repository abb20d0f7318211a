package inventory

import (
	"context"

	"github.com/poscore/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the inventory repositories
// within a transaction. All repositories returned share the same underlying
// database transaction, so the ledger append and the stock level update of
// one movement commit or roll back together.
type TransactionalRepositories interface {
	// LedgerRepo returns the ledger repository scoped to the current transaction
	LedgerRepo() inventory.LedgerRepository
	// BatchRepo returns the batch repository scoped to the current transaction
	BatchRepo() inventory.BatchRepository
	// StockLevelRepo returns the stock level repository scoped to the current transaction
	StockLevelRepo() inventory.StockLevelRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions, for tests.
type NoOpTransactionScope struct {
	ledgerRepo     inventory.LedgerRepository
	batchRepo      inventory.BatchRepository
	stockLevelRepo inventory.StockLevelRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	ledgerRepo inventory.LedgerRepository,
	batchRepo inventory.BatchRepository,
	stockLevelRepo inventory.StockLevelRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		ledgerRepo:     ledgerRepo,
		batchRepo:      batchRepo,
		stockLevelRepo: stockLevelRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LedgerRepo returns the ledger repository.
func (s *NoOpTransactionScope) LedgerRepo() inventory.LedgerRepository {
	return s.ledgerRepo
}

// BatchRepo returns the batch repository.
func (s *NoOpTransactionScope) BatchRepo() inventory.BatchRepository {
	return s.batchRepo
}

// StockLevelRepo returns the stock level repository.
func (s *NoOpTransactionScope) StockLevelRepo() inventory.StockLevelRepository {
	return s.stockLevelRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
