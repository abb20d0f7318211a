package persistence

import (
	"context"

	"gorm.io/gorm"

	appcash "github.com/poscore/backend/internal/application/cash"
	appinventory "github.com/poscore/backend/internal/application/inventory"
	apprequest "github.com/poscore/backend/internal/application/request"
	apptransfer "github.com/poscore/backend/internal/application/transfer"
	"github.com/poscore/backend/internal/domain/cashledger"
	"github.com/poscore/backend/internal/domain/inventory"
	"github.com/poscore/backend/internal/domain/request"
	"github.com/poscore/backend/internal/domain/transfer"
)

// GormInventoryTransactionScope implements the inventory application
// TransactionScope over a GORM transaction. Every repository handed to
// the callback is bound to the same *gorm.DB, so a ledger append and
// the matching stock level update commit or roll back together.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the function within a database transaction
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&inventoryTxRepos{tx: tx})
	})
}

type inventoryTxRepos struct {
	tx *gorm.DB
}

func (r *inventoryTxRepos) LedgerRepo() inventory.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

func (r *inventoryTxRepos) BatchRepo() inventory.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

func (r *inventoryTxRepos) StockLevelRepo() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

// GormTransferTransactionScope implements the transfer application
// TransactionScope over a GORM transaction
type GormTransferTransactionScope struct {
	db *gorm.DB
}

// NewGormTransferTransactionScope creates a new GormTransferTransactionScope
func NewGormTransferTransactionScope(db *gorm.DB) *GormTransferTransactionScope {
	return &GormTransferTransactionScope{db: db}
}

// Execute runs the function within a database transaction
func (s *GormTransferTransactionScope) Execute(ctx context.Context, fn func(repos apptransfer.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&transferTxRepos{tx: tx})
	})
}

type transferTxRepos struct {
	tx *gorm.DB
}

func (r *transferTxRepos) TransferRepo() transfer.Repository {
	return NewGormTransferRepository(r.tx)
}

func (r *transferTxRepos) LedgerRepo() inventory.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

func (r *transferTxRepos) BatchRepo() inventory.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

func (r *transferTxRepos) StockLevelRepo() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

// GormRequestTransactionScope implements the request application
// TransactionScope over a GORM transaction
type GormRequestTransactionScope struct {
	db *gorm.DB
}

// NewGormRequestTransactionScope creates a new GormRequestTransactionScope
func NewGormRequestTransactionScope(db *gorm.DB) *GormRequestTransactionScope {
	return &GormRequestTransactionScope{db: db}
}

// Execute runs the function within a database transaction
func (s *GormRequestTransactionScope) Execute(ctx context.Context, fn func(repos apprequest.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&requestTxRepos{tx: tx})
	})
}

type requestTxRepos struct {
	tx *gorm.DB
}

func (r *requestTxRepos) RequestRepo() request.Repository {
	return NewGormStockRequestRepository(r.tx)
}

func (r *requestTxRepos) TransferRepo() transfer.Repository {
	return NewGormTransferRepository(r.tx)
}

// GormCashTransactionScope implements the cash application
// TransactionScope over a GORM transaction. The balance check and the
// append of a withdrawal happen under the same transaction.
type GormCashTransactionScope struct {
	db *gorm.DB
}

// NewGormCashTransactionScope creates a new GormCashTransactionScope
func NewGormCashTransactionScope(db *gorm.DB) *GormCashTransactionScope {
	return &GormCashTransactionScope{db: db}
}

// Execute runs the function within a database transaction
func (s *GormCashTransactionScope) Execute(ctx context.Context, fn func(repo cashledger.Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormCashLedgerRepository(tx))
	})
}

var (
	_ appinventory.TransactionScope = (*GormInventoryTransactionScope)(nil)
	_ apptransfer.TransactionScope  = (*GormTransferTransactionScope)(nil)
	_ apprequest.TransactionScope   = (*GormRequestTransactionScope)(nil)
	_ appcash.TransactionScope      = (*GormCashTransactionScope)(nil)
)
