package request

import (
	"context"

	"github.com/poscore/backend/internal/domain/request"
	"github.com/poscore/backend/internal/domain/transfer"
)

// TransactionScope provides transactional access to the repositories a
// request operation touches. Converting an approved request creates a
// draft transfer; both aggregates are saved in one transaction.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within
// a transaction
type TransactionalRepositories interface {
	// RequestRepo returns the request repository scoped to the current transaction
	RequestRepo() request.Repository
	// TransferRepo returns the transfer repository scoped to the current transaction
	TransferRepo() transfer.Repository
}

// NoOpTransactionScope runs functions without a real transaction, for tests.
type NoOpTransactionScope struct {
	requestRepo  request.Repository
	transferRepo transfer.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(requestRepo request.Repository, transferRepo transfer.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{requestRepo: requestRepo, transferRepo: transferRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// RequestRepo returns the request repository.
func (s *NoOpTransactionScope) RequestRepo() request.Repository { return s.requestRepo }

// TransferRepo returns the transfer repository.
func (s *NoOpTransactionScope) TransferRepo() transfer.Repository { return s.transferRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
