package cash

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poscore/backend/internal/domain/cashledger"
	"github.com/poscore/backend/internal/domain/shared"
)

// fakeCashRepo is an in-memory cashledger.Repository
type fakeCashRepo struct {
	entries []*cashledger.Entry
}

func (f *fakeCashRepo) Append(_ context.Context, e *cashledger.Entry) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeCashRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*cashledger.Entry, error) {
	for _, e := range f.entries {
		if e.TenantID == tenantID && e.ID == id {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeCashRepo) FindAll(_ context.Context, tenantID uuid.UUID, _ cashledger.Filter) ([]*cashledger.Entry, error) {
	result := make([]*cashledger.Entry, 0)
	for _, e := range f.entries {
		if e.TenantID == tenantID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (f *fakeCashRepo) Count(_ context.Context, tenantID uuid.UUID, _ cashledger.Filter) (int64, error) {
	var n int64
	for _, e := range f.entries {
		if e.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (f *fakeCashRepo) Balance(_ context.Context, tenantID, shopID uuid.UUID, account cashledger.Account) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, e := range f.entries {
		if e.TenantID == tenantID && e.ShopID == shopID && e.Account == account {
			balance = balance.Add(e.Amount)
		}
	}
	return balance, nil
}

func newTestService() (*Service, *fakeCashRepo, uuid.UUID, uuid.UUID) {
	repo := &fakeCashRepo{}
	svc := NewService(NewNoOpTransactionScope(repo))
	return svc, repo, uuid.New(), uuid.New()
}

func TestService_AppendEntry(t *testing.T) {
	svc, repo, tenantID, actorID := newTestService()
	shopID := uuid.New()

	resp, err := svc.AppendEntry(context.Background(), tenantID, actorID, AppendEntryRequest{
		ShopID:    shopID,
		Account:   "CASH",
		EntryType: "PAYMENT",
		Amount:    decimal.NewFromFloat(150.50),
	})
	require.NoError(t, err)
	assert.Equal(t, "PAYMENT", resp.EntryType)
	require.Len(t, repo.entries, 1)

	balance, err := svc.GetBalance(context.Background(), tenantID, shopID, "CASH")
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromFloat(150.50)))
}

func TestService_AppendEntry_SignDiscipline(t *testing.T) {
	svc, _, tenantID, actorID := newTestService()
	shopID := uuid.New()

	// payments must be positive
	_, err := svc.AppendEntry(context.Background(), tenantID, actorID, AppendEntryRequest{
		ShopID:    shopID,
		Account:   "CASH",
		EntryType: "PAYMENT",
		Amount:    decimal.NewFromInt(-10),
	})
	assert.Error(t, err)

	// withdrawals must be negative
	_, err = svc.AppendEntry(context.Background(), tenantID, actorID, AppendEntryRequest{
		ShopID:    shopID,
		Account:   "CASH",
		EntryType: "WITHDRAWAL",
		Amount:    decimal.NewFromInt(10),
	})
	assert.Error(t, err)
}

func TestService_AppendEntry_Overdraw(t *testing.T) {
	svc, _, tenantID, actorID := newTestService()
	shopID := uuid.New()

	_, err := svc.AppendEntry(context.Background(), tenantID, actorID, AppendEntryRequest{
		ShopID:    shopID,
		Account:   "CASH",
		EntryType: "PAYMENT",
		Amount:    decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = svc.AppendEntry(context.Background(), tenantID, actorID, AppendEntryRequest{
		ShopID:    shopID,
		Account:   "CASH",
		EntryType: "WITHDRAWAL",
		Amount:    decimal.NewFromInt(-150),
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)

	// exact balance can be withdrawn
	_, err = svc.AppendEntry(context.Background(), tenantID, actorID, AppendEntryRequest{
		ShopID:    shopID,
		Account:   "CASH",
		EntryType: "WITHDRAWAL",
		Amount:    decimal.NewFromInt(-100),
		Reason:    "end of day cashout",
	})
	require.NoError(t, err)

	balance, err := svc.GetBalance(context.Background(), tenantID, shopID, "CASH")
	require.NoError(t, err)
	assert.True(t, balance.Balance.IsZero())
}

func TestService_AppendEntry_AccountsAreSeparate(t *testing.T) {
	svc, _, tenantID, actorID := newTestService()
	shopID := uuid.New()

	_, err := svc.AppendEntry(context.Background(), tenantID, actorID, AppendEntryRequest{
		ShopID:    shopID,
		Account:   "ECASH",
		EntryType: "PAYMENT",
		Amount:    decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	// the CASH account stays empty, so it cannot fund a refund
	_, err = svc.AppendEntry(context.Background(), tenantID, actorID, AppendEntryRequest{
		ShopID:    shopID,
		Account:   "CASH",
		EntryType: "REFUND",
		Amount:    decimal.NewFromInt(-50),
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
}

func TestService_AppendEntry_AdjustmentNeedsReason(t *testing.T) {
	svc, _, tenantID, actorID := newTestService()
	shopID := uuid.New()

	_, err := svc.AppendEntry(context.Background(), tenantID, actorID, AppendEntryRequest{
		ShopID:    shopID,
		Account:   "CASH",
		EntryType: "ADJUSTMENT",
		Amount:    decimal.NewFromInt(25),
	})
	assert.Error(t, err)

	resp, err := svc.AppendEntry(context.Background(), tenantID, actorID, AppendEntryRequest{
		ShopID:    shopID,
		Account:   "CASH",
		EntryType: "ADJUSTMENT",
		Amount:    decimal.NewFromInt(25),
		Reason:    "float top-up",
	})
	require.NoError(t, err)
	assert.Equal(t, "float top-up", resp.Reason)
}

func TestService_List(t *testing.T) {
	svc, _, tenantID, actorID := newTestService()
	shopID := uuid.New()

	for _, amount := range []int64{10, 20, 30} {
		_, err := svc.AppendEntry(context.Background(), tenantID, actorID, AppendEntryRequest{
			ShopID:    shopID,
			Account:   "CASH",
			EntryType: "PAYMENT",
			Amount:    decimal.NewFromInt(amount),
		})
		require.NoError(t, err)
	}

	entries, total, err := svc.List(context.Background(), tenantID, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, entries, 3)
}
