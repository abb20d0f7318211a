package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BatchAllocation is one batch's contribution to a consumption plan
type BatchAllocation struct {
	Batch    *Batch
	Quantity decimal.Decimal
}

// SortFEFO orders batches first-expired-first-out: earliest expiry
// first, batches without an expiry date last, ties broken by receipt
// time. The input slice is sorted in place.
func SortFEFO(batches []*Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		iExp, jExp := batches[i].ExpiryDate, batches[j].ExpiryDate
		if iExp == nil && jExp == nil {
			return batches[i].ReceivedAt.Before(batches[j].ReceivedAt)
		}
		if iExp == nil {
			return false
		}
		if jExp == nil {
			return true
		}
		if iExp.Equal(*jExp) {
			return batches[i].ReceivedAt.Before(batches[j].ReceivedAt)
		}
		return iExp.Before(*jExp)
	})
}

// AllocateFEFO plans how to draw the requested quantity from the given
// batches in FEFO order, skipping expired and depleted batches. It does
// not mutate the batches. If the available stock cannot cover the
// request the plan is partial and the second return value reports the
// shortfall.
func AllocateFEFO(batches []*Batch, quantity decimal.Decimal, now time.Time) ([]BatchAllocation, decimal.Decimal) {
	available := make([]*Batch, 0, len(batches))
	for _, b := range batches {
		if b.IsAvailable(now) {
			available = append(available, b)
		}
	}
	SortFEFO(available)

	allocations := make([]BatchAllocation, 0, len(available))
	remaining := quantity
	for _, b := range available {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(b.Quantity, remaining)
		allocations = append(allocations, BatchAllocation{Batch: b, Quantity: take})
		remaining = remaining.Sub(take)
	}

	return allocations, remaining
}
