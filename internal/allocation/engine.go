// Package allocation implements the splitting engine that turns a signed
// transaction total into per-member shares. The engine is pure: it never
// touches the store and never takes an absolute value, so expenses
// (negative totals) and income (positive totals) split identically.
package allocation

import (
	"github.com/shopspring/decimal"

	"groupnest/ledger/internal/ledgererror"
	"groupnest/ledger/internal/models"
)

// SplitType selects how the total is divided across participants.
type SplitType string

const (
	SplitEqual    SplitType = "equal"
	SplitWeighted SplitType = "weighted"
)

// ValidSplitType reports whether s names a known split type.
func ValidSplitType(s string) bool {
	return SplitType(s) == SplitEqual || SplitType(s) == SplitWeighted
}

// Split divides total across the participants and returns one share per
// participant, rounded to 2 decimals, summing exactly to round(total, 2).
//
// Rounding each share independently can leave the sum a cent or two off
// the total; the difference is added to the first listed participant's
// share. Output is deterministic for a given participant order, so callers
// wanting reproducible remainder placement must order participants stably.
//
// A weighted split whose weights sum to zero is invalid and returns a
// ValidationError, as does an empty participant list.
func Split(total decimal.Decimal, participants []string, mode SplitType, weights map[string]decimal.Decimal) ([]models.Allocation, error) {
	if len(participants) == 0 {
		return nil, &ledgererror.ValidationError{Field: "participants", Reason: "empty participant list"}
	}

	total = models.RoundAmount(total)

	shares := make([]models.Allocation, 0, len(participants))
	switch mode {
	case SplitEqual:
		count := decimal.NewFromInt(int64(len(participants)))
		perHead := models.RoundAmount(total.Div(count))
		for _, memberID := range participants {
			shares = append(shares, models.Allocation{MemberID: memberID, Amount: perHead})
		}
	case SplitWeighted:
		totalWeight := decimal.Zero
		for _, memberID := range participants {
			totalWeight = totalWeight.Add(weights[memberID])
		}
		if totalWeight.IsZero() {
			return nil, &ledgererror.ValidationError{Field: "split_weights", Reason: "total weight is zero"}
		}
		for _, memberID := range participants {
			share := models.RoundAmount(total.Mul(weights[memberID]).Div(totalWeight))
			shares = append(shares, models.Allocation{MemberID: memberID, Amount: share})
		}
	default:
		return nil, &ledgererror.ValidationError{Field: "split_type", Reason: "unknown split type: " + string(mode)}
	}

	// Remainder correction: pin the rounded sum back to the total by
	// adjusting the first participant's share.
	sum := decimal.Zero
	for _, share := range shares {
		sum = sum.Add(share.Amount)
	}
	if diff := models.RoundAmount(total.Sub(sum)); !diff.IsZero() {
		shares[0].Amount = shares[0].Amount.Add(diff)
	}

	return shares, nil
}
