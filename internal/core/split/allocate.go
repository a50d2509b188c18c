package split

import (
	"fmt"

	errors "github.com/frahmantamala/household-expense/internal"
)

type Share struct {
	MemberID int64 `json:"member_id"`
	Amount   int64 `json:"amount"`
}

// Allocate computes each member's integer share of amount under policy.
// members is the resolved target set from ResolveTargetMembers. Equal and
// Ratio shares always sum to amount; Amount entries are returned verbatim and
// their sum is the caller's concern.
func Allocate(amount, payerID int64, policy Policy, members []int64) ([]Share, error) {
	switch p := policy.(type) {
	case Equal:
		return allocateEqual(amount, payerID, members)
	case Ratio:
		return allocateRatio(amount, payerID, p.Entries)
	case Amount:
		return allocateAmount(p.Entries), nil
	case Full:
		return allocateFull(amount, p.BearerID, members)
	default:
		return nil, errors.ErrInvalidSplitMethod
	}
}

func allocateEqual(amount, payerID int64, members []int64) ([]Share, error) {
	if len(members) == 0 {
		return nil, errors.ErrEmptyMemberSelection
	}
	if amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}

	count := int64(len(members))
	base := amount / count
	remainder := amount % count

	sink := indexOf(members, payerID)
	if sink < 0 {
		sink = 0
	}

	shares := make([]Share, len(members))
	for i, id := range members {
		shares[i] = Share{MemberID: id, Amount: base}
	}
	shares[sink].Amount += remainder
	return shares, nil
}

func allocateRatio(amount, payerID int64, entries []RatioEntry) ([]Share, error) {
	var total int64
	for _, e := range entries {
		if e.Percent < 0 || e.Percent > 100 {
			return nil, errors.ErrInvalidRatio.WithMessage(
				fmt.Sprintf("ratio for member %d must be between 0 and 100", e.MemberID))
		}
		total += e.Percent
	}
	if total != 100 {
		return nil, errors.ErrRatioSumMismatch
	}
	if amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}

	shares := make([]Share, len(entries))
	sink := 0
	var allocated int64
	for i, e := range entries {
		// floor(amount*p/100) without overflowing for large amounts
		raw := amount/100*e.Percent + amount%100*e.Percent/100
		shares[i] = Share{MemberID: e.MemberID, Amount: raw}
		allocated += raw
		if e.MemberID == payerID {
			sink = i
		}
	}
	shares[sink].Amount += amount - allocated
	return shares, nil
}

func allocateAmount(entries []AmountEntry) []Share {
	shares := make([]Share, len(entries))
	for i, e := range entries {
		shares[i] = Share{MemberID: e.MemberID, Amount: e.Amount}
	}
	return shares
}

func allocateFull(amount, bearerID int64, members []int64) ([]Share, error) {
	if len(members) == 0 {
		return nil, errors.ErrEmptyMemberSelection
	}
	if indexOf(members, bearerID) < 0 {
		return nil, errors.ErrBearerNotInMembers
	}
	if amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}

	shares := make([]Share, len(members))
	for i, id := range members {
		shares[i] = Share{MemberID: id}
		if id == bearerID {
			shares[i].Amount = amount
		}
	}
	return shares, nil
}

// Total sums shares.
func Total(shares []Share) int64 {
	var total int64
	for _, s := range shares {
		total += s.Amount
	}
	return total
}

func indexOf(ids []int64, id int64) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
