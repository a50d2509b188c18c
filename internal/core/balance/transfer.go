package balance

import "sort"

type Transfer struct {
	FromMemberID int64 `json:"from_member_id"`
	ToMemberID   int64 `json:"to_member_id"`
	Amount       int64 `json:"amount"`
}

type position struct {
	memberID  int64
	remaining int64
}

// MinimizeTransfers greedily matches the largest debtor with the largest
// creditor until one side runs out. Ties keep the input order, so the output
// is deterministic for a given balance list. The input is not modified.
func MinimizeTransfers(balances []MemberBalance) []Transfer {
	var debtors, creditors []position
	for _, b := range balances {
		switch {
		case b.Net < 0:
			debtors = append(debtors, position{memberID: b.MemberID, remaining: -b.Net})
		case b.Net > 0:
			creditors = append(creditors, position{memberID: b.MemberID, remaining: b.Net})
		}
	}

	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].remaining > debtors[j].remaining })
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].remaining > creditors[j].remaining })

	transfers := make([]Transfer, 0, len(debtors)+len(creditors))
	d, c := 0, 0
	for d < len(debtors) && c < len(creditors) {
		amount := min(debtors[d].remaining, creditors[c].remaining)
		if amount > 0 {
			transfers = append(transfers, Transfer{
				FromMemberID: debtors[d].memberID,
				ToMemberID:   creditors[c].memberID,
				Amount:       amount,
			})
		}

		debtors[d].remaining -= amount
		creditors[c].remaining -= amount
		if debtors[d].remaining == 0 {
			d++
		}
		if creditors[c].remaining == 0 {
			c++
		}
	}
	return transfers
}

// TotalVolume sums transfer amounts.
func TotalVolume(transfers []Transfer) int64 {
	var total int64
	for _, t := range transfers {
		total += t.Amount
	}
	return total
}
