// Package balance folds a period's expenses into member balances and nets
// those balances into transfers.
package balance

type Expense struct {
	ID      int64
	Amount  int64
	PayerID int64
}

type Split struct {
	ExpenseID int64
	MemberID  int64
	Amount    int64
}

type MemberBalance struct {
	MemberID int64 `json:"member_id"`
	Paid     int64 `json:"paid"`
	Owed     int64 `json:"owed"`
	Net      int64 `json:"net"`
}

// Aggregate returns one balance per member id, in memberIDs order. Payers and
// split members who are no longer in memberIDs contribute nothing, and
// splits of expenses not in expenses are skipped.
func Aggregate(expenses []Expense, splits []Split, memberIDs []int64) []MemberBalance {
	balances := make([]MemberBalance, len(memberIDs))
	index := make(map[int64]int, len(memberIDs))
	for i, id := range memberIDs {
		balances[i] = MemberBalance{MemberID: id}
		index[id] = i
	}

	known := make(map[int64]struct{}, len(expenses))
	for _, e := range expenses {
		known[e.ID] = struct{}{}
		if i, ok := index[e.PayerID]; ok {
			balances[i].Paid += e.Amount
		}
	}

	for _, s := range splits {
		if _, ok := known[s.ExpenseID]; !ok {
			continue
		}
		if i, ok := index[s.MemberID]; ok {
			balances[i].Owed += s.Amount
		}
	}

	for i := range balances {
		balances[i].Net = balances[i].Paid - balances[i].Owed
	}
	return balances
}

// TotalExpenses sums the amounts of expenses.
func TotalExpenses(expenses []Expense) int64 {
	var total int64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}
