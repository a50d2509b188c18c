// Package split allocates one expense across group members.
package split

import (
	errors "github.com/frahmantamala/household-expense/internal"
)

type Method string

const (
	MethodEqual  Method = "equal"
	MethodRatio  Method = "ratio"
	MethodAmount Method = "amount"
	MethodFull   Method = "full"
)

func (m Method) Valid() bool {
	switch m {
	case MethodEqual, MethodRatio, MethodAmount, MethodFull:
		return true
	}
	return false
}

// Policy is one of Equal, Ratio, Amount or Full.
type Policy interface {
	Method() Method
	isPolicy()
}

// Equal divides the amount evenly across MemberIDs.
type Equal struct {
	MemberIDs []int64
}

type RatioEntry struct {
	MemberID int64 `json:"member_id"`
	Percent  int64 `json:"ratio"`
}

// Ratio divides the amount by integer percentages summing to 100.
type Ratio struct {
	Entries []RatioEntry
}

type AmountEntry struct {
	MemberID int64 `json:"member_id"`
	Amount   int64 `json:"amount"`
}

// Amount assigns explicit per-member amounts.
type Amount struct {
	Entries []AmountEntry
}

// Full charges the whole amount to BearerID.
type Full struct {
	BearerID int64
}

func (Equal) Method() Method  { return MethodEqual }
func (Ratio) Method() Method  { return MethodRatio }
func (Amount) Method() Method { return MethodAmount }
func (Full) Method() Method   { return MethodFull }

func (Equal) isPolicy()  {}
func (Ratio) isPolicy()  {}
func (Amount) isPolicy() {}
func (Full) isPolicy()   {}

// Sum returns the total of the explicit entries.
func (a Amount) Sum() int64 {
	var total int64
	for _, e := range a.Entries {
		total += e.Amount
	}
	return total
}

// PolicyFromMethod builds the policy named by method from wire fields.
// Only the fields belonging to that method are read.
func PolicyFromMethod(method Method, memberIDs []int64, ratios []RatioEntry, amounts []AmountEntry, bearerID int64) (Policy, error) {
	switch method {
	case MethodEqual:
		return Equal{MemberIDs: memberIDs}, nil
	case MethodRatio:
		return Ratio{Entries: ratios}, nil
	case MethodAmount:
		return Amount{Entries: amounts}, nil
	case MethodFull:
		return Full{BearerID: bearerID}, nil
	default:
		return nil, errors.ErrInvalidSplitMethod
	}
}
