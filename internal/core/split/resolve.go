package split

import (
	"fmt"

	errors "github.com/frahmantamala/household-expense/internal"
)

// ResolveTargetMembers derives the concrete member set a policy splits over
// and checks every id against the group's current membership.
func ResolveTargetMembers(policy Policy, groupMemberIDs []int64) ([]int64, error) {
	var ids []int64

	switch p := policy.(type) {
	case Equal:
		ids = append(ids, p.MemberIDs...)
	case Ratio:
		for _, e := range p.Entries {
			ids = append(ids, e.MemberID)
		}
	case Amount:
		for _, e := range p.Entries {
			ids = append(ids, e.MemberID)
		}
	case Full:
		if indexOf(groupMemberIDs, p.BearerID) < 0 {
			return nil, notMember(p.BearerID)
		}
		ids = append(ids, groupMemberIDs...)
	default:
		return nil, errors.ErrInvalidSplitMethod
	}

	if len(ids) == 0 {
		return nil, errors.ErrEmptyMemberSelection
	}

	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if indexOf(groupMemberIDs, id) < 0 {
			return nil, notMember(id)
		}
		if _, dup := seen[id]; dup {
			return nil, errors.ErrDuplicateMember.WithMessage(
				fmt.Sprintf("member %d selected more than once", id))
		}
		seen[id] = struct{}{}
	}

	return ids, nil
}

func notMember(id int64) *errors.AppError {
	return errors.ErrNotGroupMember.WithMessage(fmt.Sprintf("member %d is not a group member", id))
}
