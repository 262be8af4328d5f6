package orgtree

import (
	"github.com/iota-uz/orgchart/pkg/serrors"
)

var (
	ErrCycleDetected = serrors.NewError("ORG_CYCLE_DETECTED", "supervisor assignment would create a cycle", "OrgChart.Errors.CycleDetected")
	ErrDuplicateUser = serrors.NewError("ORG_DUPLICATE_USER", "user appears more than once", "OrgChart.Errors.DuplicateUser")
	ErrInvalidRole   = serrors.NewError("ORG_INVALID_ROLE", "role is not assignable", "OrgChart.Errors.InvalidRole")
	ErrUnknownSquad  = serrors.NewError("ORG_UNKNOWN_SQUAD", "squad does not exist", "OrgChart.Errors.UnknownSquad")
)
