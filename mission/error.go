package mission

import "github.com/ardnew/dcsmiz/lang"

// Error kinds. Returned errors derive from one of these and match it with
// [errors.Is].
var (
	ErrOpen         = lang.NewError("open mission")
	ErrEntry        = lang.NewError("read mission entry")
	ErrMissingField = lang.NewError("missing mission field")
	ErrNotInstalled = lang.NewError("DCS World installation not found")
	ErrAircraft     = lang.NewError("list aircraft")
	ErrMissionType  = lang.NewError("unknown mission type")
)
