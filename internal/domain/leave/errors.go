package leave

import "errors"

var (
	ErrBalanceNotFound      = errors.New("leave balance not found")
	ErrBalanceExists        = errors.New("leave balance already exists for this year")
	ErrUnknownPolicyVersion = errors.New("unknown leave policy version")
	ErrStartDateInFuture    = errors.New("start date is after the as-of date")
	ErrInsufficientBalance  = errors.New("insufficient leave balance")
)
