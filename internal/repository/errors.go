package repository

import "errors"

var (
	ErrDuplicateNumber  = errors.New("document number already in use")
	ErrAlreadyInvoiced  = errors.New("estimate already has an invoice")
	ErrEstimateDeclined = errors.New("estimate is declined")
	ErrOpenTimeEntry    = errors.New("employee already has an open time entry")
	ErrUnknownEmployee  = errors.New("employee does not exist")
	ErrUnknownEstimate  = errors.New("estimate does not exist")
	ErrDuplicateEmail   = errors.New("email already in use")
)
