package state

import "errors"

var (
	ErrDuplicateAssignment = errors.New("employee already has this KPI assigned")
	ErrNothingToSave       = errors.New("select a level for at least one competency")
	ErrRecordOwner         = errors.New("record belongs to another employee")
)
