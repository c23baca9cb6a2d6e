package errs

import "errors"

var (
	ErrProblemNotFound     = errors.New("problem not found")
	ErrInstructionNotFound = errors.New("instruction not found")
	ErrInstructionExists   = errors.New("problem already has an instruction")
	ErrProblemResolved     = errors.New("problem is already resolved")
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrAdminNotFound       = errors.New("admin not found")
	ErrAdminExists         = errors.New("admin already exists")
	ErrLastAdmin           = errors.New("cannot delete the last administrator")
)
