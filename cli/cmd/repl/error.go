package repl

import "github.com/ardnew/dcsmiz/lang"

var (
	ErrNoSource     = lang.NewError("no source to evaluate")
	ErrOutOfBounds  = lang.NewError("history index out of range")
	ErrEditDeclined = lang.NewError("edit declined")
)
