package cmd

import "github.com/ardnew/dcsmiz/lang"

var (
	ErrNoSource    = lang.NewError("no input source (give a path, '-' or --source)")
	ErrReadSource  = lang.NewError("read input source")
	ErrWriteOutput = lang.NewError("write output")
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
)
