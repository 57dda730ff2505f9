package cmd

import "github.com/ardnew/scopex/pkg"

var (
	ErrDataFile    = pkg.NewError("read data file")
	ErrAssignment  = pkg.NewError("invalid assignment (want PATH=EXPR)")
	ErrOutput      = pkg.NewError("write output")
	ErrWriteConfig = pkg.NewError("write configuration file")
	ErrFileExists  = pkg.NewError("file exists (use --force to overwrite)")
	ErrWriteCache  = pkg.NewError("write expression cache")
	ErrCompile     = pkg.NewError("expressions failed to compile")
	ErrStdinData   = pkg.NewError("stdin is already a data source")
)
