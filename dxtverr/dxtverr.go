/*
NAME
  dxtverr.go

DESCRIPTION
  dxtverr.go defines the error kinds shared by every codec and pipeline
  stage in this module (spec.md §7).

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dxtverr defines the four error kinds used throughout this
// module and helpers for wrapping them with stage/parameter context.
package dxtverr

import "github.com/pkg/errors"

// The four error kinds named in spec.md §7. Stage code should wrap one
// of these with errors.Wrap to attach the failing stage and parameter;
// callers identify the kind with errors.Is.
var (
	// InvalidInput covers dimensions not multiples of 8/16, unsupported
	// color formats, and out-of-range parameters.
	InvalidInput = errors.New("invalid input")

	// OutOfRange covers a header field overflowing its bit width, e.g.
	// an ADPCM uncompressed size >= 2^16.
	OutOfRange = errors.New("value out of range")

	// CodecFailure covers an ADPCM block size mismatch or a degenerate
	// DXT endpoint pair.
	CodecFailure = errors.New("codec failure")

	// InternalInvariant covers a broken internal invariant: an offset
	// rebase landing outside [0,127], or misaligned output. Per spec.md
	// §7, these are programming bugs and the caller should crash rather
	// than attempt recovery.
	InternalInvariant = errors.New("internal invariant violated")
)

// Wrap attaches stage and parameter context to one of the sentinel
// errors above, in the form the pipeline driver surfaces to the caller
// (spec.md §7: "name the stage and the offending parameter").
func Wrap(kind error, stage, param string, cause error) error {
	if cause != nil {
		return errors.Wrapf(cause, "%s: stage %q, parameter %q", kind, stage, param)
	}
	return errors.Wrapf(kind, "stage %q, parameter %q", stage, param)
}
