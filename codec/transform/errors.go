/*
NAME
  errors.go

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package transform

import (
	"github.com/pkg/errors"

	"github.com/ausocean/dxtv/dxtverr"
)

var (
	errLZ10Truncated    = errors.Wrap(dxtverr.CodecFailure, "transform: truncated LZ10 stream")
	errLZ10BadOffset    = errors.Wrap(dxtverr.InternalInvariant, "transform: LZ10 back-reference precedes start of output")
	errRLETruncated     = errors.Wrap(dxtverr.CodecFailure, "transform: truncated RLE stream")
	errDelta16OddLength = errors.Wrap(dxtverr.InvalidInput, "transform: Delta16 requires an even-length buffer")
)
