/*
NAME
  rle.go

DESCRIPTION
  rle.go implements the byte-oriented RLE stream transform (spec.md
  §4.5), matching the GBA BIOS RLUnCompWrite{8,16}bit token layout: a
  flag byte per token (high bit set selects a compressed run, clear
  selects a raw copy), followed by either one repeated byte or a raw
  byte sequence.

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

const (
	rleMinRun = 3
	rleMaxRun = 130
	rleMaxRaw = 128
)

// RLEEncode compresses data with byte-oriented run-length encoding.
func RLEEncode(data []byte) []byte {
	var out []byte
	pos := 0
	for pos < len(data) {
		run := 1
		for run < rleMaxRun && pos+run < len(data) && data[pos+run] == data[pos] {
			run++
		}
		if run >= rleMinRun {
			out = append(out, 0x80|byte(run-rleMinRun), data[pos])
			pos += run
			continue
		}

		// Accumulate a raw run up to the next run of >= rleMinRun or rleMaxRaw bytes.
		rawStart := pos
		for pos < len(data) {
			if pos-rawStart >= rleMaxRaw {
				break
			}
			next := 1
			for next < rleMinRun && pos+next < len(data) && data[pos+next] == data[pos] {
				next++
			}
			if next >= rleMinRun {
				break
			}
			pos++
		}
		rawLen := pos - rawStart
		out = append(out, byte(rawLen-1))
		out = append(out, data[rawStart:pos]...)
	}
	return out
}

// RLEDecode reverses RLEEncode, stopping once size output bytes have
// been produced.
func RLEDecode(data []byte, size int) ([]byte, error) {
	out := make([]byte, 0, size)
	pos := 0
	for len(out) < size {
		if pos >= len(data) {
			return nil, errRLETruncated
		}
		flag := data[pos]
		pos++
		if flag&0x80 != 0 {
			run := int(flag&0x7F) + rleMinRun
			if pos >= len(data) {
				return nil, errRLETruncated
			}
			v := data[pos]
			pos++
			for i := 0; i < run && len(out) < size; i++ {
				out = append(out, v)
			}
			continue
		}
		rawLen := int(flag) + 1
		if pos+rawLen > len(data) {
			return nil, errRLETruncated
		}
		n := rawLen
		if len(out)+n > size {
			n = size - len(out)
		}
		out = append(out, data[pos:pos+n]...)
		pos += rawLen
	}
	return out, nil
}
