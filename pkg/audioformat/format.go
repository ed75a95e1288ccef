// Package audioformat describes the waveform format announced to the
// recognition service and encodes it into the wire preamble.
package audioformat

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Tag identifies the PCM encoding family, mirroring the WAVEFORMAT
// wFormatTag field.
type Tag uint16

const (
	TagPCM Tag = 1
)

// Format is a verbatim, owned copy of the waveform descriptor the site
// announces via SetFormat. Only the fields the preamble encoder needs
// are modeled; ExtraBytes carries anything beyond the base WAVEFORMAT
// structure (e.g. WAVEFORMATEXTENSIBLE tails) untouched.
type Format struct {
	FormatTag      Tag
	Channels       uint16
	SamplesPerSec  uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	ExtraBytes     []byte
}

// Clone returns an owned deep copy, matching the adapter's "owned copy"
// invariant on SetFormat.
func (f Format) Clone() Format {
	out := f
	if len(f.ExtraBytes) > 0 {
		out.ExtraBytes = append([]byte(nil), f.ExtraBytes...)
	}
	return out
}

// Blob encodes the descriptor as a WAVEFORMAT-compatible byte blob,
// little-endian, in field order. This is what gets copied verbatim into
// the RIFF "fmt " chunk.
func (f Format) Blob() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint16(f.FormatTag))
	binary.Write(&buf, binary.LittleEndian, f.Channels)
	binary.Write(&buf, binary.LittleEndian, f.SamplesPerSec)
	binary.Write(&buf, binary.LittleEndian, f.AvgBytesPerSec)
	binary.Write(&buf, binary.LittleEndian, f.BlockAlign)
	binary.Write(&buf, binary.LittleEndian, f.BitsPerSample)
	if len(f.ExtraBytes) > 0 {
		binary.Write(&buf, binary.LittleEndian, uint16(len(f.ExtraBytes)))
		buf.Write(f.ExtraBytes)
	}
	return buf.Bytes()
}

// ServiceChunkBytes derives the outbound buffering chunk size for a
// preferred send interval, matching sample_rate x block_align x
// preferred_ms / 1000 from the data model.
func (f Format) ServiceChunkBytes(preferredMs int) int {
	if preferredMs <= 0 || f.BlockAlign == 0 {
		return 0
	}
	return int(uint64(f.SamplesPerSec) * uint64(f.BlockAlign) * uint64(preferredMs) / 1000)
}

func (f Format) String() string {
	return fmt.Sprintf("audioformat(tag=%d channels=%d rate=%d bits=%d block=%d)",
		f.FormatTag, f.Channels, f.SamplesPerSec, f.BitsPerSample, f.BlockAlign)
}
