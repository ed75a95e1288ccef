package reco

import (
	"bytes"
	"encoding/binary"

	"github.com/lucidspeech/recoengine/pkg/audioformat"
)

// buildPreamble synthesizes the RIFF/WAVE header sent as the first
// audio payload of a turn. The riff_size and data_size fields are
// deliberately zero: the downstream service tolerates open-ended
// streams and this adapter never knows the total length in advance.
func buildPreamble(format audioformat.Format) []byte {
	blob := format.Blob()

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	writeUint32(&buf, 0)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	writeUint32(&buf, uint32(len(blob)))
	buf.Write(blob)
	buf.WriteString("data")
	writeUint32(&buf, 0)
	return buf.Bytes()
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}
