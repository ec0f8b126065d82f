// Package firmware recognizes the `.ipod` firmware container, strips its
// header before load, and applies the optional emulator-only memory-patch
// list. See SPEC_FULL.md §5.14, spec.md §4.13, §9.
package firmware

import (
	"encoding/binary"
	"fmt"
)

// modelNumbers assigns each recognized container tag a checksum seed.
// The PP5021C firmware-signing tool's exact per-model constants are not
// recoverable from the spec; these are a documented, self-consistent
// assignment used only for this emulator's own header round-trip.
var modelNumbers = map[string]uint32{
	"ipvd": 0x00000001,
	"ipod": 0x00000002,
	"ip3g": 0x00000003,
	"ip4g": 0x00000004,
	"ip5g": 0x00000005,
	"ip6g": 0x00000006,
}

// HeaderSize is the fixed 8-byte `.ipod` container header.
const HeaderSize = 8

// Header is the parsed 8-byte `.ipod` container prefix.
type Header struct {
	Checksum uint32
	Model    string
}

// recognizedModel reports whether tag is one of the known model magics.
func recognizedModel(tag string) bool {
	_, ok := modelNumbers[tag]
	return ok
}

// Checksum computes modelnum + sum(payload) mod 2^32 (spec.md §3).
func Checksum(model string, payload []byte) uint32 {
	sum := modelNumbers[model]
	for _, b := range payload {
		sum += uint32(b)
	}
	return sum
}

// BuildHeader constructs the 8-byte header for model and payload, for tools
// that package raw firmware into the `.ipod` container.
func BuildHeader(model string, payload []byte) ([]byte, error) {
	if !recognizedModel(model) {
		return nil, fmt.Errorf("firmware: unrecognized model tag %q", model)
	}
	h := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(h[0:4], Checksum(model, payload))
	copy(h[4:8], model)
	return h, nil
}

// Strip inspects data's first 8 bytes; if they form a recognized `.ipod`
// header, it returns the payload with the header removed and ok=true.
// Otherwise it returns data unchanged and ok=false, so the caller can treat
// it as a raw binary image (spec.md §6, §7).
func Strip(data []byte) (payload []byte, hdr Header, ok bool) {
	if len(data) < HeaderSize {
		return data, Header{}, false
	}
	model := string(data[4:8])
	if !recognizedModel(model) {
		return data, Header{}, false
	}
	checksum := binary.LittleEndian.Uint32(data[0:4])
	return data[HeaderSize:], Header{Checksum: checksum, Model: model}, true
}

// VerifyChecksum reports whether hdr.Checksum matches the payload's
// computed checksum. Verification is optional (spec.md §4.13): tools that
// rewrite firmware images may leave a stale checksum, and the loader does
// not refuse to load on mismatch.
func VerifyChecksum(hdr Header, payload []byte) bool {
	return hdr.Checksum == Checksum(hdr.Model, payload)
}
