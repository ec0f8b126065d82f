package firmware

import (
	"fmt"
	"os"

	"nitro-core-dx/internal/debug"
)

// LoadTarget is the minimal write surface the loader needs; satisfied by
// *bus.Bus.
type LoadTarget interface {
	LoadBytes(addr uint32, data []byte)
}

// Load reads path, strips a recognized `.ipod` header if present, and
// writes the payload to target at addr. It reports whether a header was
// stripped and, if so, the parsed header.
func Load(target LoadTarget, addr uint32, path string, logger *debug.Logger) (Header, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Header{}, false, fmt.Errorf("firmware: reading %s: %w", path, err)
	}
	return LoadBytes(target, addr, data, logger)
}

// LoadBytes performs the same header-strip-and-place logic as Load, for
// callers that already have the image in memory (e.g. embedded test fixtures).
func LoadBytes(target LoadTarget, addr uint32, data []byte, logger *debug.Logger) (Header, bool, error) {
	payload, hdr, stripped := Strip(data)
	if stripped {
		if logger != nil {
			valid := VerifyChecksum(hdr, payload)
			logger.Logf(debug.ComponentFirmware, debug.LogLevelInfo,
				"stripped .ipod header model=%s checksum=%08x verified=%v", hdr.Model, hdr.Checksum, valid)
		}
	} else if logger != nil {
		logger.Logf(debug.ComponentFirmware, debug.LogLevelInfo,
			"no recognized .ipod header; loading %d bytes as a raw image", len(payload))
	}
	target.LoadBytes(addr, payload)
	return hdr, stripped, nil
}
