package legacyfile

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ACS is a named alternate collating sequence substitution table.
type ACS struct {
	Name  string
	Table [256]byte
}

// parseACS reads the optional ACS page at file offset pageLength. Returns
// ok=false when the magic prefix is absent (spec.md §4.D "ACS page").
func parseACS(data []byte, pageLength int) (ACS, bool, error) {
	if pageLength+acsTableOffset+acsTableLength > len(data) {
		return ACS{}, false, nil
	}
	page := data[pageLength:]
	if !bytes.Equal(page[acsPrefixOffset:acsPrefixOffset+len(acsPrefix)], acsPrefix[:]) {
		return ACS{}, false, nil
	}

	raw := strings.TrimRight(string(page[acsNameOffset:acsNameOffset+acsNameLength]), "\x00")

	// The ACS name is a display label stored in metadata_t.acs_name and
	// never used for key ordering or key columns, so decoding it through
	// the DOS/ANSI code page it was authored in is safe here.
	name := raw
	if decoded, err := charmap.Windows1252.NewDecoder().String(raw); err == nil {
		name = decoded
	}

	var acs ACS
	acs.Name = name
	copy(acs.Table[:], page[acsTableOffset:acsTableOffset+acsTableLength])
	return acs, true, nil
}
