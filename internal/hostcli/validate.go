package hostcli

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/vaultkeeper"
)

// ErrInvalidEntryID indicates an entry id contains characters unsafe to
// pass as a CLI argument to the host tool.
//
// Grounded on the prior ValidateItemName pattern: exec.Command never
// invokes a shell, so this is defense in depth rather than a true
// injection guard, but it still catches a corrupted or hostile id before
// it reaches the subprocess boundary.
var ErrInvalidEntryID = vaultkeeper.Wrap(vaultkeeper.KindHostCommandFailed, "validate", "", fmt.Errorf("invalid entry id"))

const maxEntryIDLen = 256

// validateEntryID rejects ids carrying shell metacharacters, control
// characters, or null bytes, and anything implausibly long.
func validateEntryID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidEntryID)
	}
	if len(id) > maxEntryIDLen {
		return fmt.Errorf("%w: id too long", ErrInvalidEntryID)
	}
	const dangerous = `;|&$` + "`<>(){}[]!*?~#@%^\\\"'"
	if strings.ContainsAny(id, dangerous) {
		return fmt.Errorf("%w: forbidden character", ErrInvalidEntryID)
	}
	for _, r := range id {
		if r < 32 || r == 127 {
			return fmt.Errorf("%w: control character", ErrInvalidEntryID)
		}
	}
	return nil
}
