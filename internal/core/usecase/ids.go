package usecase

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newID builds external identifiers like PERMIT-MBX2K1-4F7A9: a prefix, the
// creation instant in base36, and a short random suffix. The shape is part of
// the wire contract with existing callers.
func newID(prefix string) string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:5]
	return strings.ToUpper(prefix + "-" + ts + "-" + suffix)
}
