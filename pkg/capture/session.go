package capture

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewVisitorID generates a persistent visitor identifier in the form
// v_<unix millis>_<base36 suffix>. Callers are expected to store and reuse
// it so returning visitors can be recognized.
func NewVisitorID() string {
	return newVisitorIDAt(time.Now())
}

func newVisitorIDAt(now time.Time) string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Random source failure is vanishingly rare; a UUID suffix keeps
		// the identifier unique without it.
		return fmt.Sprintf("v_%d_%s", now.UnixMilli(), uuid.NewString()[:7])
	}

	suffix := strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 36)
	if len(suffix) > 7 {
		suffix = suffix[:7]
	}
	return fmt.Sprintf("v_%d_%s", now.UnixMilli(), suffix)
}
