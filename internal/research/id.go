package research

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const idSuffixLen = 9

// newSectionID returns section_<unix-ms>_<9 random chars>. Uniqueness within
// one outline is probabilistic.
func newSectionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:idSuffixLen]
	return fmt.Sprintf("section_%d_%s", now.UnixMilli(), suffix)
}
