package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewGenerationID returns gen_<unix-ms>_<13 random hex chars>. The random
// part is taken from the tail of a v4 UUID, past the version and variant
// nibbles.
func NewGenerationID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("gen_%d_%s", time.Now().UnixMilli(), hex[len(hex)-13:])
}
