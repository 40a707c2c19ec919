package review

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// generateRunID derives a stable identifier from the run timestamp and
// repository root.
func generateRunID(now time.Time, repoRoot string) string {
	payload := fmt.Sprintf("%s|%s", now.UTC().Format(time.RFC3339Nano), repoRoot)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:8])
}
