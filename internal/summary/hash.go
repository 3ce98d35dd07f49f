package summary

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/sells-group/triage-cli/internal/model"
)

// ContentHash returns the hex SHA-256 of the summary's canonical JSON.
// Struct field order fixes the key order, so equal summaries always
// hash equal. The outcome ledger keys idempotency on this value.
func ContentHash(s *model.CanonicalSummary) string {
	if s == nil {
		return ""
	}
	data, err := json.Marshal(s)
	if err != nil {
		// CanonicalSummary holds only marshalable types.
		return ""
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h)
}
