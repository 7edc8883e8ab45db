package chain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/wellally/healthaudit/internal/models"
)

// timestampLayout is the fixed timestamp encoding inside digest preimages.
// It is part of the wire format; see CanonicalVersion.
const timestampLayout = time.RFC3339Nano

// computeDigest hashes an entry's canonical content, chaining in the
// previous entry's digest. The preimage is a canonical JSON object with
// lexicographically ordered keys, the same shape existing WellAlly
// archives were hashed under, prefixed with the canonicalization version.
// The details bytes must come from canonicalDetails.
func computeDigest(e models.Entry, details []byte) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "healthaudit-canon-v%d\n", CanonicalVersion)

	buf.WriteString(`{"action":`)
	writeString(&buf, e.Action)
	buf.WriteString(`,"actor":`)
	writeString(&buf, e.Actor)
	buf.WriteString(`,"details":`)
	buf.Write(details)
	buf.WriteString(`,"previous_digest":`)
	writeString(&buf, e.PreviousDigest)
	buf.WriteString(`,"resource_id":`)
	writeString(&buf, e.ResourceID)
	buf.WriteString(`,"resource_type":`)
	writeString(&buf, e.ResourceType)
	buf.WriteString(`,"sequence":`)
	buf.WriteString(strconv.FormatUint(e.Sequence, 10))
	buf.WriteString(`,"timestamp":`)
	writeString(&buf, e.Timestamp.UTC().Format(timestampLayout))
	buf.WriteByte('}')

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// writeString appends a JSON-escaped string. json.Marshal cannot fail on
// a string value.
func writeString(buf *bytes.Buffer, s string) {
	data, _ := json.Marshal(s)
	buf.Write(data)
}

// digestEntry recomputes an entry's digest from its stored fields. Used by
// verification; a serialization failure here means the stored details are
// no longer canonically encodable, which itself indicates tampering.
func digestEntry(e models.Entry) (string, error) {
	details, err := canonicalDetails(e.Details)
	if err != nil {
		return "", err
	}
	return computeDigest(e, details), nil
}
