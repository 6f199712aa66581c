package wire

import (
	"crypto/sha256"
	"encoding/hex"
)

// domainPrefix versions content IDs so the algorithm can change later.
const domainPrefix = "synthscroll/"

// ContentID hashes a payload with its topic as domain separator:
// SHA256("synthscroll/" + topic + "/v1" + 0x00 + payload).
func ContentID(topic Topic, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(domainPrefix + string(topic) + "/v1"))
	h.Write([]byte{0x00})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
