package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"lukechampine.com/blake3"
)

type HashAlgo string

const (
	HashAlgoSHA256 HashAlgo = "sha256"
	HashAlgoBLAKE3 HashAlgo = "blake3"
)

// PartSeparator joins the parts given to HashParts. It is the ASCII unit
// separator, which never appears in source ids or search text.
const PartSeparator = "\x1f"

// HashBytes returns the hash of bytes as a hex string using the specified algorithm.
func HashBytes(data []byte, algo HashAlgo) (string, error) {
	switch algo {
	case HashAlgoSHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	case HashAlgoBLAKE3:
		sum := blake3.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// HashParts hashes the parts joined by PartSeparator, so ("ab","c") and
// ("a","bc") give different digests.
func HashParts(algo HashAlgo, parts ...string) (string, error) {
	return HashBytes([]byte(strings.Join(parts, PartSeparator)), algo)
}
