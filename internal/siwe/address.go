package siwe

import (
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/sha3"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsHexAddress reports whether s is 0x followed by 40 hex digits.
func IsHexAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// ChecksumAddress returns the EIP-55 mixed-case form of a hex address.
// The input must satisfy IsHexAddress.
func ChecksumAddress(addr string) string {
	lower := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X"))
	hash := keccak256([]byte(lower))

	out := make([]byte, len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if c >= 'a' && c <= 'f' && nibble >= 8 {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return "0x" + string(out)
}

// ValidChecksum accepts single-case addresses as unchecksummed and requires
// mixed-case ones to match their EIP-55 form.
func ValidChecksum(addr string) bool {
	if !IsHexAddress(addr) {
		return false
	}
	body := addr[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return ChecksumAddress(addr) == addr
}

// EqualAddress compares two addresses ignoring case.
func EqualAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}

// PubkeyToAddress derives the checksummed account address of a secp256k1 key.
func PubkeyToAddress(pub *btcec.PublicKey) string {
	uncompressed := pub.SerializeUncompressed()
	hash := keccak256(uncompressed[1:])
	return ChecksumAddress("0x" + hex.EncodeToString(hash[12:]))
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
