package siwe

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

const signatureLen = 65

// HashPersonalMessage is the EIP-191 digest wallets sign for personal_sign.
func HashPersonalMessage(message string) []byte {
	prefix := "\x19Ethereum Signed Message:\n" + strconv.Itoa(len(message))
	return keccak256([]byte(prefix), []byte(message))
}

// DecodeSignature parses a hex r||s||v signature, with or without 0x.
func DecodeSignature(signature string) ([]byte, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(signature), "0x"), "0X")
	sig, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != signatureLen {
		return nil, fmt.Errorf("invalid signature length %d", len(sig))
	}
	return sig, nil
}

// RecoverAddress returns the address whose key produced sig over hash.
// v may be given as 0/1 or 27/28.
func RecoverAddress(hash []byte, sig []byte) (string, error) {
	if len(sig) != signatureLen {
		return "", fmt.Errorf("invalid signature length %d", len(sig))
	}
	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return "", fmt.Errorf("invalid recovery id %d", sig[64])
	}

	// btcec expects the recovery byte first, offset by 27 for uncompressed keys.
	compact := make([]byte, signatureLen)
	compact[0] = 27 + v
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}
	return PubkeyToAddress(pub), nil
}

// SignMessage produces a personal_sign signature of message with key, in the
// 0x-prefixed r||s||v form wallets return.
func SignMessage(key *btcec.PrivateKey, message string) string {
	compact := ecdsa.SignCompact(key, HashPersonalMessage(message), false)
	sig := make([]byte, 0, signatureLen)
	sig = append(sig, compact[1:]...)
	sig = append(sig, compact[0])
	return "0x" + hex.EncodeToString(sig)
}
