package siwe

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"
)

type Options struct {
	// Domain, when set, must equal the message domain.
	Domain string
	// Now defaults to time.Now.
	Now func() time.Time
}

type Result struct {
	Success bool
	Address string
	Message *Message
	Err     error
}

// Verify checks that text is a well-formed sign-in message, that signature
// was produced by the message's address, that it embeds expectedNonce and
// that the current time falls inside its validity window. It never panics
// on hostile input; every failure is reported through Result.Err.
func Verify(text, signature, expectedNonce string, opts Options) Result {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	msg, err := Parse(text)
	if err != nil {
		return Result{Err: err}
	}

	sig, err := DecodeSignature(signature)
	if err != nil {
		return Result{Message: msg, Err: fmt.Errorf("%w: %v", ErrSignature, err)}
	}
	recovered, err := RecoverAddress(HashPersonalMessage(msg.String()), sig)
	if err != nil {
		return Result{Message: msg, Err: fmt.Errorf("%w: %v", ErrSignature, err)}
	}
	if !EqualAddress(recovered, msg.Address) {
		return Result{Message: msg, Err: ErrSignature}
	}

	if expectedNonce == "" || subtle.ConstantTimeCompare([]byte(msg.Nonce), []byte(expectedNonce)) != 1 {
		return Result{Message: msg, Err: ErrNonceMismatch}
	}

	_, expiration, notBefore, err := msg.Times()
	if err != nil {
		return Result{Message: msg, Err: fmt.Errorf("%w: %v", ErrParse, err)}
	}
	current := now()
	if !expiration.IsZero() && !current.Before(expiration) {
		return Result{Message: msg, Err: ErrExpired}
	}
	if !notBefore.IsZero() && current.Before(notBefore) {
		return Result{Message: msg, Err: ErrNotYetValid}
	}

	if opts.Domain != "" && opts.Domain != msg.Domain {
		return Result{Message: msg, Err: ErrDomainMismatch}
	}

	return Result{Success: true, Address: recovered, Message: msg}
}

// IsParseError reports whether a verification failure came from parsing.
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}
