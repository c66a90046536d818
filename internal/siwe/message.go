// Package siwe parses and verifies EIP-4361 sign-in messages signed with
// EIP-191 personal signatures. Verification is pure computation.
package siwe

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const headerSuffix = " wants you to sign in with your Ethereum account:"

var (
	ErrParse          = errors.New("malformed sign-in message")
	ErrSignature      = errors.New("signature does not match message address")
	ErrNonceMismatch  = errors.New("nonce mismatch")
	ErrExpired        = errors.New("message expired")
	ErrNotYetValid    = errors.New("message not yet valid")
	ErrDomainMismatch = errors.New("domain mismatch")
)

var (
	noncePattern   = regexp.MustCompile(`^[A-Za-z0-9]{8,}$`)
	chainIDPattern = regexp.MustCompile(`^[1-9][0-9]*$`)
)

// Message is a parsed sign-in statement. Timestamps keep their original
// text so that String reproduces exactly what the wallet signed.
type Message struct {
	Domain         string
	Address        string
	Statement      string
	URI            string
	Version        string
	ChainID        int64
	Nonce          string
	IssuedAt       string
	ExpirationTime string
	NotBefore      string
	RequestID      string
	Resources      []string
}

func (m *Message) String() string {
	var b strings.Builder
	b.WriteString(m.Domain + headerSuffix + "\n")
	b.WriteString(m.Address + "\n\n")
	if m.Statement != "" {
		b.WriteString(m.Statement + "\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "URI: %s\nVersion: %s\nChain ID: %d\nNonce: %s\nIssued At: %s",
		m.URI, m.Version, m.ChainID, m.Nonce, m.IssuedAt)
	if m.ExpirationTime != "" {
		b.WriteString("\nExpiration Time: " + m.ExpirationTime)
	}
	if m.NotBefore != "" {
		b.WriteString("\nNot Before: " + m.NotBefore)
	}
	if m.RequestID != "" {
		b.WriteString("\nRequest ID: " + m.RequestID)
	}
	if len(m.Resources) > 0 {
		b.WriteString("\nResources:")
		for _, r := range m.Resources {
			b.WriteString("\n- " + r)
		}
	}
	return b.String()
}

// Parse reads text in the EIP-4361 layout. Every returned error wraps ErrParse.
func Parse(text string) (*Message, error) {
	p := &parser{lines: strings.Split(text, "\n")}
	m := &Message{}

	header, err := p.next("header")
	if err != nil {
		return nil, err
	}
	domain, ok := strings.CutSuffix(header, headerSuffix)
	if !ok || domain == "" || strings.ContainsAny(domain, " \t") {
		return nil, p.fail("invalid header")
	}
	m.Domain = domain

	if m.Address, err = p.next("address"); err != nil {
		return nil, err
	}
	if !IsHexAddress(m.Address) {
		return nil, p.fail("invalid address")
	}
	if !ValidChecksum(m.Address) {
		return nil, p.fail("address checksum mismatch")
	}

	if err := p.blank(); err != nil {
		return nil, err
	}

	// the statement line is optional; the blank line after it is not
	line, err := p.next("statement")
	if err != nil {
		return nil, err
	}
	if line != "" {
		m.Statement = line
		if err := p.blank(); err != nil {
			return nil, err
		}
	}

	if m.URI, err = p.field("URI"); err != nil {
		return nil, err
	}
	if u, perr := url.Parse(m.URI); perr != nil || u.Scheme == "" {
		return nil, p.fail("invalid URI")
	}

	if m.Version, err = p.field("Version"); err != nil {
		return nil, err
	}
	if m.Version != "1" {
		return nil, p.fail("unsupported version")
	}

	chainID, err := p.field("Chain ID")
	if err != nil {
		return nil, err
	}
	if !chainIDPattern.MatchString(chainID) {
		return nil, p.fail("invalid chain id")
	}
	if m.ChainID, err = strconv.ParseInt(chainID, 10, 64); err != nil {
		return nil, p.fail("invalid chain id")
	}

	if m.Nonce, err = p.field("Nonce"); err != nil {
		return nil, err
	}
	if !noncePattern.MatchString(m.Nonce) {
		return nil, p.fail("invalid nonce")
	}

	if m.IssuedAt, err = p.field("Issued At"); err != nil {
		return nil, err
	}
	if _, err := parseTimestamp(m.IssuedAt); err != nil {
		return nil, p.fail("invalid issued-at timestamp")
	}

	if p.has("Expiration Time") {
		m.ExpirationTime, _ = p.field("Expiration Time")
		if _, err := parseTimestamp(m.ExpirationTime); err != nil {
			return nil, p.fail("invalid expiration timestamp")
		}
	}
	if p.has("Not Before") {
		m.NotBefore, _ = p.field("Not Before")
		if _, err := parseTimestamp(m.NotBefore); err != nil {
			return nil, p.fail("invalid not-before timestamp")
		}
	}
	if p.has("Request ID") {
		m.RequestID, _ = p.field("Request ID")
	}
	if p.pos < len(p.lines) && p.lines[p.pos] == "Resources:" {
		p.pos++
		for p.pos < len(p.lines) {
			res, ok := strings.CutPrefix(p.lines[p.pos], "- ")
			if !ok {
				break
			}
			if u, perr := url.Parse(res); perr != nil || u.Scheme == "" {
				return nil, p.fail("invalid resource")
			}
			m.Resources = append(m.Resources, res)
			p.pos++
		}
		if len(m.Resources) == 0 {
			return nil, p.fail("empty resources")
		}
	}

	if p.pos != len(p.lines) {
		return nil, p.fail("unexpected trailing content")
	}
	return m, nil
}

// Times returns the parsed timing fields; absent optional fields are zero.
func (m *Message) Times() (issuedAt, expiration, notBefore time.Time, err error) {
	if issuedAt, err = parseTimestamp(m.IssuedAt); err != nil {
		return
	}
	if m.ExpirationTime != "" {
		if expiration, err = parseTimestamp(m.ExpirationTime); err != nil {
			return
		}
	}
	if m.NotBefore != "" {
		notBefore, err = parseTimestamp(m.NotBefore)
	}
	return
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

type parser struct {
	lines []string
	pos   int
}

func (p *parser) fail(reason string) error {
	return fmt.Errorf("%w: line %d: %s", ErrParse, p.pos+1, reason)
}

func (p *parser) peek(what string) (string, error) {
	if p.pos >= len(p.lines) {
		return "", p.fail("missing " + what)
	}
	return p.lines[p.pos], nil
}

func (p *parser) next(what string) (string, error) {
	line, err := p.peek(what)
	if err != nil {
		return "", err
	}
	p.pos++
	return line, nil
}

func (p *parser) blank() error {
	line, err := p.peek("blank line")
	if err != nil {
		return err
	}
	if line != "" {
		return p.fail("expected blank line")
	}
	p.pos++
	return nil
}

func (p *parser) has(tag string) bool {
	return p.pos < len(p.lines) && strings.HasPrefix(p.lines[p.pos], tag+": ")
}

func (p *parser) field(tag string) (string, error) {
	line, err := p.peek(tag)
	if err != nil {
		return "", err
	}
	value, ok := strings.CutPrefix(line, tag+": ")
	if !ok || value == "" {
		return "", p.fail("expected " + tag)
	}
	p.pos++
	return value, nil
}
