package siwe

import (
	"strings"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 10, 5, 0, 0, time.UTC)

func testKey(t *testing.T) (*btcec.PrivateKey, string) {
	t.Helper()
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return key, PubkeyToAddress(key.PubKey())
}

func testMessage(address, nonce string) *Message {
	return &Message{
		Domain:    "relief.example",
		Address:   address,
		Statement: "Sign in to SecureRelief",
		URI:       "https://relief.example/login",
		Version:   "1",
		ChainID:   1,
		Nonce:     nonce,
		IssuedAt:  "2026-10-19T10:00:00.000Z",
	}
}

func signed(t *testing.T, key *btcec.PrivateKey, msg *Message) (string, string) {
	t.Helper()
	text := msg.String()
	return text, SignMessage(key, text)
}

func TestPubkeyToAddress_KnownVector(t *testing.T) {
	t.Parallel()

	one := make([]byte, 32)
	one[31] = 1
	_, pub := btcec.PrivKeyFromBytes(one)

	assert.Equal(t, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", PubkeyToAddress(pub))
}

func TestChecksumAddress_EIP55Vectors(t *testing.T) {
	t.Parallel()

	for _, want := range []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	} {
		assert.Equal(t, want, ChecksumAddress(strings.ToLower(want)))
		assert.True(t, ValidChecksum(want))
	}

	assert.True(t, ValidChecksum("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))
	assert.False(t, ValidChecksum("0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
	assert.False(t, ValidChecksum("0x1234"))
}

func TestMessage_RoundTrip(t *testing.T) {
	t.Parallel()

	msg := testMessage("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "a1b2c3d4e5f6a7b8")
	msg.ExpirationTime = "2026-10-19T10:15:00Z"
	msg.NotBefore = "2026-10-19T09:59:00Z"
	msg.RequestID = "req-42"
	msg.Resources = []string{"https://relief.example/terms", "ipfs://bafybeiexample"}

	text := msg.String()
	assert.True(t, strings.HasPrefix(text, "relief.example wants you to sign in with your Ethereum account:\n0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed\n\nSign in to SecureRelief\n\nURI: https://relief.example/login\n"))

	parsed, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, msg, parsed)
	assert.Equal(t, text, parsed.String())
}

func TestParse_WithoutStatement(t *testing.T) {
	t.Parallel()

	msg := testMessage("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "a1b2c3d4e5f6a7b8")
	msg.Statement = ""

	text := msg.String()
	assert.Contains(t, text, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed\n\n\nURI: ")

	parsed, err := Parse(text)
	require.NoError(t, err)
	assert.Empty(t, parsed.Statement)
	assert.Equal(t, text, parsed.String())

	// a single blank line is not the statement-less layout
	_, err = Parse(strings.Replace(text, "\n\n\nURI: ", "\n\nURI: ", 1))
	assert.ErrorIs(t, err, ErrParse)
}

func TestVerify_WalletMessageWithoutStatement(t *testing.T) {
	t.Parallel()

	key, addr := testKey(t)
	text := "relief.example wants you to sign in with your Ethereum account:\n" +
		addr + "\n" +
		"\n" +
		"\n" +
		"URI: https://relief.example/login\n" +
		"Version: 1\n" +
		"Chain ID: 1\n" +
		"Nonce: a1b2c3d4e5f6a7b8\n" +
		"Issued At: 2026-10-19T10:00:00.000Z"

	res := Verify(text, SignMessage(key, text), "a1b2c3d4e5f6a7b8", Options{Now: func() time.Time { return fixedNow }})
	require.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.Equal(t, addr, res.Address)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	valid := testMessage("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "a1b2c3d4e5f6a7b8").String()

	cases := map[string]string{
		"plain text":      "not a siwe message",
		"empty":           "",
		"bad address":     strings.Replace(valid, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "0x1234", 1),
		"bad checksum":    strings.Replace(valid, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", 1),
		"bad version":     strings.Replace(valid, "Version: 1", "Version: 2", 1),
		"bad chain id":    strings.Replace(valid, "Chain ID: 1", "Chain ID: zero", 1),
		"zero chain id":   strings.Replace(valid, "Chain ID: 1\n", "Chain ID: 0\n", 1),
		"padded chain id": strings.Replace(valid, "Chain ID: 1\n", "Chain ID: 01\n", 1),
		"signed chain id": strings.Replace(valid, "Chain ID: 1\n", "Chain ID: +1\n", 1),
		"statement no lf": strings.Replace(valid, "SecureRelief\n\n", "SecureRelief\n", 1),
		"short nonce":     strings.Replace(valid, "Nonce: a1b2c3d4e5f6a7b8", "Nonce: abc", 1),
		"bad issued at":   strings.Replace(valid, "2026-10-19T10:00:00.000Z", "yesterday", 1),
		"missing nonce":   strings.Replace(valid, "Nonce: a1b2c3d4e5f6a7b8\n", "", 1),
		"trailing":        valid + "\nextra",
		"trailing lf":     valid + "\n",
		"relative uri":    strings.Replace(valid, "URI: https://relief.example/login", "URI: /login", 1),
		"truncated":       valid[:80],
		"no blank line":   strings.Replace(valid, "BeAed\n\n", "BeAed\n", 1),
		"empty resources": valid + "\nResources:",
	}
	for name, text := range cases {
		_, err := Parse(text)
		assert.ErrorIs(t, err, ErrParse, name)
	}
}

func TestSignAndRecover(t *testing.T) {
	t.Parallel()

	key, addr := testKey(t)
	sig := SignMessage(key, "hello relief")
	assert.Len(t, sig, 2+130)

	raw, err := DecodeSignature(sig)
	require.NoError(t, err)
	assert.Contains(t, []byte{27, 28}, raw[64])

	got, err := RecoverAddress(HashPersonalMessage("hello relief"), raw)
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	// wallets that emit v as 0/1
	raw[64] -= 27
	got, err = RecoverAddress(HashPersonalMessage("hello relief"), raw)
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	raw[64] = 5
	_, err = RecoverAddress(HashPersonalMessage("hello relief"), raw)
	assert.Error(t, err)
}

func TestVerify_Success(t *testing.T) {
	t.Parallel()

	key, addr := testKey(t)
	text, sig := signed(t, key, testMessage(addr, "a1b2c3d4e5f6a7b8"))

	res := Verify(text, sig, "a1b2c3d4e5f6a7b8", Options{Now: func() time.Time { return fixedNow }})
	require.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.Equal(t, addr, res.Address)
}

func TestVerify_LowercaseAddressInMessage(t *testing.T) {
	t.Parallel()

	key, addr := testKey(t)
	text, sig := signed(t, key, testMessage(strings.ToLower(addr), "a1b2c3d4e5f6a7b8"))

	res := Verify(text, sig, "a1b2c3d4e5f6a7b8", Options{Now: func() time.Time { return fixedNow }})
	require.NoError(t, res.Err)
	assert.True(t, EqualAddress(res.Address, strings.ToLower(addr)))
}

func TestVerify_Failures(t *testing.T) {
	t.Parallel()

	key, addr := testKey(t)
	other, _ := testKey(t)
	now := Options{Now: func() time.Time { return fixedNow }}

	t.Run("malformed", func(t *testing.T) {
		res := Verify("not a siwe message", "0xdeadbeef", "a1b2c3d4e5f6a7b8", now)
		assert.False(t, res.Success)
		assert.True(t, IsParseError(res.Err))
	})

	t.Run("signature by another key", func(t *testing.T) {
		text, sig := signed(t, other, testMessage(addr, "a1b2c3d4e5f6a7b8"))
		res := Verify(text, sig, "a1b2c3d4e5f6a7b8", now)
		assert.ErrorIs(t, res.Err, ErrSignature)
	})

	t.Run("garbage signature", func(t *testing.T) {
		text := testMessage(addr, "a1b2c3d4e5f6a7b8").String()
		res := Verify(text, "0xzz", "a1b2c3d4e5f6a7b8", now)
		assert.ErrorIs(t, res.Err, ErrSignature)
	})

	t.Run("tampered message", func(t *testing.T) {
		text, sig := signed(t, key, testMessage(addr, "a1b2c3d4e5f6a7b8"))
		tampered := strings.Replace(text, "Chain ID: 1", "Chain ID: 5", 1)
		res := Verify(tampered, sig, "a1b2c3d4e5f6a7b8", now)
		assert.ErrorIs(t, res.Err, ErrSignature)
	})

	t.Run("nonce mismatch", func(t *testing.T) {
		text, sig := signed(t, key, testMessage(addr, "a1b2c3d4e5f6a7b8"))
		res := Verify(text, sig, "ffffffffffffffff", now)
		assert.ErrorIs(t, res.Err, ErrNonceMismatch)
	})

	t.Run("empty expected nonce", func(t *testing.T) {
		text, sig := signed(t, key, testMessage(addr, "a1b2c3d4e5f6a7b8"))
		res := Verify(text, sig, "", now)
		assert.ErrorIs(t, res.Err, ErrNonceMismatch)
	})

	t.Run("expired", func(t *testing.T) {
		msg := testMessage(addr, "a1b2c3d4e5f6a7b8")
		msg.ExpirationTime = "2026-10-19T10:05:00Z"
		text, sig := signed(t, key, msg)
		res := Verify(text, sig, "a1b2c3d4e5f6a7b8", now)
		assert.ErrorIs(t, res.Err, ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		msg := testMessage(addr, "a1b2c3d4e5f6a7b8")
		msg.NotBefore = "2026-10-19T11:00:00Z"
		text, sig := signed(t, key, msg)
		res := Verify(text, sig, "a1b2c3d4e5f6a7b8", now)
		assert.ErrorIs(t, res.Err, ErrNotYetValid)
	})

	t.Run("domain mismatch", func(t *testing.T) {
		text, sig := signed(t, key, testMessage(addr, "a1b2c3d4e5f6a7b8"))
		res := Verify(text, sig, "a1b2c3d4e5f6a7b8", Options{Domain: "evil.example", Now: now.Now})
		assert.ErrorIs(t, res.Err, ErrDomainMismatch)
	})
}
