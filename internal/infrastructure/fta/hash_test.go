package fta_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saifnaser12/peergos-sub004/internal/infrastructure/fta"
)

// Known SHA-256 vector: the empty input. If the algorithm, encoding or casing
// ever drifts, this fails immediately.
func TestHashHex_EmptyInputVector(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		fta.HashHex(nil))
}

func TestHashHex_Format(t *testing.T) {
	h := fta.HashHex([]byte("<Invoice/>"))
	assert.Len(t, h, 64)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), h, "lowercase hex only")
}

func TestHashHex_Deterministic(t *testing.T) {
	input := []byte("<Invoice><ID>INV-1</ID></Invoice>")
	assert.Equal(t, fta.HashHex(input), fta.HashHex(input))
}

// A single changed byte must flip the digest.
func TestHashHex_InputSensitivity(t *testing.T) {
	a := fta.HashHex([]byte("<Invoice><ID>INV-1</ID></Invoice>"))
	b := fta.HashHex([]byte("<Invoice><ID>INV-2</ID></Invoice>"))
	assert.NotEqual(t, a, b)
}

// End to end: build, canonicalize, hash twice; the digests must match.
func TestHashHex_StableOverSerializationChain(t *testing.T) {
	builder := fta.NewXMLBuilder()
	inv := buildTestInvoice()

	digest := func() string {
		out, err := builder.Build(inv)
		require.NoError(t, err)
		canonical, err := fta.Canonicalize(out)
		require.NoError(t, err)
		return fta.HashHex(canonical)
	}

	assert.Equal(t, digest(), digest())
}
