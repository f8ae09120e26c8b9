package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuel-indexer-go/indexer/registry"
)

func signMessage(t *testing.T, priv *secp256k1.PrivateKey, message string) string {
	t.Helper()
	digest := sha256.Sum256([]byte(message))
	sig, err := ecdsa.SignCompact(priv, digest[:], true)
	require.NoError(t, err)
	return hex.EncodeToString(sig)
}

func TestVerifySignatureAcceptsMatchingKey(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	pubHex := hex.EncodeToString(priv.PubKey().SerializeCompressed())

	sigHex := signMessage(t, priv, "ea35be0c98764e7ca06d02067982e3b4")

	assert.NoError(t, VerifySignature(pubHex, "ea35be0c98764e7ca06d02067982e3b4", sigHex))
}

func TestVerifySignatureRejectsWrongKey(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	other, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	otherPubHex := hex.EncodeToString(other.PubKey().SerializeCompressed())

	sigHex := signMessage(t, priv, "some-nonce")

	err = VerifySignature(otherPubHex, "some-nonce", sigHex)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestVerifySignatureRejectsMalformedSignature(t *testing.T) {
	err := VerifySignature("aa", "msg", "not-hex")
	assert.Error(t, err)
}

func TestCheckNonceExpiry(t *testing.T) {
	assert.NoError(t, CheckNonceExpiry(registry.Nonce{UID: "u", Expiry: 100}, 50))
	assert.ErrorIs(t, CheckNonceExpiry(registry.Nonce{UID: "u", Expiry: 100}, 100), ErrNonceExpired)
	assert.ErrorIs(t, CheckNonceExpiry(registry.Nonce{UID: "u", Expiry: 100}, 150), ErrNonceExpired)
}

func TestPolicyOwnerRuleAllowsUnregisteredIndexer(t *testing.T) {
	policy := Policy{OwnerRule(func(namespace, identifier string) (string, bool) {
		return "", false
	})}
	assert.NoError(t, policy.Eval(context.Background(), "ns", "ident", "anykey"))
}

func TestPolicyOwnerRuleDeniesMismatchedKey(t *testing.T) {
	policy := Policy{OwnerRule(func(namespace, identifier string) (string, bool) {
		return "owner-key", true
	})}
	err := policy.Eval(context.Background(), "ns", "ident", "attacker-key")
	assert.ErrorIs(t, err, Deny)
}

func TestPolicyOwnerRuleAllowsMatchingKey(t *testing.T) {
	policy := Policy{OwnerRule(func(namespace, identifier string) (string, bool) {
		return "owner-key", true
	})}
	assert.NoError(t, policy.Eval(context.Background(), "ns", "ident", "owner-key"))
}

func TestPolicyStopsAtFirstNonSkipDecision(t *testing.T) {
	calledSecond := false
	policy := Policy{
		RuleFunc(func(context.Context, string, string, string) error { return Deny }),
		RuleFunc(func(context.Context, string, string, string) error {
			calledSecond = true
			return Allow
		}),
	}
	err := policy.Eval(context.Background(), "ns", "ident", "key")
	assert.True(t, errors.Is(err, Deny))
	assert.False(t, calledSecond)
}
