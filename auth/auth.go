// Package auth decides whether a mutating registry request (register,
// re-register, or remove an indexer) may proceed: a nonce-and-signature
// challenge proves the caller holds the private key that owns the
// indexer before the mutation is allowed through.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/fuel-indexer-go/indexer/registry"
)

// ErrNonceExpired is returned by CheckNonceExpiry for a nonce whose expiry
// has already passed.
var ErrNonceExpired = errors.New("auth: nonce expired")

// CheckNonceExpiry reports ErrNonceExpired if n's expiry is at or before
// now (unix seconds). Consumed separately from deletion: a caller must
// still delete the nonce row after a successful check, since a nonce is
// single-use regardless of how much of its lifetime remained.
func CheckNonceExpiry(n registry.Nonce, now int64) error {
	if n.Expiry <= now {
		return ErrNonceExpired
	}
	return nil
}

// Decision sentinel errors returned by Rules. Checked with errors.Is.
var (
	// Allow terminates rule evaluation with a permit.
	Allow = errors.New("auth: allow")
	// Deny terminates rule evaluation with a rejection.
	Deny = errors.New("auth: deny")
	// Skip abstains, letting the next rule in the chain decide.
	Skip = errors.New("auth: skip")
)

// ErrSignatureMismatch is returned by VerifySignature when the recovered
// public key does not match the claimed owner.
var ErrSignatureMismatch = errors.New("auth: signature does not match claimed public key")

// Rule decides whether a registry mutation identified by namespace and
// identifier, requested by the holder of pubkey, may proceed.
type Rule interface {
	EvalMutation(ctx context.Context, namespace, identifier, pubkey string) error
}

// RuleFunc adapts an ordinary function to a Rule.
type RuleFunc func(ctx context.Context, namespace, identifier, pubkey string) error

// EvalMutation calls f.
func (f RuleFunc) EvalMutation(ctx context.Context, namespace, identifier, pubkey string) error {
	return f(ctx, namespace, identifier, pubkey)
}

// Policy evaluates a chain of Rules in order. The first non-Skip decision
// wins; Allow or no decision at all permits the mutation, anything else
// denies it.
type Policy []Rule

// Eval runs the policy's rules in order, stopping at the first non-Skip
// decision.
func (p Policy) Eval(ctx context.Context, namespace, identifier, pubkey string) error {
	for _, rule := range p {
		switch decision := rule.EvalMutation(ctx, namespace, identifier, pubkey); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// OwnerRule denies the mutation unless pubkey matches the indexer's
// recorded owner, looked up via lookup. For a not-yet-registered
// namespace/identifier pair (lookup returning ok=false) the rule returns
// Skip, since registering a new indexer has no prior owner to check
// against; the mutation is then allowed unless a later rule in the Policy
// denies it.
func OwnerRule(lookup func(namespace, identifier string) (ownerPubkey string, ok bool)) Rule {
	return RuleFunc(func(_ context.Context, namespace, identifier, pubkey string) error {
		owner, ok := lookup(namespace, identifier)
		if !ok {
			return Skip
		}
		if owner != pubkey {
			return fmt.Errorf("auth: %s.%s is owned by a different key: %w", namespace, identifier, Deny)
		}
		return Allow
	})
}

// VerifySignature recovers the public key that produced sigHex over
// message and reports ErrSignatureMismatch if it does not match
// wantPubkeyHex. sigHex is a 65-byte compact recoverable ECDSA signature
// (recovery id || r || s, 130 hex characters); wantPubkeyHex is the
// 33-byte compressed public key (66 hex characters) claimed as signer.
// message is hashed with SHA-256 before recovery, matching how a client
// signs the nonce string issued by the registry's nonce endpoint.
func VerifySignature(wantPubkeyHex, message, sigHex string) error {
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return fmt.Errorf("auth: decoding signature: %w", err)
	}
	if len(sig) != 65 {
		return fmt.Errorf("auth: signature must be 65 bytes, got %d", len(sig))
	}

	digest := sha256.Sum256([]byte(message))
	recovered, _, err := ecdsa.RecoverCompact(sig, digest[:])
	if err != nil {
		return fmt.Errorf("auth: recovering public key: %w", err)
	}

	wantBytes, err := hex.DecodeString(wantPubkeyHex)
	if err != nil {
		return fmt.Errorf("auth: decoding claimed public key: %w", err)
	}
	want, err := secp256k1.ParsePubKey(wantBytes)
	if err != nil {
		return fmt.Errorf("auth: parsing claimed public key: %w", err)
	}

	if !recovered.IsEqual(want) {
		return ErrSignatureMismatch
	}
	return nil
}
