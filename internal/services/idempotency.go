package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Idempotency scope builders. The scope binds a client key to one operation
// on one campaign, so the same key cannot collide across operations or
// resources.

// ScopeCommitmentLock scopes keys for commitment creation on a campaign.
func ScopeCommitmentLock(campaignID string) string { return "commitment_lock:" + campaignID }

// ScopeRefund scopes keys for refund-all on a campaign.
func ScopeRefund(campaignID string) string { return "refund:" + campaignID }

// ScopeRelease scopes keys for release-all on a campaign.
func ScopeRelease(campaignID string) string { return "release:" + campaignID }

// requestHash produces a stable SHA-256 digest of the request's semantic
// fields. It guards against a key being reused with a different payload:
// same key + same scope + different hash is rejected, never silently merged.
func requestHash(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
