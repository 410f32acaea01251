// Package totp generates RFC 6238 TOTP codes locally so that copying a
// one-time code never shells out to the host CLI.
//
// Grounded on github.com/pquerna/otp/totp (named in the pass-cli manifest)
// for the HMAC/step arithmetic; this package owns only the
// base32-normalization and remaining-seconds framing around that library
// call.
package totp

import (
	"encoding/base32"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/blackwell-systems/vaultkeeper"
)

const (
	step   = 30 * time.Second
	digits = 6
)

// Result is the outcome of a Generate call. Seed decode failures are
// surfaced as Valid == false rather than an error so callers (the UI) can
// render a labelled placeholder uniformly with any other display state.
type Result struct {
	Code             string
	SecondsRemaining int
	Valid            bool
}

// Generate computes the current TOTP code for seed at unixSeconds. Callers
// MUST pass raw Unix seconds — the step division happens inside.
//
// seed accepts both padded and unpadded RFC 4648 base32 (the host CLI and
// hand-entered seeds disagree on this), normalized here before handing off
// to the otp library, which itself expects padding.
func Generate(seed string, unixSeconds int64) Result {
	normalized, err := normalizeSeed(seed)
	if err != nil {
		return Result{Valid: false}
	}

	t := time.Unix(unixSeconds, 0).UTC()
	code, err := totp.GenerateCodeCustom(normalized, t, totp.ValidateOpts{
		Period:    uint(step.Seconds()),
		Skew:      0,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return Result{Valid: false}
	}

	remaining := int(step.Seconds()) - int(unixSeconds%int64(step.Seconds()))
	return Result{Code: code, SecondsRemaining: remaining, Valid: true}
}

// normalizeSeed upper-cases and re-pads a base32 seed so the otp library's
// stricter decoder accepts forms copied without trailing '='.
func normalizeSeed(seed string) (string, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(seed, "=", "")))
	if cleaned == "" {
		return "", vaultkeeper.ErrInvalidSeed
	}

	enc := base32.StdEncoding
	if _, err := enc.WithPadding(base32.NoPadding).DecodeString(cleaned); err != nil {
		return "", vaultkeeper.ErrInvalidSeed
	}

	// Re-add padding to the length the standard encoding expects.
	if rem := len(cleaned) % 8; rem != 0 {
		cleaned += strings.Repeat("=", 8-rem)
	}
	return cleaned, nil
}
