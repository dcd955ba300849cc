// Package otp derives and verifies six digit codes from an issuance timestamp.
//
// Nothing is stored between issuance and verification: the caller echoes the
// timestamp back and the code is recomputed from it. The mixing constant is
// public, so a code is obfuscation only and must not be treated as a MAC.
package otp

import (
	"fmt"
	"math"
)

const (
	DefaultMixingConstant int64 = 982451653
	DefaultValidityMs     int64 = 300000

	CodeLength = 6

	// 2^53, the largest millisecond count a float64 holds exactly.
	maxExactTimestamp int64 = 1 << 53
	codeSpace               = 1000000
)

type Reason string

const (
	ReasonNone     Reason = "NONE"
	ReasonExpired  Reason = "EXPIRED"
	ReasonMismatch Reason = "MISMATCH"
)

type Result struct {
	Accepted bool
	Reason   Reason
}

type Codec struct {
	mixingConstant int64
	validityMs     int64
}

// NewCodec returns a Codec. Non-positive arguments fall back to the defaults.
func NewCodec(mixingConstant, validityMs int64) *Codec {
	if mixingConstant <= 0 {
		mixingConstant = DefaultMixingConstant
	}
	if validityMs <= 0 {
		validityMs = DefaultValidityMs
	}
	return &Codec{
		mixingConstant: mixingConstant,
		validityMs:     validityMs,
	}
}

func (c *Codec) MixingConstant() int64 { return c.mixingConstant }

func (c *Codec) ValidityMs() int64 { return c.validityMs }

// Derive maps a millisecond timestamp to a zero padded six digit code.
func (c *Codec) Derive(timestamp int64) string {
	t := clampTimestamp(timestamp)
	fraction := math.Mod(float64(t)/float64(c.mixingConstant), 1)
	value := int64(math.Floor(fraction * codeSpace))
	// fraction < 1, but the product may still round up to codeSpace.
	if value >= codeSpace {
		value = codeSpace - 1
	}
	return fmt.Sprintf("%06d", value)
}

// Verify reports whether presented is the code issued at timestamp. Freshness
// is checked first, so a correct but stale code reports ReasonExpired.
func (c *Codec) Verify(timestamp int64, presented string, now int64) Result {
	t := clampTimestamp(timestamp)
	if now-t > c.validityMs {
		return Result{Accepted: false, Reason: ReasonExpired}
	}
	if c.Derive(t) != presented {
		return Result{Accepted: false, Reason: ReasonMismatch}
	}
	return Result{Accepted: true, Reason: ReasonNone}
}

func clampTimestamp(t int64) int64 {
	if t < 0 {
		return 0
	}
	if t > maxExactTimestamp {
		return maxExactTimestamp
	}
	return t
}
