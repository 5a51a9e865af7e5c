// Copyright © 2020 AMIS Technologies
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errs centralizes the sentinel errors shared across crypto/dj,
// ballot and stv, so callers can errors.Is-switch on a single failure
// taxonomy instead of juggling per-package near-duplicates.
package errs

import "errors"

var (
	// ErrKeyMismatch is returned when combining ciphertexts or shares minted under different public keys.
	ErrKeyMismatch = errors.New("operands reference different public keys")
	// ErrInsufficientShares is returned when fewer than the threshold number of unique-index shares are available.
	ErrInsufficientShares = errors.New("fewer than threshold unique-index shares")
	// ErrNotInvertible signals a broken gcd invariant: the caller asked to invert a non-unit.
	ErrNotInvertible = errors.New("value not invertible modulo the given modulus")
	// ErrEmptyInput is returned when an operation requiring at least one ballot receives none.
	ErrEmptyInput = errors.New("empty ballot input")
	// ErrDivisibilityViolation signals that a reweighting step's exact-division invariant failed; this is a bug.
	ErrDivisibilityViolation = errors.New("reweighting divisibility invariant violated")
	// ErrInvalidPlaintext is returned when a plaintext falls outside its declared range.
	ErrInvalidPlaintext = errors.New("plaintext out of range")
	// ErrInvalidConfig is returned for malformed key-generation or sharing parameters.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrMalformedBallot is returned when a ballot's rows disagree in length or shape.
	ErrMalformedBallot = errors.New("malformed ballot")
)
