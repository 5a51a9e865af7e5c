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

// Package dj implements the Damgård–Jurik generalization of Paillier: an
// additively homomorphic cryptosystem with plaintext space Z_{n^s} and a
// (t,n) threshold decryption scheme built on crypto/shamir. s=1 degenerates
// to plain Paillier; s>1 trades ciphertext expansion for a larger message
// space without re-keying.
package dj

import (
	"math/big"

	"github.com/cryptovoting/damgard-jurik/crypto/utils"
	"github.com/cryptovoting/damgard-jurik/errs"
)

// PublicKey holds the parameters of one Damgård–Jurik key: modulus n, the
// message-space exponent s, and the combination constants (m, delta) needed
// to verify and combine threshold partial decryptions. Instances are handed
// out as shared, immutable pointers; EncryptedNumber and PrivateKeyShare
// reference their PublicKey by identity, and operations that mix values
// minted under two distinct PublicKey pointers fail with ErrKeyMismatch.
type PublicKey struct {
	n         *big.Int
	s         uint32
	m         *big.Int
	threshold uint32
	nShares   uint32
	delta     *big.Int

	nPowS       *big.Int
	nPowSPlus1  *big.Int
	nPowSTimesM *big.Int
}

// N returns n = p*q.
func (pub *PublicKey) N() *big.Int { return new(big.Int).Set(pub.n) }

// S returns the message-space exponent s (plaintext space is Z_{n^s}).
func (pub *PublicKey) S() uint32 { return pub.s }

// Threshold returns the number of partial decryptions required to recover a plaintext.
func (pub *PublicKey) Threshold() uint32 { return pub.threshold }

// NShares returns the total number of private-key shares issued at keygen.
func (pub *PublicKey) NShares() uint32 { return pub.nShares }

// Delta returns Δ = n_shares!, the scaling constant used to clear Lagrange-coefficient denominators.
func (pub *PublicKey) Delta() *big.Int { return new(big.Int).Set(pub.delta) }

// NPowS returns n^s, the plaintext modulus.
func (pub *PublicKey) NPowS() *big.Int { return new(big.Int).Set(pub.nPowS) }

// NPowSPlus1 returns n^(s+1), the ciphertext modulus.
func (pub *PublicKey) NPowSPlus1() *big.Int { return new(big.Int).Set(pub.nPowSPlus1) }

// EncryptedNumber is a Damgård–Jurik ciphertext under a specific PublicKey.
type EncryptedNumber struct {
	pub   *PublicKey
	value *big.Int
}

// PublicKey returns the key this ciphertext was encrypted under.
func (e *EncryptedNumber) PublicKey() *PublicKey { return e.pub }

// Value returns the raw ciphertext integer in Z_{n^(s+1)}.
func (e *EncryptedNumber) Value() *big.Int { return new(big.Int).Set(e.value) }

// NewEncryptedNumber wraps a raw ciphertext value under pub, for callers that
// deserialize ciphertexts off the wire rather than producing them via Encrypt.
func NewEncryptedNumber(pub *PublicKey, value *big.Int) *EncryptedNumber {
	return &EncryptedNumber{pub: pub, value: new(big.Int).Set(value)}
}

// Encrypt encrypts plaintext m in [0, n^s) as (1+n)^m * r^(n^s) mod n^(s+1)
// for a fresh random unit r, the standard Damgård–Jurik encryption formula.
func (pub *PublicKey) Encrypt(m *big.Int) (*EncryptedNumber, error) {
	if err := utils.InRange(m, big.NewInt(0), pub.nPowS); err != nil {
		return nil, errs.ErrInvalidPlaintext
	}
	r, err := utils.RandomCoprimeInt(pub.n)
	if err != nil {
		return nil, err
	}

	gm, err := utils.PowMod(new(big.Int).Add(big.NewInt(1), pub.n), m, pub.nPowSPlus1)
	if err != nil {
		return nil, err
	}
	rn, err := utils.PowMod(r, pub.nPowS, pub.nPowSPlus1)
	if err != nil {
		return nil, err
	}
	c := new(big.Int).Mul(gm, rn)
	c.Mod(c, pub.nPowSPlus1)
	return &EncryptedNumber{pub: pub, value: c}, nil
}

// Add returns the ciphertext of the sum of the two underlying plaintexts,
// via component-wise multiplication mod n^(s+1).
func (e *EncryptedNumber) Add(other *EncryptedNumber) (*EncryptedNumber, error) {
	if e.pub != other.pub {
		return nil, errs.ErrKeyMismatch
	}
	sum := new(big.Int).Mul(e.value, other.value)
	sum.Mod(sum, e.pub.nPowSPlus1)
	return &EncryptedNumber{pub: e.pub, value: sum}, nil
}

// Neg returns the ciphertext of the additive inverse of the plaintext.
func (e *EncryptedNumber) Neg() *EncryptedNumber {
	inv := new(big.Int).ModInverse(e.value, e.pub.nPowSPlus1)
	return &EncryptedNumber{pub: e.pub, value: inv}
}

// Sub returns the ciphertext of the difference of the two underlying plaintexts.
func (e *EncryptedNumber) Sub(other *EncryptedNumber) (*EncryptedNumber, error) {
	if e.pub != other.pub {
		return nil, errs.ErrKeyMismatch
	}
	return e.Add(other.Neg())
}

// Mul returns the ciphertext of k times the underlying plaintext, by raising
// the ciphertext to the k-th power mod n^(s+1). k may be negative.
func (e *EncryptedNumber) Mul(k *big.Int) (*EncryptedNumber, error) {
	v, err := utils.PowMod(e.value, k, e.pub.nPowSPlus1)
	if err != nil {
		return nil, err
	}
	return &EncryptedNumber{pub: e.pub, value: v}, nil
}

// Div returns the ciphertext of the underlying plaintext divided by k, which
// requires gcd(k, n) = 1 so that k is invertible in the plaintext ring.
func (e *EncryptedNumber) Div(k *big.Int) (*EncryptedNumber, error) {
	kInv, err := utils.InvMod(k, e.pub.nPowSPlus1)
	if err != nil {
		return nil, err
	}
	return e.Mul(kInv)
}
