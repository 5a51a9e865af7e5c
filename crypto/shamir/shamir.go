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

// Package shamir implements (t,n) Shamir secret sharing over Z_modulus: a
// secret is hidden as the constant term of a random degree-(t-1) polynomial,
// shares are points on that polynomial, and any t of them reconstruct the
// secret by Lagrange interpolation at x=0.
package shamir

import (
	"errors"
	"math/big"

	"github.com/cryptovoting/damgard-jurik/crypto/polynomial"
	"github.com/cryptovoting/damgard-jurik/crypto/utils"
)

var (
	// ErrInvalidSecret is returned if the secret is not in [0, modulus).
	ErrInvalidSecret = errors.New("secret out of range")
	// ErrDuplicateIndex is returned if two shares carry the same index.
	ErrDuplicateIndex = errors.New("duplicate share index")
	// ErrNotEnoughShares is returned if reconstruction is given fewer than t shares.
	ErrNotEnoughShares = errors.New("not enough shares")
)

// Share is one point (Index, Value) on the sharing polynomial. Index must be
// non-zero and unique across the set of shares issued for a secret.
type Share struct {
	Index *big.Int
	Value *big.Int
}

// ShareSecret splits secret into n shares such that any t of them reconstruct
// it, and fewer than t reveal nothing. Shares are indexed 1..n.
func ShareSecret(secret, modulus *big.Int, threshold, n uint32) ([]*Share, error) {
	if err := utils.EnsureThreshold(threshold, n); err != nil {
		return nil, err
	}
	if secret.Sign() < 0 || secret.Cmp(modulus) >= 0 {
		return nil, ErrInvalidSecret
	}

	poly, err := polynomial.RandomPolynomial(modulus, threshold-1)
	if err != nil {
		return nil, err
	}
	poly.SetConstant(secret)

	shares := make([]*Share, n)
	for i := uint32(0); i < n; i++ {
		index := new(big.Int).SetUint64(uint64(i + 1))
		shares[i] = &Share{
			Index: index,
			Value: poly.Evaluate(index),
		}
	}
	return shares, nil
}

// Reconstruct recovers the secret from a set of shares via Lagrange
// interpolation at x=0, requiring all indices to be distinct. Passing more
// than the original threshold worth of shares is fine, since any subset of a
// valid sharing lies on the same polynomial.
func Reconstruct(shares []*Share, modulus *big.Int) (*big.Int, error) {
	if len(shares) == 0 {
		return nil, ErrNotEnoughShares
	}
	if err := ensureDistinctIndices(shares); err != nil {
		return nil, err
	}

	secret := big.NewInt(0)
	for i, si := range shares {
		coeff, err := lagrangeCoefficientAtZero(shares, i, modulus)
		if err != nil {
			return nil, err
		}
		term := new(big.Int).Mul(si.Value, coeff)
		secret.Add(secret, term)
		secret.Mod(secret, modulus)
	}
	return secret, nil
}

// lagrangeCoefficientAtZero computes λ_i = ∏_{j≠i} (0 - x_j) / (x_i - x_j) (mod modulus).
func lagrangeCoefficientAtZero(shares []*Share, i int, modulus *big.Int) (*big.Int, error) {
	xi := shares[i].Index
	num := big.NewInt(1)
	den := big.NewInt(1)
	for j, sj := range shares {
		if j == i {
			continue
		}
		num.Mul(num, new(big.Int).Neg(sj.Index))
		num.Mod(num, modulus)

		diff := new(big.Int).Sub(xi, sj.Index)
		den.Mul(den, diff)
		den.Mod(den, modulus)
	}
	denInv, err := utils.InvMod(den, modulus)
	if err != nil {
		return nil, err
	}
	coeff := new(big.Int).Mul(num, denInv)
	return coeff.Mod(coeff, modulus), nil
}

func ensureDistinctIndices(shares []*Share) error {
	seen := make(map[string]struct{}, len(shares))
	for _, s := range shares {
		key := s.Index.String()
		if _, ok := seen[key]; ok {
			return ErrDuplicateIndex
		}
		seen[key] = struct{}{}
	}
	return nil
}
