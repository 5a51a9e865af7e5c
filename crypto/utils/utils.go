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

// Package utils collects the arbitrary-precision arithmetic primitives shared
// by the polynomial, shamir and dj packages: modular inverse, CRT, gcd/lcm
// and CSPRNG-backed random sampling.
package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	// minPermittedThreshold is the smallest threshold accepted by any (t,n) scheme in this module.
	minPermittedThreshold = 1
	// maxGenPrimeInt bounds the retries for rejection-sampling a coprime integer.
	maxGenPrimeInt = 100
)

var (
	// ErrLessOrEqualBig2 is returned if the field/modulus order is less than or equal to 2.
	ErrLessOrEqualBig2 = errors.New("less 2")
	// ErrExceedMaxRetry is returned if we retried over times.
	ErrExceedMaxRetry = errors.New("exceed max retries")
	// ErrInvalidInput is returned if the input is invalid.
	ErrInvalidInput = errors.New("invalid input")
	// ErrLargeThreshold is returned if the threshold is too large.
	ErrLargeThreshold = errors.New("large threshold")
	// ErrNotInRange is returned if the value is not in the given range.
	ErrNotInRange = errors.New("not in range")
	// ErrLargerFloor is returned if the floor is larger than ceil.
	ErrLargerFloor = errors.New("larger floor")
	// ErrEmptySlice is returned if the length of slice is zero.
	ErrEmptySlice = errors.New("empty slice")
	// ErrSmallThreshold is returned if the threshold < 1.
	ErrSmallThreshold = errors.New("threshold < 1")
	// ErrNotCoprime is returned if inv_mod is asked to invert a non-unit.
	ErrNotCoprime = errors.New("not coprime")
	// ErrMismatchedLength is returned if paired slices disagree in length.
	ErrMismatchedLength = errors.New("mismatched length")

	big0 = big.NewInt(0)
	big1 = big.NewInt(1)
	big2 = big.NewInt(2)
)

// EnsureFieldOrder ensures the field/modulus order is more than 2.
func EnsureFieldOrder(fieldOrder *big.Int) error {
	if fieldOrder.Cmp(big2) <= 0 {
		return ErrLessOrEqualBig2
	}
	return nil
}

// EnsureThreshold ensures 1 <= threshold <= n.
func EnsureThreshold(threshold, n uint32) error {
	if threshold > n {
		return ErrLargeThreshold
	}
	if threshold < minPermittedThreshold {
		return ErrSmallThreshold
	}
	return nil
}

// RandomInt generates a random number in [0, n) using the system CSPRNG.
func RandomInt(n *big.Int) (*big.Int, error) {
	return rand.Int(rand.Reader, n)
}

// RandomPositiveInt generates a random number in [1, n).
func RandomPositiveInt(n *big.Int) (*big.Int, error) {
	x, err := RandomInt(new(big.Int).Sub(n, big1))
	if err != nil {
		return nil, err
	}
	return new(big.Int).Add(x, big1), nil
}

// RandomCoprimeInt generates a random integer in [2, n) relatively prime to n.
func RandomCoprimeInt(n *big.Int) (*big.Int, error) {
	if n.Cmp(big2) <= 0 {
		return nil, ErrLessOrEqualBig2
	}
	for i := 0; i < maxGenPrimeInt; i++ {
		r, err := RandomInt(n)
		if err != nil {
			return nil, err
		}
		if r.Cmp(big1) <= 0 {
			continue
		}
		if IsRelativePrime(r, n) {
			return r, nil
		}
	}
	return nil, ErrExceedMaxRetry
}

// IsRelativePrime returns whether a and b are relatively prime.
func IsRelativePrime(a, b *big.Int) bool {
	return Gcd(a, b).Cmp(big1) == 0
}

// Gcd computes the greatest common divisor via the Euclidean algorithm.
func Gcd(a, b *big.Int) *big.Int {
	return new(big.Int).GCD(nil, nil, a, b)
}

// ExtGcd runs the extended Euclidean algorithm: returns (g, x, y) with a*x+b*y=g=gcd(a,b).
func ExtGcd(a, b *big.Int) (g, x, y *big.Int) {
	g, x, y = new(big.Int), new(big.Int), new(big.Int)
	g.GCD(x, y, a, b)
	return
}

// InvMod computes the modular inverse of a mod m, failing if gcd(a,m) != 1.
func InvMod(a, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, ErrInvalidInput
	}
	inv := new(big.Int).ModInverse(a, m)
	if inv == nil {
		return nil, ErrNotCoprime
	}
	return inv, nil
}

// Lcm computes the least common multiple of a and b.
func Lcm(a, b *big.Int) (*big.Int, error) {
	if a.Sign() <= 0 || b.Sign() <= 0 {
		return nil, ErrInvalidInput
	}
	t := Gcd(a, b)
	if t.Sign() <= 0 {
		return nil, ErrInvalidInput
	}
	t = new(big.Int).Div(a, t)
	return t.Mul(t, b), nil
}

// LcmAll reduces Lcm over a non-empty slice of positive integers.
func LcmAll(vs []*big.Int) (*big.Int, error) {
	if len(vs) == 0 {
		return nil, ErrEmptySlice
	}
	result := new(big.Int).Set(vs[0])
	for _, v := range vs[1:] {
		var err error
		result, err = Lcm(result, v)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// PowMod computes a^b mod m. A negative b is handled via the modular inverse of a.
func PowMod(a, b, m *big.Int) (*big.Int, error) {
	if b.Sign() >= 0 {
		return new(big.Int).Exp(a, b, m), nil
	}
	inv, err := InvMod(a, m)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Exp(inv, new(big.Int).Neg(b), m), nil
}

// CRT combines a system of congruences x ≡ a_i (mod n_i) with pairwise coprime
// moduli into the unique solution x in [0, prod n_i), folding in one
// congruence at a time and solving each step directly with a modular inverse.
func CRT(a, n []*big.Int) (*big.Int, error) {
	if len(a) == 0 || len(a) != len(n) {
		return nil, ErrMismatchedLength
	}
	x := new(big.Int).Mod(a[0], n[0])
	modulus := new(big.Int).Set(n[0])
	for i := 1; i < len(a); i++ {
		ni := n[i]
		if !IsRelativePrime(modulus, ni) {
			return nil, ErrInvalidInput
		}
		// Solve x + modulus*k ≡ a[i] (mod ni) for k.
		diff := new(big.Int).Sub(a[i], x)
		diff.Mod(diff, ni)
		modInv, err := InvMod(new(big.Int).Mod(modulus, ni), ni)
		if err != nil {
			return nil, err
		}
		k := new(big.Int).Mul(diff, modInv)
		k.Mod(k, ni)
		x = new(big.Int).Add(x, new(big.Int).Mul(modulus, k))
		modulus = new(big.Int).Mul(modulus, ni)
		x.Mod(x, modulus)
	}
	return x, nil
}

// Factorial returns n! as a big.Int, used to build the DJ share-combination constant Δ.
func Factorial(n uint32) *big.Int {
	result := big.NewInt(1)
	for i := uint32(2); i <= n; i++ {
		result.Mul(result, new(big.Int).SetUint64(uint64(i)))
	}
	return result
}

// InRange checks if checkValue is in [floor, ceil).
func InRange(checkValue, floor, ceil *big.Int) error {
	if ceil.Cmp(floor) < 1 {
		return ErrLargerFloor
	}
	if checkValue.Cmp(floor) < 0 {
		return ErrNotInRange
	}
	if checkValue.Cmp(ceil) >= 0 {
		return ErrNotInRange
	}
	return nil
}

// GenRandomBytes generates a random byte slice of the given length.
func GenRandomBytes(size int) ([]byte, error) {
	if size < 1 {
		return nil, ErrEmptySlice
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
