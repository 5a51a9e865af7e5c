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

// Package polynomial implements dense single-variable polynomials over Z_m,
// the building block Shamir secret sharing uses to hide a secret behind a
// random degree-(t-1) curve.
package polynomial

import (
	"errors"
	"math/big"

	"github.com/cryptovoting/damgard-jurik/crypto/utils"
)

// ErrEmptyCoefficients is returned if the coefficients slice is empty.
var ErrEmptyCoefficients = errors.New("empty coefficient")

// Polynomial represents a polynomial of arbitrary degree with coefficients
// reduced modulo a fixed modulus.
type Polynomial struct {
	modulus      *big.Int
	coefficients []*big.Int
}

// NewPolynomial builds a polynomial from coefficients[0] + coefficients[1]*x + ...,
// reducing every coefficient modulo modulus.
func NewPolynomial(modulus *big.Int, coefficients []*big.Int) (*Polynomial, error) {
	if err := utils.EnsureFieldOrder(modulus); err != nil {
		return nil, err
	}
	if len(coefficients) == 0 {
		return nil, ErrEmptyCoefficients
	}
	mc := make([]*big.Int, len(coefficients))
	for i, c := range coefficients {
		mc[i] = new(big.Int).Mod(c, modulus)
	}
	return &Polynomial{
		modulus:      modulus,
		coefficients: mc,
	}, nil
}

// RandomPolynomial draws a degree-`degree` polynomial with uniformly random
// coefficients, via the CSPRNG.
func RandomPolynomial(modulus *big.Int, degree uint32) (*Polynomial, error) {
	coefficients := make([]*big.Int, degree+1)
	for i := range coefficients {
		c, err := utils.RandomInt(modulus)
		if err != nil {
			return nil, err
		}
		coefficients[i] = c
	}
	return NewPolynomial(modulus, coefficients)
}

// Evaluate computes f(x) mod modulus using Horner's method.
func (p *Polynomial) Evaluate(x *big.Int) *big.Int {
	if x.Sign() == 0 {
		return new(big.Int).Set(p.coefficients[0])
	}
	result := new(big.Int).Set(p.coefficients[len(p.coefficients)-1])
	for i := len(p.coefficients) - 2; i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, p.coefficients[i])
		result.Mod(result, p.modulus)
	}
	return result
}

// Get returns the i-th coefficient, or nil if i is out of range.
func (p *Polynomial) Get(i int) *big.Int {
	if i < 0 || i >= len(p.coefficients) {
		return nil
	}
	return new(big.Int).Set(p.coefficients[i])
}

// Len returns the number of coefficients (degree + 1).
func (p *Polynomial) Len() int {
	return len(p.coefficients)
}

// Degree returns the degree of the polynomial.
func (p *Polynomial) Degree() uint32 {
	return uint32(p.Len() - 1)
}

// SetConstant overwrites the constant term, reduced modulo the polynomial's modulus.
func (p *Polynomial) SetConstant(value *big.Int) {
	p.coefficients[0] = new(big.Int).Mod(value, p.modulus)
}

// Modulus returns the modulus coefficients are reduced under.
func (p *Polynomial) Modulus() *big.Int {
	return new(big.Int).Set(p.modulus)
}
