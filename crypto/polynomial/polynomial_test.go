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
package polynomial

import (
	"math/big"
	"testing"

	"github.com/cryptovoting/damgard-jurik/crypto/utils"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestPolynomial(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Polynomial Suite")
}

var _ = Describe("Polynomial", func() {
	var (
		p            *Polynomial
		coefficients = []*big.Int{big.NewInt(1), big.NewInt(5), big.NewInt(2), big.NewInt(3)}
		bigNumber    = "115792089237316195423570985008687907852837564279074904382605163141518161494337"
		bigPrime, _  = new(big.Int).SetString(bigNumber, 10)
	)

	BeforeEach(func() {
		var err error
		p, err = NewPolynomial(bigPrime, coefficients)
		Expect(err).Should(BeNil())
	})

	Context("NewPolynomial", func() {
		It("rejects a tiny modulus", func() {
			_, err := NewPolynomial(big.NewInt(2), coefficients)
			Expect(err).Should(Equal(utils.ErrLessOrEqualBig2))
		})

		It("rejects empty coefficients", func() {
			_, err := NewPolynomial(bigPrime, []*big.Int{})
			Expect(err).Should(Equal(ErrEmptyCoefficients))
		})
	})

	Context("RandomPolynomial", func() {
		It("produces a polynomial of the requested degree", func() {
			rp, err := RandomPolynomial(bigPrime, 3)
			Expect(err).Should(BeNil())
			Expect(rp.Degree()).Should(BeNumerically("==", 3))
		})
	})

	Context("Evaluate", func() {
		It("matches direct evaluation at a small point", func() {
			// f(x) = 1 + 5x + 2x^2 + 3x^3, f(2) = 1+10+8+24 = 43
			Expect(p.Evaluate(big.NewInt(2))).Should(Equal(big.NewInt(43)))
		})

		It("returns the constant term at x=0", func() {
			Expect(p.Evaluate(big.NewInt(0))).Should(Equal(big.NewInt(1)))
		})
	})

	Context("Get/Len/Degree", func() {
		It("reports len = degree + 1", func() {
			Expect(p.Len()).Should(BeNumerically("==", 4))
			Expect(p.Degree()).Should(BeNumerically("==", 3))
		})

		It("returns nil out of range", func() {
			Expect(p.Get(4)).Should(BeNil())
		})
	})

	Context("SetConstant", func() {
		It("overwrites the constant term", func() {
			p.SetConstant(big.NewInt(6))
			Expect(p.Get(0)).Should(Equal(big.NewInt(6)))
		})
	})
})
