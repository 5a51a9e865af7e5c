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
package utils

import (
	"math/big"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

func TestUtils(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Utils Suite")
}

var _ = Describe("Utils", func() {
	Context("Gcd/Lcm", func() {
		It("computes gcd", func() {
			Expect(Gcd(big.NewInt(12), big.NewInt(18))).Should(Equal(big.NewInt(6)))
		})

		It("computes lcm", func() {
			l, err := Lcm(big.NewInt(4), big.NewInt(6))
			Expect(err).Should(BeNil())
			Expect(l).Should(Equal(big.NewInt(12)))
		})

		It("rejects non-positive operands", func() {
			_, err := Lcm(big.NewInt(0), big.NewInt(6))
			Expect(err).Should(Equal(ErrInvalidInput))
		})

		DescribeTable("LcmAll", func(vs []*big.Int, expected *big.Int) {
			got, err := LcmAll(vs)
			Expect(err).Should(BeNil())
			Expect(got).Should(Equal(expected))
		},
			Entry("single", []*big.Int{big.NewInt(7)}, big.NewInt(7)),
			Entry("three", []*big.Int{big.NewInt(4), big.NewInt(6), big.NewInt(10)}, big.NewInt(60)),
		)
	})

	Context("InvMod", func() {
		It("inverts a coprime value", func() {
			inv, err := InvMod(big.NewInt(3), big.NewInt(11))
			Expect(err).Should(BeNil())
			Expect(new(big.Int).Mod(new(big.Int).Mul(inv, big.NewInt(3)), big.NewInt(11))).Should(Equal(big.NewInt(1)))
		})

		It("fails on a non-coprime pair", func() {
			_, err := InvMod(big.NewInt(6), big.NewInt(9))
			Expect(err).Should(Equal(ErrNotCoprime))
		})
	})

	Context("PowMod", func() {
		It("handles a positive exponent", func() {
			got, err := PowMod(big.NewInt(2), big.NewInt(10), big.NewInt(1000))
			Expect(err).Should(BeNil())
			Expect(got).Should(Equal(big.NewInt(24)))
		})

		It("handles a negative exponent via modular inverse", func() {
			got, err := PowMod(big.NewInt(3), big.NewInt(-1), big.NewInt(11))
			Expect(err).Should(BeNil())
			Expect(got).Should(Equal(big.NewInt(4)))
		})
	})

	Context("CRT", func() {
		It("solves a textbook system", func() {
			// x ≡ 2 (mod 3), x ≡ 3 (mod 5), x ≡ 2 (mod 7) -> x = 23
			x, err := CRT(
				[]*big.Int{big.NewInt(2), big.NewInt(3), big.NewInt(2)},
				[]*big.Int{big.NewInt(3), big.NewInt(5), big.NewInt(7)},
			)
			Expect(err).Should(BeNil())
			Expect(x).Should(Equal(big.NewInt(23)))
		})

		It("fails on mismatched lengths", func() {
			_, err := CRT([]*big.Int{big.NewInt(1)}, []*big.Int{big.NewInt(2), big.NewInt(3)})
			Expect(err).Should(Equal(ErrMismatchedLength))
		})

		It("fails on non-coprime moduli", func() {
			_, err := CRT(
				[]*big.Int{big.NewInt(1), big.NewInt(1)},
				[]*big.Int{big.NewInt(4), big.NewInt(6)},
			)
			Expect(err).Should(Equal(ErrInvalidInput))
		})
	})

	Context("Factorial", func() {
		It("computes small factorials", func() {
			Expect(Factorial(0)).Should(Equal(big.NewInt(1)))
			Expect(Factorial(5)).Should(Equal(big.NewInt(120)))
		})
	})

	Context("InRange", func() {
		It("accepts a value within bounds", func() {
			Expect(InRange(big.NewInt(5), big.NewInt(0), big.NewInt(10))).Should(BeNil())
		})

		It("rejects a value at the ceiling", func() {
			Expect(InRange(big.NewInt(10), big.NewInt(0), big.NewInt(10))).Should(Equal(ErrNotInRange))
		})
	})

	Context("EnsureThreshold", func() {
		It("accepts 1<=t<=n", func() {
			Expect(EnsureThreshold(2, 3)).Should(BeNil())
		})

		It("rejects t>n", func() {
			Expect(EnsureThreshold(4, 3)).Should(Equal(ErrLargeThreshold))
		})

		It("rejects t<1", func() {
			Expect(EnsureThreshold(0, 3)).Should(Equal(ErrSmallThreshold))
		})
	})

	Context("RandomCoprimeInt", func() {
		It("returns a value coprime to n", func() {
			n := big.NewInt(101)
			r, err := RandomCoprimeInt(n)
			Expect(err).Should(BeNil())
			Expect(IsRelativePrime(r, n)).Should(BeTrue())
		})
	})
})
