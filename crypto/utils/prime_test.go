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
	. "github.com/onsi/gomega"
)

func TestPrime(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Prime Suite")
}

var _ = Describe("GenSafePrime", func() {
	It("rejects too-small bit lengths", func() {
		_, err := GenSafePrime(8)
		Expect(err).Should(Equal(ErrSmallSafePrime))
	})

	It("produces a prime p with (p-1)/2 also prime", func() {
		sp, err := GenSafePrime(64)
		Expect(err).Should(BeNil())
		Expect(sp.P.ProbablyPrime(20)).Should(BeTrue())
		Expect(sp.Q.ProbablyPrime(20)).Should(BeTrue())

		pMinus1 := new(big.Int).Sub(sp.P, big1)
		half := new(big.Int).Rsh(pMinus1, 1)
		Expect(half).Should(Equal(sp.Q))
		Expect(sp.P.BitLen()).Should(Equal(64))
	})
})

var _ = Describe("GenSafePrimePair", func() {
	It("returns two distinct safe primes", func() {
		p, q, err := GenSafePrimePair(64)
		Expect(err).Should(BeNil())
		Expect(p.P.Cmp(q.P)).ShouldNot(Equal(0))
	})
})

var _ = Describe("FastMod3", func() {
	It("agrees with a direct mod 3", func() {
		for _, v := range []int64{0, 1, 2, 3, 4, 100, 12345} {
			n := big.NewInt(v)
			Expect(int64(FastMod3(n))).Should(Equal(v % 3))
		}
	})
})
