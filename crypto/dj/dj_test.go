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
package dj

import (
	"math/big"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/cryptovoting/damgard-jurik/errs"
)

func TestDJ(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DJ Suite")
}

const testBits = 64

var _ = Describe("Paillier case (s=1)", func() {
	var (
		pub    *PublicKey
		shares []*PrivateKeyShare
		ring   *PrivateKeyRing
	)

	BeforeEach(func() {
		var err error
		pub, shares, err = Keygen(testBits, 1, 3, 5)
		Expect(err).Should(BeNil())
		ring, err = NewPrivateKeyRing(pub, shares[:3])
		Expect(err).Should(BeNil())
	})

	It("round-trips encrypt/decrypt", func() {
		m := big.NewInt(42)
		c, err := pub.Encrypt(m)
		Expect(err).Should(BeNil())

		got, err := ring.Decrypt(c)
		Expect(err).Should(BeNil())
		Expect(got).Should(Equal(m))
	})

	It("is additively homomorphic", func() {
		a, b := big.NewInt(17), big.NewInt(25)
		ca, err := pub.Encrypt(a)
		Expect(err).Should(BeNil())
		cb, err := pub.Encrypt(b)
		Expect(err).Should(BeNil())

		sum, err := ca.Add(cb)
		Expect(err).Should(BeNil())
		got, err := ring.Decrypt(sum)
		Expect(err).Should(BeNil())
		Expect(got).Should(Equal(new(big.Int).Add(a, b)))
	})

	It("supports scalar multiplication and exact division", func() {
		m := big.NewInt(6)
		c, err := pub.Encrypt(m)
		Expect(err).Should(BeNil())

		scaled, err := c.Mul(big.NewInt(7))
		Expect(err).Should(BeNil())
		got, err := ring.Decrypt(scaled)
		Expect(err).Should(BeNil())
		Expect(got).Should(Equal(big.NewInt(42)))

		divided, err := scaled.Div(big.NewInt(7))
		Expect(err).Should(BeNil())
		got, err = ring.Decrypt(divided)
		Expect(err).Should(BeNil())
		Expect(got).Should(Equal(m))
	})

	It("supports subtraction and negation", func() {
		a, b := big.NewInt(100), big.NewInt(30)
		ca, err := pub.Encrypt(a)
		Expect(err).Should(BeNil())
		cb, err := pub.Encrypt(b)
		Expect(err).Should(BeNil())

		diff, err := ca.Sub(cb)
		Expect(err).Should(BeNil())
		got, err := ring.Decrypt(diff)
		Expect(err).Should(BeNil())
		Expect(got).Should(Equal(new(big.Int).Sub(a, b)))
	})

	It("rejects operations across mismatched public keys", func() {
		otherPub, _, err := Keygen(testBits, 1, 3, 5)
		Expect(err).Should(BeNil())

		c, err := pub.Encrypt(big.NewInt(1))
		Expect(err).Should(BeNil())
		otherC, err := otherPub.Encrypt(big.NewInt(1))
		Expect(err).Should(BeNil())

		_, err = c.Add(otherC)
		Expect(err).Should(Equal(errs.ErrKeyMismatch))
	})

	It("rejects plaintexts outside [0, n^s)", func() {
		_, err := pub.Encrypt(pub.NPowS())
		Expect(err).Should(Equal(errs.ErrInvalidPlaintext))
	})

	DescribeTable("any threshold-size subset of shares decrypts the same plaintext",
		func(pick []int) {
			subset := make([]*PrivateKeyShare, len(pick))
			for i, idx := range pick {
				subset[i] = shares[idx]
			}
			r, err := NewPrivateKeyRing(pub, subset)
			Expect(err).Should(BeNil())

			m := big.NewInt(123)
			c, err := pub.Encrypt(m)
			Expect(err).Should(BeNil())
			got, err := r.Decrypt(c)
			Expect(err).Should(BeNil())
			Expect(got).Should(Equal(m))
		},
		tableEntriesFromCombinations(5, 3)...,
	)

	It("rejects rings built from too few unique shares", func() {
		_, err := NewPrivateKeyRing(pub, shares[:2])
		Expect(err).Should(Equal(errs.ErrInsufficientShares))
	})

	It("collapses duplicate-index shares when counting toward the threshold", func() {
		dup := []*PrivateKeyShare{shares[0], shares[0], shares[1], shares[2]}
		_, err := NewPrivateKeyRing(pub, dup)
		Expect(err).Should(BeNil())
	})
})

var _ = Describe("Damgard-Jurik case (s>1)", func() {
	It("round-trips a plaintext that would overflow s=1's message space", func() {
		pub, shares, err := Keygen(testBits, 2, 2, 3)
		Expect(err).Should(BeNil())
		ring, err := NewPrivateKeyRing(pub, shares[:2])
		Expect(err).Should(BeNil())

		big3 := new(big.Int).Sub(pub.NPowS(), big.NewInt(1))
		c, err := pub.Encrypt(big3)
		Expect(err).Should(BeNil())
		got, err := ring.Decrypt(c)
		Expect(err).Should(BeNil())
		Expect(got).Should(Equal(big3))
	})
})

// tableEntriesFromCombinations enumerates every size-k subset of {0,...,n-1}
// as a ginkgo table Entry, mirroring how the teacher's birkhoffinterpolation
// package walks coefficient subsets via gonum's combin.Combinations.
func tableEntriesFromCombinations(n, k int) []TableEntry {
	combos := combin.Combinations(n, k)
	entries := make([]TableEntry, len(combos))
	for i, c := range combos {
		entries[i] = Entry("subset", c)
	}
	return entries
}
