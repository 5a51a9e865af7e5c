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
package stv

import (
	"math/big"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/cryptovoting/damgard-jurik/ballot"
	"github.com/cryptovoting/damgard-jurik/crypto/dj"
)

func TestSTV(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "STV Suite")
}

func mustKeyring() (*dj.PublicKey, *dj.PrivateKeyRing) {
	pub, shares, err := dj.Keygen(64, 1, 2, 3)
	Expect(err).Should(BeNil())
	ring, err := dj.NewPrivateKeyRing(pub, shares[:2])
	Expect(err).Should(BeNil())
	return pub, ring
}

func makeBallot(pub *dj.PublicKey, candidates []int64, preferences []int64, weight int64) *ballot.CandidateOrderBallot {
	w, err := pub.Encrypt(big.NewInt(weight))
	Expect(err).Should(BeNil())
	prefs := make([]*dj.EncryptedNumber, len(preferences))
	for i, p := range preferences {
		enc, err := pub.Encrypt(big.NewInt(p))
		Expect(err).Should(BeNil())
		prefs[i] = enc
	}
	cands := make([]*big.Int, len(candidates))
	for i, c := range candidates {
		cands[i] = big.NewInt(c)
	}
	return &ballot.CandidateOrderBallot{Candidates: cands, Preferences: prefs, Weight: w}
}

var _ = Describe("Tally", func() {
	It("elects the single majority-first-preference winner and exhausts the rest", func() {
		pub, ring := mustKeyring()
		stop := big.NewInt(0)

		// Candidates: 0 (stop/padding), 1, 2, 3. 3 ballots rank 2 first, 2 rank 1 first.
		ballots := []*ballot.CandidateOrderBallot{
			makeBallot(pub, []int64{0, 1, 2, 3}, []int64{4, 2, 1, 3}, 1),
			makeBallot(pub, []int64{0, 1, 2, 3}, []int64{4, 2, 1, 3}, 1),
			makeBallot(pub, []int64{0, 1, 2, 3}, []int64{4, 2, 1, 3}, 1),
			makeBallot(pub, []int64{0, 1, 2, 3}, []int64{4, 1, 2, 3}, 1),
			makeBallot(pub, []int64{0, 1, 2, 3}, []int64{4, 1, 2, 3}, 1),
		}

		winners, err := Tally(ballots, 1, stop, ring, pub)
		Expect(err).Should(BeNil())
		Expect(winners).Should(Equal([]*big.Int{big.NewInt(2)}))
	})

	It("breaks a first-round tally tie by eliminating the lower-index candidate", func() {
		pub, ring := mustKeyring()
		noStop := big.NewInt(-1) // no ballot ranks this id, so it never matches and offset stays 0

		ballots := []*ballot.CandidateOrderBallot{
			makeBallot(pub, []int64{1, 2}, []int64{1, 2}, 1),
			makeBallot(pub, []int64{1, 2}, []int64{2, 1}, 1),
		}

		winners, err := Tally(ballots, 1, noStop, ring, pub)
		Expect(err).Should(BeNil())
		Expect(winners).Should(Equal([]*big.Int{big.NewInt(2)}))
	})

	It("rejects an empty ballot set", func() {
		pub, ring := mustKeyring()
		_, err := Tally(nil, 1, big.NewInt(0), ring, pub)
		Expect(err).ShouldNot(BeNil())
	})
})
