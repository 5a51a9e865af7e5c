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

// Package ballot implements three ShuffleSum ballot representations
// (candidate-order, first-preference and candidate-elimination) and the
// re-encryption-mix transforms between them; no other representation is
// provided. A ballot's rows alternate
// between plaintext and ciphertext across a conversion so that no single
// party ever observes both a ballot's candidate identities and its
// preference ranking at once: each conversion encrypts the row it is about
// to make public, shuffles the columns under cover of encryption, then
// threshold-decrypts the row it needs to sort by.
package ballot

import (
	"math/big"

	"github.com/cryptovoting/damgard-jurik/crypto/dj"
	"github.com/cryptovoting/damgard-jurik/crypto/utils"
	"github.com/cryptovoting/damgard-jurik/errs"
)

// CandidateOrderBallot lists candidates in the clear, column-aligned with an
// encrypted preference rank for each. This is the representation ballots
// start in, and the one the tally engine accumulates weight against.
type CandidateOrderBallot struct {
	Candidates  []*big.Int
	Preferences []*dj.EncryptedNumber
	Weight      *dj.EncryptedNumber
}

// FirstPreferenceBallot lists candidates in the clear, with an encrypted
// per-candidate weight: weight[i] is nonzero only for the candidate this
// ballot currently ranks first among remaining candidates.
type FirstPreferenceBallot struct {
	Candidates  []*big.Int
	Preferences []*dj.EncryptedNumber
	Weights     []*dj.EncryptedNumber
}

// CandidateEliminationBallot holds every row encrypted, with its columns
// sorted by ascending preference rank, so preference order is known by
// column position while candidate identities and elimination flags stay
// hidden. It is used to re-number preferences after a set of candidates is
// removed from contention.
type CandidateEliminationBallot struct {
	Candidates  []*dj.EncryptedNumber
	Preferences []*dj.EncryptedNumber
	Eliminated  []*dj.EncryptedNumber
	Weight      *dj.EncryptedNumber
}

func validateEqualLen(lens ...int) error {
	for i := 1; i < len(lens); i++ {
		if lens[i] != lens[0] {
			return errs.ErrMalformedBallot
		}
	}
	return nil
}

// randomPermutation draws a uniformly random permutation of {0,...,n-1}
// using a Fisher-Yates shuffle driven by the system CSPRNG, the same
// algorithm the teacher's corpus uses for sampling without replacement.
func randomPermutation(n int) ([]int, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < n-1; i++ {
		r, err := utils.RandomInt(big.NewInt(int64(n - i)))
		if err != nil {
			return nil, err
		}
		j := i + int(r.Int64())
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm, nil
}

func applyPermutationBig(perm []int, row []*big.Int) []*big.Int {
	out := make([]*big.Int, len(row))
	for i, p := range perm {
		out[i] = row[p]
	}
	return out
}

func applyPermutationEnc(perm []int, row []*dj.EncryptedNumber) []*dj.EncryptedNumber {
	out := make([]*dj.EncryptedNumber, len(row))
	for i, p := range perm {
		out[i] = row[p]
	}
	return out
}

// sortByKey stably reorders bigRows[0] (the sort key) and every other given
// row by bigRows[0]'s ascending order. The key column must hold
// pairwise-distinct values within one ballot (true of both the candidate-id
// and preference-rank columns by construction), so a comparison on it alone
// determines the order without needing to compare the still-encrypted
// columns riding along.
func sortByKey(bigRows [][]*big.Int, encRows [][]*dj.EncryptedNumber) {
	keys := bigRows[0]
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	// insertion sort: ballots are small (candidate counts), and this keeps
	// the permutation stable without pulling in sort.Slice's interface overhead.
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && keys[idx[j-1]].Cmp(keys[idx[j]]) > 0; j-- {
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
	for _, row := range bigRows {
		permuteBigInPlace(row, idx)
	}
	for _, row := range encRows {
		permuteEncInPlace(row, idx)
	}
}

func permuteBigInPlace(row []*big.Int, idx []int) {
	out := make([]*big.Int, len(row))
	for i, p := range idx {
		out[i] = row[p]
	}
	copy(row, out)
}

func permuteEncInPlace(row []*dj.EncryptedNumber, idx []int) {
	out := make([]*dj.EncryptedNumber, len(row))
	for i, p := range idx {
		out[i] = row[p]
	}
	copy(row, out)
}
