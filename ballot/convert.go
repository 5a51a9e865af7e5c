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

package ballot

import (
	"math/big"

	"github.com/cryptovoting/damgard-jurik/crypto/dj"
)

// ToFirstPreference converts a candidate-order ballot into a first-preference
// ballot: candidates become visible again, but only the candidate this ballot
// currently favors carries nonzero (encrypted) weight. The two
// encrypt-shuffle-decrypt passes ensure neither the trustees performing the
// threshold decryption nor an observer of the shuffle can link a candidate to
// its original preference rank or back to the ballot's row ordering before
// this call.
func (b *CandidateOrderBallot) ToFirstPreference(ring dj.Decrypter, pub *dj.PublicKey) (*FirstPreferenceBallot, error) {
	n := len(b.Candidates)
	if err := validateEqualLen(n, len(b.Preferences)); err != nil {
		return nil, err
	}

	// Step 1: encrypt the candidate row.
	encCandidates := make([]*dj.EncryptedNumber, n)
	for i, c := range b.Candidates {
		enc, err := pub.Encrypt(c)
		if err != nil {
			return nil, err
		}
		encCandidates[i] = enc
	}
	preferences := append([]*dj.EncryptedNumber(nil), b.Preferences...)

	// Step 2: shuffle the columns.
	perm, err := randomPermutation(n)
	if err != nil {
		return nil, err
	}
	encCandidates = applyPermutationEnc(perm, encCandidates)
	preferences = applyPermutationEnc(perm, preferences)

	// Step 3: threshold-decrypt the preference row.
	prefPlain, err := ring.DecryptBatch(preferences)
	if err != nil {
		return nil, err
	}

	// Step 4: sort columns by preference.
	sortByKey([][]*big.Int{prefPlain}, [][]*dj.EncryptedNumber{encCandidates})

	// Step 5: add a weights row; only the first column (now preference rank 1,
	// the top-ranked candidate) carries this ballot's original weight.
	weights := make([]*dj.EncryptedNumber, n)
	for i := range weights {
		enc, err := pub.Encrypt(big.NewInt(0))
		if err != nil {
			return nil, err
		}
		weights[i] = enc
	}
	if n > 0 {
		weights[0] = b.Weight
	}

	// Step 6: encrypt the preference row.
	encPreferences := make([]*dj.EncryptedNumber, n)
	for i, p := range prefPlain {
		enc, err := pub.Encrypt(p)
		if err != nil {
			return nil, err
		}
		encPreferences[i] = enc
	}

	// Step 7: shuffle the columns again.
	perm, err = randomPermutation(n)
	if err != nil {
		return nil, err
	}
	encCandidates = applyPermutationEnc(perm, encCandidates)
	encPreferences = applyPermutationEnc(perm, encPreferences)
	weights = applyPermutationEnc(perm, weights)

	// Step 8: threshold-decrypt the candidate row.
	candPlain, err := ring.DecryptBatch(encCandidates)
	if err != nil {
		return nil, err
	}

	// Step 9: sort columns by candidate.
	sortByKey([][]*big.Int{candPlain}, [][]*dj.EncryptedNumber{encPreferences, weights})

	return &FirstPreferenceBallot{
		Candidates:  candPlain,
		Preferences: encPreferences,
		Weights:     weights,
	}, nil
}

// ToCandidateElimination converts a candidate-order ballot into a
// candidate-elimination ballot, tagging each column with an encrypted 0/1
// eliminated flag (eliminated[i]=1 iff b.Candidates[i] is in the eliminated
// set). Candidates become encrypted; preferences become visible only long
// enough to re-sort the table, then are re-encrypted.
func (b *CandidateOrderBallot) ToCandidateElimination(eliminated []*big.Int, ring dj.Decrypter, pub *dj.PublicKey) (*CandidateEliminationBallot, error) {
	n := len(b.Candidates)
	if err := validateEqualLen(n, len(b.Preferences), len(eliminated)); err != nil {
		return nil, err
	}

	// Step 1: encrypt the elimination-tag row.
	encEliminated := make([]*dj.EncryptedNumber, n)
	for i, e := range eliminated {
		enc, err := pub.Encrypt(e)
		if err != nil {
			return nil, err
		}
		encEliminated[i] = enc
	}

	// Step 2: encrypt the candidate row.
	encCandidates := make([]*dj.EncryptedNumber, n)
	for i, c := range b.Candidates {
		enc, err := pub.Encrypt(c)
		if err != nil {
			return nil, err
		}
		encCandidates[i] = enc
	}
	preferences := append([]*dj.EncryptedNumber(nil), b.Preferences...)

	// Step 3: shuffle the columns.
	perm, err := randomPermutation(n)
	if err != nil {
		return nil, err
	}
	encCandidates = applyPermutationEnc(perm, encCandidates)
	preferences = applyPermutationEnc(perm, preferences)
	encEliminated = applyPermutationEnc(perm, encEliminated)

	// Step 4: threshold-decrypt the preference row.
	prefPlain, err := ring.DecryptBatch(preferences)
	if err != nil {
		return nil, err
	}

	// Step 5: sort the columns by preference.
	sortByKey([][]*big.Int{prefPlain}, [][]*dj.EncryptedNumber{encCandidates, encEliminated})

	// Step 6: re-encrypt the preference row.
	encPreferences := make([]*dj.EncryptedNumber, n)
	for i, p := range prefPlain {
		enc, err := pub.Encrypt(p)
		if err != nil {
			return nil, err
		}
		encPreferences[i] = enc
	}

	return &CandidateEliminationBallot{
		Candidates:  encCandidates,
		Preferences: encPreferences,
		Eliminated:  encEliminated,
		Weight:      b.Weight,
	}, nil
}

// ToCandidateOrder converts a candidate-elimination ballot back into a
// candidate-order ballot once the caller has finished re-numbering
// preferences around the eliminated set.
func (b *CandidateEliminationBallot) ToCandidateOrder(ring dj.Decrypter) (*CandidateOrderBallot, error) {
	n := len(b.Candidates)
	if err := validateEqualLen(n, len(b.Preferences), len(b.Eliminated)); err != nil {
		return nil, err
	}

	candidates := append([]*dj.EncryptedNumber(nil), b.Candidates...)
	preferences := append([]*dj.EncryptedNumber(nil), b.Preferences...)
	eliminated := append([]*dj.EncryptedNumber(nil), b.Eliminated...)

	// Step 1: shuffle the columns.
	perm, err := randomPermutation(n)
	if err != nil {
		return nil, err
	}
	candidates = applyPermutationEnc(perm, candidates)
	preferences = applyPermutationEnc(perm, preferences)
	eliminated = applyPermutationEnc(perm, eliminated)

	// Step 2: threshold-decrypt the candidate row.
	candPlain, err := ring.DecryptBatch(candidates)
	if err != nil {
		return nil, err
	}

	// Step 3: sort the columns by candidate.
	sortByKey([][]*big.Int{candPlain}, [][]*dj.EncryptedNumber{preferences, eliminated})

	return &CandidateOrderBallot{
		Candidates:  candPlain,
		Preferences: preferences,
		Weight:      b.Weight,
	}, nil
}
