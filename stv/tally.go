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

// Package stv implements the ShuffleSum Single Transferable Vote tally: a
// Droop-quota STV count run entirely over Damgård-Jurik ciphertexts, with
// ballots re-encrypted and shuffled between every round so that no party
// ever sees the correspondence between a ballot's candidate identities and
// its preference order outside of the threshold-decryption steps the
// algorithm itself requires.
package stv

import (
	"context"
	"math/big"

	"github.com/cryptovoting/damgard-jurik/ballot"
	"github.com/cryptovoting/damgard-jurik/crypto/dj"
	"github.com/cryptovoting/damgard-jurik/crypto/utils"
	"github.com/cryptovoting/damgard-jurik/errs"
	"github.com/cryptovoting/damgard-jurik/logger"
	"github.com/cryptovoting/damgard-jurik/orchestrate"
)

// Option configures a Tally run.
type Option func(*config)

type config struct {
	concurrency int
}

// WithConcurrency bounds how many ballots are converted in parallel during
// the per-round re-encryption-mix steps. The default is 1 (sequential).
func WithConcurrency(n int) Option {
	return func(c *config) { c.concurrency = n }
}

func newConfig(opts ...Option) *config {
	c := &config{concurrency: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tally runs Droop-quota STV to fill seats from ballots, and returns the
// winning candidate ids in the order they were decided (elected candidates
// first, in the order their rounds occurred; any candidates left standing
// unopposed at the end, in the ballots' current candidate order, which is
// ascending id order once any round has run). stopCandidate is a sentinel
// id present on every ballot (see ballot.CandidateOrderBallot) used to pad
// ballots that rank fewer than the full candidate set; it is never elected
// and is excluded from the result.
func Tally(ballots []*ballot.CandidateOrderBallot, seats int, stopCandidate *big.Int, ring dj.Decrypter, pub *dj.PublicKey, opts ...Option) ([]*big.Int, error) {
	if len(ballots) == 0 {
		return nil, errs.ErrEmptyInput
	}
	cfg := newConfig(opts...)
	pool := orchestrate.New(cfg.concurrency)
	ctx := context.Background()

	cRem := ballots[0].Candidates
	quota := new(big.Int).Div(big.NewInt(int64(len(ballots))), big.NewInt(int64(seats+1)))
	quota.Add(quota, big.NewInt(1))

	offset := 0
	if containsCandidate(cRem, stopCandidate) {
		offset = 1
	}

	result := make([]*big.Int, 0, seats)
	round := 0
	for len(cRem)-offset > seats {
		logger.Logger().Debug("stv: starting round", "round", round, "remaining", len(cRem))

		fpbBallots, tallies, err := computeFirstPreferenceTallies(ctx, ballots, ring, pub, pool)
		if err != nil {
			return nil, err
		}

		elected := newBigSet()
		for i, c := range cRem {
			if c.Cmp(stopCandidate) == 0 {
				continue
			}
			if tallies[i].Cmp(quota) >= 0 {
				elected.add(c)
			}
		}

		if elected.len() > 0 {
			electedValues := elected.sortedValues()
			logger.Logger().Debug("stv: candidates elected", "count", len(electedValues))
			result = append(result, electedValues...)
			seats -= len(electedValues)

			var dLcm *big.Int
			ballots, dLcm, err = reweightVotes(fpbBallots, elected, quota, tallies, pub)
			if err != nil {
				return nil, err
			}
			quota.Mul(quota, dLcm)

			ballots, err = eliminateCandidateSet(ctx, elected, ballots, ring, pub, pool)
			if err != nil {
				return nil, err
			}
		} else {
			lowest := lowestTalliedIndex(cRem, tallies, stopCandidate)
			logger.Logger().Debug("stv: eliminating lowest-tallied candidate", "candidate", cRem[lowest])

			toEliminate := newBigSet()
			toEliminate.add(cRem[lowest])
			ballots, err = eliminateCandidateSet(ctx, toEliminate, ballots, ring, pub, pool)
			if err != nil {
				return nil, err
			}
		}

		if len(ballots) == 0 {
			return nil, errs.ErrEmptyInput
		}
		cRem = ballots[0].Candidates
		round++
	}

	for _, c := range cRem {
		if c.Cmp(stopCandidate) != 0 {
			result = append(result, c)
		}
	}
	return result, nil
}

func containsCandidate(candidates []*big.Int, c *big.Int) bool {
	for _, x := range candidates {
		if x.Cmp(c) == 0 {
			return true
		}
	}
	return false
}

// lowestTalliedIndex returns the index of the non-stop candidate with the
// smallest tally, breaking ties by ascending index (the first minimum found).
func lowestTalliedIndex(candidates []*big.Int, tallies []*big.Int, stopCandidate *big.Int) int {
	best := -1
	for j := range candidates {
		if candidates[j].Cmp(stopCandidate) == 0 {
			continue
		}
		if best == -1 || tallies[j].Cmp(tallies[best]) < 0 {
			best = j
		}
	}
	return best
}

// computeFirstPreferenceTallies converts every candidate-order ballot to a
// first-preference ballot and sums each candidate's encrypted weight column
// before a single threshold decryption of the totals.
func computeFirstPreferenceTallies(ctx context.Context, cobBallots []*ballot.CandidateOrderBallot, ring dj.Decrypter, pub *dj.PublicKey, pool *orchestrate.Pool) ([]*ballot.FirstPreferenceBallot, []*big.Int, error) {
	numCandidates := len(cobBallots[0].Candidates)
	fpbBallots := make([]*ballot.FirstPreferenceBallot, len(cobBallots))

	err := pool.Run(ctx, len(cobBallots), func(_ context.Context, i int) error {
		fpb, err := cobBallots[i].ToFirstPreference(ring, pub)
		if err != nil {
			return err
		}
		fpbBallots[i] = fpb
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	encryptedTallies := make([]*dj.EncryptedNumber, numCandidates)
	for i := 0; i < numCandidates; i++ {
		sum, err := pub.Encrypt(big.NewInt(0))
		if err != nil {
			return nil, nil, err
		}
		for _, fpb := range fpbBallots {
			sum, err = sum.Add(fpb.Weights[i])
			if err != nil {
				return nil, nil, err
			}
		}
		encryptedTallies[i] = sum
	}

	tallies, err := ring.DecryptBatch(encryptedTallies)
	if err != nil {
		return nil, nil, err
	}
	return fpbBallots, tallies, nil
}

// reweightVotes scales down the weight each ballot gives to a just-elected
// candidate to that candidate's surplus over quota, and carries the rest of
// each ballot's weight through scaled only by d_lcm. Division by each elected
// candidate's tally is made exact first by scaling every ballot's weights by
// the lcm of the elected candidates' tallies (d_lcm), following the
// surplus-transfer method of Droop-quota STV; the caller scales the quota by
// the returned d_lcm to match. Ballot reweighting runs sequentially, one
// ballot after another, without the worker pool.
func reweightVotes(fpbBallots []*ballot.FirstPreferenceBallot, elected *bigSet, quota *big.Int, tallies []*big.Int, pub *dj.PublicKey) ([]*ballot.CandidateOrderBallot, *big.Int, error) {
	if len(fpbBallots) == 0 {
		return nil, nil, errs.ErrEmptyInput
	}

	candidates := fpbBallots[0].Candidates
	var electedTallies []*big.Int
	for i, c := range candidates {
		if elected.has(c) {
			electedTallies = append(electedTallies, tallies[i])
		}
	}
	dLcm, err := utils.LcmAll(electedTallies)
	if err != nil {
		return nil, nil, err
	}

	zero, err := pub.Encrypt(big.NewInt(0))
	if err != nil {
		return nil, nil, err
	}

	cobBallots := make([]*ballot.CandidateOrderBallot, len(fpbBallots))
	for idx, fpb := range fpbBallots {
		cob, err := reweightAndConvertBallot(fpb, dLcm, elected, tallies, quota, zero)
		if err != nil {
			return nil, nil, err
		}
		cobBallots[idx] = cob
	}
	return cobBallots, dLcm, nil
}

func reweightAndConvertBallot(fpb *ballot.FirstPreferenceBallot, dLcm *big.Int, elected *bigSet, tallies []*big.Int, quota *big.Int, zero *dj.EncryptedNumber) (*ballot.CandidateOrderBallot, error) {
	newWeight := zero
	for i, c := range fpb.Candidates {
		w, err := fpb.Weights[i].Mul(dLcm)
		if err != nil {
			return nil, err
		}
		if elected.has(c) {
			w, err = w.Mul(new(big.Int).Sub(tallies[i], quota))
			if err != nil {
				return nil, err
			}
			w, err = w.Div(tallies[i])
			if err != nil {
				return nil, err
			}
		}
		newWeight, err = newWeight.Add(w)
		if err != nil {
			return nil, err
		}
	}
	return &ballot.CandidateOrderBallot{
		Candidates:  fpb.Candidates,
		Preferences: fpb.Preferences,
		Weight:      newWeight,
	}, nil
}

// eliminateCandidateSet removes candidateSet from every ballot and
// renumbers the remaining preferences to close the gaps they leave, via a
// round trip through the candidate-elimination representation so that the
// preference shifting (computed homomorphically, see updatePreferences) never
// needs the candidate identities in the clear.
func eliminateCandidateSet(ctx context.Context, candidateSet *bigSet, cobBallots []*ballot.CandidateOrderBallot, ring dj.Decrypter, pub *dj.PublicKey, pool *orchestrate.Pool) ([]*ballot.CandidateOrderBallot, error) {
	if len(cobBallots) == 0 {
		return nil, nil
	}

	numCandidates := len(cobBallots[0].Candidates)
	eliminated := make([]*big.Int, numCandidates)
	var remaining []int
	for i, c := range cobBallots[0].Candidates {
		if candidateSet.has(c) {
			eliminated[i] = big.NewInt(1)
		} else {
			eliminated[i] = big.NewInt(0)
			remaining = append(remaining, i)
		}
	}

	cebBallots := make([]*ballot.CandidateEliminationBallot, len(cobBallots))
	err := pool.Run(ctx, len(cobBallots), func(_ context.Context, i int) error {
		ceb, err := cobBallots[i].ToCandidateElimination(eliminated, ring, pub)
		if err != nil {
			return err
		}
		cebBallots[i] = ceb
		return nil
	})
	if err != nil {
		return nil, err
	}

	zero, err := pub.Encrypt(big.NewInt(0))
	if err != nil {
		return nil, err
	}
	err = pool.Run(ctx, len(cebBallots), func(_ context.Context, i int) error {
		return updatePreferences(cebBallots[i], zero)
	})
	if err != nil {
		return nil, err
	}

	newCobBallots := make([]*ballot.CandidateOrderBallot, len(cebBallots))
	err = pool.Run(ctx, len(cebBallots), func(_ context.Context, i int) error {
		cob, err := cebBallots[i].ToCandidateOrder(ring)
		if err != nil {
			return err
		}
		newCobBallots[i] = cob
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sequential, as in reweightVotes: row-filtering is cheap bookkeeping, not
	// cryptographic work, so a worker pool would only add overhead here.
	for _, cob := range newCobBallots {
		removeCandidates(cob, remaining)
	}
	return newCobBallots, nil
}

// updatePreferences closes the numbering gaps eliminated candidates leave in
// a ballot's preference order, entirely homomorphically: ceb's rows are
// already sorted by preference, so the number of eliminated candidates
// ranked at or above position i is exactly how far position i's preference
// rank must shift down.
func updatePreferences(ceb *ballot.CandidateEliminationBallot, zero *dj.EncryptedNumber) error {
	prefixSum := zero
	for i := range ceb.Candidates {
		var err error
		prefixSum, err = prefixSum.Add(ceb.Eliminated[i])
		if err != nil {
			return err
		}
		ceb.Preferences[i], err = ceb.Preferences[i].Sub(prefixSum)
		if err != nil {
			return err
		}
	}
	return nil
}

// removeCandidates drops every column not in remainingIndices (given in
// ascending order) from cob, in place.
func removeCandidates(cob *ballot.CandidateOrderBallot, remainingIndices []int) {
	candidates := make([]*big.Int, len(remainingIndices))
	preferences := make([]*dj.EncryptedNumber, len(remainingIndices))
	for out, i := range remainingIndices {
		candidates[out] = cob.Candidates[i]
		preferences[out] = cob.Preferences[i]
	}
	cob.Candidates = candidates
	cob.Preferences = preferences
}
