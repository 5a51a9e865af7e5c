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
	"crypto/rand"
	"errors"
	"io"
	"math/big"
)

// millerRabinRounds is the number of extra Miller-Rabin rounds run on top of
// Go's baked-in Baillie-PSW check when confirming a safe-prime candidate.
// 40 rounds keeps the false-positive probability negligible even at the
// smallest key sizes this package permits.
const millerRabinRounds = 40

var (
	// ErrSmallSafePrime is returned if the requested safe-prime size is too small.
	ErrSmallSafePrime = errors.New("safe-prime size must be at least 16 bits")
	// ErrDistinctPrimes is returned if a caller asked for a pair of distinct safe primes but none were found in budget.
	ErrDistinctPrimes = errors.New("could not find two distinct safe primes")

	big4 = big.NewInt(4)

	// without the prime 3
	primes = [][]uint64{
		{5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53},
		{59, 61, 67, 71, 73, 79, 83, 89, 97},
		{101, 103, 107, 109, 113, 127, 131, 137, 139},
		{149, 151, 157, 163, 167, 173, 179, 181},
		{191, 193, 197, 199, 211, 223, 227, 229},
		{233, 239, 241, 251, 257, 263, 269},
		{271, 277, 281, 283, 293, 307, 311},
	}

	primeProducts = []*big.Int{
		new(big.Int).SetUint64(5431526412865007455),
		new(big.Int).SetUint64(6437928885641249269),
		new(big.Int).SetUint64(4343678784233766587),
		new(big.Int).SetUint64(538945254996352681),
		new(big.Int).SetUint64(3534749459194562711),
		new(big.Int).SetUint64(61247129307885343),
		new(big.Int).SetUint64(166996819598798201),
	}

	// 16294579238595022365 = 3 * primeProducts[0]
	prime3Product = new(big.Int).SetUint64(16294579238595022365)
)

// SafePrime is a pair (p, q) of primes with p = 2q+1.
type SafePrime struct {
	P *big.Int
	Q *big.Int
}

// GenSafePrime draws a b-bit prime p such that (p-1)/2 is also prime, using
// the sieve from "Safe Prime Generation with a Combined Sieve"
// (https://eprint.iacr.org/2003/186.pdf) to cheaply reject most composite
// candidates before paying for a Miller-Rabin round.
func GenSafePrime(bits int) (*SafePrime, error) {
	return genSafePrime(rand.Reader, bits)
}

// GenSafePrimePair returns two distinct safe primes of the given bit length,
// as required by DJ key generation (n = p*q must not degenerate to p^2).
func GenSafePrimePair(bits int) (p, q *SafePrime, err error) {
	p, err = GenSafePrime(bits)
	if err != nil {
		return nil, nil, err
	}
	const maxRetry = 100
	for i := 0; i < maxRetry; i++ {
		q, err = GenSafePrime(bits)
		if err != nil {
			return nil, nil, err
		}
		if q.P.Cmp(p.P) != 0 {
			return p, q, nil
		}
	}
	return nil, nil, ErrDistinctPrimes
}

func genSafePrime(randSrc io.Reader, pbits int) (*SafePrime, error) {
	if pbits < 16 {
		return nil, ErrSmallSafePrime
	}
	const upperbound = uint64(1024)
	bits := pbits - 1
	b := uint(bits % 8)
	if b == 0 {
		b = 8
	}
	bytes := make([]byte, (bits+7)/8)
	for {
		if _, err := io.ReadFull(randSrc, bytes); err != nil {
			return nil, err
		}

		// Clear bits in the first byte so the candidate is <= bits long.
		bytes[0] &= uint8(int(1<<b) - 1)
		// Set the top two bits so p=2q+1 cannot come up short a bit when multiplied.
		if b >= 2 {
			bytes[0] |= 3 << (b - 2)
		} else {
			bytes[0] |= 1
			if len(bytes) > 1 {
				bytes[1] |= 0x80
			}
		}
		// Force q odd; an even candidate this large is never prime.
		bytes[len(bytes)-1] |= 1
		q := new(big.Int).SetBytes(bytes)

		bigMod := new(big.Int).Mod(q, prime3Product)
		mod3 := FastMod3(bigMod)
		if mod3 == 1 {
			q.Add(q, big4)
		} else if mod3 == 0 {
			q.Add(q, big2)
		}

	nextDelta:
		for delta := uint64(0); delta < upperbound; delta += 6 {
			candidateQ := new(big.Int).Add(q, new(big.Int).SetUint64(delta))
			for i := range primeProducts {
				if !sieveSurvives(candidateQ, primeProducts[i], primes[i]) {
					continue nextDelta
				}
			}
			candidateP := new(big.Int).Lsh(candidateQ, 1)
			candidateP.Add(candidateP, big1)
			if candidateP.BitLen() != pbits {
				continue nextDelta
			}
			if !pocklingtonWitness(candidateP) {
				continue nextDelta
			}
			if !candidateQ.ProbablyPrime(millerRabinRounds) {
				continue nextDelta
			}
			if !candidateP.ProbablyPrime(millerRabinRounds) {
				continue nextDelta
			}
			return &SafePrime{P: candidateP, Q: candidateQ}, nil
		}
		// Exhausted this delta window without a hit; redraw q entirely.
	}
}

// sieveSurvives rejects a candidate q for which 2q+1 is obviously composite
// against a block of small primes, without doing any modular exponentiation.
func sieveSurvives(candidate, product *big.Int, block []uint64) bool {
	mm := new(big.Int).Mod(candidate, product).Uint64()
	for _, prime := range block {
		residue := mm % prime
		if residue == 0 {
			return false
		}
		if residue == prime>>1 {
			return false
		}
	}
	return true
}

// FastMod3 computes n mod 3 via alternating bit-sum parity, avoiding a
// general-purpose Div call in the innermost loop of safe-prime search.
func FastMod3(number *big.Int) int {
	evenBits, oddBits := 0, 0
	for i := 0; i < number.BitLen(); i += 2 {
		if number.Bit(i) != 0 {
			evenBits++
		}
	}
	for i := 1; i < number.BitLen(); i += 2 {
		if number.Bit(i) != 0 {
			oddBits++
		}
	}
	var result int
	if evenBits > oddBits {
		result = evenBits - oddBits
	} else {
		result = (oddBits - evenBits) << 1
	}
	return result % 3
}

// pocklingtonWitness checks Pocklington's criterion 2^(p-1) ≡ 1 (mod p),
// which a safe prime p=2q+1 must satisfy.
// https://en.wikipedia.org/wiki/Pocklington_primality_test
func pocklingtonWitness(p *big.Int) bool {
	apower := new(big.Int).Exp(big2, new(big.Int).Sub(p, big1), p)
	return apower.Cmp(big1) == 0
}
