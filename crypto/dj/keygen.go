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
	"sort"

	"github.com/cryptovoting/damgard-jurik/crypto/shamir"
	"github.com/cryptovoting/damgard-jurik/crypto/utils"
	"github.com/cryptovoting/damgard-jurik/errs"
)

// PrivateKeyShare is one trustee's share s_i of the shared private exponent
// d, plus the 2*delta*s_i exponent precomputed for partial decryption.
type PrivateKeyShare struct {
	pub        *PublicKey
	i          *big.Int
	sI         *big.Int
	twoDeltaSI *big.Int
}

// Index returns this share's Shamir x-coordinate.
func (s *PrivateKeyShare) Index() *big.Int { return new(big.Int).Set(s.i) }

// PublicKey returns the key this share belongs to.
func (s *PrivateKeyShare) PublicKey() *PublicKey { return s.pub }

// PartialDecrypt returns this trustee's contribution c^(2*delta*s_i) mod n^(s+1)
// toward decrypting c. By itself it reveals nothing about the plaintext;
// threshold-many contributions are needed to combine into a full decryption.
func (s *PrivateKeyShare) PartialDecrypt(c *EncryptedNumber) (*big.Int, error) {
	if c.pub != s.pub {
		return nil, errs.ErrKeyMismatch
	}
	return new(big.Int).Exp(c.value, s.twoDeltaSI, s.pub.nPowSPlus1), nil
}

// PrivateKeyRing is a fixed set of threshold-many distinct-index
// PrivateKeyShares, capable of jointly decrypting ciphertexts under the
// shares' common PublicKey.
type PrivateKeyRing struct {
	pub            *PublicKey
	shares         []*PrivateKeyShare
	invFourDeltaSq *big.Int
}

// NewPrivateKeyRing builds a ring from a set of shares. Duplicate indices are
// collapsed, and at least `threshold` unique-index shares must remain; when
// more than `threshold` are given, the lowest-index `threshold` of them are
// kept (any threshold-size subset of a valid sharing reconstructs the same
// secret, so the particular subset kept is arbitrary but must be deterministic).
func NewPrivateKeyRing(pub *PublicKey, shares []*PrivateKeyShare) (*PrivateKeyRing, error) {
	if len(shares) == 0 {
		return nil, errs.ErrInsufficientShares
	}
	for _, s := range shares {
		if s.pub != pub {
			return nil, errs.ErrKeyMismatch
		}
	}

	seen := make(map[string]*PrivateKeyShare, len(shares))
	order := make([]string, 0, len(shares))
	for _, s := range shares {
		key := s.i.String()
		if _, ok := seen[key]; !ok {
			seen[key] = s
			order = append(order, key)
		}
	}
	sort.Slice(order, func(a, b int) bool {
		return seen[order[a]].i.Cmp(seen[order[b]].i) < 0
	})
	if uint32(len(order)) < pub.threshold {
		return nil, errs.ErrInsufficientShares
	}
	kept := make([]*PrivateKeyShare, pub.threshold)
	for idx := uint32(0); idx < pub.threshold; idx++ {
		kept[idx] = seen[order[idx]]
	}

	invFourDeltaSq, err := utils.InvMod(new(big.Int).Mul(big.NewInt(4), new(big.Int).Mul(pub.delta, pub.delta)), pub.nPowS)
	if err != nil {
		return nil, err
	}
	return &PrivateKeyRing{pub: pub, shares: kept, invFourDeltaSq: invFourDeltaSq}, nil
}

// PublicKey returns the key this ring decrypts under.
func (r *PrivateKeyRing) PublicKey() *PublicKey { return r.pub }

// lagrangeAtZero computes delta * lambda_i mod n^s*m, the Lagrange
// coefficient for share i scaled by delta to keep intermediate values integral.
func (r *PrivateKeyRing) lagrangeAtZero(i *big.Int) (*big.Int, error) {
	l := new(big.Int).Mod(r.pub.delta, r.pub.nPowSTimesM)
	for _, share := range r.shares {
		if share.i.Cmp(i) == 0 {
			continue
		}
		diff := new(big.Int).Sub(share.i, i)
		diffInv, err := utils.InvMod(new(big.Int).Mod(diff, r.pub.nPowSTimesM), r.pub.nPowSTimesM)
		if err != nil {
			return nil, err
		}
		l.Mul(l, share.i)
		l.Mul(l, diffInv)
		l.Mod(l, r.pub.nPowSTimesM)
	}
	return l, nil
}

// Decrypt recovers the plaintext m in [0, n^s) encrypted in c, by combining
// each ring member's partial decryption with Lagrange coefficients scaled by
// 2*delta, reducing the result via damgardJurikReduce, and clearing the
// resulting 4*delta^2 factor.
func (r *PrivateKeyRing) Decrypt(c *EncryptedNumber) (*big.Int, error) {
	if c.pub != r.pub {
		return nil, errs.ErrKeyMismatch
	}

	cPrime := big.NewInt(1)
	for _, share := range r.shares {
		partial, err := share.PartialDecrypt(c)
		if err != nil {
			return nil, err
		}
		lam, err := r.lagrangeAtZero(share.i)
		if err != nil {
			return nil, err
		}
		exp := new(big.Int).Mul(big.NewInt(2), lam)
		term, err := utils.PowMod(partial, exp, r.pub.nPowSPlus1)
		if err != nil {
			return nil, err
		}
		cPrime.Mul(cPrime, term)
		cPrime.Mod(cPrime, r.pub.nPowSPlus1)
	}

	reduced, err := damgardJurikReduce(cPrime, r.pub.s, r.pub.n)
	if err != nil {
		return nil, err
	}
	m := new(big.Int).Mul(reduced, r.invFourDeltaSq)
	return m.Mod(m, r.pub.nPowS), nil
}

// DecryptBatch decrypts every ciphertext in cs, all of which must share r's PublicKey.
func (r *PrivateKeyRing) DecryptBatch(cs []*EncryptedNumber) ([]*big.Int, error) {
	ms := make([]*big.Int, len(cs))
	for idx, c := range cs {
		m, err := r.Decrypt(c)
		if err != nil {
			return nil, err
		}
		ms[idx] = m
	}
	return ms, nil
}

// Keygen generates a PublicKey and the n_shares PrivateKeyShares of a
// (threshold, n_shares) Damgård-Jurik key whose modulus n = p*q is the product
// of two nBits-bit safe primes (so n is about 2*nBits bits long), with
// plaintext space Z_{n^s}.
func Keygen(nBits int, s uint32, threshold, nShares uint32) (*PublicKey, []*PrivateKeyShare, error) {
	if nBits < 16 {
		return nil, nil, errs.ErrInvalidConfig
	}
	if s < 1 {
		return nil, nil, errs.ErrInvalidConfig
	}
	if err := utils.EnsureThreshold(threshold, nShares); err != nil {
		return nil, nil, err
	}

	p, q, err := utils.GenSafePrimePair(nBits)
	if err != nil {
		return nil, nil, err
	}
	n := new(big.Int).Mul(p.P, q.P)
	m := new(big.Int).Mul(p.Q, q.Q)

	nPowS := new(big.Int).Exp(n, new(big.Int).SetUint64(uint64(s)), nil)
	nPowSM := new(big.Int).Mul(nPowS, m)

	d, err := utils.CRT([]*big.Int{big.NewInt(0), big.NewInt(1)}, []*big.Int{m, nPowS})
	if err != nil {
		return nil, nil, err
	}

	shares, err := shamir.ShareSecret(d, nPowSM, threshold, nShares)
	if err != nil {
		return nil, nil, err
	}

	delta := utils.Factorial(nShares)
	pub := &PublicKey{
		n:           n,
		s:           s,
		m:           m,
		threshold:   threshold,
		nShares:     nShares,
		delta:       delta,
		nPowS:       nPowS,
		nPowSPlus1:  new(big.Int).Mul(nPowS, n),
		nPowSTimesM: nPowSM,
	}

	privateShares := make([]*PrivateKeyShare, nShares)
	for idx, sh := range shares {
		privateShares[idx] = &PrivateKeyShare{
			pub:        pub,
			i:          sh.Index,
			sI:         sh.Value,
			twoDeltaSI: new(big.Int).Mul(new(big.Int).Mul(big.NewInt(2), delta), sh.Value),
		}
	}
	return pub, privateShares, nil
}
