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

	"github.com/cryptovoting/damgard-jurik/crypto/utils"
)

// damgardJurikReduce recovers i from a = (1+n)^i (mod n^(s+1)) via the
// digit-extraction recursion of the Damgård-Jurik paper: it peels off one
// base-n^j digit of i per outer iteration using the L(x) = (x-1)/n
// "discrete log of a unit close to 1" trick, correcting each digit against
// the ones already extracted before moving to the next modulus n^(j+1).
func damgardJurikReduce(a *big.Int, s uint32, n *big.Int) (*big.Int, error) {
	nPow := make([]*big.Int, s+2)
	nPow[0] = big.NewInt(1)
	for p := uint32(1); p < s+2; p++ {
		nPow[p] = new(big.Int).Mul(nPow[p-1], n)
	}
	fact := make([]*big.Int, s+1)

	i := big.NewInt(0)
	for j := uint32(1); j <= s; j++ {
		t1 := l(new(big.Int).Mod(a, nPow[j+1]), n)
		t2 := new(big.Int).Set(i)

		for k := uint32(2); k <= j; k++ {
			i = new(big.Int).Sub(i, big.NewInt(1))
			t2 = new(big.Int).Mul(t2, i)
			t2.Mod(t2, nPow[j])

			if fact[k] == nil {
				fact[k] = utils.Factorial(k)
			}
			factInv, err := utils.InvMod(fact[k], nPow[j])
			if err != nil {
				return nil, err
			}
			term := new(big.Int).Mul(t2, nPow[k-1])
			term.Mul(term, factInv)
			term.Mod(term, nPow[j])
			t1.Sub(t1, term)
			t1.Mod(t1, nPow[j])
		}
		i = t1
	}
	return i, nil
}

// l computes (b-1)/n, the division that recovers one base-n digit of the
// discrete log of a ciphertext of the form (1+n)^x mod n^2.
func l(b, n *big.Int) *big.Int {
	num := new(big.Int).Sub(b, big.NewInt(1))
	return num.Div(num, n)
}
