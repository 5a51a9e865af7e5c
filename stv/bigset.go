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
	"sort"
)

// bigSet is a set of *big.Int candidate ids, compared by value rather than
// pointer identity, since candidate ids are plain integers decrypted anew
// each round.
type bigSet struct {
	m map[string]*big.Int
}

func newBigSet() *bigSet {
	return &bigSet{m: make(map[string]*big.Int)}
}

func (s *bigSet) add(v *big.Int) {
	s.m[v.String()] = v
}

func (s *bigSet) has(v *big.Int) bool {
	_, ok := s.m[v.String()]
	return ok
}

func (s *bigSet) len() int {
	return len(s.m)
}

// sortedValues returns the set's members in ascending order, giving the
// election of multiple candidates in one round a deterministic result order.
func (s *bigSet) sortedValues() []*big.Int {
	out := make([]*big.Int, 0, len(s.m))
	for _, v := range s.m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}
