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

import "math/big"

//go:generate mockery --name Decrypter --output ./mocks
// Decrypter is the threshold-decryption capability that ballot conversion
// and STV tallying depend on. *PrivateKeyRing implements it; callers take
// this interface instead of the concrete type so tests can substitute a
// mock ring and exercise the surrounding logic without running a full
// Keygen/share/decrypt cycle for every case.
type Decrypter interface {
	DecryptBatch(cs []*EncryptedNumber) ([]*big.Int, error)
}
