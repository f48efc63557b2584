// Copyright © 2020 Banzai Cloud
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package correlation

import (
	"crypto/rand"
	"io"
	"math"
	"math/big"
	"time"

	"github.com/gofrs/uuid"
)

// IDGenerator generates a new correlation ID.
type IDGenerator interface {
	// Generate returns a new, non-empty correlation ID.
	Generate() string
}

// IDGeneratorFunc makes a plain function implement the IDGenerator interface.
type IDGeneratorFunc func() string

// Generate implements the IDGenerator interface.
func (fn IDGeneratorFunc) Generate() string {
	return fn()
}

// UUIDGenerator generates a random unique identifier.
type UUIDGenerator struct{}

// NewUUIDGenerator returns a new UUIDGenerator.
func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

// Generate implements the IDGenerator interface.
func (UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewV4()).String()
}

// nolint: gochecknoglobals
var randMax = big.NewInt(math.MaxInt64)

// CompactIDGenerator generates a compact, base62 encoded random identifier.
// When the entropy source fails it falls back to a time based pseudorandom ID,
// marked with an "E:" prefix.
type CompactIDGenerator struct {
	source io.Reader
}

// NewCompactIDGenerator returns a new CompactIDGenerator reading from the
// default entropy source.
func NewCompactIDGenerator() CompactIDGenerator {
	return CompactIDGenerator{source: rand.Reader}
}

// Generate implements the IDGenerator interface.
func (g CompactIDGenerator) Generate() string {
	source := g.source
	if source == nil {
		source = rand.Reader
	}

	id, err := rand.Int(source, randMax)
	if err != nil {
		return "E:" + encodeReverseBase62(time.Now().UnixNano())
	}

	return encodeReverseBase62(id.Int64())
}
