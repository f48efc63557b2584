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
	"testing"

	"emperror.dev/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichError(t *testing.T) {
	t.Run("Annotates", func(t *testing.T) {
		origErr := errors.NewPlain("something went wrong")

		err := enrichError(origErr, NewCorrelationContext("cid"))

		assert.True(t, errors.Is(err, origErr))
		assert.Equal(t, "cid", ErrorCorrelationID(err))
	})

	t.Run("DoesNotOverwrite", func(t *testing.T) {
		origErr := errors.NewPlain("something went wrong")

		err := enrichError(origErr, NewCorrelationContext("inner"))
		enriched := enrichError(err, NewCorrelationContext("outer"))

		require.Same(t, err, enriched)
		assert.Equal(t, "inner", ErrorCorrelationID(enriched))
	})

	t.Run("UnrelatedDetailsAreKept", func(t *testing.T) {
		origErr := errors.NewWithDetails("something went wrong", "key", "value")

		err := enrichError(origErr, NewCorrelationContext("cid"))

		assert.Equal(t, "cid", ErrorCorrelationID(err))
		assert.Contains(t, errors.GetDetails(err), "key")
	})
}

func TestErrorCorrelationID(t *testing.T) {
	assert.Empty(t, ErrorCorrelationID(errors.NewPlain("something went wrong")))
}
