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

package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		config := Config{Format: "logfmt", Level: "info"}

		assert.NoError(t, config.Validate())
	})

	t.Run("InvalidFormat", func(t *testing.T) {
		config := Config{Format: "xml", Level: "info"}

		assert.Error(t, config.Validate())
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		config := Config{Format: "json", Level: "verbose"}

		assert.Error(t, config.Validate())
	})
}

func TestNewLogger(t *testing.T) {
	tests := []Config{
		{Format: "logfmt", Level: "debug"},
		{Format: "json", Level: "error"},
	}

	for _, config := range tests {
		logger := NewLogger(config)

		require.NotNil(t, logger)
	}
}

func TestNewErrorStandardLogger(t *testing.T) {
	logger := NewErrorStandardLogger(NewLogger(Config{Format: "logfmt", Level: "info"}))

	require.NotNil(t, logger)
}
