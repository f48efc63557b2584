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
	"emperror.dev/errors"
)

// ErrMissingWork is returned when a correlate call receives no work function.
// It is returned before any correlation scope is established and is never
// passed to an error handler.
const ErrMissingWork = errors.Sentinel("correlation: missing work function")

// ErrorDetailsKey is the error detail key the correlation ID is attached under.
const ErrorDetailsKey = "correlationId"

// enrichError attaches the correlation ID to an error as a detail,
// unless the error already carries one. Re-entrant wrapping must not
// overwrite an inner, more specific ID, so the innermost one wins.
//
// The original error remains reachable through errors.Is and errors.As.
func enrichError(err error, correlationContext *CorrelationContext) error {
	if hasErrorDetail(err, ErrorDetailsKey) {
		return err
	}

	return errors.WithDetails(err, ErrorDetailsKey, correlationContext.CorrelationID())
}

func hasErrorDetail(err error, key string) bool {
	details := errors.GetDetails(err)

	for i := 0; i+1 < len(details); i += 2 {
		if k, ok := details[i].(string); ok && k == key {
			return true
		}
	}

	return false
}

// ErrorCorrelationID returns the correlation ID attached to an error (if any).
func ErrorCorrelationID(err error) string {
	details := errors.GetDetails(err)

	for i := 0; i+1 < len(details); i += 2 {
		if k, ok := details[i].(string); ok && k == ErrorDetailsKey {
			if v, ok := details[i+1].(string); ok {
				return v
			}
		}
	}

	return ""
}
