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
	"context"
	"net/http"
)

// DefaultHeader is the default correlation ID header.
const DefaultHeader = "Correlation-ID"

// MiddlewareOption configures the correlation middleware.
type MiddlewareOption interface {
	applyMiddleware(*middleware)
}

// Header configures the header the correlation ID is exchanged in.
type Header string

func (h Header) applyMiddleware(m *middleware) {
	m.header = string(h)
}

func (h Header) applyRoundTripper(r *roundTripper) {
	r.header = string(h)
}

type middleware struct {
	manager *Manager
	header  string
}

// Middleware returns a net/http middleware establishing a correlation scope
// for every request. The value of the correlation header (if any) becomes the
// correlation ID of the scope and the header is echoed on the response.
func Middleware(manager *Manager, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	m := &middleware{manager: manager}

	for _, opt := range opts {
		opt.applyMiddleware(m)
	}

	if m.header == "" {
		m.header = DefaultHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := r.Header.Get(m.header)

			_ = m.manager.CorrelateWithID(r.Context(), correlationID, func(ctx context.Context) error {
				w.Header().Set(m.header, CorrelationID(ctx))

				next.ServeHTTP(w, r.WithContext(ctx))

				return nil
			})
		})
	}
}
