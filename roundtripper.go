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
	"net/http"
)

// RoundTripperOption configures the correlation round tripper.
type RoundTripperOption interface {
	applyRoundTripper(*roundTripper)
}

type roundTripper struct {
	delegate http.RoundTripper
	header   string
}

// NewRoundTripper acts as a client middleware for outbound requests:
// it injects the ambient correlation ID of the request context into the
// correlation header, then delegates to the underlying transport.
func NewRoundTripper(delegate http.RoundTripper, opts ...RoundTripperOption) http.RoundTripper {
	if delegate == nil {
		delegate = http.DefaultTransport
	}

	r := &roundTripper{delegate: delegate}

	for _, opt := range opts {
		opt.applyRoundTripper(r)
	}

	if r.header == "" {
		r.header = DefaultHeader
	}

	return r
}

func (r *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if cid := CorrelationID(req.Context()); cid != "" && req.Header.Get(r.header) == "" {
		// Per RoundTripper contract the request is not mutated.
		req = req.Clone(req.Context())
		req.Header.Set(r.header, cid)
	}

	return r.delegate.RoundTrip(req)
}
