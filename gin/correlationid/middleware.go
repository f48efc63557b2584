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

package correlationid

import (
	"github.com/gin-gonic/gin"

	"github.com/banzaicloud/correlation"
)

// ContextKey is the key the retrieved (or generated) correlation ID is stored under in the gin Context.
const ContextKey = "correlationid"

// MiddlewareOption configures the correlation ID middleware.
type MiddlewareOption interface {
	apply(*middleware)
}

// Header configures the header from where the correlation ID will be retrieved.
type Header string

// apply implements the MiddlewareOption interface.
func (h Header) apply(m *middleware) {
	m.header = string(h)
}

// Generator configures the ID generator used when the header carries no correlation ID.
func Generator(generator correlation.IDGenerator) MiddlewareOption {
	return generatorOption{generator: generator}
}

type generatorOption struct {
	generator correlation.IDGenerator
}

// apply implements the MiddlewareOption interface.
func (g generatorOption) apply(m *middleware) {
	m.factory = correlation.NewContextFactory(nil, g.generator)
}

// Middleware returns a gin compatible handler that establishes a correlation
// scope for every request. The correlation context is installed in the request
// context and the correlation ID is stored in the gin Context as well.
func Middleware(opts ...MiddlewareOption) gin.HandlerFunc {
	m := new(middleware)

	for _, opt := range opts {
		opt.apply(m)
	}

	if m.header == "" {
		m.header = correlation.DefaultHeader
	}

	if m.factory == nil {
		m.factory = correlation.NewContextFactory(nil, nil)
	}

	return m.Handle
}

type middleware struct {
	header  string
	factory correlation.ContextFactory
}

func (m *middleware) Handle(c *gin.Context) {
	ctx, scope := m.factory.Create(c.Request.Context(), c.GetHeader(m.header))
	defer m.factory.Dispose(scope)

	cid := scope.CorrelationContext().CorrelationID()

	c.Set(ContextKey, cid)
	c.Writer.Header().Set(m.header, cid)
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}
