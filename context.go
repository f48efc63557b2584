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
)

// CorrelationContext holds the correlation ID of a single logical operation.
// It is immutable: the ID never changes once the context is created.
type CorrelationContext struct {
	correlationID string
}

// NewCorrelationContext returns a new CorrelationContext.
func NewCorrelationContext(correlationID string) *CorrelationContext {
	return &CorrelationContext{correlationID: correlationID}
}

// CorrelationID returns the correlation ID held by the context.
func (c *CorrelationContext) CorrelationID() string {
	return c.correlationID
}

type ctxKey int

const contextKeyCorrelation ctxKey = iota

// NewContext returns a new context with the correlation context installed in it.
func NewContext(ctx context.Context, correlationContext *CorrelationContext) context.Context {
	return context.WithValue(ctx, contextKeyCorrelation, correlationContext)
}

// FromContext returns the correlation context installed in the context (if any).
func FromContext(ctx context.Context) *CorrelationContext {
	if ctx == nil {
		return nil
	}

	correlationContext, ok := ctx.Value(contextKeyCorrelation).(*CorrelationContext)
	if !ok {
		return nil
	}

	return correlationContext
}

// CorrelationID returns the ambient correlation ID (if any).
func CorrelationID(ctx context.Context) string {
	correlationContext := FromContext(ctx)
	if correlationContext == nil {
		return ""
	}

	return correlationContext.CorrelationID()
}

// ContextAccessor provides access to the ambient correlation context.
//
// The ambient state lives in a context.Context, so any two accessors observe
// the same value for the same context chain, no matter which component
// instantiated them.
type ContextAccessor interface {
	// CorrelationContext returns the ambient correlation context (if any).
	CorrelationContext(ctx context.Context) *CorrelationContext

	// WithCorrelationContext installs a correlation context as the ambient one.
	WithCorrelationContext(ctx context.Context, correlationContext *CorrelationContext) context.Context
}

// NewContextAccessor returns the default ContextAccessor.
func NewContextAccessor() ContextAccessor {
	return contextAccessor{}
}

type contextAccessor struct{}

func (contextAccessor) CorrelationContext(ctx context.Context) *CorrelationContext {
	return FromContext(ctx)
}

func (contextAccessor) WithCorrelationContext(ctx context.Context, correlationContext *CorrelationContext) context.Context {
	return NewContext(ctx, correlationContext)
}
