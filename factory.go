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

// Scope is the dynamic extent during which one correlation context is the
// ambient one. It is created by a ContextFactory and remembers everything the
// factory needs to tear it down.
type Scope struct {
	ctx                context.Context
	correlationContext *CorrelationContext

	created  bool
	disposed bool
}

// Context returns the context the correlation context is installed in.
// Callers are expected to run their work with this context.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// CorrelationContext returns the correlation context of the scope.
func (s *Scope) CorrelationContext() *CorrelationContext {
	return s.correlationContext
}

// IsNew reports whether the scope installed a new correlation context
// (as opposed to joining an already active one).
func (s *Scope) IsNew() bool {
	return s.created
}

// ContextFactory creates and disposes correlation scopes.
//
// The factory tracks no stack: restoring the previous ambient value is a
// property of context passing, each caller simply resumes with the context it
// held before Create.
type ContextFactory interface {
	// Create establishes a correlation scope.
	//
	// When correlationID is non-empty, a new correlation context is always
	// created with that ID, even inside an already active scope.
	// When correlationID is empty, an already active ambient context is reused
	// unchanged, otherwise a fresh ID is generated.
	//
	// The returned context carries the correlation context and must be used
	// for any work executed within the scope.
	Create(ctx context.Context, correlationID string) (context.Context, *Scope)

	// Dispose tears down a scope. Disposing a scope that is not the currently
	// active one is a no-op, as is disposing a scope twice.
	Dispose(scope *Scope)
}

// NewContextFactory returns a new ContextFactory.
// A nil accessor resolves to the default one, a nil generator to the UUID based one.
func NewContextFactory(accessor ContextAccessor, generator IDGenerator) ContextFactory {
	if accessor == nil {
		accessor = NewContextAccessor()
	}

	if generator == nil {
		generator = NewUUIDGenerator()
	}

	return &contextFactory{
		accessor:  accessor,
		generator: generator,
	}
}

type contextFactory struct {
	accessor  ContextAccessor
	generator IDGenerator
}

func (f *contextFactory) Create(ctx context.Context, correlationID string) (context.Context, *Scope) {
	if correlationID == "" {
		if correlationContext := f.accessor.CorrelationContext(ctx); correlationContext != nil {
			return ctx, &Scope{
				ctx:                ctx,
				correlationContext: correlationContext,
			}
		}

		correlationID = f.generator.Generate()
	}

	correlationContext := NewCorrelationContext(correlationID)
	ctx = f.accessor.WithCorrelationContext(ctx, correlationContext)

	return ctx, &Scope{
		ctx:                ctx,
		correlationContext: correlationContext,
		created:            true,
	}
}

func (f *contextFactory) Dispose(scope *Scope) {
	if scope == nil || scope.disposed {
		return
	}

	// Stale disposal: the scope is no longer the active one.
	if f.accessor.CorrelationContext(scope.ctx) != scope.correlationContext {
		return
	}

	scope.disposed = true
}
