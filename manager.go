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

	"logur.dev/logur"
)

// WorkFunc is a unit of work executed within a correlation scope.
type WorkFunc func(ctx context.Context) error

// ValueWorkFunc is a value returning unit of work executed within a correlation scope.
type ValueWorkFunc func(ctx context.Context) (interface{}, error)

// ErrorHandlerFunc inspects a failed unit of work and may mark the failure as
// handled, suppressing it and substituting a replacement result.
type ErrorHandlerFunc func(errorContext *ErrorContext)

// ErrorContext is passed to an ErrorHandlerFunc when a unit of work fails.
type ErrorContext struct {
	// CorrelationContext is the correlation context the work failed under.
	CorrelationContext *CorrelationContext

	// Err is the failure, already annotated with the correlation ID.
	Err error

	// Handled suppresses the failure when set to true by the handler.
	Handled bool

	// Result replaces the return value of a suppressed failure.
	// For value returning operations it must hold a value of the
	// operation's result type.
	Result interface{}
}

// Result is the outcome of an asynchronous value returning operation.
type Result struct {
	Value interface{}
	Err   error
}

// Manager runs units of work within correlation scopes: it establishes, nests,
// reuses and tears down scopes, annotates escaping failures with the active
// correlation ID and lets callers suppress failures with a replacement result.
type Manager struct {
	factory  ContextFactory
	accessor ContextAccessor
	logger   logur.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger configures a logger on the manager. When set, the beginning and
// the end of each new correlation scope is logged with the correlation ID
// field attached. Purely observational, never affects control flow.
func WithLogger(logger logur.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager returns a new correlation Manager.
// A nil factory resolves to the default factory, a nil accessor to the default accessor.
func NewManager(factory ContextFactory, accessor ContextAccessor, opts ...ManagerOption) *Manager {
	if accessor == nil {
		accessor = NewContextAccessor()
	}

	if factory == nil {
		factory = NewContextFactory(accessor, nil)
	}

	m := &Manager{
		factory:  factory,
		accessor: accessor,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// NewManagerWithGenerator returns a new correlation Manager from a context
// factory, an ID generator and a logger. The generator applies to the default
// factory only: a non-nil factory is used as is, with whatever generator it
// was constructed with. The ambient state is resolved through the default
// accessor, so managers constructed this way still observe the nesting of
// managers constructed with an explicit accessor.
//
// Deprecated: use NewManager instead.
func NewManagerWithGenerator(factory ContextFactory, generator IDGenerator, logger logur.Logger) *Manager {
	accessor := NewContextAccessor()

	if factory == nil {
		factory = NewContextFactory(accessor, generator)
	}

	return NewManager(factory, accessor, WithLogger(logger))
}

// Correlate executes the work within a correlation scope.
// See CorrelateWithHandler for the details.
func (m *Manager) Correlate(ctx context.Context, work WorkFunc) error {
	return m.CorrelateWithHandler(ctx, "", work, nil)
}

// CorrelateWithID executes the work within a correlation scope with an
// explicit correlation ID. See CorrelateWithHandler for the details.
func (m *Manager) CorrelateWithID(ctx context.Context, correlationID string, work WorkFunc) error {
	return m.CorrelateWithHandler(ctx, correlationID, work, nil)
}

// CorrelateWithHandler executes the work within a correlation scope.
//
// When correlationID is non-empty a new scope always begins, even inside an
// already active one; otherwise an active ambient scope is joined, or a new
// one begins with a generated ID. The work receives the context the
// correlation context is installed in.
//
// A failure returned by the work is annotated with the active correlation ID
// (the annotated error still matches the original through errors.Is and
// errors.As). When onError is non-nil it is invoked with a mutable
// ErrorContext; marking the failure handled suppresses it.
// The scope is torn down on every path.
func (m *Manager) CorrelateWithHandler(ctx context.Context, correlationID string, work WorkFunc, onError ErrorHandlerFunc) error {
	if work == nil {
		return ErrMissingWork
	}

	_, err := m.correlate(ctx, correlationID, func(ctx context.Context) (interface{}, error) {
		return nil, work(ctx)
	}, onError)

	return err
}

// CorrelateValue executes the value returning work within a correlation scope.
// See CorrelateValueWithHandler for the details.
func (m *Manager) CorrelateValue(ctx context.Context, work ValueWorkFunc) (interface{}, error) {
	return m.CorrelateValueWithHandler(ctx, "", work, nil)
}

// CorrelateValueWithID executes the value returning work within a correlation
// scope with an explicit correlation ID. See CorrelateValueWithHandler for the details.
func (m *Manager) CorrelateValueWithID(ctx context.Context, correlationID string, work ValueWorkFunc) (interface{}, error) {
	return m.CorrelateValueWithHandler(ctx, correlationID, work, nil)
}

// CorrelateValueWithHandler executes the value returning work within a
// correlation scope. The semantics match CorrelateWithHandler; a failure
// marked handled returns the handler's replacement result instead.
func (m *Manager) CorrelateValueWithHandler(ctx context.Context, correlationID string, work ValueWorkFunc, onError ErrorHandlerFunc) (interface{}, error) {
	if work == nil {
		return nil, ErrMissingWork
	}

	return m.correlate(ctx, correlationID, work, onError)
}

// CorrelateAsync executes the work within a correlation scope on a new
// goroutine. The semantics match CorrelateWithHandler; the returned channel
// yields the outcome once.
func (m *Manager) CorrelateAsync(ctx context.Context, correlationID string, work WorkFunc, onError ErrorHandlerFunc) <-chan error {
	outcome := make(chan error, 1)

	go func() {
		outcome <- m.CorrelateWithHandler(ctx, correlationID, work, onError)
	}()

	return outcome
}

// CorrelateValueAsync executes the value returning work within a correlation
// scope on a new goroutine. The semantics match CorrelateValueWithHandler;
// the returned channel yields the outcome once.
func (m *Manager) CorrelateValueAsync(ctx context.Context, correlationID string, work ValueWorkFunc, onError ErrorHandlerFunc) <-chan Result {
	outcome := make(chan Result, 1)

	go func() {
		value, err := m.CorrelateValueWithHandler(ctx, correlationID, work, onError)

		outcome <- Result{Value: value, Err: err}
	}()

	return outcome
}

// correlate is the single implementation behind every public form.
func (m *Manager) correlate(ctx context.Context, correlationID string, work ValueWorkFunc, onError ErrorHandlerFunc) (interface{}, error) {
	ctx, scope := m.factory.Create(ctx, correlationID)
	defer m.factory.Dispose(scope)

	correlationContext := scope.CorrelationContext()

	if scope.IsNew() && m.logger != nil {
		logger := logur.WithFields(m.logger, map[string]interface{}{LogFieldKey: correlationContext.CorrelationID()})

		logger.Trace("correlated operation started")
		defer logger.Trace("correlated operation finished")
	}

	value, err := work(ctx)
	if err != nil {
		err = enrichError(err, correlationContext)

		if onError != nil {
			errorContext := &ErrorContext{
				CorrelationContext: correlationContext,
				Err:                err,
			}

			onError(errorContext)

			if errorContext.Handled {
				return errorContext.Result, nil
			}
		}

		return nil, err
	}

	return value, nil
}
