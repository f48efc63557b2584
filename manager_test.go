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
	"testing"

	"emperror.dev/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"logur.dev/logur"
)

func newTestManager(generator IDGenerator) *Manager {
	accessor := NewContextAccessor()

	return NewManager(NewContextFactory(accessor, generator), accessor)
}

func TestManager_Correlate(t *testing.T) {
	t.Run("ScopeActiveDuringWorkOnly", func(t *testing.T) {
		manager := newTestManager(nil)

		ctx := context.Background()
		require.Nil(t, FromContext(ctx))

		var active *CorrelationContext

		err := manager.Correlate(ctx, func(ctx context.Context) error {
			active = FromContext(ctx)

			return nil
		})
		require.NoError(t, err)

		assert.NotNil(t, active)
		assert.NotEmpty(t, active.CorrelationID())
		assert.Nil(t, FromContext(ctx))
	})

	t.Run("GeneratorInvokedOnceWhenNeeded", func(t *testing.T) {
		var calls int
		manager := newTestManager(IDGeneratorFunc(func() string {
			calls++

			return "generated"
		}))

		err := manager.Correlate(context.Background(), func(ctx context.Context) error {
			assert.Equal(t, "generated", CorrelationID(ctx))

			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, 1, calls)
	})

	t.Run("GeneratorNotInvokedForExplicitID", func(t *testing.T) {
		var calls int
		manager := newTestManager(IDGeneratorFunc(func() string {
			calls++

			return "generated"
		}))

		err := manager.CorrelateWithID(context.Background(), "explicit", func(ctx context.Context) error {
			assert.Equal(t, "explicit", CorrelationID(ctx))

			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, 0, calls)
	})

	t.Run("GeneratorNotInvokedInsideActiveScope", func(t *testing.T) {
		var calls int
		manager := newTestManager(IDGeneratorFunc(func() string {
			calls++

			return "generated"
		}))

		err := manager.Correlate(context.Background(), func(ctx context.Context) error {
			return manager.Correlate(ctx, func(ctx context.Context) error {
				return nil
			})
		})
		require.NoError(t, err)

		assert.Equal(t, 1, calls)
	})

	t.Run("ExplicitIDStartsNestedScope", func(t *testing.T) {
		manager := newTestManager(nil)

		err := manager.CorrelateWithID(context.Background(), "A", func(ctx context.Context) error {
			outer := FromContext(ctx)

			err := manager.CorrelateWithID(ctx, "B", func(ctx context.Context) error {
				inner := FromContext(ctx)

				assert.Equal(t, "B", inner.CorrelationID())
				assert.NotSame(t, outer, inner)

				return nil
			})
			require.NoError(t, err)

			// the outer scope is restored unchanged
			assert.Same(t, outer, FromContext(ctx))
			assert.Equal(t, "A", CorrelationID(ctx))

			return nil
		})
		require.NoError(t, err)
	})

	t.Run("SameIDCreatesNewContextWithEqualID", func(t *testing.T) {
		manager := newTestManager(nil)

		err := manager.CorrelateWithID(context.Background(), "A", func(ctx context.Context) error {
			outer := FromContext(ctx)

			return manager.CorrelateWithID(ctx, "A", func(ctx context.Context) error {
				inner := FromContext(ctx)

				assert.NotSame(t, outer, inner)
				assert.Equal(t, outer.CorrelationID(), inner.CorrelationID())

				return nil
			})
		})
		require.NoError(t, err)
	})

	t.Run("NestedCallWithoutIDReusesAmbientContext", func(t *testing.T) {
		manager := newTestManager(nil)

		err := manager.Correlate(context.Background(), func(ctx context.Context) error {
			outer := FromContext(ctx)

			return manager.Correlate(ctx, func(ctx context.Context) error {
				assert.Same(t, outer, FromContext(ctx))

				return nil
			})
		})
		require.NoError(t, err)
	})

	t.Run("FailureIsAnnotatedAndStillMatches", func(t *testing.T) {
		manager := newTestManager(IDGeneratorFunc(func() string { return "cid" }))

		origErr := errors.NewPlain("something went wrong")

		err := manager.Correlate(context.Background(), func(ctx context.Context) error {
			return origErr
		})
		require.Error(t, err)

		assert.True(t, errors.Is(err, origErr))
		assert.Equal(t, "cid", ErrorCorrelationID(err))
	})

	t.Run("InnermostCorrelationIDWins", func(t *testing.T) {
		manager := newTestManager(nil)

		origErr := errors.NewPlain("something went wrong")

		err := manager.CorrelateWithID(context.Background(), "outer", func(ctx context.Context) error {
			return manager.CorrelateWithID(ctx, "inner", func(ctx context.Context) error {
				return origErr
			})
		})
		require.Error(t, err)

		assert.True(t, errors.Is(err, origErr))
		assert.Equal(t, "inner", ErrorCorrelationID(err))
	})

	t.Run("HandlerSuppressesFailure", func(t *testing.T) {
		manager := newTestManager(nil)

		origErr := errors.NewPlain("something went wrong")

		value, err := manager.CorrelateValueWithHandler(
			context.Background(),
			"",
			func(ctx context.Context) (interface{}, error) {
				return nil, origErr
			},
			func(errorContext *ErrorContext) {
				assert.True(t, errors.Is(errorContext.Err, origErr))
				assert.NotNil(t, errorContext.CorrelationContext)

				errorContext.Handled = true
				errorContext.Result = 7
			},
		)
		require.NoError(t, err)

		assert.Equal(t, 7, value)
	})

	t.Run("HandlerDoesNotSuppressByDefault", func(t *testing.T) {
		manager := newTestManager(nil)

		origErr := errors.NewPlain("something went wrong")

		var invoked bool

		err := manager.CorrelateWithHandler(
			context.Background(),
			"",
			func(ctx context.Context) error {
				return origErr
			},
			func(errorContext *ErrorContext) {
				invoked = true
			},
		)
		require.Error(t, err)

		assert.True(t, invoked)
		assert.True(t, errors.Is(err, origErr))
	})

	t.Run("HandlerPanicPropagatesButScopeIsTornDown", func(t *testing.T) {
		manager := newTestManager(nil)

		assert.PanicsWithValue(t, "boom", func() {
			_ = manager.CorrelateWithHandler(
				context.Background(),
				"",
				func(ctx context.Context) error {
					return errors.NewPlain("something went wrong")
				},
				func(errorContext *ErrorContext) {
					panic("boom")
				},
			)
		})

		// the deferred teardown ran, a fresh scope starts cleanly
		err := manager.Correlate(context.Background(), func(ctx context.Context) error {
			assert.NotEmpty(t, CorrelationID(ctx))

			return nil
		})
		require.NoError(t, err)
	})

	t.Run("MissingWork", func(t *testing.T) {
		manager := newTestManager(IDGeneratorFunc(func() string {
			t.Fatal("no context should be created for missing work")

			return ""
		}))

		err := manager.Correlate(context.Background(), nil)
		require.Error(t, err)

		assert.True(t, errors.Is(err, ErrMissingWork))

		_, err = manager.CorrelateValue(context.Background(), nil)
		require.Error(t, err)

		assert.True(t, errors.Is(err, ErrMissingWork))
	})

	t.Run("ValueIsReturnedUnchanged", func(t *testing.T) {
		manager := newTestManager(nil)

		value, err := manager.CorrelateValue(context.Background(), func(ctx context.Context) (interface{}, error) {
			return 42, nil
		})
		require.NoError(t, err)

		assert.Equal(t, 42, value)
	})
}

func TestManager_CorrelateAsync(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		manager := newTestManager(nil)

		var active *CorrelationContext

		err := <-manager.CorrelateAsync(context.Background(), "", func(ctx context.Context) error {
			active = FromContext(ctx)

			return nil
		}, nil)
		require.NoError(t, err)

		assert.NotNil(t, active)
	})

	t.Run("HandledFailure", func(t *testing.T) {
		manager := newTestManager(nil)

		origErr := errors.NewPlain("something went wrong")

		result := <-manager.CorrelateValueAsync(
			context.Background(),
			"async",
			func(ctx context.Context) (interface{}, error) {
				return nil, origErr
			},
			func(errorContext *ErrorContext) {
				errorContext.Handled = true
				errorContext.Result = "fallback"
			},
		)
		require.NoError(t, result.Err)

		assert.Equal(t, "fallback", result.Value)
	})

	t.Run("AmbientContextCrossesGoroutines", func(t *testing.T) {
		manager := newTestManager(nil)

		err := manager.CorrelateWithID(context.Background(), "parent", func(ctx context.Context) error {
			return <-manager.CorrelateAsync(ctx, "", func(ctx context.Context) error {
				assert.Equal(t, "parent", CorrelationID(ctx))

				return nil
			}, nil)
		})
		require.NoError(t, err)
	})

	t.Run("IndependentChainsAreIsolated", func(t *testing.T) {
		manager := newTestManager(nil)

		first := make(chan string, 1)
		second := make(chan string, 1)

		_ = <-manager.CorrelateAsync(context.Background(), "first", func(ctx context.Context) error {
			first <- CorrelationID(ctx)

			return nil
		}, nil)
		_ = <-manager.CorrelateAsync(context.Background(), "second", func(ctx context.Context) error {
			second <- CorrelationID(ctx)

			return nil
		}, nil)

		assert.Equal(t, "first", <-first)
		assert.Equal(t, "second", <-second)
	})
}

func TestManager_CrossInstanceNesting(t *testing.T) {
	// Two independently constructed managers share the ambient state,
	// because the ambient slot is process wide, not per manager instance.
	outerManager := NewManagerWithGenerator(nil, IDGeneratorFunc(func() string { return "outer" }), nil)
	innerManager := NewManagerWithGenerator(nil, IDGeneratorFunc(func() string {
		t.Fatal("the inner manager must reuse the ambient context")

		return ""
	}), nil)

	err := outerManager.Correlate(context.Background(), func(ctx context.Context) error {
		return innerManager.Correlate(ctx, func(ctx context.Context) error {
			assert.Equal(t, "outer", CorrelationID(ctx))

			return nil
		})
	})
	require.NoError(t, err)
}

func TestManager_ExplicitFactoryKeepsItsGenerator(t *testing.T) {
	factory := NewContextFactory(nil, IDGeneratorFunc(func() string { return "factory" }))

	manager := NewManagerWithGenerator(factory, IDGeneratorFunc(func() string {
		t.Fatal("an explicit factory is used as is, the generator must not apply")

		return ""
	}), nil)

	err := manager.Correlate(context.Background(), func(ctx context.Context) error {
		assert.Equal(t, "factory", CorrelationID(ctx))

		return nil
	})
	require.NoError(t, err)
}

func TestManager_ScopeLogging(t *testing.T) {
	logger := &logur.TestLogger{}

	manager := NewManager(nil, nil, WithLogger(logger))

	err := manager.CorrelateWithID(context.Background(), "cid", func(ctx context.Context) error {
		// joining an existing scope is not logged
		return manager.Correlate(ctx, func(ctx context.Context) error {
			return nil
		})
	})
	require.NoError(t, err)

	events := logger.Events()
	require.Len(t, events, 2)

	for _, event := range events {
		assert.Equal(t, logur.Trace, event.Level)
		assert.Equal(t, map[string]interface{}{LogFieldKey: "cid"}, event.Fields)
	}

	assert.Equal(t, "correlated operation started", events[0].Line)
	assert.Equal(t, "correlated operation finished", events[1].Line)
}
