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

// Package correlation propagates a per-operation correlation ID through
// synchronous and asynchronous call chains, so that log entries, outgoing
// requests and error records emitted during one logical operation can be tied
// together, even across nested sub-operations.
//
// The ambient correlation context travels in a context.Context:
//
//	manager := correlation.NewManager(nil, nil)
//
//	err := manager.Correlate(ctx, func(ctx context.Context) error {
//		logger := correlation.Logger(ctx, logger)
//		logger.Info("processing")
//
//		return process(ctx)
//	})
//
// A failure escaping a scope carries the active correlation ID as an error
// detail; the original error remains reachable through errors.Is and errors.As.
package correlation
