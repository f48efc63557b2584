// Copyright © 2019 Banzai Cloud
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

package errorhandler

import (
	"emperror.dev/emperror"
	logurhandler "emperror.dev/handler/logur"
	"logur.dev/logur"
)

// Handlers aggregates multiple error handlers into a single one.
type Handlers []emperror.Handler

// Handle implements the emperror.Handler interface.
func (h Handlers) Handle(err error) {
	for _, handler := range h {
		handler.Handle(err)
	}
}

// New returns a new error handler logging errors through the given logger.
func New(logger logur.Logger) Handlers {
	return Handlers{logurhandler.WithStackInfo(logurhandler.New(logger))}
}
