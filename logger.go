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

	"emperror.dev/emperror"
	"github.com/sirupsen/logrus"
	"logur.dev/logur"
)

// LogFieldKey is the log field name the correlation ID appears under.
const LogFieldKey = "correlation-id"

// Logger returns a new logger instance with the ambient correlation ID in it.
func Logger(ctx context.Context, logger logur.Logger) logur.Logger {
	cid := CorrelationID(ctx)
	if cid == "" {
		return logger
	}

	return logur.WithFields(logger, map[string]interface{}{LogFieldKey: cid})
}

// LogrusLogger returns a new logrus logger instance with the ambient correlation ID in it.
func LogrusLogger(ctx context.Context, logger logrus.FieldLogger) logrus.FieldLogger {
	cid := CorrelationID(ctx)
	if cid == "" {
		return logger
	}

	return logger.WithField(LogFieldKey, cid)
}

// ErrorHandler returns a new error handler with the ambient correlation ID in its details.
func ErrorHandler(ctx context.Context, errorHandler emperror.Handler) emperror.Handler {
	cid := CorrelationID(ctx)
	if cid == "" {
		return errorHandler
	}

	return emperror.WithDetails(errorHandler, ErrorDetailsKey, cid)
}
