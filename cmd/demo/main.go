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

package main

import (
	"context"
	"net/http"
	"os"

	"emperror.dev/emperror"
	"emperror.dev/errors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/banzaicloud/correlation"
	"github.com/banzaicloud/correlation/gin/correlationid"
	"github.com/banzaicloud/correlation/internal/platform/errorhandler"
	"github.com/banzaicloud/correlation/internal/platform/log"
)

const (
	appName   = "correlation-demo"
	envPrefix = "demo"
)

func main() {
	v, p := viper.GetViper(), pflag.NewFlagSet(appName, pflag.ExitOnError)

	configure(v, p)

	_ = p.Parse(os.Args[1:])

	var config configuration
	err := v.Unmarshal(&config)
	emperror.Panic(errors.Wrap(err, "failed to unmarshal configuration"))

	err = config.Validate()
	emperror.Panic(errors.WithMessage(err, "invalid configuration"))

	// Create logger (first thing after configuration loading)
	logger := log.NewLogger(config.Log)

	// Override the global standard library logger to make sure everything uses our logger
	log.SetStandardLogger(logger)

	errorHandler := errorhandler.New(logger)
	defer emperror.HandleRecover(errorHandler)

	manager := correlation.NewManager(nil, nil, correlation.WithLogger(logger))

	httpClient := &http.Client{
		Transport: correlation.NewRoundTripper(nil),
	}

	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), correlationid.Middleware())

	engine.GET("/greeting", func(c *gin.Context) {
		ctx := c.Request.Context()

		err := manager.Correlate(ctx, func(ctx context.Context) error {
			correlation.Logger(ctx, logger).Info("greeting requested")

			return nil
		})
		if err != nil {
			correlation.ErrorHandler(ctx, errorHandler).Handle(err)
			c.Status(http.StatusInternalServerError)

			return
		}

		c.JSON(http.StatusOK, gin.H{
			"hello":         "world",
			"correlationId": correlation.CorrelationID(ctx),
		})
	})

	// Calls the greeting endpoint of this same server to demonstrate
	// correlation ID propagation to downstream services.
	engine.GET("/downstream", func(c *gin.Context) {
		ctx := c.Request.Context()

		value, err := manager.CorrelateValue(ctx, func(ctx context.Context) (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+c.Request.Host+"/greeting", nil)
			if err != nil {
				return nil, errors.WrapIf(err, "failed to create downstream request")
			}

			resp, err := httpClient.Do(req)
			if err != nil {
				return nil, errors.WrapIf(err, "failed to call downstream service")
			}
			defer resp.Body.Close()

			return resp.Header.Get(correlation.DefaultHeader), nil
		})
		if err != nil {
			correlation.ErrorHandler(ctx, errorHandler).Handle(err)
			c.Status(http.StatusInternalServerError)

			return
		}

		c.JSON(http.StatusOK, gin.H{"downstreamCorrelationId": value})
	})

	logger.Info("starting http server", map[string]interface{}{"addr": config.Addr})

	server := &http.Server{
		Addr:     config.Addr,
		Handler:  engine,
		ErrorLog: log.NewErrorStandardLogger(logger),
	}

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		emperror.Panic(errors.WrapIf(err, "http server terminated unexpectedly"))
	}
}
