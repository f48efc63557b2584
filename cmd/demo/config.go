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
	"strings"

	"emperror.dev/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/banzaicloud/correlation/internal/platform/log"
)

// configuration holds any kind of configuration that comes from the outside world
// and is necessary for running the application.
type configuration struct {
	// Log configuration
	Log log.Config

	// HTTP server address
	Addr string
}

// Validate validates the configuration.
func (c configuration) Validate() error {
	if c.Addr == "" {
		return errors.New("http server address is required")
	}

	return errors.WithMessage(c.Log.Validate(), "invalid log configuration")
}

// configure configures some defaults in the Viper instance.
func configure(v *viper.Viper, p *pflag.FlagSet) {
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	p.String("addr", ":8000", "HTTP server address")
	_ = v.BindPFlag("addr", p.Lookup("addr"))

	v.SetDefault("log.format", "logfmt")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.nocolor", false)
}
