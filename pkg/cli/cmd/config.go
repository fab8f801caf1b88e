/*
 * Copyright 2022 The Furiko Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/vrischmann/envconfig"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/furiko-io/k8s-psl/pkg/identifier"
)

const (
	// EnvPrefix is the prefix of environment variables that provide defaults
	// for flags, e.g. K8S_PSL_NAMESPACE for --namespace.
	EnvPrefix = "K8S_PSL"
)

// EnvConfig holds flag defaults read from the environment.
type EnvConfig struct {
	Namespace string `envconfig:"optional"`
	Label     string `envconfig:"optional"`
}

// LoadEnvConfig reads EnvConfig from the environment.
func LoadEnvConfig() (EnvConfig, error) {
	var env EnvConfig
	if err := envconfig.InitWithPrefix(&env, EnvPrefix); err != nil {
		return EnvConfig{}, errors.Wrapf(err, "cannot load environment")
	}
	return env, nil
}

// Config is the fully resolved configuration of a single run.
type Config struct {
	// Namespace of the resource to label.
	Namespace string

	// Label to apply once the command succeeds.
	Label identifier.Label

	// Resource to label.
	Resource identifier.ResourceRef

	// Command is the program to run followed by its arguments.
	Command []string

	// Kubeconfig is an explicit path to a kubeconfig file, if any.
	Kubeconfig string
}

// Complete resolves the Config from the command's flags, the environment and
// defaults, in that order of precedence. All invalid arguments are reported
// together.
func (c *RootCommand) Complete(cmd *cobra.Command, args []string) (Config, error) {
	env, err := LoadEnvConfig()
	if err != nil {
		return Config{}, err
	}

	namespace := firstNonEmpty(flagValue(cmd, "namespace", c.namespace), env.Namespace, metav1.NamespaceDefault)
	label, labelSet := env.Label, env.Label != ""
	if cmd.Flags().Changed("label") {
		label, labelSet = c.label, true
	}

	cfg := Config{
		Namespace:  namespace,
		Kubeconfig: c.kubeconfig,
	}

	allErrs := field.ErrorList{}
	if labelSet {
		parsed, err := identifier.ParseLabel(label)
		if err != nil {
			allErrs = append(allErrs, field.Invalid(field.NewPath("label"), label, err.Error()))
		}
		cfg.Label = parsed
	} else {
		allErrs = append(allErrs, field.Required(field.NewPath("label"),
			"must be specified with --label or "+EnvPrefix+"_LABEL"))
	}

	if len(args) > 0 {
		resource, err := identifier.ParseResource(args[0])
		if err != nil {
			allErrs = append(allErrs, field.Invalid(field.NewPath("resource"), args[0], err.Error()))
		}
		cfg.Resource = resource
		cfg.Command = args[1:]
	} else {
		allErrs = append(allErrs, field.Required(field.NewPath("resource"), "must be specified as <kind>/<name>"))
	}

	if err := allErrs.ToAggregate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// flagValue returns the value of a flag only if it was explicitly set.
func flagValue(cmd *cobra.Command, name, value string) string {
	if cmd.Flags().Changed(name) {
		return value
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
