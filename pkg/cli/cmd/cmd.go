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
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/client-go/metadata"
	"k8s.io/klog/v2"
	utilexec "k8s.io/utils/exec"

	"github.com/furiko-io/k8s-psl/pkg/exitcode"
	"github.com/furiko-io/k8s-psl/pkg/kubeclient"
	"github.com/furiko-io/k8s-psl/pkg/patcher"
	"github.com/furiko-io/k8s-psl/pkg/process"
	"github.com/furiko-io/k8s-psl/pkg/utils/logging"
)

var (
	RootExample = PrepareExample(`
# Label Pod worker-1 in namespace jobs with stage=done once the command succeeds.
{{.CommandName}} pod/worker-1 -n jobs -l stage=done -- ./process-batch.sh --all

# Read the label from the environment.
K8S_PSL_LABEL=example.com/stage=done {{.CommandName}} job/batch-7 make test

# Flags after the first token of the command are passed to the command.
{{.CommandName}} pod/worker-1 -l stage=done sh -c "exit 0"`)
)

// ClientFactory creates a metadata client from an optional kubeconfig path.
type ClientFactory func(kubeconfig string) (metadata.Interface, error)

// Option customizes the root command.
type Option func(c *RootCommand)

// WithExec overrides how child processes are spawned.
func WithExec(exec utilexec.Interface) Option {
	return func(c *RootCommand) {
		c.exec = exec
	}
}

// WithClientFactory overrides how the Kubernetes client is created.
func WithClientFactory(newClient ClientFactory) Option {
	return func(c *RootCommand) {
		c.newClient = newClient
	}
}

type RootCommand struct {
	streams   *Streams
	exec      utilexec.Interface
	newClient ClientFactory

	namespace  string
	label      string
	kubeconfig string
	verbosity  int
}

// NewRootCommand returns a new root command for the command-line utility.
func NewRootCommand(streams *Streams, opts ...Option) *cobra.Command {
	c := &RootCommand{
		streams:   streams,
		exec:      utilexec.New(),
		newClient: kubeclient.NewFromKubeconfig,
	}
	for _, opt := range opts {
		opt(c)
	}

	cmd := &cobra.Command{
		Use:   CommandName + " <kind>/<name> [--] <command> [args...]",
		Short: "Runs a command and labels a Pod or Job once it succeeds.",
		Long: `Runs a command to completion and, only if it exits successfully, applies a label to a Pod or Job.

The label is applied with server-side apply using the field manager "` + kubeclient.FieldManager + `",
so running the command again with the same label is a no-op and labels owned by others are left untouched.

Flags are read up to the first token of the command, or up to "--". Everything after that is passed to
the command verbatim.

Exit codes:
  0    The command succeeded and the label was applied.
  N    The command exited with code N; no label was applied.
  1    The command could not be started, or an unexpected error occurred.
  2    Invalid arguments.
  66   The API server rejected the request, e.g. the resource was not found.
  68   The API server could not be reached.`,
		Example: RootExample,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		RunE:    c.Run,

		// Errors are printed by the caller, which also decides the exit code.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Set IO streams.
	streams.SetCmdOutput(cmd)

	// Stop at the resource, flags between the resource and the command are
	// parsed in Run.
	flags := cmd.Flags()
	flags.SetInterspersed(false)
	flags.StringVarP(&c.namespace, "namespace", "n", "",
		`Namespace of the resource. Defaults to $`+EnvPrefix+`_NAMESPACE, or "default".`)
	flags.StringVarP(&c.label, "label", "l", "",
		"Label to apply in the form key=value. Defaults to $"+EnvPrefix+"_LABEL.")
	flags.StringVar(&c.kubeconfig, "kubeconfig", "",
		"Path to the kubeconfig file to use. If unset, the kubeconfig is inferred from $KUBECONFIG, "+
			"the in-cluster config or ~/.kube/config.")
	flags.IntVarP(&c.verbosity, "v", "v", 0, "Sets the log level verbosity.")

	return cmd
}

func (c *RootCommand) Run(cmd *cobra.Command, args []string) error {
	args, err := ParseTrailingFlags(cmd, args)
	if err != nil {
		return exitcode.NewUsageError(err)
	}

	// --help and --version may also appear after the resource.
	if help, _ := cmd.Flags().GetBool("help"); help {
		return cmd.Help()
	}
	if version, _ := cmd.Flags().GetBool("version"); version {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%v version %v\n", cmd.Name(), cmd.Version)
		return nil
	}

	if err := logging.Configure(c.verbosity); err != nil {
		return exitcode.NewUsageError(errors.Wrap(err, "cannot set log level"))
	}

	cfg, err := c.Complete(cmd, args)
	if err != nil {
		return exitcode.NewUsageError(err)
	}
	return c.run(cmd.Context(), cfg)
}

// ParseTrailingFlags parses the flags placed between the resource and the
// command. Parsing stops at the first token of the command or at "--", and
// the returned args are the resource followed by the command verbatim.
func ParseTrailingFlags(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) < 2 {
		return args, nil
	}
	flags := cmd.Flags()
	if err := flags.Parse(args[1:]); err != nil {
		return nil, err
	}
	return append([]string{args[0]}, flags.Args()...), nil
}

func (c *RootCommand) run(ctx context.Context, cfg Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := c.newClient(cfg.Kubeconfig)
	if err != nil {
		return exitcode.NewOtherError(errors.Wrap(err, "cannot create kubernetes client"))
	}

	runner := process.NewRunner(c.exec, c.streams.ProcessStreams())
	code, err := runner.Run(ctx, cfg.Command)
	if err != nil {
		return exitcode.NewSpawnError(err)
	}
	if code != 0 {
		klog.V(1).InfoS("command failed, not applying label", "exitCode", code)
		return exitcode.NewChildError(code)
	}

	p := patcher.New(client, kubeclient.FieldManager)
	if err := p.ApplyLabel(ctx, cfg.Namespace, cfg.Resource, cfg.Label); err != nil {
		return exitcode.NewPatchError(err)
	}

	return nil
}
