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

package testing

import (
	"context"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/client-go/metadata"
	metadatafake "k8s.io/client-go/metadata/fake"
	ktesting "k8s.io/client-go/testing"
	utilexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"

	"github.com/furiko-io/k8s-psl/pkg/cli/cmd"
)

// RunCommandTests executes all CommandTest cases.
func RunCommandTests(t *testing.T, cases []CommandTest) {
	for _, tt := range cases {
		tt := tt
		t.Run(tt.Name, func(t *testing.T) {
			tt.Run(t)
		})
	}
}

// CommandTest encapsulates a single CLI command test case to be run.
type CommandTest struct {
	// Name of the test case.
	Name string

	// Arguments to be passed to the command.
	Args []string

	// Environment variables to set while running the command.
	Env map[string]string

	// Exit code of the child process.
	ChildExitCode int

	// If specified, the child process fails to start with this error.
	ChildSpawnError error

	// If specified, creating the Kubernetes client fails with this error.
	ClientError error

	// If specified, the API server responds to patch requests with this error.
	PatchError error

	// The command expected to be spawned. If empty, expects that no child
	// process was spawned.
	WantCommand []string

	// The kubeconfig path expected to be used to create the client.
	WantKubeconfig string

	// Actions expected to be sent to the API server.
	WantActions ActionTest

	// Output rules for standard output.
	Stdout Output

	// Output rules for standard error.
	Stderr Output

	// Expected exit code of the command-line utility.
	WantExitCode int

	// If specified, a function to check the error returned by the command.
	WantError assert.ErrorAssertionFunc
}

type Output struct {
	// If specified, expects the output to match exactly.
	Exact string

	// If specified, expects the output to contain the given string.
	Contains string

	// If specified, expects the output to contain all the given strings.
	ContainsAll []string

	// If specified, expects the output to not contain any of the given strings.
	ExcludesAll []string

	// If specified, expects the output to match the given regular expression.
	Matches *regexp.Regexp
}

func (c *CommandTest) Run(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.setEnv(t)

	fakeCmd := &testingexec.FakeCmd{
		RunScript: []testingexec.FakeAction{
			func() ([]byte, []byte, error) {
				return nil, nil, c.childResult()
			},
		},
	}
	fakeExec := &testingexec.FakeExec{
		CommandScript: []testingexec.FakeCommandAction{
			func(cmd string, args ...string) utilexec.Cmd {
				return testingexec.InitFakeCmd(fakeCmd, cmd, args...)
			},
		},
	}

	client := c.newMetadataClient(t)
	var gotKubeconfig string
	newClient := func(kubeconfig string) (metadata.Interface, error) {
		gotKubeconfig = kubeconfig
		if c.ClientError != nil {
			return nil, c.ClientError
		}
		return &metadataClient{Interface: client}, nil
	}

	// Prepare root command.
	iostreams, _, stdout, stderr := genericclioptions.NewTestIOStreams()
	streams := cmd.NewStreams(iostreams)
	command := cmd.NewRootCommand(streams, cmd.WithExec(fakeExec), cmd.WithClientFactory(newClient))

	// Set args and execute.
	command.SetArgs(c.Args)
	err := command.ExecuteContext(ctx)
	code := cmd.HandleError(streams, err)

	// Check for error.
	if c.WantError != nil {
		c.WantError(t, err, "Run error with args: %v", c.Args)
	}
	if code != c.WantExitCode {
		t.Errorf("Exit code with args %v = %v, want %v (error: %v)", c.Args, code, c.WantExitCode, err)
	}

	// Check the spawned command.
	if len(c.WantCommand) == 0 {
		if fakeExec.CommandCalls > 0 {
			t.Errorf("Expected no command to be run, got %v", fakeCmd.Argv)
		}
	} else if !cmp.Equal(c.WantCommand, fakeCmd.Argv) {
		t.Errorf("Command not equal\ndiff = %v", cmp.Diff(c.WantCommand, fakeCmd.Argv))
	}

	if gotKubeconfig != c.WantKubeconfig {
		t.Errorf("Kubeconfig = %v, want %v", gotKubeconfig, c.WantKubeconfig)
	}

	// Check actions sent to the API server.
	CompareActions(t, c.WantActions, client.Actions())

	// Ensure that output matches.
	c.checkOutput(t, "stdout", stdout.String(), c.Stdout)
	c.checkOutput(t, "stderr", stderr.String(), c.Stderr)
}

func (c *CommandTest) setEnv(t *testing.T) {
	for _, key := range []string{cmd.EnvPrefix + "_NAMESPACE", cmd.EnvPrefix + "_LABEL"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("cannot unset %v: %v", key, err)
		}
	}
	for key, value := range c.Env {
		t.Setenv(key, value)
	}
}

func (c *CommandTest) childResult() error {
	if c.ChildSpawnError != nil {
		return c.ChildSpawnError
	}
	if c.ChildExitCode != 0 {
		return &testingexec.FakeExitError{Status: c.ChildExitCode}
	}
	return nil
}

func (c *CommandTest) newMetadataClient(t *testing.T) *metadatafake.FakeMetadataClient {
	scheme := runtime.NewScheme()
	if err := metav1.AddMetaToScheme(scheme); err != nil {
		t.Fatalf("cannot add meta types to scheme: %v", err)
	}
	client := metadatafake.NewSimpleMetadataClient(scheme)
	client.PrependReactor("patch", "*", func(action ktesting.Action) (bool, runtime.Object, error) {
		if c.PatchError != nil {
			return true, nil, c.PatchError
		}
		patch := action.(ktesting.PatchAction)
		return true, &metav1.PartialObjectMetadata{
			ObjectMeta: metav1.ObjectMeta{
				Name:      patch.GetName(),
				Namespace: patch.GetNamespace(),
			},
		}, nil
	})
	return client
}

func (c *CommandTest) checkOutput(t *testing.T, name, s string, output Output) {
	if output.Exact != "" && s != output.Exact {
		t.Errorf("Output in %v not equal\ndiff = %v", name, cmp.Diff(output.Exact, s))
	}

	if output.Contains != "" && !strings.Contains(s, output.Contains) {
		t.Errorf(`Output in %v did not contain expected string "%v", got: %v`, name, output.Contains, s)
	}

	for _, contains := range output.ContainsAll {
		if !strings.Contains(s, contains) {
			t.Errorf(`Output in %v did not contain expected string "%v", got: %v`, name, contains, s)
		}
	}

	for _, excludes := range output.ExcludesAll {
		if strings.Contains(s, excludes) {
			t.Errorf(`Output in %v contained unexpected string "%v", got: %v`, name, excludes, s)
		}
	}

	if output.Matches != nil && !output.Matches.MatchString(s) {
		t.Errorf(`Output in %v did not match regex "%v", got: %v`, name, output.Matches, s)
	}
}
