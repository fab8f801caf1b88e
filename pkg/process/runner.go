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

package process

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	utilexec "k8s.io/utils/exec"
)

const (
	// NoExitCode is returned when the child process terminated without an exit
	// code, e.g. when it was killed by a signal.
	NoExitCode = -1
)

var (
	// ErrMissingCommand is returned when no command was given.
	ErrMissingCommand = errors.New("missing command")

	// ErrSpawn is returned when the command could not be started.
	ErrSpawn = errors.New("cannot start command")
)

// Streams are the standard streams handed to the child process. Passing
// *os.File values lets the child inherit the file descriptors directly.
type Streams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// Runner runs child processes to completion.
type Runner struct {
	exec    utilexec.Interface
	streams Streams
}

// NewRunner returns a Runner that spawns commands using exec and attaches the
// given streams to them.
func NewRunner(exec utilexec.Interface, streams Streams) *Runner {
	return &Runner{
		exec:    exec,
		streams: streams,
	}
}

// Run starts the command and waits for it to exit, returning its exit code.
// A non-zero exit code is not an error. An error is only returned if the
// command is empty or could not be started.
func (r *Runner) Run(ctx context.Context, command []string) (int, error) {
	if len(command) == 0 {
		return 0, ErrMissingCommand
	}

	cmd := r.exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.SetStdin(r.streams.In)
	cmd.SetStdout(r.streams.Out)
	cmd.SetStderr(r.streams.ErrOut)

	klog.V(1).InfoS("running command", "command", strings.Join(command, " "))
	err := cmd.Run()

	var exitErr utilexec.ExitError
	switch {
	case err == nil:
		klog.V(1).InfoS("command exited", "exitCode", 0)
		return 0, nil
	case errors.As(err, &exitErr):
		code := exitErr.ExitStatus()
		if !exitErr.Exited() {
			code = NoExitCode
		}
		klog.V(1).InfoS("command exited", "exitCode", code)
		return code, nil
	default:
		return 0, errors.Wrapf(ErrSpawn, "%v: %v", command[0], err)
	}
}
