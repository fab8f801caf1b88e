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
	"strings"

	"github.com/fatih/color"
	"github.com/kr/text"

	"github.com/furiko-io/k8s-psl/pkg/exitcode"
)

const (
	// CommandName is the name of the command-line utility.
	CommandName = "k8s-psl"
)

var (
	// Version is set at build time.
	Version = "dev"
)

// PrepareExample replaces the root command name and indents all lines.
func PrepareExample(example string) string {
	example = strings.TrimPrefix(example, "\n")
	example = strings.ReplaceAll(example, "{{.CommandName}}", CommandName)
	return text.Indent(example, "  ")
}

// HandleError writes err to the error stream and returns the exit code that
// the process should terminate with. A failed child process has already
// reported its own error, so only its exit code is propagated.
func HandleError(streams *Streams, err error) int {
	code := exitcode.FromError(err)
	if err == nil || exitcode.IsSilent(err) {
		return code
	}

	msg := err.Error()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	_, _ = color.New(color.FgRed, color.Bold).Fprint(streams.ErrOut, "Error: ")
	streams.Eprint(msg)
	if code == exitcode.UsageError {
		streams.Eprintf("Run '%v --help' for usage.\n", CommandName)
	}

	return code
}
