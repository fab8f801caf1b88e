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

package main

import (
	"os"

	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/furiko-io/k8s-psl/pkg/cli/cmd"
)

func main() {
	// Cancelling the context on SIGINT/SIGTERM also terminates the child process.
	ctx := ctrl.SetupSignalHandler()
	streams := cmd.NewStdStreams()
	err := cmd.NewRootCommand(streams).ExecuteContext(ctx)
	code := cmd.HandleError(streams, err)
	klog.Flush()
	os.Exit(code)
}
