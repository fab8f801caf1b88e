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

package kubeclient

import (
	"net"
	"time"

	"github.com/pkg/errors"
	"k8s.io/client-go/metadata"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
)

const (
	// FieldManager is the field manager used for server-side apply requests.
	FieldManager = "k8s-psl"

	// UserAgent is sent with every request to the API server.
	UserAgent = "k8s-psl"
)

// Timeouts bound the time spent waiting on the API server.
type Timeouts struct {
	// Connect bounds establishing the TCP connection.
	Connect time.Duration

	// ReadWrite bounds each request, from sending it until the response body
	// has been read.
	ReadWrite time.Duration
}

// DefaultTimeouts are used when talking to the API server.
var DefaultTimeouts = Timeouts{
	Connect:   15 * time.Second,
	ReadWrite: 15 * time.Second,
}

// LoadConfig returns the kubeconfig to use. If path is empty, the config is
// inferred from the --kubeconfig flag, $KUBECONFIG, the in-cluster config and
// ~/.kube/config, in that order.
func LoadConfig(path string) (*rest.Config, error) {
	if path != "" {
		klog.V(1).InfoS("loading kubeconfig from --kubeconfig", "path", path)
		cfg, err := clientcmd.BuildConfigFromFlags("", path)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot load kubeconfig from %v", path)
		}
		return cfg, nil
	}

	klog.V(1).InfoS("inferring kubeconfig")
	cfg, err := ctrl.GetConfig()
	if err != nil {
		return nil, errors.Wrap(err, "cannot get kubeconfig")
	}
	return cfg, nil
}

// WithTimeouts returns a copy of cfg that uses the given timeouts.
func WithTimeouts(cfg *rest.Config, timeouts Timeouts) *rest.Config {
	cfg = rest.CopyConfig(cfg)
	cfg.Dial = (&net.Dialer{
		Timeout:   timeouts.Connect,
		KeepAlive: 30 * time.Second,
	}).DialContext
	cfg.Timeout = timeouts.ReadWrite
	return cfg
}

// New returns a metadata client for cfg with DefaultTimeouts applied.
func New(cfg *rest.Config) (metadata.Interface, error) {
	cfg = WithTimeouts(rest.AddUserAgent(rest.CopyConfig(cfg), UserAgent), DefaultTimeouts)
	client, err := metadata.NewForConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create metadata client")
	}
	return client, nil
}

// NewFromKubeconfig loads the kubeconfig at path (or infers it when empty)
// and returns a metadata client for it.
func NewFromKubeconfig(path string) (metadata.Interface, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}
