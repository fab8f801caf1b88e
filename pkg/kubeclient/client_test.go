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

package kubeclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/metadata"
	"k8s.io/client-go/rest"

	rerrors "github.com/furiko-io/k8s-psl/pkg/errors"
	"github.com/furiko-io/k8s-psl/pkg/exitcode"
	"github.com/furiko-io/k8s-psl/pkg/identifier"
	"github.com/furiko-io/k8s-psl/pkg/kubeclient"
	"github.com/furiko-io/k8s-psl/pkg/patcher"
	"github.com/furiko-io/k8s-psl/pkg/utils/testutils"
)

const (
	partialObjectMetadata = `{"apiVersion":"meta.k8s.io/v1","kind":"PartialObjectMetadata",` +
		`"metadata":{"name":"worker-1","namespace":"jobs","uid":"0b5a4f2e-1b8c-4f57-a9a3-2c3d3e1f0a11",` +
		`"labels":{"stage":"done"}}}`

	notFoundStatus = `{"apiVersion":"v1","kind":"Status","status":"Failure",` +
		`"message":"pods \"worker-1\" not found","reason":"NotFound","code":404}`
)

var (
	stageDone = identifier.Label{Key: "stage", Value: "done"}
	worker1   = identifier.ResourceRef{Kind: identifier.ResourceKindPod, Name: "worker-1"}
)

type request struct {
	method      string
	path        string
	query       string
	contentType string
	userAgent   string
	body        string
}

func newServer(t *testing.T, status int, response string, requests chan<- request) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		requests <- request{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.Query().Get("fieldManager"),
			contentType: r.Header.Get("Content-Type"),
			userAgent:   r.Header.Get("User-Agent"),
			body:        string(body),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
}

func TestWithTimeouts(t *testing.T) {
	cfg := &rest.Config{Host: "https://127.0.0.1:6443"}
	got := kubeclient.WithTimeouts(cfg, kubeclient.DefaultTimeouts)
	assert.Equal(t, 15*time.Second, got.Timeout)
	assert.NotNil(t, got.Dial)

	// The input config should not be modified.
	assert.Zero(t, cfg.Timeout)
	assert.Nil(t, cfg.Dial)
}

func TestDefaultTimeouts(t *testing.T) {
	assert.Equal(t, 15*time.Second, kubeclient.DefaultTimeouts.Connect)
	assert.Equal(t, 15*time.Second, kubeclient.DefaultTimeouts.ReadWrite)
}

func TestLoadConfig(t *testing.T) {
	_, err := kubeclient.LoadConfig("/nonexistent/kubeconfig")
	assert.Error(t, err)
}

func TestNew_ApplyLabel(t *testing.T) {
	requests := make(chan request, 1)
	server := newServer(t, http.StatusOK, partialObjectMetadata, requests)
	defer server.Close()

	client, err := kubeclient.New(&rest.Config{Host: server.URL})
	require.NoError(t, err)

	p := patcher.New(client, kubeclient.FieldManager)
	assert.NoError(t, p.ApplyLabel(context.Background(), "jobs", worker1, stageDone))

	req := <-requests
	assert.Equal(t, http.MethodPatch, req.method)
	assert.Equal(t, "/api/v1/namespaces/jobs/pods/worker-1", req.path)
	assert.Equal(t, "k8s-psl", req.query)
	assert.Equal(t, "application/apply-patch+yaml", req.contentType)
	assert.True(t, strings.HasSuffix(req.userAgent, "/"+kubeclient.UserAgent), "got user agent %v", req.userAgent)
	assert.JSONEq(t,
		`{"apiVersion":"v1","kind":"Pod","metadata":{"labels":{"stage":"done"},"name":"worker-1","namespace":"jobs"}}`,
		req.body,
	)
}

func TestNew_ApplyLabelToJob(t *testing.T) {
	requests := make(chan request, 1)
	server := newServer(t, http.StatusOK, partialObjectMetadata, requests)
	defer server.Close()

	client, err := kubeclient.New(&rest.Config{Host: server.URL})
	require.NoError(t, err)

	p := patcher.New(client, kubeclient.FieldManager)
	ref := identifier.ResourceRef{Kind: identifier.ResourceKindJob, Name: "batch-7"}
	assert.NoError(t, p.ApplyLabel(context.Background(), "default", ref, stageDone))

	req := <-requests
	assert.Equal(t, "/apis/batch/v1/namespaces/default/jobs/batch-7", req.path)
}

func TestNew_APIError(t *testing.T) {
	requests := make(chan request, 1)
	server := newServer(t, http.StatusNotFound, notFoundStatus, requests)
	defer server.Close()

	client, err := kubeclient.New(&rest.Config{Host: server.URL})
	require.NoError(t, err)

	p := patcher.New(client, kubeclient.FieldManager)
	err = p.ApplyLabel(context.Background(), "jobs", worker1, stageDone)
	assert.True(t, rerrors.IsAPIError(err), "expected API error, got %v", err)
	<-requests
}

func TestNew_EmptyName(t *testing.T) {
	requests := make(chan request, 1)
	server := newServer(t, http.StatusOK, partialObjectMetadata, requests)
	defer server.Close()

	client, err := kubeclient.New(&rest.Config{Host: server.URL})
	require.NoError(t, err)

	p := patcher.New(client, kubeclient.FieldManager)
	ref := identifier.ResourceRef{Kind: identifier.ResourceKindPod}
	err = p.ApplyLabel(context.Background(), "jobs", ref, stageDone)
	testutils.AssertErrorContains("name is required")(t, err)
	assert.Equal(t, rerrors.ReasonUnknown, rerrors.GetReason(err))
	assert.Equal(t, exitcode.GenericError, exitcode.FromError(exitcode.NewPatchError(err)))

	select {
	case req := <-requests:
		t.Errorf("expected no request to be sent, got %v %v", req.method, req.path)
	default:
	}
}

func TestNew_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	host := server.URL
	server.Close()

	client, err := kubeclient.New(&rest.Config{Host: host})
	require.NoError(t, err)

	p := patcher.New(client, kubeclient.FieldManager)
	err = p.ApplyLabel(context.Background(), "jobs", worker1, stageDone)
	assert.True(t, rerrors.IsServiceError(err), "expected service error, got %v", err)
}

func TestWithTimeouts_ReadTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	cfg := kubeclient.WithTimeouts(&rest.Config{Host: server.URL}, kubeclient.Timeouts{
		Connect:   time.Second,
		ReadWrite: 100 * time.Millisecond,
	})
	client, err := metadata.NewForConfig(cfg)
	require.NoError(t, err)

	p := patcher.New(client, kubeclient.FieldManager)
	err = p.ApplyLabel(context.Background(), "jobs", worker1, stageDone)
	assert.True(t, rerrors.IsServiceError(err), "expected service error, got %v", err)
}
