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

	"github.com/pkg/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/metadata"
)

// metadataClient wraps a fake metadata client and rejects requests without a
// name before they are recorded, the same way the real metadata client does.
type metadataClient struct {
	metadata.Interface
}

var _ metadata.Interface = (*metadataClient)(nil)

func (c *metadataClient) Resource(resource schema.GroupVersionResource) metadata.Getter {
	return &metadataGetter{Getter: c.Interface.Resource(resource)}
}

type metadataGetter struct {
	metadata.Getter
}

func (g *metadataGetter) Namespace(namespace string) metadata.ResourceInterface {
	return &metadataResourceClient{ResourceInterface: g.Getter.Namespace(namespace)}
}

func (g *metadataGetter) Patch(
	ctx context.Context,
	name string,
	pt types.PatchType,
	data []byte,
	options metav1.PatchOptions,
	subresources ...string,
) (*metav1.PartialObjectMetadata, error) {
	if len(name) == 0 {
		return nil, ErrNameRequired
	}
	return g.Getter.Patch(ctx, name, pt, data, options, subresources...)
}

type metadataResourceClient struct {
	metadata.ResourceInterface
}

func (c *metadataResourceClient) Patch(
	ctx context.Context,
	name string,
	pt types.PatchType,
	data []byte,
	options metav1.PatchOptions,
	subresources ...string,
) (*metav1.PartialObjectMetadata, error) {
	if len(name) == 0 {
		return nil, ErrNameRequired
	}
	return c.ResourceInterface.Patch(ctx, name, pt, data, options, subresources...)
}

// ErrNameRequired is returned by the metadata client for requests without a
// resource name.
var ErrNameRequired = errors.New("name is required")
