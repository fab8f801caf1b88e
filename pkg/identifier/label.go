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

package identifier

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"
)

const (
	// LabelSegmentMaxLength is the maximum length of the name segment of a
	// label key, and of a label value.
	LabelSegmentMaxLength = 63

	// LabelPrefixMaxLength is the maximum length of the optional prefix of a
	// label key.
	LabelPrefixMaxLength = 253
)

var (
	// ErrInvalidLabel is returned when a label does not have the form key=value.
	ErrInvalidLabel = errors.New("invalid label")

	labelSegmentFmt = fmt.Sprintf(`[a-zA-Z0-9](?:[a-zA-Z0-9\-_.]{0,%d}[a-zA-Z0-9])?`, LabelSegmentMaxLength-2)
	labelPrefixFmt  = fmt.Sprintf(`[a-zA-Z0-9](?:[a-zA-Z0-9.]{0,%d}[a-zA-Z0-9])?`, LabelPrefixMaxLength-2)

	labelRegexp = regexp.MustCompile(
		fmt.Sprintf(`^((?:%v/)?%v)=(%v)$`, labelPrefixFmt, labelSegmentFmt, labelSegmentFmt),
	)
)

// Label is a single Kubernetes label.
type Label struct {
	Key   string
	Value string
}

// ParseLabel parses a label of the form key=value. The key may carry a prefix
// separated by a slash, e.g. example.com/stage=done.
func ParseLabel(input string) (Label, error) {
	matches := labelRegexp.FindStringSubmatch(input)
	if matches == nil {
		return Label{}, errors.Wrapf(ErrInvalidLabel, "%q does not match the format key=value", input)
	}
	return Label{
		Key:   matches[1],
		Value: matches[2],
	}, nil
}

// String returns the label in key=value form.
func (l Label) String() string {
	return l.Key + "=" + l.Value
}

// Map returns the label as a map suitable for ObjectMeta.Labels.
func (l Label) Map() map[string]string {
	return map[string]string{l.Key: l.Value}
}
