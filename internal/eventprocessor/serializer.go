// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package eventprocessor

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/curator/internal/validation"
)

// Encode validates an event and converts it to JSON bytes.
func Encode[T any](event *T) ([]byte, error) {
	if verr := validation.ValidateStruct(event); verr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEvent, verr.Error())
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Decode converts JSON bytes to an event and validates it. Any failure wraps
// ErrInvalidEvent.
func Decode[T any](data []byte) (*T, error) {
	var event T
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %v", ErrInvalidEvent, err)
	}
	if verr := validation.ValidateStruct(&event); verr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEvent, verr.Error())
	}
	return &event, nil
}
