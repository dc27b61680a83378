// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package eventprocessor

import "errors"

// ErrInvalidConfig is returned when configuration is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrInvalidEvent is returned when a payload cannot be decoded or fails
// validation. Such messages are acknowledged and dropped: redelivery cannot
// fix them.
var ErrInvalidEvent = errors.New("invalid event")

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// ErrAlreadyStarted is returned when Start is called on a running pipeline.
var ErrAlreadyStarted = errors.New("pipeline already started")
