// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

// Package validation validates HTTP request structs with go-playground/validator v10.
//
// A single validator instance is built once and shared; it caches struct
// metadata and is safe for concurrent use. Failures come back as
// *RequestValidationError, which converts to the API's VALIDATION_ERROR shape.
//
// # Custom tags
//
//   - travelmode: one of driving, walking, cycling (case-insensitive)
//   - userid: a non-blank tracking user id without path separators
//
// # Usage
//
//	type SnapRequest struct {
//	    Mode    string   `validate:"omitempty,travelmode"`
//	    UserIDs []string `validate:"max=500,dive,userid"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
