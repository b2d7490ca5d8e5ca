// NoveList - Book Rating Prediction for To-Read Shelves
// Copyright 2026 NoveList contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/novelist-app/novelist

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rankParams struct {
	K       int    `validate:"omitempty,gte=1,lte=100"`
	Profile string `validate:"omitempty,oneof=a b c"`
}

func TestValidateStructPasses(t *testing.T) {
	tests := []struct {
		name string
		in   rankParams
	}{
		{"zero value", rankParams{}},
		{"valid k", rankParams{K: 10}},
		{"valid profile", rankParams{K: 1, Profile: "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ValidateStruct(&tt.in))
		})
	}
}

func TestValidateStructFails(t *testing.T) {
	tests := []struct {
		name      string
		in        rankParams
		wantField string
	}{
		{"k too large", rankParams{K: 101}, "K"},
		{"k negative", rankParams{K: -1}, "K"},
		{"unknown profile", rankParams{K: 5, Profile: "z"}, "Profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.in)
			require.NotNil(t, verr)

			apiErr := verr.ToAPIError()
			assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
			assert.Equal(t, tt.wantField, verr.Errors()[0].Field())
		})
	}
}

func TestToAPIErrorMultipleFields(t *testing.T) {
	verr := ValidateStruct(&rankParams{K: 500, Profile: "nope"})
	require.NotNil(t, verr)
	require.Len(t, verr.Errors(), 2)

	apiErr := verr.ToAPIError()
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Message, "K")
	assert.Contains(t, apiErr.Message, "Profile")
	assert.Contains(t, apiErr.Details, "fields")
}
