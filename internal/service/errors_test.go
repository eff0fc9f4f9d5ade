// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/ocms-pages/internal/model"
)

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"name": "is required", "applicationId": "is required"}}
	assert.Equal(t, "validation failed: applicationId is required, name is required", err.Error())
}

func TestNotFoundOr(t *testing.T) {
	err := notFoundOr(sql.ErrNoRows, "page", "p1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `page "p1"`)

	other := notFoundOr(errors.New("disk full"), "page", "p1")
	assert.NotErrorIs(t, other, ErrNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("constraint failed: UNIQUE constraint failed: pages.application_id, pages.name (2067)")))
	assert.False(t, isUniqueViolation(errors.New("other")))
	assert.False(t, isUniqueViolation(nil))
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	err := Validate(&model.Page{})

	var verr *ValidationError
	if assert.ErrorAs(t, err, &verr) {
		assert.Equal(t, "is required", verr.Fields["name"])
		assert.Equal(t, "is required", verr.Fields["applicationId"])
	}
}

func TestValidate_MaxLength(t *testing.T) {
	long := make([]rune, model.MaxPageNameLength+1)
	for i := range long {
		long[i] = 'ж'
	}
	err := Validate(&model.Page{ApplicationID: "a", Name: string(long)})

	var verr *ValidationError
	if assert.ErrorAs(t, err, &verr) {
		assert.Equal(t, "must be at most 255 characters", verr.Fields["name"])
	}

	assert.NoError(t, Validate(&model.Page{ApplicationID: "a", Name: string(long[:model.MaxPageNameLength])}))
}
