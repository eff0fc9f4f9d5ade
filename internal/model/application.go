// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Application is the aggregate root owning a set of pages.
type Application struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=255"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
