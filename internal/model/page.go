// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared by the store, services and handlers.
package model

import (
	"encoding/json"
	"time"
)

// MaxPageNameLength is the longest page name accepted on create and rename.
const MaxPageNameLength = 255

// EmptyLayout is the layout given to pages created without one.
var EmptyLayout = json.RawMessage(`{}`)

// Page is a unit of UI content belonging to an application.
//
// Layout carries the draft layout in edit mode and the published layout in
// view mode. PublishedLayout is never serialized; it is only populated when a
// page is read from the store.
type Page struct {
	ID              string          `json:"id"`
	ApplicationID   string          `json:"applicationId" validate:"required,max=64"`
	Name            string          `json:"name" validate:"required,max=255"`
	Slug            string          `json:"slug"`
	IsDefault       bool            `json:"isDefault"`
	Layout          json.RawMessage `json:"layout"`
	PublishedLayout json.RawMessage `json:"-"`
	PublishedAt     *time.Time      `json:"publishedAt,omitempty"`
	ViewMode        bool            `json:"viewMode"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// IsPublished returns true if the page has been published at least once.
func (p *Page) IsPublished() bool {
	return p.PublishedAt != nil
}

// ForMode returns a copy of the page projected for edit or view mode.
func (p Page) ForMode(viewMode bool) Page {
	p.ViewMode = viewMode
	if viewMode {
		p.Layout = p.PublishedLayout
	}
	return p
}

// PageNameID is one entry of an ApplicationPagesSummary.
type PageNameID struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	IsDefault bool   `json:"isDefault"`
}

// ApplicationPagesSummary lists the page names of one application.
type ApplicationPagesSummary struct {
	ApplicationID string       `json:"applicationId"`
	Pages         []PageNameID `json:"pages"`
}

// DefaultPage returns the default page entry, if any.
func (s *ApplicationPagesSummary) DefaultPage() (PageNameID, bool) {
	for _, p := range s.Pages {
		if p.IsDefault {
			return p, true
		}
	}
	return PageNameID{}, false
}
