// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// namePolicy strips every tag; names are rendered by clients as plain text.
var namePolicy = bluemonday.StrictPolicy()

// SanitizeName removes markup from a user supplied name and collapses whitespace.
// Entities escaped by the policy are decoded again so "Tom & Jerry" survives intact.
func SanitizeName(s string) string {
	cleaned := html.UnescapeString(namePolicy.Sanitize(s))
	return strings.Join(strings.Fields(cleaned), " ")
}
