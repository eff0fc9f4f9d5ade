// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Home", "Home"},
		{"strips tags", "<b>Home</b>", "Home"},
		{"drops script", "Home<script>alert(1)</script>", "Home"},
		{"keeps ampersand", "Tom & Jerry", "Tom & Jerry"},
		{"collapses whitespace", "  Order \t  History \n", "Order History"},
		{"only markup", "<img src=x onerror=alert(1)>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
