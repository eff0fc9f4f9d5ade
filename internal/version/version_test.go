// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package version

import "testing"

func TestGet(t *testing.T) {
	old := Version
	Version = "v1.0.0"
	defer func() { Version = old }()

	info := Get()
	if info.Version != "v1.0.0" {
		t.Errorf("Version = %q, want v1.0.0", info.Version)
	}
	if info.GitCommit != GitCommit || info.BuildTime != BuildTime {
		t.Errorf("Get() = %+v", info)
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "v1.2.3", GitCommit: "abc1234", BuildTime: "2026-01-30T12:00:00Z"}
	want := "ocms-pages v1.2.3 (commit abc1234, built 2026-01-30T12:00:00Z)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
