// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/webhook"
)

func TestCreatePage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	app := env.createApp(t, "Shop")

	first, err := env.appPages.CreatePage(ctx, &model.Page{ApplicationID: app.ID, Name: "  <b>Home</b> "})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Home", first.Name)
	assert.Equal(t, "home", first.Slug)
	assert.True(t, first.IsDefault, "first page becomes default")
	assert.JSONEq(t, `{}`, string(first.Layout))
	assert.False(t, first.ViewMode)

	second := env.createPage(t, app.ID, "Checkout", `{"widgets":[{"type":"button"}]}`)
	assert.False(t, second.IsDefault)
	assert.JSONEq(t, `{"widgets":[{"type":"button"}]}`, string(second.Layout))

	assert.Equal(t, []string{webhook.EventPageCreated, webhook.EventPageCreated}, env.dispatcher.types())
}

func TestCreatePage_Errors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	app := env.createApp(t, "Shop")
	env.createPage(t, app.ID, "Home", "")

	tests := []struct {
		name    string
		page    *model.Page
		wantErr error
		field   string
	}{
		{name: "nil payload", page: nil, wantErr: ErrInvalidInput},
		{name: "missing name", page: &model.Page{ApplicationID: app.ID}, field: "name"},
		{name: "markup only name", page: &model.Page{ApplicationID: app.ID, Name: "<i></i>"}, field: "name"},
		{name: "missing application", page: &model.Page{Name: "About"}, field: "applicationId"},
		{name: "name too long", page: &model.Page{ApplicationID: app.ID, Name: strings.Repeat("a", 256)}, field: "name"},
		{name: "invalid layout", page: &model.Page{ApplicationID: app.ID, Name: "About", Layout: []byte(`{"a":`)}, field: "layout"},
		{name: "unknown application", page: &model.Page{ApplicationID: "nope", Name: "About"}, wantErr: ErrNotFound},
		{name: "duplicate name", page: &model.Page{ApplicationID: app.ID, Name: "Home"}, wantErr: ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.appPages.CreatePage(ctx, tt.page)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestGetPage_EditAndViewMode(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	app := env.createApp(t, "Shop")
	page := env.createPage(t, app.ID, "Home", `{"v":1}`)

	edit, err := env.appPages.GetPage(ctx, page.ID, false)
	require.NoError(t, err)
	assert.False(t, edit.ViewMode)
	assert.JSONEq(t, `{"v":1}`, string(edit.Layout))

	view, err := env.appPages.GetPage(ctx, page.ID, true)
	require.NoError(t, err)
	assert.Equal(t, page.ID, view.ID)
	assert.True(t, view.ViewMode)
	assert.Nil(t, view.Layout, "unpublished page has no view layout")

	_, err = env.appPages.PublishPage(ctx, page.ID)
	require.NoError(t, err)
	_, err = env.pages.Update(ctx, page.ID, &model.Page{Layout: []byte(`{"v":2}`)})
	require.NoError(t, err)

	view, err = env.appPages.GetPage(ctx, page.ID, true)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(view.Layout), "view returns the published layout")
	assert.NotNil(t, view.PublishedAt)

	edit, err = env.appPages.GetPage(ctx, page.ID, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(edit.Layout), "edit returns the draft layout")

	_, err = env.appPages.GetPage(ctx, "missing", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPageByName(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	app := env.createApp(t, "Shop")
	page := env.createPage(t, app.ID, "Home", "")

	got, err := env.appPages.GetPageByName(ctx, "Shop", "Home", true)
	require.NoError(t, err)
	assert.Equal(t, page.ID, got.ID)
	assert.True(t, got.ViewMode)

	_, err = env.appPages.GetPageByName(ctx, "Nope", "Home", true)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.appPages.GetPageByName(ctx, "Shop", "Nope", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClonePage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	app := env.createApp(t, "Shop")
	src := env.createPage(t, app.ID, "Home", `{"v":1}`)
	_, err := env.appPages.PublishPage(ctx, src.ID)
	require.NoError(t, err)

	first, err := env.appPages.ClonePage(ctx, src.ID)
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, first.ID)
	assert.Equal(t, app.ID, first.ApplicationID)
	assert.Equal(t, "Home Copy", first.Name)
	assert.Equal(t, "home-copy", first.Slug)
	assert.False(t, first.IsDefault)
	assert.Nil(t, first.PublishedAt)
	assert.JSONEq(t, `{"v":1}`, string(first.Layout))

	second, err := env.appPages.ClonePage(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "Home Copy 2", second.Name)

	_, err = env.appPages.ClonePage(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Contains(t, env.dispatcher.types(), webhook.EventPageCloned)
}

func TestCopyName_Truncates(t *testing.T) {
	long := strings.Repeat("x", model.MaxPageNameLength)
	name := copyName(long, 12)
	assert.Equal(t, model.MaxPageNameLength, len([]rune(name)))
	assert.True(t, strings.HasSuffix(name, " Copy 12"))
	assert.Equal(t, "Home Copy", copyName("Home", 1))
}

func TestPublishPage_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.appPages.PublishPage(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
