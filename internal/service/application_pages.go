// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/store"
	"github.com/olegiv/ocms-pages/internal/util"
	"github.com/olegiv/ocms-pages/internal/webhook"
)

// maxCopyAttempts bounds the search for a free "<name> Copy N" name.
const maxCopyAttempts = 1000

// ApplicationPageService creates, reads, clones and publishes pages within
// the context of their application.
type ApplicationPageService struct {
	*core
}

// NewApplicationPageService creates a new ApplicationPageService.
func NewApplicationPageService(d Deps) *ApplicationPageService {
	return &ApplicationPageService{core: newCore(d)}
}

// CreatePage validates and stores a new page. The first page of an
// application becomes its default page.
func (s *ApplicationPageService) CreatePage(ctx context.Context, page *model.Page) (*model.Page, error) {
	if page == nil {
		return nil, fmt.Errorf("%w: page payload is required", ErrInvalidInput)
	}

	input := *page
	input.Name = util.SanitizeName(input.Name)
	if err := Validate(&input); err != nil {
		return nil, err
	}
	name := input.Name
	layout, err := normalizeLayout(input.Layout)
	if err != nil {
		return nil, err
	}

	var created store.Page
	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		if _, err := q.GetApplicationByID(ctx, input.ApplicationID); err != nil {
			return notFoundOr(err, "application", input.ApplicationID)
		}

		exists, err := q.PageNameExists(ctx, store.PageNameExistsParams{ApplicationID: input.ApplicationID, Name: name})
		if err != nil {
			return fmt.Errorf("checking page name: %w", err)
		}
		if exists {
			return fmt.Errorf("page %q in application %q: %w", name, input.ApplicationID, ErrConflict)
		}

		count, err := q.CountPagesByApplication(ctx, input.ApplicationID)
		if err != nil {
			return fmt.Errorf("counting pages: %w", err)
		}

		now := time.Now().UTC()
		created, err = q.CreatePage(ctx, store.CreatePageParams{
			ID:            uuid.NewString(),
			ApplicationID: input.ApplicationID,
			Name:          name,
			Slug:          pageSlug(name),
			IsDefault:     count == 0,
			Layout:        layout,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if isUniqueViolation(err) {
			return fmt.Errorf("page %q in application %q: %w", name, input.ApplicationID, ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("creating page: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := pageFromRow(created).ForMode(false)
	s.afterPageMutation(ctx, webhook.EventPageCreated, result, "")
	return &result, nil
}

// GetPage returns the page in edit mode (draft layout) or view mode
// (published layout, null when never published).
func (s *ApplicationPageService) GetPage(ctx context.Context, id string, viewMode bool) (*model.Page, error) {
	row, err := s.queries.GetPageByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "page", id)
	}
	p := pageFromRow(row).ForMode(viewMode)
	return &p, nil
}

// GetPageByName looks a page up by its application's name and its own name.
func (s *ApplicationPageService) GetPageByName(ctx context.Context, applicationName, pageName string, viewMode bool) (*model.Page, error) {
	app, err := s.queries.GetApplicationByName(ctx, applicationName)
	if err != nil {
		return nil, notFoundOr(err, "application", applicationName)
	}

	row, err := s.queries.GetPageByName(ctx, store.GetPageByNameParams{ApplicationID: app.ID, Name: pageName})
	if err != nil {
		return nil, notFoundOr(err, "page", pageName)
	}
	p := pageFromRow(row).ForMode(viewMode)
	return &p, nil
}

// ClonePage copies a page's draft layout into a new, unpublished,
// non-default page of the same application.
func (s *ApplicationPageService) ClonePage(ctx context.Context, id string) (*model.Page, error) {
	var clone store.Page
	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		src, err := q.GetPageByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "page", id)
		}

		name, err := freeCopyName(ctx, q, src.ApplicationID, src.Name)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		clone, err = q.CreatePage(ctx, store.CreatePageParams{
			ID:            uuid.NewString(),
			ApplicationID: src.ApplicationID,
			Name:          name,
			Slug:          pageSlug(name),
			IsDefault:     false,
			Layout:        src.Layout,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return fmt.Errorf("creating clone of page %q: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := pageFromRow(clone).ForMode(false)
	s.afterPageMutation(ctx, webhook.EventPageCloned, result, id)
	return &result, nil
}

// PublishPage copies the draft layout to the published layout.
func (s *ApplicationPageService) PublishPage(ctx context.Context, id string) (*model.Page, error) {
	row, err := s.queries.PublishPage(ctx, store.PublishPageParams{ID: id, PublishedAt: time.Now().UTC()})
	if err != nil {
		return nil, notFoundOr(err, "page", id)
	}

	result := pageFromRow(row).ForMode(false)
	s.afterPageMutation(ctx, webhook.EventPagePublished, result, "")
	return &result, nil
}

// freeCopyName returns the first unused name among "<name> Copy",
// "<name> Copy 2", "<name> Copy 3"...
func freeCopyName(ctx context.Context, q *store.Queries, applicationID, name string) (string, error) {
	for n := 1; n <= maxCopyAttempts; n++ {
		candidate := copyName(name, n)
		exists, err := q.PageNameExists(ctx, store.PageNameExistsParams{ApplicationID: applicationID, Name: candidate})
		if err != nil {
			return "", fmt.Errorf("checking page name: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free copy name for page %q: %w", name, ErrConflict)
}

// copyName builds the n-th copy name, shortening the base name so the
// result stays within MaxPageNameLength characters.
func copyName(name string, n int) string {
	suffix := " Copy"
	if n > 1 {
		suffix = fmt.Sprintf(" Copy %d", n)
	}

	room := model.MaxPageNameLength - utf8.RuneCountInString(suffix)
	if runes := []rune(name); len(runes) > room {
		name = string(runes[:room])
	}
	return name + suffix
}
