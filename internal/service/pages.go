// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/store"
	"github.com/olegiv/ocms-pages/internal/webhook"
)

// PageService answers page-name lookups and updates or deletes pages.
type PageService struct {
	*core
}

// NewPageService creates a new PageService.
func NewPageService(d Deps) *PageService {
	return &PageService{core: newCore(d)}
}

// FindNamesByApplicationID returns the page names of an application,
// ordered by creation time.
func (s *PageService) FindNamesByApplicationID(ctx context.Context, applicationID string) (*model.ApplicationPagesSummary, error) {
	return s.summaries.Get(ctx, applicationID, func() (*model.ApplicationPagesSummary, error) {
		if _, err := s.queries.GetApplicationByID(ctx, applicationID); err != nil {
			return nil, notFoundOr(err, "application", applicationID)
		}
		return s.loadSummary(ctx, applicationID)
	})
}

// FindNamesByApplicationName resolves the application by name and returns
// its page names.
func (s *PageService) FindNamesByApplicationName(ctx context.Context, applicationName string) (*model.ApplicationPagesSummary, error) {
	app, err := s.queries.GetApplicationByName(ctx, applicationName)
	if err != nil {
		return nil, notFoundOr(err, "application", applicationName)
	}
	return s.summaries.Get(ctx, app.ID, func() (*model.ApplicationPagesSummary, error) {
		return s.loadSummary(ctx, app.ID)
	})
}

func (s *PageService) loadSummary(ctx context.Context, applicationID string) (*model.ApplicationPagesSummary, error) {
	rows, err := s.queries.ListPagesByApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("listing pages of application %q: %w", applicationID, err)
	}

	summary := &model.ApplicationPagesSummary{
		ApplicationID: applicationID,
		Pages:         make([]model.PageNameID, 0, len(rows)),
	}
	for _, r := range rows {
		summary.Pages = append(summary.Pages, model.PageNameID{
			ID:        r.ID,
			Name:      r.Name,
			Slug:      r.Slug,
			IsDefault: r.IsDefault,
		})
	}
	return summary, nil
}

// Update renames a page and/or replaces its draft layout. Empty fields of
// patch, including a JSON null layout, are left unchanged. Pages cannot move between applications.
func (s *PageService) Update(ctx context.Context, id string, patch *model.Page) (*model.Page, error) {
	if patch == nil {
		return nil, fmt.Errorf("%w: page payload is required", ErrInvalidInput)
	}

	var updated store.Page
	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		current, err := q.GetPageByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "page", id)
		}
		if patch.ApplicationID != "" && patch.ApplicationID != current.ApplicationID {
			return fmt.Errorf("%w: a page cannot be moved to another application", ErrInvalidInput)
		}

		params := store.UpdatePageParams{
			ID:        id,
			Name:      current.Name,
			Slug:      current.Slug,
			Layout:    current.Layout,
			UpdatedAt: time.Now().UTC(),
		}

		if patch.Name != "" {
			name, err := cleanName(patch.Name)
			if err != nil {
				return err
			}
			if name != current.Name {
				exists, err := q.PageNameExists(ctx, store.PageNameExistsParams{
					ApplicationID: current.ApplicationID,
					Name:          name,
					ExcludeID:     id,
				})
				if err != nil {
					return fmt.Errorf("checking page name: %w", err)
				}
				if exists {
					return fmt.Errorf("page %q in application %q: %w", name, current.ApplicationID, ErrConflict)
				}
				params.Name = name
				params.Slug = pageSlug(name)
			}
		}

		if hasLayout(patch.Layout) {
			layout, err := normalizeLayout(patch.Layout)
			if err != nil {
				return err
			}
			params.Layout = layout
		}

		updated, err = q.UpdatePage(ctx, params)
		if isUniqueViolation(err) {
			return fmt.Errorf("page %q in application %q: %w", params.Name, current.ApplicationID, ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("updating page %q: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := pageFromRow(updated).ForMode(false)
	s.afterPageMutation(ctx, webhook.EventPageUpdated, result, "")
	return &result, nil
}

// Delete removes a page and returns it. When the default page is deleted the
// oldest remaining page of the application becomes the default.
func (s *PageService) Delete(ctx context.Context, id string) (*model.Page, error) {
	var deleted store.Page
	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		var err error
		deleted, err = q.GetPageByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "page", id)
		}

		if err := q.DeletePage(ctx, id); err != nil {
			return fmt.Errorf("deleting page %q: %w", id, err)
		}
		if !deleted.IsDefault {
			return nil
		}

		remaining, err := q.ListPagesByApplication(ctx, deleted.ApplicationID)
		if err != nil {
			return fmt.Errorf("listing remaining pages: %w", err)
		}
		if len(remaining) == 0 {
			return nil
		}
		return q.SetDefaultPage(ctx, store.SetDefaultPageParams{
			ApplicationID: deleted.ApplicationID,
			PageID:        remaining[0].ID,
		})
	})
	if err != nil {
		return nil, err
	}

	result := pageFromRow(deleted).ForMode(false)
	s.afterPageMutation(ctx, webhook.EventPageDeleted, result, "")
	return &result, nil
}
