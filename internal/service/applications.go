// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/store"
	"github.com/olegiv/ocms-pages/internal/util"
)

// ApplicationService manages the applications that own pages.
type ApplicationService struct {
	*core
}

// NewApplicationService creates a new ApplicationService.
func NewApplicationService(d Deps) *ApplicationService {
	return &ApplicationService{core: newCore(d)}
}

// Create stores a new application with a unique name.
func (s *ApplicationService) Create(ctx context.Context, app *model.Application) (*model.Application, error) {
	if app == nil {
		return nil, fmt.Errorf("%w: application payload is required", ErrInvalidInput)
	}
	input := *app
	input.Name = util.SanitizeName(input.Name)
	if err := Validate(&input); err != nil {
		return nil, err
	}

	exists, err := s.queries.ApplicationNameExists(ctx, store.ApplicationNameExistsParams{Name: input.Name})
	if err != nil {
		return nil, fmt.Errorf("checking application name: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("application %q: %w", input.Name, ErrConflict)
	}

	now := time.Now().UTC()
	row, err := s.queries.CreateApplication(ctx, store.CreateApplicationParams{
		ID:        uuid.NewString(),
		Name:      input.Name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("application %q: %w", input.Name, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("creating application: %w", err)
	}

	result := applicationFromRow(row)
	_ = s.events.LogApplicationEvent(ctx, "application created", map[string]any{"application_id": result.ID, "name": result.Name})
	return &result, nil
}

// Get returns an application by id.
func (s *ApplicationService) Get(ctx context.Context, id string) (*model.Application, error) {
	row, err := s.queries.GetApplicationByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "application", id)
	}
	result := applicationFromRow(row)
	return &result, nil
}

// Update renames an application.
func (s *ApplicationService) Update(ctx context.Context, id string, app *model.Application) (*model.Application, error) {
	if app == nil {
		return nil, fmt.Errorf("%w: application payload is required", ErrInvalidInput)
	}
	input := *app
	input.Name = util.SanitizeName(input.Name)
	if err := Validate(&input); err != nil {
		return nil, err
	}

	if _, err := s.queries.GetApplicationByID(ctx, id); err != nil {
		return nil, notFoundOr(err, "application", id)
	}

	exists, err := s.queries.ApplicationNameExists(ctx, store.ApplicationNameExistsParams{Name: input.Name, ExcludeID: id})
	if err != nil {
		return nil, fmt.Errorf("checking application name: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("application %q: %w", input.Name, ErrConflict)
	}

	row, err := s.queries.UpdateApplication(ctx, store.UpdateApplicationParams{
		ID:        id,
		Name:      input.Name,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("updating application %q: %w", id, err)
	}

	result := applicationFromRow(row)
	return &result, nil
}

// Delete removes an application together with its pages.
func (s *ApplicationService) Delete(ctx context.Context, id string) (*model.Application, error) {
	row, err := s.queries.GetApplicationByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "application", id)
	}
	if err := s.queries.DeleteApplication(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting application %q: %w", id, err)
	}
	s.summaries.Invalidate(ctx, id)

	result := applicationFromRow(row)
	_ = s.events.LogApplicationEvent(ctx, "application deleted", map[string]any{"application_id": id, "name": result.Name})
	return &result, nil
}

// List returns all applications ordered by name.
func (s *ApplicationService) List(ctx context.Context) ([]model.Application, error) {
	rows, err := s.queries.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	apps := make([]model.Application, 0, len(rows))
	for _, r := range rows {
		apps = append(apps, applicationFromRow(r))
	}
	return apps, nil
}
