// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-pages/internal/util"
)

// Seed defaults.
const (
	DefaultApplicationName = "Default"
	DefaultPageName        = "Home"
)

// Seed creates a starter application with a default page when the database
// holds no applications yet. It is a no-op otherwise.
func Seed(ctx context.Context, db *sql.DB) error {
	return InTx(ctx, db, func(q *Queries) error {
		count, err := q.CountApplications(ctx)
		if err != nil {
			return fmt.Errorf("counting applications: %w", err)
		}
		if count > 0 {
			slog.Info("applications already exist, skipping seed", "count", count)
			return nil
		}

		now := time.Now().UTC()
		app, err := q.CreateApplication(ctx, CreateApplicationParams{
			ID:        uuid.NewString(),
			Name:      DefaultApplicationName,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("creating default application: %w", err)
		}

		page, err := q.CreatePage(ctx, CreatePageParams{
			ID:            uuid.NewString(),
			ApplicationID: app.ID,
			Name:          DefaultPageName,
			Slug:          util.Slugify(DefaultPageName),
			IsDefault:     true,
			Layout:        "{}",
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return fmt.Errorf("creating default page: %w", err)
		}

		slog.Info("seeded default application",
			"application_id", app.ID,
			"page_id", page.ID,
		)
		return nil
	})
}
