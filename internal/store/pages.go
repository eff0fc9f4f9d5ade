// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Page is a row of the pages table.
type Page struct {
	ID              string
	ApplicationID   string
	Name            string
	Slug            string
	IsDefault       bool
	Layout          string
	PublishedLayout sql.NullString
	PublishedAt     sql.NullTime
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const pageColumns = `id, application_id, name, slug, is_default, layout, published_layout,
published_at, created_at, updated_at`

func scanPage(row interface{ Scan(...any) error }) (Page, error) {
	var p Page
	err := row.Scan(
		&p.ID,
		&p.ApplicationID,
		&p.Name,
		&p.Slug,
		&p.IsDefault,
		&p.Layout,
		&p.PublishedLayout,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (q *Queries) queryPages(ctx context.Context, query string, args ...any) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// CreatePageParams holds the values for CreatePage.
type CreatePageParams struct {
	ID            string
	ApplicationID string
	Name          string
	Slug          string
	IsDefault     bool
	Layout        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const createPage = `INSERT INTO pages (id, application_id, name, slug, is_default, layout, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + pageColumns

// CreatePage inserts a page.
func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, createPage,
		arg.ID,
		arg.ApplicationID,
		arg.Name,
		arg.Slug,
		arg.IsDefault,
		arg.Layout,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanPage(row)
}

const getPageByID = `SELECT ` + pageColumns + ` FROM pages WHERE id = ?`

// GetPageByID returns sql.ErrNoRows when the page does not exist.
func (q *Queries) GetPageByID(ctx context.Context, id string) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getPageByID, id))
}

// GetPageByNameParams holds the values for GetPageByName.
type GetPageByNameParams struct {
	ApplicationID string
	Name          string
}

const getPageByName = `SELECT ` + pageColumns + ` FROM pages WHERE application_id = ? AND name = ?`

// GetPageByName returns sql.ErrNoRows when the application has no page with that name.
func (q *Queries) GetPageByName(ctx context.Context, arg GetPageByNameParams) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getPageByName, arg.ApplicationID, arg.Name))
}

const listPagesByApplication = `SELECT ` + pageColumns + ` FROM pages
WHERE application_id = ?
ORDER BY created_at, rowid`

// ListPagesByApplication returns the pages of an application in creation order.
func (q *Queries) ListPagesByApplication(ctx context.Context, applicationID string) ([]Page, error) {
	return q.queryPages(ctx, listPagesByApplication, applicationID)
}

const countPagesByApplication = `SELECT COUNT(*) FROM pages WHERE application_id = ?`

// CountPagesByApplication returns the number of pages of an application.
func (q *Queries) CountPagesByApplication(ctx context.Context, applicationID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPagesByApplication, applicationID).Scan(&count)
	return count, err
}

// PageNameExistsParams holds the values for PageNameExists. ExcludeID may be empty.
type PageNameExistsParams struct {
	ApplicationID string
	Name          string
	ExcludeID     string
}

const pageNameExists = `SELECT EXISTS(
    SELECT 1 FROM pages WHERE application_id = ? AND name = ? AND id != ?
)`

// PageNameExists reports whether another page of the application uses the name.
func (q *Queries) PageNameExists(ctx context.Context, arg PageNameExistsParams) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, pageNameExists, arg.ApplicationID, arg.Name, arg.ExcludeID).Scan(&exists)
	return exists, err
}

// UpdatePageParams holds the values for UpdatePage.
type UpdatePageParams struct {
	ID        string
	Name      string
	Slug      string
	Layout    string
	UpdatedAt time.Time
}

const updatePage = `UPDATE pages SET name = ?, slug = ?, layout = ?, updated_at = ?
WHERE id = ?
RETURNING ` + pageColumns

// UpdatePage replaces the name, slug and draft layout of a page.
func (q *Queries) UpdatePage(ctx context.Context, arg UpdatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, updatePage, arg.Name, arg.Slug, arg.Layout, arg.UpdatedAt, arg.ID)
	return scanPage(row)
}

// PublishPageParams holds the values for PublishPage.
type PublishPageParams struct {
	ID          string
	PublishedAt time.Time
}

const publishPage = `UPDATE pages SET published_layout = layout, published_at = ?, updated_at = ?
WHERE id = ?
RETURNING ` + pageColumns

// PublishPage copies the draft layout into the published layout.
func (q *Queries) PublishPage(ctx context.Context, arg PublishPageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, publishPage, arg.PublishedAt, arg.PublishedAt, arg.ID)
	return scanPage(row)
}

const setDefaultPage = `UPDATE pages SET is_default = (id = ?) WHERE application_id = ?`

// SetDefaultPageParams holds the values for SetDefaultPage.
type SetDefaultPageParams struct {
	ApplicationID string
	PageID        string
}

// SetDefaultPage makes one page the default of its application and clears the flag on the others.
func (q *Queries) SetDefaultPage(ctx context.Context, arg SetDefaultPageParams) error {
	_, err := q.db.ExecContext(ctx, setDefaultPage, arg.PageID, arg.ApplicationID)
	return err
}

const deletePage = `DELETE FROM pages WHERE id = ?`

// DeletePage deletes a page.
func (q *Queries) DeletePage(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deletePage, id)
	return err
}
