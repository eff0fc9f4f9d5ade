// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// Application is a row of the applications table.
type Application struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const applicationColumns = `id, name, created_at, updated_at`

func scanApplication(row interface{ Scan(...any) error }) (Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// CreateApplicationParams holds the values for CreateApplication.
type CreateApplicationParams struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const createApplication = `INSERT INTO applications (id, name, created_at, updated_at)
VALUES (?, ?, ?, ?)
RETURNING ` + applicationColumns

// CreateApplication inserts an application.
func (q *Queries) CreateApplication(ctx context.Context, arg CreateApplicationParams) (Application, error) {
	row := q.db.QueryRowContext(ctx, createApplication, arg.ID, arg.Name, arg.CreatedAt, arg.UpdatedAt)
	return scanApplication(row)
}

const getApplicationByID = `SELECT ` + applicationColumns + ` FROM applications WHERE id = ?`

// GetApplicationByID returns sql.ErrNoRows when the application does not exist.
func (q *Queries) GetApplicationByID(ctx context.Context, id string) (Application, error) {
	return scanApplication(q.db.QueryRowContext(ctx, getApplicationByID, id))
}

const getApplicationByName = `SELECT ` + applicationColumns + ` FROM applications WHERE name = ?`

// GetApplicationByName returns sql.ErrNoRows when the application does not exist.
func (q *Queries) GetApplicationByName(ctx context.Context, name string) (Application, error) {
	return scanApplication(q.db.QueryRowContext(ctx, getApplicationByName, name))
}

const listApplications = `SELECT ` + applicationColumns + ` FROM applications ORDER BY name`

// ListApplications returns all applications ordered by name.
func (q *Queries) ListApplications(ctx context.Context) ([]Application, error) {
	rows, err := q.db.QueryContext(ctx, listApplications)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const countApplications = `SELECT COUNT(*) FROM applications`

// CountApplications returns the number of applications.
func (q *Queries) CountApplications(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countApplications).Scan(&count)
	return count, err
}

// ApplicationNameExistsParams holds the values for ApplicationNameExists.
// ExcludeID may be empty.
type ApplicationNameExistsParams struct {
	Name      string
	ExcludeID string
}

const applicationNameExists = `SELECT EXISTS(SELECT 1 FROM applications WHERE name = ? AND id != ?)`

// ApplicationNameExists reports whether another application already uses the name.
func (q *Queries) ApplicationNameExists(ctx context.Context, arg ApplicationNameExistsParams) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, applicationNameExists, arg.Name, arg.ExcludeID).Scan(&exists)
	return exists, err
}

// UpdateApplicationParams holds the values for UpdateApplication.
type UpdateApplicationParams struct {
	ID        string
	Name      string
	UpdatedAt time.Time
}

const updateApplication = `UPDATE applications SET name = ?, updated_at = ? WHERE id = ?
RETURNING ` + applicationColumns

// UpdateApplication renames an application.
func (q *Queries) UpdateApplication(ctx context.Context, arg UpdateApplicationParams) (Application, error) {
	row := q.db.QueryRowContext(ctx, updateApplication, arg.Name, arg.UpdatedAt, arg.ID)
	return scanApplication(row)
}

const deleteApplication = `DELETE FROM applications WHERE id = ?`

// DeleteApplication deletes an application; its pages go with it.
func (q *Queries) DeleteApplication(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteApplication, id)
	return err
}
