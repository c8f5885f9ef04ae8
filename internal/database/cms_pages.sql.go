package database

import (
	"context"

	"github.com/google/uuid"
)

const cmsPageColumns = `id, slug, title, body, is_published, created_by, created_at, updated_at`

const listPages = `-- name: ListPages :many
SELECT ` + cmsPageColumns + ` FROM cms_pages
WHERE (NOT $1::bool OR is_published = true)
ORDER BY updated_at DESC, id
LIMIT $2 OFFSET $3
`

type ListPagesParams struct {
	PublishedOnly bool  `json:"published_only"`
	Limit         int32 `json:"limit"`
	Offset        int32 `json:"offset"`
}

func (q *Queries) ListPages(ctx context.Context, arg ListPagesParams) ([]CmsPage, error) {
	return queryMany[CmsPage](ctx, q.db, listPages, arg.PublishedOnly, arg.Limit, arg.Offset)
}

const getPage = `-- name: GetPage :one
SELECT ` + cmsPageColumns + ` FROM cms_pages
WHERE id = $1
`

func (q *Queries) GetPage(ctx context.Context, id uuid.UUID) (CmsPage, error) {
	return queryOne[CmsPage](ctx, q.db, getPage, id)
}

const getPublishedPageBySlug = `-- name: GetPublishedPageBySlug :one
SELECT ` + cmsPageColumns + ` FROM cms_pages
WHERE slug = $1 AND is_published = true
`

func (q *Queries) GetPublishedPageBySlug(ctx context.Context, slug string) (CmsPage, error) {
	return queryOne[CmsPage](ctx, q.db, getPublishedPageBySlug, slug)
}

const createPage = `-- name: CreatePage :one
INSERT INTO cms_pages (slug, title, body, is_published, created_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + cmsPageColumns

type CreatePageParams struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	IsPublished bool      `json:"is_published"`
	CreatedBy   uuid.UUID `json:"created_by"`
}

func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (CmsPage, error) {
	return queryOne[CmsPage](ctx, q.db, createPage, arg.Slug, arg.Title, arg.Body, arg.IsPublished, arg.CreatedBy)
}

const updatePage = `-- name: UpdatePage :one
UPDATE cms_pages
SET slug = $2, title = $3, body = $4, is_published = $5, updated_at = now()
WHERE id = $1
RETURNING ` + cmsPageColumns

type UpdatePageParams struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	IsPublished bool      `json:"is_published"`
}

func (q *Queries) UpdatePage(ctx context.Context, arg UpdatePageParams) (CmsPage, error) {
	return queryOne[CmsPage](ctx, q.db, updatePage, arg.ID, arg.Slug, arg.Title, arg.Body, arg.IsPublished)
}

const deletePage = `-- name: DeletePage :one
DELETE FROM cms_pages WHERE id = $1
RETURNING id
`

func (q *Queries) DeletePage(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return queryID(ctx, q.db, deletePage, id)
}
