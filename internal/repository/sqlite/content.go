package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/plastmart/b2b/internal/db"
	"github.com/plastmart/b2b/pkg/models"
	"github.com/plastmart/b2b/pkg/repository"
)

// contentStore is the shared CRUD for admin-managed content tables. Every
// such table has id, an active flag, display_order, created and updated
// alongside its own columns.
type contentStore[T any] struct {
	conn    *db.DB
	table   string
	columns []string // editable columns, in the order of args and scan
	args    func(*T) []any
	scan    func(s scanner) (*T, error)
}

var _ repository.ContentRepo[models.Banner] = (*contentStore[models.Banner])(nil)

func (c *contentStore[T]) selectCols() string {
	return "id, " + strings.Join(c.columns, ", ") + ", created, updated"
}

// List returns rows by display_order then id. activeOnly hides inactive rows.
func (c *contentStore[T]) List(ctx context.Context, activeOnly bool) ([]T, error) {
	q := `SELECT ` + c.selectCols() + ` FROM ` + c.table
	if activeOnly {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY display_order ASC, id ASC`

	rows, err := c.conn.QueryRows(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := c.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}

	return out, rows.Err()
}

func (c *contentStore[T]) Get(ctx context.Context, id int64) (*T, error) {
	item, err := c.scan(c.conn.QueryRow(ctx, `SELECT `+c.selectCols()+` FROM `+c.table+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return item, nil
}

func (c *contentStore[T]) Create(ctx context.Context, item *T) (int64, error) {
	if item == nil {
		return 0, fmt.Errorf("%s item is nil", c.table)
	}

	ts := now()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(c.columns)+2), ", ")
	args := append(c.args(item), ts, ts)
	res, err := c.conn.Exec(ctx, `INSERT INTO `+c.table+` (`+strings.Join(c.columns, ", ")+`, created, updated) VALUES (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", c.table, err)
	}

	return res.LastInsertId()
}

func (c *contentStore[T]) Update(ctx context.Context, id int64, item *T) (bool, error) {
	if item == nil {
		return false, fmt.Errorf("%s item is nil", c.table)
	}

	sets := make([]string, 0, len(c.columns)+1)
	for _, col := range c.columns {
		sets = append(sets, col+" = ?")
	}
	sets = append(sets, "updated = ?")
	args := append(c.args(item), now(), id)

	res, err := c.conn.Exec(ctx, `UPDATE `+c.table+` SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, fmt.Errorf("update %s: %w", c.table, err)
	}

	return affected(res)
}

func (c *contentStore[T]) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := c.conn.Exec(ctx, `DELETE FROM `+c.table+` WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", c.table, err)
	}

	return affected(res)
}

func newTestimonialStore(conn *db.DB) *contentStore[models.Testimonial] {
	return &contentStore[models.Testimonial]{
		conn:    conn,
		table:   "testimonials",
		columns: []string{"name", "company", "role", "content", "rating", "image_url", "active", "display_order"},
		args: func(t *models.Testimonial) []any {
			return []any{t.Name, t.Company, t.Role, t.Content, t.Rating, t.ImageURL, t.Active, t.DisplayOrder}
		},
		scan: func(s scanner) (*models.Testimonial, error) {
			var t models.Testimonial
			err := s.Scan(&t.ID, &t.Name, &t.Company, &t.Role, &t.Content, &t.Rating, &t.ImageURL, &t.Active,
				&t.DisplayOrder, &t.Created, &t.Updated)
			if err != nil {
				return nil, err
			}
			return &t, nil
		},
	}
}

func newBannerStore(conn *db.DB) *contentStore[models.Banner] {
	return &contentStore[models.Banner]{
		conn:    conn,
		table:   "banners",
		columns: []string{"title", "subtitle", "image_url", "link_url", "active", "display_order"},
		args: func(b *models.Banner) []any {
			return []any{b.Title, b.Subtitle, b.ImageURL, b.LinkURL, b.Active, b.DisplayOrder}
		},
		scan: func(s scanner) (*models.Banner, error) {
			var b models.Banner
			err := s.Scan(&b.ID, &b.Title, &b.Subtitle, &b.ImageURL, &b.LinkURL, &b.Active, &b.DisplayOrder,
				&b.Created, &b.Updated)
			if err != nil {
				return nil, err
			}
			return &b, nil
		},
	}
}

func newSponsorStore(conn *db.DB) *contentStore[models.Sponsor] {
	return &contentStore[models.Sponsor]{
		conn:    conn,
		table:   "sponsors",
		columns: []string{"name", "logo_url", "website_url", "tier", "active", "display_order"},
		args: func(sp *models.Sponsor) []any {
			return []any{sp.Name, sp.LogoURL, sp.WebsiteURL, sp.Tier, sp.Active, sp.DisplayOrder}
		},
		scan: func(s scanner) (*models.Sponsor, error) {
			var sp models.Sponsor
			err := s.Scan(&sp.ID, &sp.Name, &sp.LogoURL, &sp.WebsiteURL, &sp.Tier, &sp.Active, &sp.DisplayOrder,
				&sp.Created, &sp.Updated)
			if err != nil {
				return nil, err
			}
			return &sp, nil
		},
	}
}
