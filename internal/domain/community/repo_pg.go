package community

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mch/mch/internal/platform/db"
	"github.com/mch/mch/pkg/geo"
)

type communityRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &communityRepoPG{pool: pool}
}

func (r *communityRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const communityCols = `id, region, district, subdistrict, community_name, created_at, updated_at`

func (r *communityRepoPG) scanCommunity(row pgx.Row) (*Community, error) {
	var c Community
	err := row.Scan(&c.ID, &c.Region, &c.District, &c.Subdistrict, &c.CommunityName, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *communityRepoPG) Create(ctx context.Context, c *Community) error {
	c.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO communities (id, region, district, subdistrict, community_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		c.ID, c.Region, c.District, c.Subdistrict, c.CommunityName,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *communityRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Community, error) {
	return r.scanCommunity(r.conn(ctx).QueryRow(ctx, `SELECT `+communityCols+` FROM communities WHERE id = $1`, id))
}

func (r *communityRepoPG) Update(ctx context.Context, c *Community) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE communities SET region=$2, district=$3, subdistrict=$4, community_name=$5, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Region, c.District, c.Subdistrict, c.CommunityName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *communityRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM communities WHERE id = $1`, id)
	return err
}

func (r *communityRepoPG) ListAll(ctx context.Context) ([]*Community, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+communityCols+` FROM communities
		ORDER BY region, district, subdistrict, community_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Community
	for rows.Next() {
		c, err := r.scanCommunity(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *communityRepoPG) Import(ctx context.Context, records []geo.CommunityRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO communities (id, region, district, subdistrict, community_name)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT ON CONSTRAINT communities_chain_key DO NOTHING`,
			uuid.New(), rec.Region, rec.District, rec.Subdistrict, rec.CommunityName)
	}

	inserted := 0
	err := db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		br := db.TxFromContext(ctx).SendBatch(ctx, batch)
		for i := range records {
			tag, err := br.Exec()
			if err != nil {
				br.Close()
				return fmt.Errorf("import row %d: %w", i+1, err)
			}
			inserted += int(tag.RowsAffected())
		}
		return br.Close()
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
