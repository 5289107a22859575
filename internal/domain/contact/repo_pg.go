package contact

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mch/mch/internal/platform/db"
)

type contactRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &contactRepoPG{pool: pool}
}

func (r *contactRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const contactCols = `id, name, phone, email, organization, role, region, district, subdistrict, community,
	created_at, updated_at`

func (r *contactRepoPG) scanContact(row pgx.Row) (*Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Organization, &c.Role,
		&c.Region, &c.District, &c.Subdistrict, &c.Community, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contactRepoPG) Create(ctx context.Context, c *Contact) error {
	c.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO contacts (id, name, phone, email, organization, role, region, district, subdistrict, community)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Phone, c.Email, c.Organization, c.Role, c.Region, c.District, c.Subdistrict, c.Community,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *contactRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Contact, error) {
	return r.scanContact(r.conn(ctx).QueryRow(ctx, `SELECT `+contactCols+` FROM contacts WHERE id = $1`, id))
}

func (r *contactRepoPG) Update(ctx context.Context, c *Contact) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE contacts SET name=$2, phone=$3, email=$4, organization=$5, role=$6,
			region=$7, district=$8, subdistrict=$9, community=$10, updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Phone, c.Email, c.Organization, c.Role, c.Region, c.District, c.Subdistrict, c.Community,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *contactRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *contactRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Contact, int, error) {
	q := db.NewListQuery("contacts", contactCols).
		Eq("region", f.Region).
		Eq("district", f.District).
		Search(f.Search, "name", "organization", "role", "phone").
		OrderBy("lower(name), id")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Contact
	for rows.Next() {
		c, err := r.scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
