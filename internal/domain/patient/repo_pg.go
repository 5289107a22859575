package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mch/mch/internal/platform/db"
)

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientCols = `id, first_name, last_name, other_names, date_of_birth, phone, national_id,
	marital_status, occupation, region, district, subdistrict, community, created_by, created_at, updated_at`

func (r *patientRepoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.OtherNames, &p.DateOfBirth, &p.Phone, &p.NationalID,
		&p.MaritalStatus, &p.Occupation, &p.Region, &p.District, &p.Subdistrict, &p.Community,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (id, first_name, last_name, other_names, date_of_birth, phone, national_id,
			marital_status, occupation, region, district, subdistrict, community, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`,
		p.ID, p.FirstName, p.LastName, p.OtherNames, p.DateOfBirth, p.Phone, p.NationalID,
		p.MaritalStatus, p.Occupation, p.Region, p.District, p.Subdistrict, p.Community, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE patients SET first_name=$2, last_name=$3, other_names=$4, date_of_birth=$5, phone=$6,
			national_id=$7, marital_status=$8, occupation=$9, region=$10, district=$11,
			subdistrict=$12, community=$13, updated_at=NOW()
		WHERE id = $1
		RETURNING created_by, created_at, updated_at`,
		p.ID, p.FirstName, p.LastName, p.OtherNames, p.DateOfBirth, p.Phone,
		p.NationalID, p.MaritalStatus, p.Occupation, p.Region, p.District,
		p.Subdistrict, p.Community,
	).Scan(&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	q := db.NewListQuery("patients", patientCols).
		Eq("region", f.Region).
		Eq("district", f.District).
		Eq("subdistrict", f.Subdistrict).
		Eq("community", f.Community).
		Search(f.Search, "first_name", "last_name", "other_names", "phone", "national_id").
		OrderBy("last_name, first_name, id")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
