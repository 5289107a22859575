package antenatal

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mch/mch/internal/platform/db"
)

// -- Registration --

type registrationRepoPG struct{ pool *pgxpool.Pool }

func NewRegistrationRepoPG(pool *pgxpool.Pool) RegistrationRepository {
	return &registrationRepoPG{pool: pool}
}

func (r *registrationRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const regCols = `id, patient_id, registration_date, lmp, edd, gravida, parity, blood_group, hiv_status,
	registered_by, notes, created_at, updated_at`

func (r *registrationRepoPG) scanRegistration(row pgx.Row) (*Registration, error) {
	var g Registration
	err := row.Scan(&g.ID, &g.PatientID, &g.RegistrationDate, &g.LMP, &g.EDD, &g.Gravida, &g.Parity,
		&g.BloodGroup, &g.HIVStatus, &g.RegisteredBy, &g.Notes, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *registrationRepoPG) Create(ctx context.Context, g *Registration) error {
	g.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO antenatal_registrations (id, patient_id, registration_date, lmp, edd, gravida, parity,
			blood_group, hiv_status, registered_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		g.ID, g.PatientID, g.RegistrationDate, g.LMP, g.EDD, g.Gravida, g.Parity,
		g.BloodGroup, g.HIVStatus, g.RegisteredBy, g.Notes,
	).Scan(&g.CreatedAt, &g.UpdatedAt)
}

func (r *registrationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Registration, error) {
	return r.scanRegistration(r.conn(ctx).QueryRow(ctx, `SELECT `+regCols+` FROM antenatal_registrations WHERE id = $1`, id))
}

func (r *registrationRepoPG) GetByPatient(ctx context.Context, patientID uuid.UUID) (*Registration, error) {
	return r.scanRegistration(r.conn(ctx).QueryRow(ctx,
		`SELECT `+regCols+` FROM antenatal_registrations WHERE patient_id = $1`, patientID))
}

func (r *registrationRepoPG) Update(ctx context.Context, g *Registration) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE antenatal_registrations SET registration_date=$2, lmp=$3, edd=$4, gravida=$5, parity=$6,
			blood_group=$7, hiv_status=$8, notes=$9, updated_at=NOW()
		WHERE id = $1
		RETURNING patient_id, registered_by, created_at, updated_at`,
		g.ID, g.RegistrationDate, g.LMP, g.EDD, g.Gravida, g.Parity,
		g.BloodGroup, g.HIVStatus, g.Notes,
	).Scan(&g.PatientID, &g.RegisteredBy, &g.CreatedAt, &g.UpdatedAt)
}

func (r *registrationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM antenatal_registrations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *registrationRepoPG) List(ctx context.Context, limit, offset int) ([]*Registration, int, error) {
	q := db.NewListQuery("antenatal_registrations", regCols).OrderBy("registration_date DESC, id")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Registration
	for rows.Next() {
		g, err := r.scanRegistration(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, g)
	}
	return items, total, rows.Err()
}

// -- Visit --

type visitRepoPG struct{ pool *pgxpool.Pool }

func NewVisitRepoPG(pool *pgxpool.Pool) VisitRepository {
	return &visitRepoPG{pool: pool}
}

func (r *visitRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const visitCols = `id, registration_id, visit_number, visit_date, gestational_age_weeks, weight_kg,
	bp_systolic, bp_diastolic, fundal_height_cm, fetal_heart_rate, notes, next_visit_date,
	recorded_by, created_at, updated_at`

func (r *visitRepoPG) scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(&v.ID, &v.RegistrationID, &v.VisitNumber, &v.VisitDate, &v.GestationalAgeWeeks, &v.WeightKg,
		&v.BPSystolic, &v.BPDiastolic, &v.FundalHeightCm, &v.FetalHeartRate, &v.Notes, &v.NextVisitDate,
		&v.RecordedBy, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// renumber rewrites visit_number for one registration in visit-date order.
// The unique (registration_id, visit_number) constraint is deferred, so the
// intermediate duplicates inside the transaction are allowed.
func (r *visitRepoPG) renumber(ctx context.Context, registrationID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE antenatal_visits v SET visit_number = o.n
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY visit_date, created_at, id) AS n
			FROM antenatal_visits WHERE registration_id = $1
		) o
		WHERE v.id = o.id AND v.visit_number <> o.n`, registrationID)
	return err
}

func (r *visitRepoPG) visitNumber(ctx context.Context, v *Visit) error {
	return r.conn(ctx).QueryRow(ctx, `SELECT visit_number FROM antenatal_visits WHERE id = $1`, v.ID).Scan(&v.VisitNumber)
}

func (r *visitRepoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		// Serialize numbering per registration.
		if _, err := r.conn(ctx).Exec(ctx,
			`SELECT 1 FROM antenatal_registrations WHERE id = $1 FOR UPDATE`, v.RegistrationID); err != nil {
			return err
		}
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO antenatal_visits (id, registration_id, visit_number, visit_date, gestational_age_weeks,
				weight_kg, bp_systolic, bp_diastolic, fundal_height_cm, fetal_heart_rate, notes,
				next_visit_date, recorded_by)
			VALUES ($1, $2,
				(SELECT COALESCE(MAX(visit_number), 0) + 1 FROM antenatal_visits WHERE registration_id = $2),
				$3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING created_at, updated_at`,
			v.ID, v.RegistrationID, v.VisitDate, v.GestationalAgeWeeks,
			v.WeightKg, v.BPSystolic, v.BPDiastolic, v.FundalHeightCm, v.FetalHeartRate, v.Notes,
			v.NextVisitDate, v.RecordedBy,
		).Scan(&v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return err
		}
		if err := r.renumber(ctx, v.RegistrationID); err != nil {
			return err
		}
		return r.visitNumber(ctx, v)
	})
}

func (r *visitRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return r.scanVisit(r.conn(ctx).QueryRow(ctx, `SELECT `+visitCols+` FROM antenatal_visits WHERE id = $1`, id))
}

func (r *visitRepoPG) Update(ctx context.Context, v *Visit) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		err := r.conn(ctx).QueryRow(ctx, `
			UPDATE antenatal_visits SET visit_date=$2, gestational_age_weeks=$3, weight_kg=$4,
				bp_systolic=$5, bp_diastolic=$6, fundal_height_cm=$7, fetal_heart_rate=$8, notes=$9,
				next_visit_date=$10, updated_at=NOW()
			WHERE id = $1
			RETURNING registration_id, recorded_by, created_at, updated_at`,
			v.ID, v.VisitDate, v.GestationalAgeWeeks, v.WeightKg,
			v.BPSystolic, v.BPDiastolic, v.FundalHeightCm, v.FetalHeartRate, v.Notes,
			v.NextVisitDate,
		).Scan(&v.RegistrationID, &v.RecordedBy, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return err
		}
		if err := r.renumber(ctx, v.RegistrationID); err != nil {
			return err
		}
		return r.visitNumber(ctx, v)
	})
}

func (r *visitRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		var registrationID uuid.UUID
		err := r.conn(ctx).QueryRow(ctx,
			`DELETE FROM antenatal_visits WHERE id = $1 RETURNING registration_id`, id).Scan(&registrationID)
		if err != nil {
			return err
		}
		return r.renumber(ctx, registrationID)
	})
}

func (r *visitRepoPG) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]*Visit, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+visitCols+` FROM antenatal_visits
		WHERE registration_id = $1 ORDER BY visit_number`, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Visit
	for rows.Next() {
		v, err := r.scanVisit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (r *visitRepoPG) CountByRegistration(ctx context.Context, registrationID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM antenatal_visits WHERE registration_id = $1`, registrationID).Scan(&n)
	return n, err
}
