package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicbook/clinicbook/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `id, doctor_id, patient_id, start_time, status, created_at, updated_at`

func (r *repoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.StartTime, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, doctor_id, patient_id, start_time, status)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.DoctorID, a.PatientID, a.StartTime, a.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	return err
}

func (r *repoPG) DeleteAllByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE doctor_id = $1`, doctorID)
	return err
}

func (r *repoPG) FindByDoctorAndRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE doctor_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC`,
		doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, nil
}

func (r *repoPG) UpdateStartTime(ctx context.Context, id uuid.UUID, start time.Time) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointment SET start_time=$2, updated_at=NOW() WHERE id = $1`, id, start)
	return err
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointment SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	return err
}

const detailCols = `a.id, a.doctor_id, a.patient_id, a.start_time, a.status, a.created_at, a.updated_at,
	d.name AS doctor_name, p.name AS patient_name`

const detailJoin = ` FROM appointment a
	JOIN doctor d ON d.id = a.doctor_id
	JOIN patient p ON p.id = a.patient_id`

func scanDetail(row pgx.Row) (*AppointmentDetail, error) {
	var ad AppointmentDetail
	err := row.Scan(&ad.ID, &ad.DoctorID, &ad.PatientID, &ad.StartTime, &ad.Status,
		&ad.CreatedAt, &ad.UpdatedAt, &ad.DoctorName, &ad.PatientName)
	return &ad, err
}

func (r *repoPG) ListByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day time.Time, patientName string, limit, offset int) ([]*AppointmentDetail, int, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	where := ` WHERE a.doctor_id = $1 AND a.start_time >= $2 AND a.start_time < $3`
	args := []interface{}{doctorID, dayStart, dayEnd}
	idx := 4

	if patientName != "" {
		where += fmt.Sprintf(` AND p.name ILIKE $%d`, idx)
		args = append(args, "%"+patientName+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*)`+detailJoin+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + detailCols + detailJoin + where +
		fmt.Sprintf(` ORDER BY a.start_time ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	items, err := r.queryDetails(ctx, query, args)
	return items, total, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, status, doctorName string, limit, offset int) ([]*AppointmentDetail, int, error) {
	where := ` WHERE a.patient_id = $1`
	args := []interface{}{patientID}
	idx := 2

	if status != "" {
		where += fmt.Sprintf(` AND a.status = $%d`, idx)
		args = append(args, status)
		idx++
	}
	if doctorName != "" {
		where += fmt.Sprintf(` AND d.name ILIKE $%d`, idx)
		args = append(args, "%"+doctorName+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*)`+detailJoin+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + detailCols + detailJoin + where +
		fmt.Sprintf(` ORDER BY a.start_time DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	items, err := r.queryDetails(ctx, query, args)
	return items, total, err
}

func (r *repoPG) queryDetails(ctx context.Context, query string, args []interface{}) ([]*AppointmentDetail, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*AppointmentDetail
	for rows.Next() {
		ad, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ad)
	}
	return items, nil
}
