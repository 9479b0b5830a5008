package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/etutor-gateway/internal/domain"
)

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	Status *domain.AppointmentStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// AppointmentRepository encapsulates appointment persistence.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus) error
	ListByStudent(ctx context.Context, studentID string, filter AppointmentFilter) ([]domain.Appointment, error)
	ListByTutor(ctx context.Context, tutorID string, filter AppointmentFilter) ([]domain.Appointment, error)
	HasTutorOverlap(ctx context.Context, tutorID string, startsAt, endsAt time.Time) (bool, error)
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository instantiates the repository.
func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

const appointmentColumns = `id, student_id, tutor_id, course_id, starts_at, ends_at, status, notes, created_at, updated_at`

func (r *appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (student_id, tutor_id, course_id, starts_at, ends_at, status, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		appt.StudentID,
		appt.TutorID,
		appt.CourseID,
		appt.StartsAt,
		appt.EndsAt,
		appt.Status,
		appt.Notes,
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)
	return mapOverlap(err)
}

const exclusionViolation = "23P01"

// mapOverlap turns a violation of appointments_tutor_no_overlap into ErrSlotTaken.
func mapOverlap(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return ErrSlotTaken
	}
	return err
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id=$1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return appt, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE appointments SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) ListByStudent(ctx context.Context, studentID string, filter AppointmentFilter) ([]domain.Appointment, error) {
	return r.listBy(ctx, "student_id", studentID, filter)
}

func (r *appointmentRepository) ListByTutor(ctx context.Context, tutorID string, filter AppointmentFilter) ([]domain.Appointment, error) {
	return r.listBy(ctx, "tutor_id", tutorID, filter)
}

func (r *appointmentRepository) listBy(ctx context.Context, column, ownerID string, filter AppointmentFilter) ([]domain.Appointment, error) {
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	if !isUUID(ownerID) {
		return []domain.Appointment{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE %s=$1`, appointmentColumns, column)
	args := []any{ownerID}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status=$%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND starts_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND starts_at < $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY starts_at ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appts := make([]domain.Appointment, 0, limit)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *appt)
	}
	return appts, rows.Err()
}

func (r *appointmentRepository) HasTutorOverlap(ctx context.Context, tutorID string, startsAt, endsAt time.Time) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM appointments
            WHERE tutor_id=$1 AND status='scheduled' AND starts_at < $3 AND ends_at > $2
        )`
	var overlap bool
	if err := r.pool.QueryRow(ctx, query, tutorID, startsAt, endsAt).Scan(&overlap); err != nil {
		return false, err
	}
	return overlap, nil
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var appt domain.Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.StudentID,
		&appt.TutorID,
		&appt.CourseID,
		&appt.StartsAt,
		&appt.EndsAt,
		&appt.Status,
		&appt.Notes,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}
