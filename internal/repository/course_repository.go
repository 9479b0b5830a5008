package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/etutor-gateway/internal/domain"
)

// CourseRepository handles persistence for courses.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	ListActive(ctx context.Context, limit, offset int) ([]domain.Course, error)
	ListByTutor(ctx context.Context, tutorID string, limit, offset int) ([]domain.Course, error)
}

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

const courseColumns = `id, tutor_id, title, description, is_active, created_at, updated_at`

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	const query = `
        INSERT INTO courses (tutor_id, title, description, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		course.TutorID,
		course.Title,
		course.Description,
		course.Active,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id=$1`, id)
	course, err := scanCourse(row)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return course, nil
}

func (r *courseRepository) ListActive(ctx context.Context, limit, offset int) ([]domain.Course, error) {
	limit, offset = normalizePage(limit, offset)
	rows, err := r.pool.Query(ctx, `
        SELECT `+courseColumns+` FROM courses
        WHERE is_active=TRUE
        ORDER BY title ASC
        LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectCourses(rows, limit)
}

func (r *courseRepository) ListByTutor(ctx context.Context, tutorID string, limit, offset int) ([]domain.Course, error) {
	limit, offset = normalizePage(limit, offset)
	if !isUUID(tutorID) {
		return []domain.Course{}, nil
	}
	rows, err := r.pool.Query(ctx, `
        SELECT `+courseColumns+` FROM courses
        WHERE tutor_id=$1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`, tutorID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectCourses(rows, limit)
}

func collectCourses(rows pgx.Rows, capacity int) ([]domain.Course, error) {
	defer rows.Close()
	courses := make([]domain.Course, 0, capacity)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *course)
	}
	return courses, rows.Err()
}

func scanCourse(row pgx.Row) (*domain.Course, error) {
	var course domain.Course
	if err := row.Scan(
		&course.ID,
		&course.TutorID,
		&course.Title,
		&course.Description,
		&course.Active,
		&course.CreatedAt,
		&course.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &course, nil
}
