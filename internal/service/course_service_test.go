package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/etutor-gateway/internal/domain"
)

func TestCourseCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("tutor owns the course", func(t *testing.T) {
		courses := new(mockCourseRepo)
		courses.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Course) bool {
			return c.TutorID == "t-1" && c.Title == "Calculus" && c.Active
		})).Return(nil).Once()

		course, err := NewCourseService(courses, new(mockUserRepo)).Create(ctx, tutor, CourseCreateInput{
			TutorID: "someone-else", Title: " Calculus ",
		})
		require.NoError(t, err)
		assert.Equal(t, "t-1", course.TutorID)
		courses.AssertExpectations(t)
	})

	t.Run("admin must name an active tutor", func(t *testing.T) {
		courses := new(mockCourseRepo)
		users := new(mockUserRepo)
		users.On("GetByID", mock.Anything, "s-1").Return(student, nil)
		users.On("GetByID", mock.Anything, "t-1").Return(tutor, nil)
		courses.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		svc := NewCourseService(courses, users)

		_, err := svc.Create(ctx, admin, CourseCreateInput{Title: "Physics"})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))

		_, err = svc.Create(ctx, admin, CourseCreateInput{TutorID: "s-1", Title: "Physics"})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))

		course, err := svc.Create(ctx, admin, CourseCreateInput{TutorID: "t-1", Title: "Physics"})
		require.NoError(t, err)
		assert.Equal(t, "t-1", course.TutorID)
	})
}
