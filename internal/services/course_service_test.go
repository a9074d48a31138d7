package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anhhh1801/Capstone-ECM/internal/models"
)

func TestCourseCreateWithSlotsIsAtomic(t *testing.T) {
	db := openServiceTestDB(t)
	centerSvc, err := NewCenterService(db)
	require.NoError(t, err)
	svc, err := NewCourseService(db)
	require.NoError(t, err)
	ctx := context.Background()

	teacher := createTeacher(t, db, "B", "Trần", "tranb@ecm.edu.vn")
	center := createCenter(t, db, centerSvc, teacher.ID, "Downtown")

	course, err := svc.Create(ctx, CreateCourseInput{
		Name:      "Algebra",
		Subject:   "Math",
		Grade:     9,
		CenterID:  center.ID,
		TeacherID: teacher.ID,
		Slots: []ClassSlotInput{
			{DayOfWeek: 1, StartTime: "18:00", EndTime: "20:00", Recurring: true},
			{DayOfWeek: 4, StartTime: "18:00", EndTime: "20:00", Recurring: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, course.Slots, 2)
	require.Equal(t, models.CourseStatusActive, course.Status)
	require.Equal(t, models.InvitationAccepted, course.InvitationStatus)

	// An invalid slot rejects the whole course, nothing is written.
	_, err = svc.Create(ctx, CreateCourseInput{
		Name:      "Broken",
		CenterID:  center.ID,
		TeacherID: teacher.ID,
		Slots: []ClassSlotInput{
			{DayOfWeek: 2, StartTime: "18:00", EndTime: "20:00"},
			{DayOfWeek: 9, StartTime: "18:00", EndTime: "20:00"},
		},
	})
	require.Error(t, err)

	var courseCount int64
	require.NoError(t, db.Model(&models.Course{}).Count(&courseCount).Error)
	require.EqualValues(t, 1, courseCount)
	var slotCount int64
	require.NoError(t, db.Model(&models.ClassSlot{}).Count(&slotCount).Error)
	require.EqualValues(t, 2, slotCount)

	// Slot times must parse and be ordered.
	_, err = svc.Create(ctx, CreateCourseInput{
		Name: "Backwards", CenterID: center.ID, TeacherID: teacher.ID,
		Slots: []ClassSlotInput{{DayOfWeek: 2, StartTime: "20:00", EndTime: "18:00"}},
	})
	require.Error(t, err)
}

func TestCourseUpdate(t *testing.T) {
	db := openServiceTestDB(t)
	centerSvc, err := NewCenterService(db)
	require.NoError(t, err)
	svc, err := NewCourseService(db)
	require.NoError(t, err)
	ctx := context.Background()

	teacher := createTeacher(t, db, "B", "Trần", "tranb@ecm.edu.vn")
	center := createCenter(t, db, centerSvc, teacher.ID, "Downtown")
	course := createCourse(t, svc, center.ID, teacher.ID, "Algebra")

	status := "closed"
	updated, err := svc.Update(ctx, course.ID, UpdateCourseInput{Status: &status})
	require.NoError(t, err)
	require.Equal(t, models.CourseStatusClosed, updated.Status)

	bad := "PAUSED"
	_, err = svc.Update(ctx, course.ID, UpdateCourseInput{Status: &bad})
	require.Error(t, err)

	_, err = svc.Update(ctx, 99999, UpdateCourseInput{Status: &status})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseInvitationWorkflow(t *testing.T) {
	db := openServiceTestDB(t)
	centerSvc, err := NewCenterService(db)
	require.NoError(t, err)
	svc, err := NewCourseService(db)
	require.NoError(t, err)
	ctx := context.Background()

	owner := createTeacher(t, db, "B", "Trần", "tranb@ecm.edu.vn")
	invitee := createTeacher(t, db, "C", "Lê", "lec@ecm.edu.vn")
	center := createCenter(t, db, centerSvc, owner.ID, "Downtown")
	course := createCourse(t, svc, center.ID, owner.ID, "Algebra")

	invited, err := svc.InviteTeacher(ctx, course.ID, "lec@ecm.edu.vn")
	require.NoError(t, err)
	require.Equal(t, models.InvitationPending, invited.InvitationStatus)
	require.NotNil(t, invited.PendingTeacherID)
	require.Equal(t, invitee.ID, *invited.PendingTeacherID)

	pending, err := svc.PendingInvitations(ctx, invitee.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// Only the invitee may respond.
	_, err = svc.RespondToInvitation(ctx, course.ID, owner.ID, true)
	require.Error(t, err)

	accepted, err := svc.RespondToInvitation(ctx, course.ID, invitee.ID, true)
	require.NoError(t, err)
	require.Equal(t, invitee.ID, accepted.TeacherID)
	require.Equal(t, models.InvitationAccepted, accepted.InvitationStatus)
	require.Nil(t, accepted.PendingTeacherID)

	// No pending invitation left to respond to.
	_, err = svc.RespondToInvitation(ctx, course.ID, invitee.ID, true)
	require.ErrorIs(t, err, ErrNoPendingInvitation)

	// Reject path keeps the current teacher.
	rejectedCourse := createCourse(t, svc, center.ID, invitee.ID, "Geometry")
	_, err = svc.InviteTeacher(ctx, rejectedCourse.ID, "tranb@ecm.edu.vn")
	require.NoError(t, err)
	rejected, err := svc.RespondToInvitation(ctx, rejectedCourse.ID, owner.ID, false)
	require.NoError(t, err)
	require.Equal(t, invitee.ID, rejected.TeacherID)
	require.Equal(t, models.InvitationRejected, rejected.InvitationStatus)

	_, err = svc.InviteTeacher(ctx, course.ID, "nobody@ecm.edu.vn")
	require.ErrorIs(t, err, ErrUnknownEmail)
}

func TestCourseListFilters(t *testing.T) {
	db := openServiceTestDB(t)
	centerSvc, err := NewCenterService(db)
	require.NoError(t, err)
	svc, err := NewCourseService(db)
	require.NoError(t, err)
	ctx := context.Background()

	teacherA := createTeacher(t, db, "B", "Trần", "tranb@ecm.edu.vn")
	teacherB := createTeacher(t, db, "C", "Lê", "lec@ecm.edu.vn")
	center := createCenter(t, db, centerSvc, teacherA.ID, "Downtown")
	other := createCenter(t, db, centerSvc, teacherB.ID, "Uptown")

	createCourse(t, svc, center.ID, teacherA.ID, "Algebra")
	createCourse(t, svc, center.ID, teacherB.ID, "Geometry")
	createCourse(t, svc, other.ID, teacherB.ID, "Physics")

	byCenter, err := svc.List(ctx, center.ID, 0)
	require.NoError(t, err)
	require.Len(t, byCenter, 2)

	byTeacher, err := svc.List(ctx, 0, teacherB.ID)
	require.NoError(t, err)
	require.Len(t, byTeacher, 2)

	both, err := svc.List(ctx, center.ID, teacherB.ID)
	require.NoError(t, err)
	require.Len(t, both, 1)
	require.Equal(t, "Geometry", both[0].Name)
}
