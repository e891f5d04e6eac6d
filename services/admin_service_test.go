package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/football-tournaments/models"
)

func TestAdminUserService_DeleteUser(t *testing.T) {
	users := newFakeUserRepo()
	admin := users.add(models.User{FirstName: "Root", Email: "root@example.com", Role: models.RoleAdmin})
	organizer := users.add(models.User{FirstName: "Org", Email: "org@example.com", Role: models.RoleOrganizer})
	manager := users.add(models.User{FirstName: "Coach", Email: "coach@example.com", Role: models.RoleClubManager})
	idle := users.add(models.User{FirstName: "Idle", Email: "idle@example.com", Role: models.RoleClubManager})
	users.referenced = map[int]bool{organizer.ID: true}

	svc := NewAdminUserService(users, discardLogger())
	asAdmin := Actor{UserID: admin.ID, Role: models.RoleAdmin}

	tests := []struct {
		name          string
		actor         Actor
		userID        int
		expectedError error
	}{
		{"not an admin", Actor{UserID: manager.ID, Role: models.RoleClubManager}, idle.ID, ErrForbiddenOperation},
		{"organizer is not enough", Actor{UserID: organizer.ID, Role: models.RoleOrganizer}, idle.ID, ErrForbiddenOperation},
		{"cannot delete self", asAdmin, admin.ID, ErrCannotDeleteSelf},
		{"still referenced", asAdmin, organizer.ID, ErrUserHasReferences},
		{"unknown user", asAdmin, 999, ErrUserNotFound},
		{"deleted", asAdmin, idle.ID, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.DeleteUser(context.Background(), tt.actor, tt.userID)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			_, err = users.GetByID(context.Background(), tt.userID)
			assert.Error(t, err)
		})
	}

	_, err := users.GetByID(context.Background(), organizer.ID)
	assert.NoError(t, err, "referenced user is kept")
}

func TestAdminUserService_UpdateUserRole(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	admin := users.add(models.User{FirstName: "Root", Email: "root@example.com", Role: models.RoleAdmin})
	user := users.add(models.User{FirstName: "Anna", Email: "anna@example.com", Role: models.RoleClubManager})
	svc := NewAdminUserService(users, discardLogger())
	asAdmin := Actor{UserID: admin.ID, Role: models.RoleAdmin}

	_, err := svc.UpdateUserRole(ctx, Actor{UserID: user.ID, Role: models.RoleClubManager}, user.ID, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	_, err = svc.UpdateUserRole(ctx, asAdmin, user.ID, "superuser")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.UpdateUserRole(ctx, asAdmin, 999, models.RoleOrganizer)
	assert.ErrorIs(t, err, ErrUserNotFound)

	updated, err := svc.UpdateUserRole(ctx, asAdmin, user.ID, models.RoleOrganizer)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOrganizer, updated.Role)

	page, err := svc.ListUsers(ctx, models.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, models.DefaultPageSize, page.PageSize)
}
