package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/reader/model"
	"library-backend/internal/domains/reader/repository"
	"library-backend/internal/shared/authz"
	"library-backend/internal/shared/fault"
)

var adminActor = authz.Actor{UserID: uuid.New(), Role: authz.RoleAdmin}

func newTestService() ServiceInterface {
	return NewService(repository.NewMemoryRepository())
}

func TestCreateReaderDefaultsToReaderRole(t *testing.T) {
	svc := newTestService()

	reader, err := svc.CreateReader(context.Background(), adminActor, model.CreateReaderRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, authz.RoleReader, reader.Role)
	assert.True(t, reader.Active)
	assert.True(t, reader.OutstandingFines.IsZero())
}

func TestCreateReaderRequiresAdmin(t *testing.T) {
	svc := newTestService()
	staff := authz.Actor{UserID: uuid.New(), Role: authz.RoleStaff}

	_, err := svc.CreateReader(context.Background(), staff, model.CreateReaderRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
	})
	require.Error(t, err)
	assert.Equal(t, fault.KindPermissionDenied, fault.KindOf(err))
}

func TestCreateReaderDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.CreateReader(ctx, adminActor, model.CreateReaderRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
	})
	require.NoError(t, err)

	_, err = svc.CreateReader(ctx, adminActor, model.CreateReaderRequest{
		FullName: "Another Ada",
		Email:    "ada@example.com",
	})
	require.Error(t, err)
	assert.Equal(t, fault.KindConflict, fault.KindOf(err))
}

func TestUpdateRoleValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	reader, err := svc.CreateReader(ctx, adminActor, model.CreateReaderRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
	})
	require.NoError(t, err)

	err = svc.UpdateRole(ctx, adminActor, reader.ID, model.UpdateRoleRequest{Role: "librarian"})
	require.Error(t, err)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))

	require.NoError(t, svc.UpdateRole(ctx, adminActor, reader.ID, model.UpdateRoleRequest{Role: "staff"}))

	got, err := svc.GetReader(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleStaff, got.Role)
}

func TestSetActiveTogglesMembership(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	reader, err := svc.CreateReader(ctx, adminActor, model.CreateReaderRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(ctx, adminActor, reader.ID, false))

	got, err := svc.GetReader(ctx, reader.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestSetActiveUnknownReader(t *testing.T) {
	svc := newTestService()

	err := svc.SetActive(context.Background(), adminActor, uuid.New(), false)
	require.Error(t, err)
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}
