package services

import (
	"context"
	"testing"

	"brga-members/internal/adapters/persistence/models"
	"brga-members/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomeGroupCreate(t *testing.T) {
	ctx := context.Background()
	svc := NewHomeGroupService(newFakeGroupRepo(), newFakeProfileRepo())

	group, err := svc.Create(ctx, &HomeGroupInput{
		Name: "  Downtown Serenity  ", DayOfWeek: "Tuesday", StartTime: "7:00 PM",
	})
	require.NoError(t, err)
	assert.Equal(t, "Downtown Serenity", group.Name)

	_, err = svc.Create(ctx, &HomeGroupInput{Name: "Downtown Serenity"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)

	_, err = svc.Create(ctx, &HomeGroupInput{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHomeGroupDeleteBlockedWhileReferenced(t *testing.T) {
	ctx := context.Background()
	groupRepo := newFakeGroupRepo()
	profileRepo := newFakeProfileRepo()
	svc := NewHomeGroupService(groupRepo, profileRepo)

	group, err := svc.Create(ctx, &HomeGroupInput{Name: "Mid City Hope"})
	require.NoError(t, err)

	require.NoError(t, profileRepo.Create(ctx, &models.MemberProfile{
		UserID: 1, FirstName: "Alice", HomeGroupID: &group.ID,
	}))

	err = svc.Delete(ctx, group.ID)
	assert.ErrorIs(t, err, domain.ErrHomeGroupInUse)

	// Unhook the member and the delete goes through
	require.NoError(t, profileRepo.Update(ctx, &models.MemberProfile{UserID: 1, FirstName: "Alice"}))
	require.NoError(t, svc.Delete(ctx, group.ID))

	err = svc.Delete(ctx, group.ID)
	assert.ErrorIs(t, err, domain.ErrHomeGroupNotFound)
}

func TestLookupOrCreate(t *testing.T) {
	ctx := context.Background()
	groupRepo := newFakeGroupRepo()
	svc := NewHomeGroupService(groupRepo, newFakeProfileRepo())

	first, err := svc.LookupOrCreate(ctx, "Sherwood Step Study")
	require.NoError(t, err)

	second, err := svc.LookupOrCreate(ctx, "Sherwood Step Study")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same name must resolve to the same group")

	groups, err := groupRepo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestCreateSampleGroups(t *testing.T) {
	ctx := context.Background()
	svc := NewHomeGroupService(newFakeGroupRepo(), newFakeProfileRepo())

	created, err := svc.CreateSampleGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(sampleGroups), created)

	// Idempotent: a second run skips everything
	created, err = svc.CreateSampleGroups(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)
}
