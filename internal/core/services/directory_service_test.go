package services

import (
	"context"
	"testing"
	"time"

	"brga-members/internal/adapters/persistence/models"
	"brga-members/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directoryNow() time.Time {
	return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestProjectExcludesUnlistedAndUnapproved(t *testing.T) {
	now := directoryNow()
	profiles := []*models.MemberProfile{
		{UserID: 1, FirstName: "Alice", LastName: "Adams", ListedInDirectory: true},
		{UserID: 2, FirstName: "Bob", LastName: "Brown", ListedInDirectory: false}, // opted out
		{UserID: 3, FirstName: "Carol", LastName: "Clark", ListedInDirectory: true}, // not approved
		{UserID: 4, ListedInDirectory: true},                                        // no name
	}
	approved := map[uint]bool{1: true, 2: true, 4: true}
	joined := map[uint]time.Time{1: now.AddDate(-1, 0, 0)}

	entries := Project(profiles, approved, joined, now)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(1), entries[0].UserID)
	assert.Equal(t, "Alice Adams", entries[0].DisplayName)
}

func TestProjectShareFlagsGateContactInfo(t *testing.T) {
	now := directoryNow()
	profiles := []*models.MemberProfile{
		{
			UserID: 1, FirstName: "Alice", LastName: "Adams",
			Phone: "225-555-0101", Email: "alice@example.com",
			ListedInDirectory:     true,
			SharePhoneInDirectory: true,
			ShareEmailInDirectory: false,
		},
	}
	entries := Project(profiles, map[uint]bool{1: true}, nil, now)
	require.Len(t, entries, 1)
	assert.Equal(t, "225-555-0101", entries[0].Phone)
	assert.Empty(t, entries[0].Email, "email withheld unless shared")
}

func TestProjectSobrietyAndHomeGroup(t *testing.T) {
	now := directoryNow()
	cleanDate := now.AddDate(0, 0, -731)
	group := &models.HomeGroup{ID: 3, Name: "Downtown Serenity"}
	groupID := group.ID

	profiles := []*models.MemberProfile{
		{
			UserID: 1, FirstName: "Alice", LastName: "Adams",
			CleanDate: &cleanDate, HomeGroupID: &groupID, HomeGroup: group,
			ListedInDirectory: true,
		},
	}
	entries := Project(profiles, map[uint]bool{1: true}, nil, now)
	require.Len(t, entries, 1)
	assert.Equal(t, "Downtown Serenity", entries[0].HomeGroupName)
	assert.Equal(t, "2 years", entries[0].Sobriety)
}

func directoryFixture() []*domain.DirectoryEntry {
	now := directoryNow()
	g1, g2 := uint(1), uint(2)
	oldDate := now.AddDate(-10, 0, 0)
	newDate := now.AddDate(0, -3, 0)
	return []*domain.DirectoryEntry{
		{UserID: 1, FirstName: "Alice", LastName: "Adams", DisplayName: "Alice Adams", HomeGroupID: &g1, HomeGroupName: "Downtown Serenity", WillingToSponsor: true, CleanDate: &oldDate, JoinedAt: now.AddDate(-2, 0, 0)},
		{UserID: 2, FirstName: "Bob", LastName: "Brown", DisplayName: "Bob Brown", HomeGroupID: &g2, HomeGroupName: "Mid City Hope", CleanDate: &newDate, JoinedAt: now.AddDate(0, -1, 0)},
		{UserID: 3, FirstName: "Carol", LastName: "Clark", DisplayName: "Carol Clark", WillingToSponsor: true, JoinedAt: now.AddDate(-1, 0, 0)},
	}
}

func TestFilterSponsorsOnly(t *testing.T) {
	out := Filter(directoryFixture(), DirectoryFilters{SponsorsOnly: true})
	require.Len(t, out, 2)
	for _, e := range out {
		assert.True(t, e.WillingToSponsor)
	}
}

func TestFilterByHomeGroup(t *testing.T) {
	g2 := uint(2)
	out := Filter(directoryFixture(), DirectoryFilters{HomeGroupID: &g2})
	require.Len(t, out, 1)
	assert.Equal(t, uint(2), out[0].UserID)
}

func TestFilterSearch(t *testing.T) {
	// Search matches name and home group name, case-insensitively
	out := Filter(directoryFixture(), DirectoryFilters{Search: "bRoWn"})
	require.Len(t, out, 1)
	assert.Equal(t, uint(2), out[0].UserID)

	out = Filter(directoryFixture(), DirectoryFilters{Search: "serenity"})
	require.Len(t, out, 1)
	assert.Equal(t, uint(1), out[0].UserID)

	out = Filter(directoryFixture(), DirectoryFilters{Search: "zzz"})
	assert.Empty(t, out)
}

func TestSortByName(t *testing.T) {
	entries := []*domain.DirectoryEntry{
		{UserID: 1, FirstName: "Zed", LastName: "Adams"},
		{UserID: 2, FirstName: "Ann", LastName: "Brown"},
		{UserID: 3}, // missing name sorts last
		{UserID: 4, FirstName: "Bea", LastName: "Adams"},
	}
	out := Filter(entries, DirectoryFilters{SortBy: SortByName})
	ids := []uint{out[0].UserID, out[1].UserID, out[2].UserID, out[3].UserID}
	// last-name-first: Adams Bea, Adams Zed, Brown Ann, then the unnamed
	assert.Equal(t, []uint{4, 1, 2, 3}, ids)
}

func TestSortByCleanDate(t *testing.T) {
	out := Filter(directoryFixture(), DirectoryFilters{SortBy: SortByCleanDate})
	require.Len(t, out, 3)
	// Longest sober first; no clean date sorts last
	assert.Equal(t, uint(1), out[0].UserID)
	assert.Equal(t, uint(2), out[1].UserID)
	assert.Equal(t, uint(3), out[2].UserID)
}

func TestSortByJoined(t *testing.T) {
	out := Filter(directoryFixture(), DirectoryFilters{SortBy: SortByJoined})
	require.Len(t, out, 3)
	// Newest first
	assert.Equal(t, uint(2), out[0].UserID)
	assert.Equal(t, uint(3), out[1].UserID)
	assert.Equal(t, uint(1), out[2].UserID)
}

func TestDirectoryList(t *testing.T) {
	ctx := context.Background()
	profileRepo := newFakeProfileRepo()
	roleRepo := newFakeRoleRepo()
	userRepo := newFakeUserRepo()
	svc := NewDirectoryService(profileRepo, roleRepo, userRepo)

	require.NoError(t, profileRepo.Create(ctx, &models.MemberProfile{
		UserID: 1, FirstName: "Alice", LastName: "Adams", ListedInDirectory: true,
	}))
	require.NoError(t, profileRepo.Create(ctx, &models.MemberProfile{
		UserID: 2, FirstName: "Bob", LastName: "Brown", ListedInDirectory: true,
	}))
	require.NoError(t, roleRepo.Create(ctx, &models.MemberRole{
		UserID: 1, Role: string(domain.RoleMember), ApprovalStatus: string(domain.StatusApproved),
	}))
	require.NoError(t, roleRepo.Create(ctx, &models.MemberRole{
		UserID: 2, Role: string(domain.RoleMember), ApprovalStatus: string(domain.StatusPending),
	}))

	entries, err := svc.List(ctx, DirectoryFilters{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(1), entries[0].UserID)
	assert.False(t, entries[0].JoinedAt.IsZero())
}
