package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"brga-members/internal/adapters/persistence/models"
	"brga-members/internal/adapters/persistence/repositories"
	"brga-members/internal/core/domain"
	"brga-members/internal/pkg/sobriety"
)

// Directory sort keys
const (
	SortByName      = "name"
	SortByCleanDate = "clean_date" // longest sober first
	SortByJoined    = "joined"     // newest first
)

// DirectoryFilters narrows the projected directory in memory
type DirectoryFilters struct {
	Search       string
	HomeGroupID  *uint
	SponsorsOnly bool
	SortBy       string
}

// DirectoryService builds the searchable member directory: approved,
// opted-in profiles only, joined to home groups and enriched with a
// sobriety duration.
type DirectoryService struct {
	profileRepo repositories.MemberProfileRepository
	roleRepo    repositories.MemberRoleRepository
	userRepo    repositories.UserRepository
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(
	profileRepo repositories.MemberProfileRepository,
	roleRepo repositories.MemberRoleRepository,
	userRepo repositories.UserRepository,
) *DirectoryService {
	return &DirectoryService{
		profileRepo: profileRepo,
		roleRepo:    roleRepo,
		userRepo:    userRepo,
	}
}

// List projects and filters the directory
func (s *DirectoryService) List(ctx context.Context, filters DirectoryFilters) ([]*domain.DirectoryEntry, error) {
	profiles, err := s.profileRepo.ListListed(ctx)
	if err != nil {
		return nil, err
	}

	roles, err := s.roleRepo.ListByStatus(ctx, string(domain.StatusApproved))
	if err != nil {
		return nil, err
	}

	joined := make(map[uint]time.Time, len(roles))
	approved := make(map[uint]bool, len(roles))
	for _, role := range roles {
		approved[role.UserID] = true
		joined[role.UserID] = role.CreatedAt
	}

	entries := Project(profiles, approved, joined, time.Now())
	return Filter(entries, filters), nil
}

// Project is the base projection: keep listed profiles with an approved
// role row and at least one name component, join the home group, and
// compute the sobriety duration. Pure transform.
func Project(profiles []*models.MemberProfile, approved map[uint]bool, joined map[uint]time.Time, now time.Time) []*domain.DirectoryEntry {
	entries := make([]*domain.DirectoryEntry, 0, len(profiles))

	for _, p := range profiles {
		if !p.ListedInDirectory || !approved[p.UserID] || !p.HasName() {
			continue
		}

		entry := &domain.DirectoryEntry{
			UserID:           p.UserID,
			FirstName:        p.FirstName,
			MiddleInitial:    p.MiddleInitial,
			LastName:         p.LastName,
			DisplayName:      p.FullName(),
			HomeGroupID:      p.HomeGroupID,
			WillingToSponsor: p.WillingToSponsor,
			CleanDate:        p.CleanDate,
			JoinedAt:         joined[p.UserID],
		}

		if p.SharePhoneInDirectory {
			entry.Phone = p.Phone
		}
		if p.ShareEmailInDirectory {
			entry.Email = p.Email
		}
		if p.HomeGroup != nil {
			entry.HomeGroupName = p.HomeGroup.Name
		}
		if p.CleanDate != nil {
			entry.Sobriety = sobriety.Describe(*p.CleanDate, now)
		}

		entries = append(entries, entry)
	}

	return entries
}

// Filter applies the in-memory search/filter/sort pass
func Filter(entries []*domain.DirectoryEntry, filters DirectoryFilters) []*domain.DirectoryEntry {
	out := make([]*domain.DirectoryEntry, 0, len(entries))
	search := strings.ToLower(strings.TrimSpace(filters.Search))

	for _, e := range entries {
		if filters.SponsorsOnly && !e.WillingToSponsor {
			continue
		}
		if filters.HomeGroupID != nil {
			if e.HomeGroupID == nil || *e.HomeGroupID != *filters.HomeGroupID {
				continue
			}
		}
		if search != "" && !matchesSearch(e, search) {
			continue
		}
		out = append(out, e)
	}

	sortEntries(out, filters.SortBy)
	return out
}

func matchesSearch(e *domain.DirectoryEntry, search string) bool {
	haystack := strings.ToLower(e.DisplayName + " " + e.HomeGroupName)
	return strings.Contains(haystack, search)
}

func sortEntries(entries []*domain.DirectoryEntry, sortBy string) {
	switch sortBy {
	case SortByCleanDate:
		// Ascending clean date: longest sober first. Entries without a
		// clean date sort last.
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i].CleanDate, entries[j].CleanDate
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Before(*b)
		})
	case SortByJoined:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].JoinedAt.After(entries[j].JoinedAt)
		})
	default: // SortByName
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := nameKey(entries[i]), nameKey(entries[j])
			if a == "" {
				return false
			}
			if b == "" {
				return true
			}
			return a < b
		})
	}
}

// nameKey sorts last-name-first; empty means missing name, which
// callers push to the end.
func nameKey(e *domain.DirectoryEntry) string {
	return strings.ToLower(strings.TrimSpace(e.LastName + " " + e.FirstName))
}
