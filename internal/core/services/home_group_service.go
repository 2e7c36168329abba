package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"brga-members/internal/adapters/persistence/models"
	"brga-members/internal/adapters/persistence/repositories"
	"brga-members/internal/core/domain"

	"gorm.io/gorm"
)

// HomeGroupService manages meeting locations. Groups are referenced by
// member profiles, never owned by them.
type HomeGroupService struct {
	groupRepo   repositories.HomeGroupRepository
	profileRepo repositories.MemberProfileRepository
}

// NewHomeGroupService creates a new home group service
func NewHomeGroupService(
	groupRepo repositories.HomeGroupRepository,
	profileRepo repositories.MemberProfileRepository,
) *HomeGroupService {
	return &HomeGroupService{
		groupRepo:   groupRepo,
		profileRepo: profileRepo,
	}
}

// HomeGroupInput carries home group fields
type HomeGroupInput struct {
	Name      string `json:"name"`
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
}

// Create creates a home group
func (s *HomeGroupService) Create(ctx context.Context, input *HomeGroupInput) (*models.HomeGroup, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	if _, err := s.groupRepo.GetByName(ctx, name); err == nil {
		return nil, domain.ErrDuplicateEntry
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	group := &models.HomeGroup{
		Name:      name,
		DayOfWeek: input.DayOfWeek,
		StartTime: input.StartTime,
		Address:   input.Address,
		City:      input.City,
		State:     input.State,
		Zip:       input.Zip,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}

	log.Printf("✅ Home group created: %s", group.Name)
	return group, nil
}

// Get gets a home group by ID
func (s *HomeGroupService) Get(ctx context.Context, id uint) (*models.HomeGroup, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrHomeGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

// List lists all home groups
func (s *HomeGroupService) List(ctx context.Context) ([]*models.HomeGroup, error) {
	return s.groupRepo.List(ctx)
}

// Update updates a home group
func (s *HomeGroupService) Update(ctx context.Context, id uint, input *HomeGroupInput) (*models.HomeGroup, error) {
	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		group.Name = name
	}
	group.DayOfWeek = input.DayOfWeek
	group.StartTime = input.StartTime
	group.Address = input.Address
	group.City = input.City
	group.State = input.State
	group.Zip = input.Zip

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Delete removes a home group unless member profiles still point at it
func (s *HomeGroupService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.profileRepo.CountByHomeGroup(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrHomeGroupInUse
	}

	return s.groupRepo.Delete(ctx, id)
}

// LookupOrCreate finds a group by name, creating a bare row when
// absent. Used by the migration path where only a name is known.
func (s *HomeGroupService) LookupOrCreate(ctx context.Context, name string) (*models.HomeGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	group, err := s.groupRepo.GetByName(ctx, name)
	if err == nil {
		return group, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	group = &models.HomeGroup{Name: name}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// sampleGroups seeds a recognizable meeting list for new installs
var sampleGroups = []models.HomeGroup{
	{Name: "Downtown Serenity", DayOfWeek: "Tuesday", StartTime: "7:00 PM", Address: "660 Laurel St", City: "Baton Rouge", State: "LA", Zip: "70801"},
	{Name: "Mid City Hope", DayOfWeek: "Thursday", StartTime: "6:30 PM", Address: "4550 North Blvd", City: "Baton Rouge", State: "LA", Zip: "70806"},
	{Name: "Sherwood Step Study", DayOfWeek: "Saturday", StartTime: "10:00 AM", Address: "9800 Florida Blvd", City: "Baton Rouge", State: "LA", Zip: "70815"},
	{Name: "Sunday Night Candlelight", DayOfWeek: "Sunday", StartTime: "8:00 PM", Address: "12335 Old Hammond Hwy", City: "Baton Rouge", State: "LA", Zip: "70816"},
}

// CreateSampleGroups bulk-creates the sample meeting list, skipping
// names that already exist. Returns the number created.
func (s *HomeGroupService) CreateSampleGroups(ctx context.Context) (int, error) {
	created := 0
	for i := range sampleGroups {
		sample := sampleGroups[i]

		if _, err := s.groupRepo.GetByName(ctx, sample.Name); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		if err := s.groupRepo.Create(ctx, &sample); err != nil {
			return created, err
		}
		created++
	}

	log.Printf("✅ Sample home groups created: %d", created)
	return created, nil
}
