package services

import (
	"context"
	"fmt"
	"log"

	"brga-members/internal/adapters/persistence/repositories"
	"brga-members/internal/core/domain"

	"github.com/robfig/cron/v3"
)

// SchedulerService owns the background cron jobs: the nightly purge of
// expired session and reset tokens, and the weekly meeting reminder
// emails. The caller starts and stops it alongside the HTTP server.
type SchedulerService struct {
	cron             *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
	resetTokenRepo   repositories.PasswordResetTokenRepository
	groupRepo        repositories.HomeGroupRepository
	profileRepo      repositories.MemberProfileRepository
	roleRepo         repositories.MemberRoleRepository
	mailer           Mailer
}

// NewSchedulerService creates a new scheduler service
func NewSchedulerService(
	refreshTokenRepo repositories.RefreshTokenRepository,
	resetTokenRepo repositories.PasswordResetTokenRepository,
	groupRepo repositories.HomeGroupRepository,
	profileRepo repositories.MemberProfileRepository,
	roleRepo repositories.MemberRoleRepository,
	mailer Mailer,
) *SchedulerService {
	return &SchedulerService{
		cron:             cron.New(),
		refreshTokenRepo: refreshTokenRepo,
		resetTokenRepo:   resetTokenRepo,
		groupRepo:        groupRepo,
		profileRepo:      profileRepo,
		roleRepo:         roleRepo,
		mailer:           mailer,
	}
}

// Start registers the jobs and starts the cron loop
func (s *SchedulerService) Start() error {
	// Nightly at 03:00: purge expired tokens
	if _, err := s.cron.AddFunc("0 3 * * *", func() {
		s.PurgeExpiredTokens(context.Background())
	}); err != nil {
		return err
	}

	// Monday 08:00: weekly meeting reminders
	if _, err := s.cron.AddFunc("0 8 * * 1", func() {
		s.SendMeetingReminders(context.Background())
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Scheduler started: token purge (nightly), meeting reminders (weekly)")
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✅ Scheduler stopped")
}

// PurgeExpiredTokens deletes expired refresh and reset tokens
func (s *SchedulerService) PurgeExpiredTokens(ctx context.Context) {
	refresh, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("⚠️ Refresh token purge failed: %v", err)
	}

	reset, err := s.resetTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("⚠️ Reset token purge failed: %v", err)
	}

	log.Printf("🧹 Token purge: %d refresh, %d reset tokens removed", refresh, reset)
}

// SendMeetingReminders emails each home group's members a reminder of
// their meeting. Only approved members who share an email address get
// one. Best-effort per group and per recipient.
func (s *SchedulerService) SendMeetingReminders(ctx context.Context) {
	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		log.Printf("⚠️ Meeting reminders skipped, group list failed: %v", err)
		return
	}

	approvedRoles, err := s.roleRepo.ListByStatus(ctx, string(domain.StatusApproved))
	if err != nil {
		log.Printf("⚠️ Meeting reminders skipped, role list failed: %v", err)
		return
	}
	approved := make(map[uint]bool, len(approvedRoles))
	for _, role := range approvedRoles {
		approved[role.UserID] = true
	}

	sent := 0
	for _, group := range groups {
		if group.DayOfWeek == "" || group.StartTime == "" {
			continue
		}

		profiles, err := s.profileRepo.ListByHomeGroup(ctx, group.ID)
		if err != nil {
			log.Printf("⚠️ Meeting reminder lookup failed for %s: %v", group.Name, err)
			continue
		}

		subject := fmt.Sprintf("Reminder: %s meets %s", group.Name, group.MeetingLabel())
		html := fmt.Sprintf(`<p>Your home group <strong>%s</strong> meets %s.</p><p>%s, %s, %s %s</p>`,
			group.Name, group.MeetingLabel(), group.Address, group.City, group.State, group.Zip)
		text := fmt.Sprintf("Your home group %s meets %s. %s, %s, %s %s",
			group.Name, group.MeetingLabel(), group.Address, group.City, group.State, group.Zip)

		for _, p := range profiles {
			if !approved[p.UserID] || p.Email == "" {
				continue
			}
			if _, err := s.mailer.Send(ctx, p.Email, subject, html, text); err != nil {
				log.Printf("⚠️ Meeting reminder failed for %s: %v", p.Email, err)
				continue
			}
			sent++
		}
	}

	log.Printf("📧 Meeting reminders sent: %d", sent)
}
