package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"brga-members/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// In-memory repository fakes for service tests. Misses return
// gorm.ErrRecordNotFound, matching what the real repositories surface.

type fakeCodeRepo struct {
	mu     sync.Mutex
	nextID uint
	codes  map[string]*models.ApprovalCode
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{codes: make(map[string]*models.ApprovalCode)}
}

func (r *fakeCodeRepo) CreateBatch(ctx context.Context, codes []*models.ApprovalCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range codes {
		r.nextID++
		c.ID = r.nextID
		c.CreatedAt = time.Now()
		cp := *c
		r.codes[c.Code] = &cp
	}
	return nil
}

func (r *fakeCodeRepo) GetByCode(ctx context.Context, code string) (*models.ApprovalCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCodeRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.codes[code]
	return ok, nil
}

// Redeem mirrors the conditional UPDATE: it only fires when used_by is
// still nil, under the same lock that guards reads.
func (r *fakeCodeRepo) Redeem(ctx context.Context, code string, userID uint, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[code]
	if !ok || c.UsedBy != nil {
		return 0, nil
	}
	c.UsedBy = &userID
	c.UsedAt = &at
	return 1, nil
}

func (r *fakeCodeRepo) List(ctx context.Context, search string) ([]*models.ApprovalCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ApprovalCode, 0, len(r.codes))
	for _, c := range r.codes {
		if search != "" && !strings.Contains(c.Code, search) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeCodeRepo) DeleteUnused(ctx context.Context, ids []uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var deleted int64
	for code, c := range r.codes {
		if want[c.ID] && c.UsedBy == nil {
			delete(r.codes, code)
			deleted++
		}
	}
	return deleted, nil
}

type fakeRoleRepo struct {
	mu     sync.Mutex
	nextID uint
	roles  map[uint]*models.MemberRole // keyed by user ID
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[uint]*models.MemberRole)}
}

func (r *fakeRoleRepo) Create(ctx context.Context, role *models.MemberRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	role.ID = r.nextID
	role.CreatedAt = time.Now()
	cp := *role
	r.roles[role.UserID] = &cp
	return nil
}

func (r *fakeRoleRepo) GetByUserID(ctx context.Context, userID uint) (*models.MemberRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *role
	return &cp, nil
}

func (r *fakeRoleRepo) Update(ctx context.Context, role *models.MemberRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *role
	r.roles[role.UserID] = &cp
	return nil
}

func (r *fakeRoleRepo) ListByStatus(ctx context.Context, status string) ([]*models.MemberRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.MemberRole
	for _, role := range r.roles {
		if role.ApprovalStatus == status {
			cp := *role
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRoleRepo) ListAll(ctx context.Context) ([]*models.MemberRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.MemberRole
	for _, role := range r.roles {
		cp := *role
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRoleRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	roles, _ := r.ListByStatus(ctx, status)
	return int64(len(roles)), nil
}

type fakeAuditRepo struct {
	mu     sync.Mutex
	events []*models.AuditEvent
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Create(ctx context.Context, event *models.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = uint(len(r.events) + 1)
	event.CreatedAt = time.Now()
	cp := *event
	r.events = append(r.events, &cp)
	return nil
}

func (r *fakeAuditRepo) ListByUserID(ctx context.Context, userID uint) ([]*models.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AuditEvent
	for _, e := range r.events {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Password = passwordHash
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int, search string) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.User
	for _, user := range r.users {
		if search != "" && !strings.Contains(user.Email, search) {
			continue
		}
		cp := *user
		all = append(all, &cp)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	nextID   uint
	profiles map[uint]*models.MemberProfile // keyed by user ID
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uint]*models.MemberProfile)}
}

func (r *fakeProfileRepo) Create(ctx context.Context, profile *models.MemberProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	profile.ID = r.nextID
	cp := *profile
	r.profiles[profile.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, userID uint) (*models.MemberProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *profile
	return &cp, nil
}

func (r *fakeProfileRepo) Update(ctx context.Context, profile *models.MemberProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *profile
	r.profiles[profile.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) Upsert(ctx context.Context, profile *models.MemberProfile) error {
	r.mu.Lock()
	existing, ok := r.profiles[profile.UserID]
	r.mu.Unlock()
	if ok {
		profile.ID = existing.ID
		return r.Update(ctx, profile)
	}
	return r.Create(ctx, profile)
}

func (r *fakeProfileRepo) ListListed(ctx context.Context) ([]*models.MemberProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.MemberProfile
	for _, p := range r.profiles {
		if p.ListedInDirectory {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) ListByHomeGroup(ctx context.Context, homeGroupID uint) ([]*models.MemberProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.MemberProfile
	for _, p := range r.profiles {
		if p.HomeGroupID != nil && *p.HomeGroupID == homeGroupID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) CountByHomeGroup(ctx context.Context, homeGroupID uint) (int64, error) {
	profiles, _ := r.ListByHomeGroup(ctx, homeGroupID)
	return int64(len(profiles)), nil
}

type fakeGroupRepo struct {
	mu     sync.Mutex
	nextID uint
	groups map[uint]*models.HomeGroup
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[uint]*models.HomeGroup)}
}

func (r *fakeGroupRepo) Create(ctx context.Context, group *models.HomeGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	group.ID = r.nextID
	cp := *group
	r.groups[group.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) GetByID(ctx context.Context, id uint) (*models.HomeGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *group
	return &cp, nil
}

func (r *fakeGroupRepo) GetByName(ctx context.Context, name string) (*models.HomeGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, group := range r.groups {
		if group.Name == name {
			cp := *group
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGroupRepo) List(ctx context.Context) ([]*models.HomeGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.HomeGroup
	for _, group := range r.groups {
		cp := *group
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeGroupRepo) Update(ctx context.Context, group *models.HomeGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *group
	r.groups[group.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, id)
	return nil
}

// fakeMailer records sends and can be told to fail
type fakeMailer struct {
	mu       sync.Mutex
	sent     []sentEmail
	failNext bool
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{}
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, html, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return "", context.DeadlineExceeded
	}
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Body: text})
	return "fake-id", nil
}

func (m *fakeMailer) SendWelcome(ctx context.Context, to, tempPassword string) error {
	_, err := m.Send(ctx, to, "welcome", "", tempPassword)
	return err
}

func (m *fakeMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	_, err := m.Send(ctx, to, "reset", "", token)
	return err
}

func (m *fakeMailer) sentTo(to string) []sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentEmail
	for _, s := range m.sent {
		if s.To == to {
			out = append(out, s)
		}
	}
	return out
}
