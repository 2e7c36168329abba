package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"strings"
	"time"

	"brga-members/internal/adapters/persistence/models"
	"brga-members/internal/adapters/persistence/repositories"
	"brga-members/internal/core/domain"

	"gorm.io/gorm"
)

// codeWords is the fixed dictionary codes are drawn from. Three words
// joined by hyphens; collisions across codes are possible and handled
// by a uniqueness check with retries.
var codeWords = []string{
	"serenity", "courage", "wisdom", "unity",
	"service", "recovery", "hope", "faith",
	"honesty", "humility", "gratitude", "patience",
	"strength", "freedom", "peace", "trust",
	"growth", "healing", "renewal", "promise",
	"journey", "spirit", "harmony", "balance",
	"clarity", "purpose", "resolve", "kindness",
	"mercy", "grace", "candor", "valor",
}

var codePattern = regexp.MustCompile(`^[a-z]+-[a-z]+-[a-z]+$`)

const (
	// MaxCodesPerBatch caps a single generation request
	MaxCodesPerBatch = 50

	maxGenerateRetries = 10
)

// ErrCodeGenerationFailed is returned when a unique code cannot be
// found within the retry budget; the whole batch fails.
var ErrCodeGenerationFailed = errors.New("could not generate a unique approval code")

// ApprovalCodeService handles approval code generation and redemption
type ApprovalCodeService struct {
	codeRepo repositories.ApprovalCodeRepository
}

// NewApprovalCodeService creates a new approval code service
func NewApprovalCodeService(codeRepo repositories.ApprovalCodeRepository) *ApprovalCodeService {
	return &ApprovalCodeService{codeRepo: codeRepo}
}

// NormalizeCode trims and lowercases a user-supplied code
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Generate creates count single-use codes expiring expirationDays from
// now and persists them in one batch insert.
func (s *ApprovalCodeService) Generate(ctx context.Context, createdBy uint, count, expirationDays int) ([]*models.ApprovalCode, error) {
	if count < 1 || count > MaxCodesPerBatch {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", domain.ErrInvalidInput, MaxCodesPerBatch)
	}
	if expirationDays < 1 {
		return nil, fmt.Errorf("%w: expiration days must be positive", domain.ErrInvalidInput)
	}

	expiresAt := time.Now().Add(time.Duration(expirationDays) * 24 * time.Hour)
	codes := make([]*models.ApprovalCode, 0, count)
	taken := make(map[string]bool, count)

	for i := 0; i < count; i++ {
		code, err := s.uniqueCode(ctx, taken)
		if err != nil {
			return nil, err
		}
		taken[code] = true

		codes = append(codes, &models.ApprovalCode{
			Code:      code,
			CreatedBy: createdBy,
			ExpiresAt: expiresAt,
		})
	}

	if err := s.codeRepo.CreateBatch(ctx, codes); err != nil {
		return nil, err
	}

	log.Printf("✅ Generated %d approval codes (expire %s)", len(codes), expiresAt.Format("2006-01-02"))
	return codes, nil
}

// uniqueCode draws random codes until one passes the uniqueness check,
// within the retry budget.
func (s *ApprovalCodeService) uniqueCode(ctx context.Context, taken map[string]bool) (string, error) {
	for attempt := 0; attempt < maxGenerateRetries; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		if taken[code] {
			continue
		}

		exists, err := s.codeRepo.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

// randomCode picks three dictionary words with replacement
func randomCode() (string, error) {
	words := make([]string, 3)
	for i := range words {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeWords))))
		if err != nil {
			return "", err
		}
		words[i] = codeWords[n.Int64()]
	}
	return strings.Join(words, "-"), nil
}

// Validate checks a code without mutating it. Already-used takes
// precedence over expiry.
func (s *ApprovalCodeService) Validate(ctx context.Context, code string) error {
	normalized := NormalizeCode(code)
	if !codePattern.MatchString(normalized) {
		return domain.ErrCodeFormatInvalid
	}

	row, err := s.codeRepo.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrCodeNotFound
		}
		return err
	}

	if row.UsedBy != nil {
		return domain.ErrCodeAlreadyUsed
	}
	if time.Now().After(row.ExpiresAt) {
		return domain.ErrCodeExpired
	}

	return nil
}

// Redeem consumes a code for a new identity. A blank code is a no-op
// success (the anonymous pending-signup path). The update is
// conditional on used_by still being NULL, so two concurrent signups
// cannot both consume the same code; the loser gets
// ErrCodeRedemptionConflict.
func (s *ApprovalCodeService) Redeem(ctx context.Context, code string, userID uint) error {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil
	}

	if err := s.Validate(ctx, normalized); err != nil {
		return err
	}

	affected, err := s.codeRepo.Redeem(ctx, normalized, userID, time.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrCodeRedemptionConflict
	}

	log.Printf("✅ Approval code redeemed: %s (user ID: %d)", normalized, userID)
	return nil
}

// List lists codes for admin review filtered by status bucket and code
// substring. Expired-but-used codes are classified as used.
func (s *ApprovalCodeService) List(ctx context.Context, status domain.CodeStatus, search string) ([]*models.CodeResponse, error) {
	switch status {
	case domain.CodeStatusAll, domain.CodeStatusUnused, domain.CodeStatusUsed, domain.CodeStatusExpired:
	case "":
		status = domain.CodeStatusAll
	default:
		return nil, fmt.Errorf("%w: unknown code status %q", domain.ErrInvalidInput, status)
	}

	rows, err := s.codeRepo.List(ctx, NormalizeCode(search))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]*models.CodeResponse, 0, len(rows))
	for _, row := range rows {
		resp := row.ToResponse(now)
		if status != domain.CodeStatusAll && resp.Status != string(status) {
			continue
		}
		out = append(out, resp)
	}

	return out, nil
}

// DeleteUnused bulk deletes codes, skipping used ones server-side.
// Returns the number of rows actually deleted.
func (s *ApprovalCodeService) DeleteUnused(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	deleted, err := s.codeRepo.DeleteUnused(ctx, ids)
	if err != nil {
		return 0, err
	}

	log.Printf("✅ Deleted %d unused approval codes (%d requested)", deleted, len(ids))
	return deleted, nil
}
