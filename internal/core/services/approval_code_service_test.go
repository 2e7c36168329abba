package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"brga-members/internal/adapters/persistence/models"
	"brga-members/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodes(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCodeRepo()
	svc := NewApprovalCodeService(repo)

	codes, err := svc.Generate(ctx, 1, 10, 30)
	require.NoError(t, err)
	require.Len(t, codes, 10)

	seen := make(map[string]bool)
	for _, c := range codes {
		assert.Regexp(t, `^[a-z]+-[a-z]+-[a-z]+$`, c.Code)
		assert.False(t, seen[c.Code], "duplicate code in batch: %s", c.Code)
		seen[c.Code] = true

		parts := strings.Split(c.Code, "-")
		require.Len(t, parts, 3)
		for _, word := range parts {
			assert.Contains(t, codeWords, word)
		}

		assert.Equal(t, uint(1), c.CreatedBy)
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), c.ExpiresAt, time.Minute)
		assert.Nil(t, c.UsedBy)
	}
}

func TestGenerateCodesCountBounds(t *testing.T) {
	ctx := context.Background()
	svc := NewApprovalCodeService(newFakeCodeRepo())

	_, err := svc.Generate(ctx, 1, 0, 30)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Generate(ctx, 1, MaxCodesPerBatch+1, 30)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Generate(ctx, 1, 5, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidateCode(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCodeRepo()
	svc := NewApprovalCodeService(repo)

	userID := uint(7)
	usedAt := time.Now().Add(-time.Hour)
	require.NoError(t, repo.CreateBatch(ctx, []*models.ApprovalCode{
		{Code: "serenity-courage-wisdom", CreatedBy: 1, ExpiresAt: time.Now().Add(24 * time.Hour)},
		{Code: "hope-faith-unity", CreatedBy: 1, ExpiresAt: time.Now().Add(-time.Hour)},
		{Code: "peace-trust-grace", CreatedBy: 1, ExpiresAt: time.Now().Add(-time.Hour), UsedBy: &userID, UsedAt: &usedAt},
	}))

	tests := []struct {
		name string
		code string
		want error
	}{
		{"valid", "serenity-courage-wisdom", nil},
		{"valid with whitespace and caps", "  Serenity-Courage-WISDOM ", nil},
		{"bad format", "not a code", domain.ErrCodeFormatInvalid},
		{"two words", "serenity-courage", domain.ErrCodeFormatInvalid},
		{"unknown", "unity-unity-unity", domain.ErrCodeNotFound},
		{"expired", "hope-faith-unity", domain.ErrCodeExpired},
		// used takes precedence over expired
		{"used and expired", "peace-trust-grace", domain.ErrCodeAlreadyUsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Validate(ctx, tt.code)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestRedeemCode(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCodeRepo()
	svc := NewApprovalCodeService(repo)

	require.NoError(t, repo.CreateBatch(ctx, []*models.ApprovalCode{
		{Code: "serenity-courage-wisdom", CreatedBy: 1, ExpiresAt: time.Now().Add(24 * time.Hour)},
	}))

	// Blank code is the anonymous signup path, a silent no-op
	require.NoError(t, svc.Redeem(ctx, "", 42))
	require.NoError(t, svc.Redeem(ctx, "   ", 42))

	require.NoError(t, svc.Redeem(ctx, "Serenity-Courage-Wisdom", 42))

	row, err := repo.GetByCode(ctx, "serenity-courage-wisdom")
	require.NoError(t, err)
	require.NotNil(t, row.UsedBy)
	assert.Equal(t, uint(42), *row.UsedBy)
	require.NotNil(t, row.UsedAt)

	// A second redemption fails; the code stays bound to the first user
	err = svc.Redeem(ctx, "serenity-courage-wisdom", 43)
	assert.ErrorIs(t, err, domain.ErrCodeAlreadyUsed)

	row, err = repo.GetByCode(ctx, "serenity-courage-wisdom")
	require.NoError(t, err)
	assert.Equal(t, uint(42), *row.UsedBy)
}

func TestRedeemCodeConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCodeRepo()
	svc := NewApprovalCodeService(repo)

	require.NoError(t, repo.CreateBatch(ctx, []*models.ApprovalCode{
		{Code: "growth-healing-renewal", CreatedBy: 1, ExpiresAt: time.Now().Add(24 * time.Hour)},
	}))

	const racers = 20
	errs := make([]error, racers)
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Redeem(ctx, "growth-healing-renewal", uint(100+i))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		// Losers see either the pre-check or the conditional update fail
		ok := errors.Is(err, domain.ErrCodeAlreadyUsed) || errors.Is(err, domain.ErrCodeRedemptionConflict)
		assert.True(t, ok, "unexpected loser error: %v", err)
	}
	assert.Equal(t, 1, winners, "exactly one racer should win the code")
}

func TestListCodes(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCodeRepo()
	svc := NewApprovalCodeService(repo)

	userID := uint(9)
	now := time.Now()
	require.NoError(t, repo.CreateBatch(ctx, []*models.ApprovalCode{
		{Code: "serenity-courage-wisdom", CreatedBy: 1, ExpiresAt: now.Add(24 * time.Hour)},
		{Code: "hope-faith-unity", CreatedBy: 1, ExpiresAt: now.Add(-time.Hour)},
		{Code: "peace-trust-grace", CreatedBy: 1, ExpiresAt: now.Add(-time.Hour), UsedBy: &userID, UsedAt: &now},
	}))

	all, err := svc.List(ctx, domain.CodeStatusAll, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	unused, err := svc.List(ctx, domain.CodeStatusUnused, "")
	require.NoError(t, err)
	require.Len(t, unused, 1)
	assert.Equal(t, "serenity-courage-wisdom", unused[0].Code)

	// Expired-but-used classifies as used, not expired
	used, err := svc.List(ctx, domain.CodeStatusUsed, "")
	require.NoError(t, err)
	require.Len(t, used, 1)
	assert.Equal(t, "peace-trust-grace", used[0].Code)

	expired, err := svc.List(ctx, domain.CodeStatusExpired, "")
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "hope-faith-unity", expired[0].Code)

	searched, err := svc.List(ctx, domain.CodeStatusAll, "faith")
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "hope-faith-unity", searched[0].Code)

	_, err = svc.List(ctx, domain.CodeStatus("bogus"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteUnusedCodes(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCodeRepo()
	svc := NewApprovalCodeService(repo)

	userID := uint(5)
	now := time.Now()
	codes := []*models.ApprovalCode{
		{Code: "serenity-courage-wisdom", CreatedBy: 1, ExpiresAt: now.Add(24 * time.Hour)},
		{Code: "peace-trust-grace", CreatedBy: 1, ExpiresAt: now.Add(24 * time.Hour), UsedBy: &userID, UsedAt: &now},
	}
	require.NoError(t, repo.CreateBatch(ctx, codes))

	// Both ids requested; the used one is silently skipped
	deleted, err := svc.DeleteUnused(ctx, []uint{codes[0].ID, codes[1].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetByCode(ctx, "peace-trust-grace")
	assert.NoError(t, err, "used code must survive bulk delete")

	deleted, err = svc.DeleteUnused(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestGenerateCodesBatchUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCodeRepo()
	svc := NewApprovalCodeService(repo)

	// Several max-size batches; uniqueness must hold across batches too
	seen := make(map[string]bool)
	for batch := 0; batch < 3; batch++ {
		codes, err := svc.Generate(ctx, 1, MaxCodesPerBatch, 7)
		require.NoError(t, err, fmt.Sprintf("batch %d", batch))
		for _, c := range codes {
			assert.False(t, seen[c.Code], "code %s issued twice", c.Code)
			seen[c.Code] = true
		}
	}
}
