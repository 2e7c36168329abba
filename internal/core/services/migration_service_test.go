package services

import (
	"context"
	"testing"
	"time"

	"brga-members/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCleanDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *time.Time
	}{
		{"iso", "2020-03-15", timePtr(2020, 3, 15)},
		{"us slashes", "03/15/2020", timePtr(2020, 3, 15)},
		{"us no padding", "3/15/2020", timePtr(2020, 3, 15)},
		{"blank", "", nil},
		{"whitespace", "   ", nil},
		{"garbage", "sometime in march", nil},
		{"future", "2099-01-01", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCleanDate(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.True(t, got.Equal(*tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func timePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestMigrationRejectsEmptyBatch(t *testing.T) {
	svc := NewMigrationService(nil, newFakeUserRepo(), nil, newFakeMailer())
	_, err := svc.Run(context.Background(), &MigrationInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
