package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OldStager01/energy-forecaster/pkg/validation"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "grid_operator", false},
		{"email", "ops@example.com", false},
		{"trimmed", "  alice  ", false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 51), true},
		{"spaces", "bad name", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateUsername(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, validation.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"valid", "Str0ng!pass", ""},
		{"short", "Aa1!", "at least 8"},
		{"no upper", "weak1!pass", "uppercase"},
		{"no lower", "WEAK1!PASS", "lowercase"},
		{"no number", "Weak!pass", "number"},
		{"no special", "Weak1pass", "special"},
		{"too long", "Aa1!" + strings.Repeat("x", 80), "exceed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidatePassword(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, validation.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "load.csv", validation.SanitizeFilename("../../etc/load.csv"))
	assert.Equal(t, "load.csv", validation.SanitizeFilename(`C:\data\load.csv`))
	assert.Equal(t, "", validation.SanitizeFilename("  "))
}

func TestValidateUploadFilename(t *testing.T) {
	assert.NoError(t, validation.ValidateUploadFilename("grid.CSV"))
	assert.NoError(t, validation.ValidateUploadFilename("grid.xlsx"))
	assert.Error(t, validation.ValidateUploadFilename("grid.pdf"))
	assert.Error(t, validation.ValidateUploadFilename(""))
}

func TestValidateRequestFields(t *testing.T) {
	assert.NoError(t, validation.ValidateDatasetID(""))
	assert.NoError(t, validation.ValidateDatasetID("0b9f5a34-6c1e-4a63-9c55-1f2a3b4c5d6e"))
	assert.Error(t, validation.ValidateDatasetID("../etc"))

	assert.NoError(t, validation.ValidateModelType("hybrid"))
	assert.Error(t, validation.ValidateModelType("xgboost"))

	assert.NoError(t, validation.ValidateHorizon(7))
	assert.Error(t, validation.ValidateHorizon(2))
}
