package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// Username must be alphanumeric with dots, dashes, underscores or an @, 3-50 chars
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.@-]{3,50}$`)

	uploadExtensions = map[string]bool{".csv": true, ".txt": true, ".xlsx": true, ".xlsm": true}
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// SanitizeString removes control characters and trims whitespace
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

func ValidateUsername(username string) error {
	username = SanitizeString(username)

	switch {
	case username == "":
		return invalid("username cannot be empty")
	case len(username) < 3:
		return invalid("username must be at least 3 characters")
	case len(username) > 50:
		return invalid("username must not exceed 50 characters")
	case !usernameRegex.MatchString(username):
		return invalid("username may only contain letters, numbers and . _ - @")
	}

	return nil
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return invalid("password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt ignores everything past 72 bytes
		return invalid("password must not exceed 72 characters")
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return invalid("password must contain at least one uppercase letter")
	case !hasLower:
		return invalid("password must contain at least one lowercase letter")
	case !hasNumber:
		return invalid("password must contain at least one number")
	case !hasSpecial:
		return invalid("password must contain at least one special character")
	}

	return nil
}

// SanitizeFilename strips any directory part from a client supplied name.
func SanitizeFilename(name string) string {
	name = SanitizeString(name)
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// ValidateUploadFilename accepts csv, txt and Excel workbook names.
func ValidateUploadFilename(name string) error {
	name = SanitizeFilename(name)
	if name == "" {
		return invalid("filename cannot be empty")
	}
	if len(name) > 255 {
		return invalid("filename must not exceed 255 characters")
	}
	if !uploadExtensions[strings.ToLower(filepath.Ext(name))] {
		return invalid("unsupported file type %q, expected .csv or .xlsx", filepath.Ext(name))
	}
	return nil
}

// ValidateDatasetID accepts an empty id (meaning the latest dataset) or a uuid.
func ValidateDatasetID(id string) error {
	if id == "" {
		return nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return invalid("datasetId must be a uuid")
	}
	return nil
}

func ValidateModelType(t string) error {
	if !models.ModelType(t).IsValid() {
		return invalid("unknown model type %q", t)
	}
	return nil
}

func ValidateHorizon(days int) error {
	if days != 1 && days != 7 {
		return invalid("horizon must be 1 or 7 days")
	}
	return nil
}
