// Package validation provides argument-shape checks used by the repositories
// before any mutation is attempted, so that no partial write happens against
// invalid input.
package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"quill/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// timestampLayout is fixed and lexically sortable.
const timestampLayout = "2006-01-02 15:04:05"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// RequireAll fails with MISSING_INPUT if any value is absent. A value is
// absent when it is nil or a blank string; booleans always count as present.
func RequireAll(values ...any) error {
	for i, v := range values {
		switch t := v.(type) {
		case bool:
			continue
		case nil:
			return models.NewMissingInputError(fmt.Sprintf("input %d", i))
		case string:
			if strings.TrimSpace(t) == "" {
				return models.NewMissingInputError(fmt.Sprintf("input %d", i))
			}
		}
	}
	return nil
}

// RequireCount fails with ARITY_ERROR unless exactly want values were given.
// Useful where inputs arrive as a loosely typed slice (request bodies);
// fixed-arity repository calls rely on the function signature instead.
func RequireCount(values []any, want int, op string) error {
	if len(values) != want {
		return models.NewArityError(op, len(values), want)
	}
	return nil
}

// RequireNonEmptyString fails with TYPE_ERROR unless v is a string with
// non-whitespace content.
func RequireNonEmptyString(v any, label string) error {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return models.NewTypeError(fmt.Sprintf("%s must be a non-empty string", label))
	}
	return nil
}

// RequireNumber fails with TYPE_ERROR unless v is numeric.
func RequireNumber(v any, label string) error {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return nil
	}
	return models.NewTypeError(fmt.Sprintf("%s must be a number", label))
}

// TrimStrings returns a new slice where every string element is trimmed.
// Non-string elements pass through unchanged.
func TrimStrings(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			out[i] = strings.TrimSpace(s)
		} else {
			out[i] = v
		}
	}
	return out
}

// RequireID trims id and fails with INVALID_ID unless it is a valid document
// id. It returns the trimmed id.
func RequireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if !primitive.IsValidObjectID(id) {
		return "", models.NewInvalidIDError(id)
	}
	return id, nil
}

// RequireObjectID trims id and parses it into its native form, failing with
// INVALID_ID when malformed.
func RequireObjectID(id string) (primitive.ObjectID, error) {
	id, err := RequireID(id)
	if err != nil {
		return primitive.NilObjectID, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.NewInvalidIDError(id)
	}
	return oid, nil
}

// RequireName fails with TYPE_ERROR unless name consists of letters and
// spaces only.
func RequireName(name, label string) error {
	if err := RequireNonEmptyString(name, label); err != nil {
		return err
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' {
			return models.NewTypeError(fmt.Sprintf("%s must consist of letters only", label))
		}
	}
	return nil
}

// RequireEmail fails with TYPE_ERROR unless email matches address grammar.
func RequireEmail(email, label string) error {
	if err := RequireNonEmptyString(email, label); err != nil {
		return err
	}
	if !emailRegex.MatchString(email) {
		return models.NewTypeError(fmt.Sprintf("%s is not a valid email address", label))
	}
	return nil
}

// RequireAge fails with TYPE_ERROR unless age is in [18, 100].
func RequireAge(age int) error {
	if age < 18 || age > 100 {
		return models.NewTypeError("age must be between 18-100")
	}
	return nil
}

// UserLookup resolves a user id to its record. It is satisfied by the user
// repository; validation depending on the repository it validates for is a
// deliberate layering exception.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// RequireExistingUsers fails with NOT_FOUND unless every id resolves to an
// existing user.
func RequireExistingUsers(ctx context.Context, users UserLookup, ids ...string) error {
	for _, id := range ids {
		if _, err := users.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Timestamp returns the current instant in the fixed sortable format.
func Timestamp() string {
	return time.Now().Format(timestampLayout)
}
