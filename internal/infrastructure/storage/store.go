package storage

import (
	"regexp"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/ports"
)

// ErrNotFound is returned when an artifact has not been written.
var ErrNotFound = ports.ErrArtifactNotFound

var keyExpr = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

func validateKey(key string) error {
	if !keyExpr.MatchString(key) {
		return errors.Newf("invalid artifact key %q", key)
	}
	return nil
}
