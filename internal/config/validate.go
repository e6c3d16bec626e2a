package config

import (
	"fmt"
	"regexp"
	"strings"

	bferrors "github.com/adamancini/brewfile/internal/errors"
)

// repoPattern matches an "owner/repo" pointer or a git URL.
var repoPattern = regexp.MustCompile(`^([A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+|(git@|git://|https?://).+)$`)

// tapPattern matches an "owner/repo" tap name.
var tapPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// ValidationError represents an invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks settings that cannot be used as given.
func Validate(s *Settings) error {
	var errors []string

	if strings.TrimSpace(s.Input) == "" {
		errors = append(errors, ValidationError{Field: KeyFile, Message: "must not be empty"}.Error())
	}
	if err := s.Dialect.Validate(); err != nil {
		errors = append(errors, ValidationError{Field: KeyFormat, Message: err.Error()}.Error())
	}
	if s.Verbose < 0 {
		errors = append(errors, ValidationError{Field: KeyVerbose, Message: "must be 0 or greater"}.Error())
	}
	if s.Repo != "" && !repoPattern.MatchString(s.Repo) {
		errors = append(errors, ValidationError{
			Field:   KeyRepo,
			Message: fmt.Sprintf("invalid repository %q (use owner/repo or a git URL)", s.Repo),
		}.Error())
	}
	if !tapPattern.MatchString(s.CaskRepo) {
		errors = append(errors, ValidationError{
			Field:   KeyCaskRepo,
			Message: fmt.Sprintf("invalid tap %q (must be owner/repo)", s.CaskRepo),
		}.Error())
	}
	for _, f := range []struct{ key, name string }{
		{KeyPipFormula, s.PipFormula},
		{KeyGemFormula, s.GemFormula},
		{KeyMasFormula, s.MasFormula},
		{KeyReattachFormula, s.ReattachFormula},
	} {
		if strings.TrimSpace(f.name) == "" {
			errors = append(errors, ValidationError{Field: f.key, Message: "must not be empty"}.Error())
		}
	}

	if len(errors) > 0 {
		return bferrors.Newf(bferrors.ErrConfigLoad, "validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}
