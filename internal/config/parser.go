package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	bferrors "github.com/adamancini/brewfile/internal/errors"
	"github.com/adamancini/brewfile/internal/logging"
)

// loadTOMLIntoViper decodes a config.toml and merges its keys into v.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func loadTOMLIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return bferrors.Wrapf(err, bferrors.ErrConfigLoad, "failed to read %s", path)
	}

	var values map[string]any
	if err := toml.Unmarshal(data, &values); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return bferrors.Newf(bferrors.ErrConfigLoad, "%s:%d:%d: %s", path, row, col, derr.Error())
		}
		return bferrors.Wrapf(err, bferrors.ErrConfigLoad, "failed to parse %s", path)
	}

	if err := validateKeys(values); err != nil {
		return bferrors.Wrapf(err, bferrors.ErrConfigLoad, "invalid %s", path)
	}
	if err := v.MergeConfigMap(values); err != nil {
		return bferrors.Wrapf(err, bferrors.ErrConfigLoad, "failed to merge %s", path)
	}

	logger := logging.GetLogger("config")
	logger.Debug().Str("path", path).Int("keys", len(values)).Msg("Loaded config file")
	return nil
}

// ParseEnvOpts parses an options variable such as HOMEBREW_CASK_OPTS into
// a map of lower-cased flag to value. Flags without "=" map to "". Words
// with more than one "=" are ignored. base supplies defaults.
func ParseEnvOpts(value string, base map[string]string) map[string]string {
	opts := make(map[string]string, len(base))
	for k, v := range base {
		opts[k] = v
	}
	if strings.TrimSpace(value) == "" {
		return opts
	}

	parsed := map[string]string{}
	for _, word := range strings.Fields(value) {
		if strings.Count(word, "=") >= 2 {
			continue
		}
		key, val, _ := strings.Cut(word, "=")
		parsed[strings.ToLower(key)] = val
	}
	if len(parsed) == 0 {
		logger := logging.GetLogger("config")
		logger.Warn().Str("value", value).Msg("Options are not in a proper format, ignoring")
		return opts
	}
	for k, v := range parsed {
		opts[k] = v
	}
	return opts
}

// ToBool interprets an environment style boolean: a number is true when it
// is not zero, "true" in any case is true, everything else is false.
func ToBool(s string) bool {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n != 0
	}
	return strings.EqualFold(s, "true")
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validateKeys(values map[string]any) error {
	var unknown []string
	for k := range values {
		if !isKey(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return ValidationError{
		Field:   strings.Join(unknown, ", "),
		Message: fmt.Sprintf("unknown key (valid keys: %s)", strings.Join(Keys(), ", ")),
	}
}
