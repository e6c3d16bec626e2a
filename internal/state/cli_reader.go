package state

import (
	"fmt"
	"sort"
	"strings"

	"github.com/adamancini/brewfile/internal/brew"
	"github.com/adamancini/brewfile/internal/logging"
	"github.com/adamancini/brewfile/internal/types"
)

// AppStoreLister lists installed App Store applications as "<id> <name> (<version>)".
type AppStoreLister interface {
	ListAppStoreApps() ([]string, error)
}

// CLIReader implements Reader by querying the package index.
type CLIReader struct {
	Provider brew.Provider
	Filter   Filter
	// AppStore overrides the provider's App Store listing, e.g. with a
	// ReceiptReader when mas is not available.
	AppStore AppStoreLister
}

// Read implements Reader using the brew command line.
func (r *CLIReader) Read() (*Snapshot, error) {
	logger := logging.GetLogger("state")
	done := logging.LogOperationStart(logger, "read installed state")
	defer done()

	snap := &Snapshot{Info: map[string]brew.FormulaMetadata{}}

	if !r.Filter.CaskOnly {
		if err := r.readFormulas(snap); err != nil {
			return nil, fmt.Errorf("failed to read formulas: %w", err)
		}
	}

	taps, err := r.Provider.ListTaps()
	if err != nil {
		return nil, fmt.Errorf("failed to read taps: %w", err)
	}
	for _, t := range taps {
		snap.List.Add(types.KindTap, strings.TrimSpace(t), "")
	}
	snap.List.Add(types.KindTap, types.DirectTap, "")

	casks, err := r.Provider.ListCasks()
	if err != nil {
		return nil, fmt.Errorf("failed to read casks: %w", err)
	}
	for _, c := range casks {
		if len(strings.Fields(c)) == 1 {
			snap.List.Add(types.KindCask, c, "")
			continue
		}
		logger.Warn().Str("cask", c).Msg("The cask file doesn't exist, please check later")
		snap.List.CaskNoCask = append(snap.List.CaskNoCask, c)
	}

	if r.Filter.AppStore {
		lister := r.AppStore
		if lister == nil {
			lister = r.Provider
		}
		apps, err := lister.ListAppStoreApps()
		if err != nil {
			return nil, fmt.Errorf("failed to read App Store applications: %w", err)
		}
		for _, a := range apps {
			snap.List.Add(types.KindAppStore, a, "")
		}
	}

	return snap, nil
}

// readFormulas lists formulas per the filter. pip-/gem- formulas become pip
// and gem packages.
func (r *CLIReader) readFormulas(snap *Snapshot) error {
	info, err := r.Provider.FormulaInfo()
	if err != nil {
		return err
	}
	snap.Info = info

	all, err := r.Provider.ListInstalledFormulas()
	if err != nil {
		return err
	}
	snap.Formulas = all

	var listed []string
	switch {
	case r.Filter.OnRequest:
		for _, name := range sortedKeys(info) {
			if info[name].OnRequest() {
				listed = append(listed, name)
			}
		}
	case r.Filter.Leaves:
		if listed, err = r.Provider.Leaves(); err != nil {
			return err
		}
	default:
		listed = append(listed, all...)
	}

	for _, p := range r.Filter.TopPackages {
		if p != "" && contains(all, p) && !contains(listed, p) {
			listed = append(listed, p)
		}
	}

	for _, p := range all {
		switch {
		case strings.HasPrefix(p, types.PipPrefix):
			snap.List.Pips.Set(strings.TrimPrefix(p, types.PipPrefix), "")
		case strings.HasPrefix(p, types.GemPrefix):
			snap.List.Gems.Set(strings.TrimPrefix(p, types.GemPrefix), "")
		}
	}

	for _, p := range listed {
		if strings.HasPrefix(p, types.PipPrefix) || strings.HasPrefix(p, types.GemPrefix) {
			continue
		}
		m, ok := info[p]
		if !ok {
			continue
		}
		snap.List.Formulas.Set(p, m.Options())
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]brew.FormulaMetadata) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
