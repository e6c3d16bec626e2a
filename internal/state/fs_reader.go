package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adamancini/brewfile/internal/brew"
	"github.com/adamancini/brewfile/internal/logging"
	"github.com/adamancini/brewfile/internal/manifest"
)

// MetadataRunner runs the Spotlight metadata tool.
type MetadataRunner interface {
	Run(args []string) brew.Result
}

// ReceiptReader finds App Store applications on disk by their receipts.
// It is the fallback when the mas command is not available.
type ReceiptReader struct {
	AppDirs []string
	// Metadata looks up App Store ids. Without it, lines carry no id.
	Metadata MetadataRunner
}

// ListAppStoreApps implements AppStoreLister using the application directories.
func (r *ReceiptReader) ListAppStoreApps() ([]string, error) {
	logger := logging.GetLogger("state.receipts")

	var apps []string
	for _, dir := range r.AppDirs {
		receipts, err := filepath.Glob(filepath.Join(dir, "*", "Contents", "_MASReceipt", "receipt"))
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		sort.Strings(receipts)
		for _, receipt := range receipts {
			bundle := filepath.Dir(filepath.Dir(filepath.Dir(receipt)))
			name := strings.TrimSuffix(filepath.Base(bundle), ".app")
			id := r.appStoreID(bundle)
			logger.Debug().Str("bundle", bundle).Str("id", id).Msg("Found App Store receipt")
			if id == "" {
				apps = append(apps, name)
				continue
			}
			apps = append(apps, id+" "+name)
		}
	}
	manifest.SortAppStore(apps)
	return apps, nil
}

func (r *ReceiptReader) appStoreID(bundle string) string {
	if r.Metadata == nil {
		return ""
	}
	if _, err := os.Stat(bundle); err != nil {
		return ""
	}
	res := r.Metadata.Run([]string{"mdls", "-name", "kMDItemAppStoreAdamID", "-raw", bundle})
	if !res.OK() {
		return ""
	}
	id := strings.TrimSpace(res.First())
	if !manifest.IsAppStoreID(id) {
		return ""
	}
	return id
}
