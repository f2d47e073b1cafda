// Package snapshot keeps per-contract storage-layout baselines on disk and
// reports drift against them.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/xab-mack/devstatus/internal/config"
	"github.com/xab-mack/devstatus/internal/model"
	"github.com/xab-mack/devstatus/internal/tools"
	"github.com/xab-mack/devstatus/internal/util"
)

// Comparator checks storage layouts against baselines. A baseline found on
// disk is never rewritten; a missing one is created from the current layout.
type Comparator struct {
	legacyDir    string
	snapshotsDir string
	introspect   tools.Introspector
	logger       *zap.Logger
}

func New(root string, layout config.Layout, in tools.Introspector, logger *zap.Logger) *Comparator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Comparator{
		legacyDir:    filepath.Join(root, layout.StorageDir),
		snapshotsDir: filepath.Join(root, layout.SnapshotsDir),
		introspect:   in,
		logger:       logger,
	}
}

// Compare returns a status per contract. Contracts are handled one after
// another since a later contract may share the snapshot directory created by
// an earlier one.
func (c *Comparator) Compare(ctx context.Context, names []model.ContractName) map[model.ContractName]model.StorageStatus {
	out := make(map[model.ContractName]model.StorageStatus, len(names))
	for _, name := range names {
		out[name] = c.compareOne(ctx, name)
	}
	return out
}

func (c *Comparator) compareOne(ctx context.Context, name model.ContractName) model.StorageStatus {
	log := c.logger.With(zap.String("contract", string(name)))
	layout, err := c.introspect.Introspect(ctx, name, tools.FacetStorageLayout)
	if err != nil {
		log.Debug("storage layout unavailable", zap.Error(err))
		return model.StorageUnknown
	}
	current, err := canonical(layout)
	if err != nil {
		log.Warn("storage layout not serializable", zap.Error(err))
		return model.StorageUnknown
	}

	path, ok := c.baselinePath(name)
	if !ok {
		if err := c.create(name, layout); err != nil {
			log.Warn("could not write storage snapshot", zap.Error(err))
			return model.StorageUnknown
		}
		log.Info("storage snapshot created", zap.String("path", c.snapshotPath(name)))
		return model.StorageSnapshotCreated
	}

	b, err := os.ReadFile(path)
	if err != nil {
		log.Warn("storage baseline unreadable", zap.String("path", path), zap.Error(err))
		return model.StorageUnknown
	}
	baseline, err := canonicalBytes(b)
	if err != nil {
		log.Warn("storage baseline malformed", zap.String("path", path), zap.Error(err))
		return model.StorageUnknown
	}
	if bytes.Equal(baseline, current) {
		return model.StorageNoChanges
	}
	log.Info("storage layout drift", zap.String("baseline", path))
	return model.StorageChanges(name)
}

// baselinePath prefers the legacy flat layout over the snapshots directory.
func (c *Comparator) baselinePath(name model.ContractName) (string, bool) {
	for _, p := range []string{c.legacyPath(name), c.snapshotPath(name)} {
		if _, err := os.Stat(p); err == nil {
			return p, true
		} else if !errors.Is(err, os.ErrNotExist) {
			// present but not stat-able; let the read report it
			return p, true
		}
	}
	return "", false
}

func (c *Comparator) legacyPath(name model.ContractName) string {
	return filepath.Join(c.legacyDir, string(name)+".json")
}

func (c *Comparator) snapshotPath(name model.ContractName) string {
	return filepath.Join(c.snapshotsDir, string(name)+".json")
}

func (c *Comparator) create(name model.ContractName, layout tools.Output) error {
	data, err := json.MarshalIndent(value(layout), "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return util.WriteFileAtomic(c.snapshotPath(name), append(data, '\n'), 0o644)
}

// value is what gets persisted: the decoded document, or the raw text as a
// JSON string when the tool did not print JSON.
func value(o tools.Output) any {
	if o.JSON {
		return o.Value
	}
	return o.Raw
}

// canonical encodes a layout with object keys sorted, which encoding/json
// does for maps, so key order never counts as drift.
func canonical(o tools.Output) ([]byte, error) {
	return json.Marshal(value(o))
}

func canonicalBytes(b []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
