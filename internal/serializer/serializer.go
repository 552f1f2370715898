// Package serializer writes and reads the graph's on-disk envelope: the
// canonical graph.json, and an optional zstd-compressed graph.json.zst
// sibling for operators exporting large graphs.
package serializer

import (
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"rpg/internal/rpgerrors"
	"rpg/internal/rpgstore"
)

// CanonicalFile is the plain-JSON envelope filename written on every export.
const CanonicalFile = "graph.json"

// CompressedFile is the optional zstd sibling written alongside CanonicalFile
// when compression is enabled. It is never written in place of the
// canonical file, so the envelope contract stays plain-JSON round-trip safe.
const CompressedFile = "graph.json.zst"

// Options controls what Write produces beyond the canonical file.
type Options struct {
	// Compress additionally writes CompressedFile next to CanonicalFile.
	Compress bool
}

// Write exports store's full graph as an Envelope and writes it to dir as
// graph.json, and, when opts.Compress is set, as graph.json.zst too.
func Write(store rpgstore.Store, config rpgstore.ExportConfig, dir string, opts Options) error {
	payload, err := store.ExportJSON(config)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return rpgerrors.StoreError("creating export directory", err)
	}

	canonicalPath := filepath.Join(dir, CanonicalFile)
	if err := writeAtomic(canonicalPath, payload); err != nil {
		return err
	}

	if !opts.Compress {
		return nil
	}

	compressed, err := compress(payload)
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, CompressedFile), compressed)
}

// Read loads dir's canonical graph.json and decodes it into a Store via
// ImportJSON. graph.json.zst, when present, is never read: it is a derived
// export artifact, not a second source of truth.
func Read(store rpgstore.Store, dir string) error {
	payload, err := os.ReadFile(filepath.Join(dir, CanonicalFile))
	if err != nil {
		return rpgerrors.StoreError("reading "+CanonicalFile, err)
	}
	return store.ImportJSON(payload)
}

func compress(payload []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, rpgerrors.StoreError("creating zstd encoder", err)
	}
	defer encoder.Close()
	return encoder.EncodeAll(payload, nil), nil
}

// writeAtomic writes data to path via a temp-file-then-rename sequence so a
// crash mid-write never leaves a truncated export in place.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return rpgerrors.StoreError("writing "+filepath.Base(path)+" temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return rpgerrors.StoreError("renaming "+filepath.Base(path)+" temp file", err)
	}
	return nil
}
