package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
	"github.com/insectopedia/insectopedia/internal/logger"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

const (
	formatVersion uint32 = 1

	// maxManifestSize bounds the manifest length read from a header.
	maxManifestSize = 1 << 20
)

var magic = [4]byte{'I', 'N', 'S', 'X'}

// IndexStore reads and writes the index/metadata pair.
type IndexStore struct {
	indexPath string
	metaPath  string
}

// NewIndexStore creates a store for the given pair of paths.
func NewIndexStore(indexPath, metaPath string) *IndexStore {
	return &IndexStore{indexPath: indexPath, metaPath: metaPath}
}

// Locations returns the index and metadata paths.
func (s *IndexStore) Locations() (indexPath, metaPath string) {
	return s.indexPath, s.metaPath
}

// Write stores the snapshot atomically as a pair.
func (s *IndexStore) Write(ctx context.Context, snapshot *domain.IndexSnapshot) error {
	if err := checkParity(snapshot); err != nil {
		return err
	}

	for _, dir := range []string{filepath.Dir(s.indexPath), filepath.Dir(s.metaPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create index directory: %w", err)
		}
	}

	indexTmp, err := stage(s.indexPath, func(w io.Writer) error {
		return encodeIndex(w, snapshot)
	})
	if err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	defer removeIfExists(indexTmp)

	metaTmp, err := stage(s.metaPath, func(w io.Writer) error {
		return encodeMeta(w, snapshot.Docs)
	})
	if err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	defer removeIfExists(metaTmp)

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Rename(indexTmp, s.indexPath); err != nil {
		return fmt.Errorf("install index: %w", err)
	}
	if err := os.Rename(metaTmp, s.metaPath); err != nil {
		// The old metadata no longer matches the new index.
		removeIfExists(s.indexPath)
		return fmt.Errorf("install metadata: %w", err)
	}

	logger.Debug("index pair written: %s, %s (%d vectors)", s.indexPath, s.metaPath, snapshot.Manifest.Count)
	return nil
}

// Read loads and validates the pair.
func (s *IndexStore) Read(_ context.Context) (*domain.IndexSnapshot, error) {
	indexData, err := readRequired(s.indexPath)
	if err != nil {
		return nil, err
	}
	metaData, err := readRequired(s.metaPath)
	if err != nil {
		return nil, err
	}

	manifest, vectors, err := decodeIndex(indexData)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexCorrupt, s.indexPath, err)
	}

	var meta domain.Metadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexCorrupt, s.metaPath, err)
	}

	snapshot := &domain.IndexSnapshot{
		Manifest: manifest,
		Vectors:  vectors,
		Docs:     meta.Docs,
	}
	if snapshot.Docs == nil {
		snapshot.Docs = []domain.Chunk{}
	}
	if err := checkParity(snapshot); err != nil {
		return nil, err
	}

	logger.Debug("index pair loaded: %d vectors of %d dims, model %s",
		manifest.Count, manifest.Dimensions, manifest.Model)
	return snapshot, nil
}

func checkParity(s *domain.IndexSnapshot) error {
	if s.Manifest.Count != len(s.Vectors) || len(s.Vectors) != len(s.Docs) {
		return fmt.Errorf("%w: manifest count %d, %d vectors, %d docs",
			domain.ErrIndexCorrupt, s.Manifest.Count, len(s.Vectors), len(s.Docs))
	}
	return nil
}

// stage writes a temp file next to target and syncs it. It returns the temp path.
func stage(target string, fill func(io.Writer) error) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return "", err
	}
	tmp := f.Name()

	w := bufio.NewWriter(f)
	err = fill(w)
	if err == nil {
		err = w.Flush()
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		removeIfExists(tmp)
		return "", err
	}
	return tmp, nil
}

func removeIfExists(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("remove %s: %v", path, err)
	}
}

func readRequired(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (run 'insectopedia build' first)", domain.ErrIndexNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func encodeIndex(w io.Writer, s *domain.IndexSnapshot) error {
	manifest, err := json.Marshal(s.Manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, formatVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(manifest))); err != nil {
		return err
	}
	if _, err := w.Write(manifest); err != nil {
		return err
	}

	for i, v := range s.Vectors {
		if len(v) != s.Manifest.Dimensions {
			return fmt.Errorf("vector %d: %w: expected %d, got %d",
				i, domain.ErrDimensionMismatch, s.Manifest.Dimensions, len(v))
		}
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeIndex(data []byte) (domain.IndexManifest, [][]float32, error) {
	var manifest domain.IndexManifest
	r := bytes.NewReader(data)

	var header struct {
		Magic   [4]byte
		Version uint32
		MLen    uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return manifest, nil, fmt.Errorf("read header: %w", err)
	}
	if header.Magic != magic {
		return manifest, nil, fmt.Errorf("bad magic %q", header.Magic[:])
	}
	if header.Version != formatVersion {
		return manifest, nil, fmt.Errorf("unsupported format version %d", header.Version)
	}
	if header.MLen > maxManifestSize || int(header.MLen) > r.Len() {
		return manifest, nil, fmt.Errorf("manifest length %d out of range", header.MLen)
	}

	raw := make([]byte, header.MLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return manifest, nil, fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return manifest, nil, fmt.Errorf("decode manifest: %w", err)
	}
	if manifest.Metric != domain.MetricInnerProduct {
		return manifest, nil, fmt.Errorf("unsupported metric %q", manifest.Metric)
	}
	if manifest.Count < 0 || manifest.Dimensions <= 0 {
		return manifest, nil, fmt.Errorf("invalid shape %dx%d", manifest.Count, manifest.Dimensions)
	}

	want := int64(manifest.Count) * int64(manifest.Dimensions) * 4
	if int64(r.Len()) != want {
		return manifest, nil, fmt.Errorf("vector payload is %d bytes, want %d", r.Len(), want)
	}

	vectors := make([][]float32, manifest.Count)
	for i := range vectors {
		v := make([]float32, manifest.Dimensions)
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return manifest, nil, fmt.Errorf("read vector %d: %w", i, err)
		}
		vectors[i] = v
	}
	return manifest, vectors, nil
}

func encodeMeta(w io.Writer, docs []domain.Chunk) error {
	if docs == nil {
		docs = []domain.Chunk{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(domain.Metadata{Docs: docs})
}
