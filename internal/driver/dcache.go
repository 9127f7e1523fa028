package driver

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"kiln/internal/diag"
	"kiln/internal/project"
	"kiln/internal/source"
)

// Текущая версия схемы; увеличивать при изменении DiskPayload.
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит диагностики проверки по хешу всего рабочего
// пространства. Безопасен для конкурентного доступа.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload - сохранённый результат проверки одного состояния исходников.
type DiskPayload struct {
	Schema      uint16
	Digest      project.Digest
	Modules     []string
	Diagnostics []CachedDiagnostic
}

// CachedDiagnostic хранит спаны через путь файла: FileID между запусками
// не сохраняются.
type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Path     string
	Start    uint32
	End      uint32
	Label    string
	Notes    []CachedNote
}

type CachedNote struct {
	Path  string
	Start uint32
	End   uint32
	Msg   string
}

// OpenDiskCache открывает кеш в $XDG_CACHE_HOME/<app> (или ~/.cache/<app>).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache открывает кеш в заданном каталоге.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "diag", key.String()+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry or an entry of another schema is a miss.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == diskCacheSchemaVersion && out.Digest == key, nil
}

// DropAll удаляет все записи.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "diag"))
}

func encodeDiagnostics(fs *source.FileSet, diags []*diag.Diagnostic) []CachedDiagnostic {
	pathOf := func(id source.FileID) string {
		if f := fs.Get(id); f != nil {
			return f.Path
		}
		return ""
	}
	out := make([]CachedDiagnostic, 0, len(diags))
	for _, d := range diags {
		cd := CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Path:     pathOf(d.Primary.File),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Label:    d.Label,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{Path: pathOf(n.Span.File), Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		out = append(out, cd)
	}
	return out
}

// decodeDiagnostics восстанавливает спаны по путям файлов текущего FileSet.
// false, если какой-то файл отсутствует: запись тогда считается промахом.
func decodeDiagnostics(fs *source.FileSet, cached []CachedDiagnostic) ([]*diag.Diagnostic, bool) {
	spanOf := func(path string, start, end uint32) (source.Span, bool) {
		id, ok := fs.GetLatest(path)
		return source.Span{File: id, Start: start, End: end}, ok
	}
	out := make([]*diag.Diagnostic, 0, len(cached))
	for _, cd := range cached {
		primary, ok := spanOf(cd.Path, cd.Start, cd.End)
		if !ok {
			return nil, false
		}
		d := &diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Primary:  primary,
			Label:    cd.Label,
		}
		for _, n := range cd.Notes {
			sp, ok := spanOf(n.Path, n.Start, n.End)
			if !ok {
				return nil, false
			}
			d.Notes = append(d.Notes, diag.Note{Span: sp, Msg: n.Msg})
		}
		out = append(out, d)
	}
	return out, true
}
