package mimekit

import (
	"cmp"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// MatchMode selects what TypeForFile looks at.
type MatchMode int

const (
	// MatchDefault uses the file name and, when it is ambiguous, the content.
	MatchDefault MatchMode = iota
	// MatchExtension uses the file name only.
	MatchExtension
	// MatchContent uses the content only.
	MatchContent
)

func (m MatchMode) String() string {
	switch m {
	case MatchDefault:
		return "default"
	case MatchExtension:
		return "extension"
	case MatchContent:
		return "content"
	}
	return "unknown"
}

// ParseMatchMode maps "default", "extension" or "content" to a MatchMode.
func ParseMatchMode(s string) (MatchMode, error) {
	for _, m := range []MatchMode{MatchDefault, MatchExtension, MatchContent} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return MatchDefault, errors.New("unknown match mode: " + s)
}

// Accuracy reported for name-only answers.
const (
	accuracyExact     = 100
	accuracyAmbiguous = 20
	accuracyText      = 5
)

// ============================================================================
// Name queries
// ============================================================================

// TypeForName returns the type named name or aliased by name. Unknown names
// return the invalid MimeType.
func (db *Database) TypeForName(name string) MimeType {
	db.ensureLoaded()
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.typeForNameLocked(name)
}

func (db *Database) typeForNameLocked(name string) MimeType {
	t, ok := db.provider.Lookup(name)
	if !ok {
		return MimeType{}
	}
	return snapshot(db.provider, t)
}

// TypesForFileName returns every type whose patterns tie for the best match
// of the file name, in match order. Directories in fileName are ignored.
func (db *Database) TypesForFileName(fileName string) []MimeType {
	db.ensureLoaded()
	db.mu.RLock()
	defer db.mu.RUnlock()

	var out []MimeType
	for _, name := range db.candidatesLocked(fileName) {
		out = append(out, db.typeForNameLocked(name))
	}
	return out
}

// TypeForFileName returns the best match for the file name. Ties resolve to
// the lexicographically smallest name; no match gives the default type.
func (db *Database) TypeForFileName(fileName string) MimeType {
	db.ensureLoaded()
	db.mu.RLock()
	defer db.mu.RUnlock()

	name, _ := db.byFileNameLocked(fileName)
	return db.typeForNameLocked(name)
}

// SuffixForFileName returns the suffix of fileName that the winning pattern
// covers ("tar.gz" for "a.tar.gz"), or "".
func (db *Database) SuffixForFileName(fileName string) string {
	db.ensureLoaded()
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.provider.FindByFileName(baseName(fileName)).Suffix
}

// candidatesLocked returns the known winning types for fileName.
func (db *Database) candidatesLocked(fileName string) []string {
	return db.knownTypesLocked(db.provider.FindByFileName(baseName(fileName)).Types)
}

func (db *Database) knownTypesLocked(names []string) []string {
	var out []string
	for _, name := range names {
		if t, ok := db.provider.Lookup(name); ok && !slices.Contains(out, t.Name) {
			out = append(out, t.Name)
		}
	}
	return out
}

func (db *Database) byFileNameLocked(fileName string) (string, int) {
	candidates := db.candidatesLocked(fileName)
	switch len(candidates) {
	case 0:
		return DefaultType, 0
	case 1:
		return candidates[0], accuracyExact
	}
	return slices.Min(candidates), accuracyAmbiguous
}

func baseName(fileName string) string {
	if fileName == "" {
		return ""
	}
	return filepath.Base(fileName)
}

// ============================================================================
// Content queries
// ============================================================================

// TypeForData identifies data by content alone and returns the type with its
// accuracy. Only the first ContentWindow bytes are examined. Empty data is
// application/x-zerosize when that type is known.
func (db *Database) TypeForData(data []byte) (MimeType, int) {
	db.ensureLoaded()
	db.mu.RLock()
	defer db.mu.RUnlock()

	data = db.clip(data)
	name, accuracy := db.cached(queryData, "", data, func() (string, int) {
		return db.byDataLocked(data)
	})
	return db.typeForNameLocked(name), accuracy
}

// TypeForReader reads up to ContentWindow bytes from r and identifies them.
func (db *Database) TypeForReader(r io.Reader) (MimeType, int, error) {
	data, err := readWindow(r, db.window)
	if err != nil {
		return db.TypeForName(DefaultType), 0, err
	}
	t, accuracy := db.TypeForData(data)
	return t, accuracy, nil
}

// TypeForFileNameAndData combines the file name with the content. A nil data
// means the content is unavailable; an empty non-nil slice is an empty file.
//
// A single name candidate answers with accuracy 100. Otherwise the content
// is sniffed: a sniffed type that is a candidate, or that a candidate
// inherits, answers with 100, and any other sniffed type answers with its
// own accuracy. Several candidates without a usable sniff answer with the
// smallest name and accuracy 20. Everything else is the default type.
func (db *Database) TypeForFileNameAndData(fileName string, data []byte) (MimeType, int) {
	db.ensureLoaded()
	db.mu.RLock()
	defer db.mu.RUnlock()

	hasData := data != nil
	data = db.clip(data)
	kind := queryNameAndData
	if !hasData {
		kind = queryFileName
	}
	name, accuracy := db.cached(kind, baseName(fileName), data, func() (string, int) {
		return db.byNameAndDataLocked(fileName, data, hasData)
	})
	return db.typeForNameLocked(name), accuracy
}

// TypeForFileNameAndReader is TypeForFileNameAndData reading up to
// ContentWindow bytes from r. A nil r means no content.
func (db *Database) TypeForFileNameAndReader(fileName string, r io.Reader) (MimeType, int, error) {
	if r == nil {
		t, accuracy := db.TypeForFileNameAndData(fileName, nil)
		return t, accuracy, nil
	}
	data, err := readWindow(r, db.window)
	if err != nil {
		t, accuracy := db.TypeForFileNameAndData(fileName, nil)
		return t, accuracy, err
	}
	t, accuracy := db.TypeForFileNameAndData(fileName, data)
	return t, accuracy, nil
}

func (db *Database) byDataLocked(data []byte) (string, int) {
	if len(data) == 0 {
		if _, ok := db.provider.Lookup(ZeroSize); ok {
			return ZeroSize, accuracyExact
		}
		return DefaultType, 0
	}
	if name, accuracy := db.provider.FindByMagic(data); accuracy > 0 {
		if t, ok := db.provider.Lookup(name); ok {
			return t.Name, accuracy
		}
	}
	if isText(data) {
		return PlainText, accuracyText
	}
	return DefaultType, 0
}

func (db *Database) byNameAndDataLocked(fileName string, data []byte, hasData bool) (string, int) {
	r := db.provider.FindByFileName(baseName(fileName))
	candidates := db.knownTypesLocked(r.Types)
	if len(candidates) == 1 {
		return candidates[0], accuracyExact
	}

	// An empty file only says something when the name says nothing.
	if hasData && (len(data) > 0 || len(candidates) == 0) {
		sniffed, accuracy := db.byDataLocked(data)
		if accuracy > 0 {
			if slices.Contains(candidates, sniffed) {
				return sniffed, accuracyExact
			}
			for _, c := range db.knownTypesLocked(r.All) {
				if db.provider.Inherits(c, sniffed) {
					return c, accuracyExact
				}
			}
			return sniffed, accuracy
		}
	}

	if len(candidates) >= 2 {
		return slices.Min(candidates), accuracyAmbiguous
	}
	return DefaultType, 0
}

func (db *Database) clip(data []byte) []byte {
	if len(data) > db.window {
		return data[:db.window]
	}
	return data
}

// cached consults the result cache around compute. It runs under the read
// lock, so a concurrent mutation cannot purge between compute and store.
func (db *Database) cached(kind queryKind, fileName string, data []byte, compute func() (string, int)) (string, int) {
	if db.cache == nil {
		return compute()
	}
	key := cacheKey(kind, fileName, data)
	if r, ok := db.cache.Get(key); ok {
		return r.Name, r.Accuracy
	}
	name, accuracy := compute()
	db.cache.Add(key, CachedResult{Name: name, Accuracy: accuracy})
	return name, accuracy
}

// isText reports whether data looks like text: a UTF-16 byte order mark, or
// no control character other than tab, newline or carriage return among the
// first 32 bytes.
func isText(data []byte) bool {
	if len(data) >= 2 {
		if bom := uint16(data[0])<<8 | uint16(data[1]); bom == 0xFEFF || bom == 0xFFFE {
			return true
		}
	}
	for _, b := range data[:min(len(data), 32)] {
		if b < 32 && b != '\t' && b != '\n' && b != '\r' {
			return false
		}
	}
	return true
}

func readWindow(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	k, err := io.ReadFull(r, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	return buf[:k], err
}

// ============================================================================
// Files and URLs
// ============================================================================

// TypeForFile identifies the file at path. Directories and special files map
// to the inode/* types. A file that cannot be read is matched by name in
// MatchDefault mode and is the default type in MatchContent mode.
func (db *Database) TypeForFile(path string, mode MatchMode) MimeType {
	t, _ := db.MatchFile(path, mode)
	return t
}

// MatchFile is TypeForFile also returning the accuracy.
func (db *Database) MatchFile(path string, mode MatchMode) (MimeType, int) {
	if t, ok := db.inodeType(path); ok {
		return t, accuracyExact
	}

	switch mode {
	case MatchExtension:
		db.ensureLoaded()
		db.mu.RLock()
		defer db.mu.RUnlock()
		name, accuracy := db.byFileNameLocked(path)
		return db.typeForNameLocked(name), accuracy
	case MatchContent:
		data, err := readFile(path, db.window)
		if err != nil {
			return db.TypeForName(DefaultType), 0
		}
		return db.TypeForData(data)
	}

	data, err := readFile(path, db.window)
	if err != nil {
		data = nil
	}
	return db.TypeForFileNameAndData(path, data)
}

var inodeTypes = []struct {
	mode fs.FileMode
	name string
}{
	{fs.ModeDir, "inode/directory"},
	{fs.ModeCharDevice, "inode/chardevice"},
	{fs.ModeDevice, "inode/blockdevice"},
	{fs.ModeNamedPipe, "inode/fifo"},
	{fs.ModeSocket, "inode/socket"},
}

// inodeType follows symlinks and maps non-regular files to inode types that
// the database knows.
func (db *Database) inodeType(path string) (MimeType, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Mode().IsRegular() {
		return MimeType{}, false
	}
	for _, it := range inodeTypes {
		if info.Mode()&it.mode != 0 {
			t := db.TypeForName(it.name)
			return t, t.IsValid()
		}
	}
	return MimeType{}, false
}

func readFile(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readWindow(f, n)
}

// TypeForURL identifies the resource behind u. Local files are examined;
// http(s) and mailto URLs are the default type; other URLs match on the
// path's file name.
func (db *Database) TypeForURL(u *url.URL) MimeType {
	switch {
	case u.Scheme == "file":
		return db.TypeForFile(u.Path, MatchDefault)
	case strings.HasPrefix(u.Scheme, "http"), u.Scheme == "mailto":
		return db.TypeForName(DefaultType)
	}
	return db.TypeForFileName(u.Path)
}

// ============================================================================
// Listing and hierarchy
// ============================================================================

// AllTypes returns every known type ordered by name.
func (db *Database) AllTypes() []MimeType {
	db.ensureLoaded()
	db.mu.RLock()
	defer db.mu.RUnlock()

	names := db.provider.Names()
	out := make([]MimeType, 0, len(names))
	for _, name := range names {
		if t := db.typeForNameLocked(name); t.IsValid() {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b MimeType) int { return cmp.Compare(a.Name(), b.Name()) })
	return out
}

// Inherits reports whether name is ancestor or descends from it. Both names
// may be aliases.
func (db *Database) Inherits(name, ancestor string) bool {
	db.ensureLoaded()
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.provider.Inherits(name, ancestor)
}
