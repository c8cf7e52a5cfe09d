package mimekit

import (
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/beevik/etree"

	"github.com/gobeaver/mimekit/globs"
	"github.com/gobeaver/mimekit/loader"
	"github.com/gobeaver/mimekit/magic"
	"github.com/gobeaver/mimekit/registry"
)

const (
	sharedMimeInfoNS     = "http://www.freedesktop.org/standards/shared-mime-info"
	customizationsSource = "customizations"
)

// CustomizedTypes returns the types changed through SetGlobPatternsForType,
// SetMagicRulesForType or LoadCustomizations, sorted.
func (db *Database) CustomizedTypes() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.customizedLocked()
}

// SaveCustomizations writes every customized type as a definition document
// holding its current globs and magic. LoadCustomizations reads it back.
func (db *Database) SaveCustomizations(w io.Writer) error {
	db.ensureLoaded()
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("mime-info")
	root.CreateAttr("xmlns", sharedMimeInfoNS)

	db.mu.RLock()
	for _, name := range db.customizedLocked() {
		el := root.CreateElement("mime-type")
		el.CreateAttr("type", name)
		el.CreateElement("glob-deleteall")
		for _, gp := range db.provider.GlobPatterns(name) {
			writeGlob(el, gp)
		}
		el.CreateElement("magic-deleteall")
		for _, m := range db.provider.MagicMatchers(name) {
			mag := el.CreateElement("magic")
			mag.CreateAttr("priority", strconv.Itoa(m.Priority()))
			for _, r := range m.Rules() {
				writeMatch(mag, r)
			}
		}
	}
	db.mu.RUnlock()

	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

func (db *Database) customizedLocked() []string {
	out := make([]string, 0, len(db.customized))
	for name := range db.customized {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func writeGlob(parent *etree.Element, gp *globs.Pattern) {
	el := parent.CreateElement("glob")
	el.CreateAttr("pattern", gp.Pattern())
	if gp.Weight() != globs.DefaultWeight {
		el.CreateAttr("weight", strconv.Itoa(gp.Weight()))
	}
	if gp.CaseSensitive() {
		el.CreateAttr("case-sensitive", "true")
	}
}

func writeMatch(parent *etree.Element, r *magic.Rule) {
	el := parent.CreateElement("match")
	el.CreateAttr("type", r.Type().String())
	offset := strconv.Itoa(r.StartPos())
	if r.EndPos() != r.StartPos() {
		offset += ":" + strconv.Itoa(r.EndPos())
	}
	el.CreateAttr("offset", offset)
	el.CreateAttr("value", r.Value())
	if r.Mask() != "" {
		el.CreateAttr("mask", r.Mask())
	}
	for _, c := range r.Submatches() {
		writeMatch(el, c)
	}
}

// LoadCustomizations applies a document written by SaveCustomizations. The
// globs and magic of every type it names are replaced by the document's;
// types it names that do not exist yet are created. A malformed document
// changes nothing.
func (db *Database) LoadCustomizations(r io.Reader) error {
	defs, err := loader.Parse(r)
	if err != nil {
		return &loader.SourceError{ID: customizationsSource, Op: "parse", Err: err}
	}
	for _, def := range defs {
		if !validName(def.Name) {
			return &TypeError{Op: "load customizations", Name: def.Name, Err: ErrInvalidName}
		}
	}

	db.ensureLoaded()
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, def := range defs {
		t, ok := db.provider.Lookup(def.Name)
		if !ok {
			t = registry.Type{
				Name:              def.Name,
				Comment:           def.Comment,
				LocalizedComments: def.LocalizedComments,
				Icon:              def.Icon,
				GenericIcon:       def.GenericIcon,
			}
			db.provider.AddType(&t)
		}
		def.Name = t.Name
		if err := db.provider.ReplaceGlobPatterns(def.Name, nil); err != nil {
			return &TypeError{Op: "load customizations", Name: def.Name, Err: err}
		}
		if err := db.provider.ReplaceMagicMatchers(def.Name, nil); err != nil {
			return &TypeError{Op: "load customizations", Name: def.Name, Err: err}
		}
		loader.ApplyBody(db.provider, def, customizationsSource, db.log)
		db.customized[def.Name] = struct{}{}
	}
	db.purge()
	return nil
}

// LoadCustomizationsFile applies the customization document at path.
func (db *Database) LoadCustomizationsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return db.LoadCustomizations(f)
}

// SaveCustomizationsFile writes the customization document to path.
func (db *Database) SaveCustomizationsFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := db.SaveCustomizations(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
