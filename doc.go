// Package mimekit identifies the mime type of files, byte buffers and
// streams from their names and their content, using freedesktop.org
// shared-mime-info definitions.
//
// A [Database] holds the known types together with their glob patterns,
// magic rules, aliases and parents. It loads its definition sources once,
// on the first query, and is safe for concurrent use.
//
// # Basic Usage
//
//	db := mimekit.New()
//
//	// By name only
//	t := db.TypeForFileName("report.pdf")
//	fmt.Println(t.Name()) // application/pdf
//
//	// By content only
//	t, accuracy := db.TypeForData(data)
//
//	// By name and content: the content settles ambiguous or unknown names
//	t, accuracy = db.TypeForFileNameAndData("image.bin", data)
//
//	// A file on disk
//	t = db.TypeForFile("/usr/bin/ls", mimekit.MatchDefault)
//
// Accuracy ranges from 0 to 100. A unique name match scores 100, a magic
// match scores its matcher's priority, text without other evidence scores 5
// and the default type application/octet-stream scores 0.
//
// # Type Hierarchy
//
// Types have parents (sub-class-of) and aliases. Types without an explicit
// parent inherit text/plain when they are text/* and
// application/octet-stream otherwise:
//
//	t := db.TypeForName("text/x-csrc")
//	t.ParentMimeTypes()                   // [text/plain]
//	db.Inherits("text/x-c", "text/plain") // true, aliases resolve
//
// # Definition Sources
//
// The embedded definitions load first. Additional files, directories and
// the XDG shared-mime-info packages load afterwards in source ID order;
// the first definition of a type wins:
//
//	db := mimekit.New(
//	    mimekit.WithDefinitionFiles("/etc/myapp/mime.xml"),
//	    mimekit.WithSystemDefinitions(),
//	)
//	if err := db.EnsureLoaded(); err != nil {
//	    log.Printf("some definitions were skipped: %v", err)
//	}
//
// Sources that fail to read are reported by [Database.LoadError]; the
// database still answers from the rest.
//
// # Customization
//
// Globs and magic of single types can be replaced at runtime and persisted:
//
//	db.SetGlobPatternsForType("text/x-python3", []string{"*.py", "*.pyw"})
//	db.SaveCustomizationsFile(path)
//
// # Configuration
//
// [Default] returns a process-wide database configured from BEAVER_MIMEKIT_*
// environment variables, see [Config].
package mimekit
