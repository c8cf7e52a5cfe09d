// Package definitions embeds the built-in mime definition document.
package definitions

import _ "embed"

// ID names the built-in source. It always loads before any other source.
const ID = "builtin:freedesktop.xml"

// FreeDesktop is a definition document covering common formats, in
// shared-mime-info package syntax.
//
//go:embed freedesktop.xml
var FreeDesktop []byte
