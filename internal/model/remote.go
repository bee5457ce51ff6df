package model

import (
	"path"
	"strings"
)

// RemoteEntry is one item returned by a device directory listing.
type RemoteEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// ScriptExtension is the source file extension saved without an archive suffix.
const ScriptExtension = ".js"

// IsScriptPath returns true if a remote path names a script source file.
func IsScriptPath(p string) bool {
	return strings.EqualFold(path.Ext(p), ScriptExtension)
}
