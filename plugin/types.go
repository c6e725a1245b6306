package plugin

// File and directory conventions of KOReader plugins and patches.
const (
	EntryFile   = "main.lua"
	MetaFile    = "_meta.lua"
	MetaFileAlt = "manifest.lua"

	DirSuffix     = ".koplugin"
	PatchSuffix   = ".patch"
	ArchiveSuffix = ".zip"
)

// LayoutKind names the directory arrangement a valid plugin was found in.
type LayoutKind string

const (
	LayoutRoot   LayoutKind = "root"
	LayoutSubdir LayoutKind = "subdir"
	LayoutSplit  LayoutKind = "split"
)

// Layout is the result of structure detection.
type Layout struct {
	// RootDir is the path of the plugin root relative to the inspected
	// tree; empty means the tree root itself.
	RootDir          string
	EntryFilePresent bool
	MetaFilePresent  bool
	Kind             LayoutKind
}

// Installed describes one plugin found in the device's plugins directory.
type Installed struct {
	// Name always carries the .koplugin suffix.
	Name    string
	Path    string
	Version string
	HasMeta bool
}

// UnknownVersion is the version of an installed plugin whose metadata file
// is absent or yields no version assignment.
const UnknownVersion = "Unknown"

// Result is the structured outcome of an install or uninstall operation.
// No error crosses the package boundary; failures carry their cause in
// Message.
type Result struct {
	Success    bool
	Message    string
	PluginName string
	PluginPath string
	// Installed lists the patch files written by a patch install.
	Installed []string
}
