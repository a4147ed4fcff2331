package models

// Names of the automatic metadata providers. All of them are subject to
// field locks; only manual edits bypass locks.
const (
	DataSourceFilename = "filename"
	DataSourceSidecar  = "sidecar"
	DataSourcePlugins  = "plugins"
)
