// Package cmd implements the subcommands of dcsmiz.
//
// Every command reads its shared settings ([Globals]) and the optional
// --source files from the context prepared by the cli package. Errors are
// [lang.Error] values so that they log with their attributes.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path of
	// the configuration file, and the name of the table it defines.
	ConfigIdentifier = "config"
)
