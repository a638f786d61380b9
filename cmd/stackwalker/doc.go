// Package main hosts the stackwalker CLI entrypoint and command graph.
//
// The Cobra command tree drives the engine: scan, check, plan and move read a
// directory of tagged image files and report or reorganize its data sets;
// tags edits the tag registry stored in the config file; history reads the
// move journal; config scaffolds and validates configuration.
//
// Configuration, logging and the tag override flag are resolved once per
// invocation by commandContext so subcommands only deal with presentation.
package main
