// Package mission reads DCS World mission archives (.miz files) and the
// missions shipped with an installed copy of the game.
//
// A mission archive is a zip file holding Lua data files. Three of them are
// parsed with [lang]:
//
//	mission                  the mission table (theatre, sortie, briefing...)
//	l10n/DEFAULT/dictionary  localized strings referenced by the mission
//	l10n/DEFAULT/mapResource resource file names referenced by the mission
//
// Text fields of the mission table hold dictionary keys, and briefing image
// fields hold mapResource keys. The accessors of [Mission] resolve both.
// An extracted archive (a directory with the same layout) is read the same
// way.
//
// [Installation] enumerates the aircraft modules of a DCS World install and
// the single, training and quick start missions each module provides. The
// install root is found with [Locate], which consults the Windows registry
// once per process unless [SetRoot] overrides it.
package mission
