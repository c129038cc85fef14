// Package palette loads the `[section] key=value` palette file that drives
// image replacement.
//
// Sections and keys keep their file order and their literal spelling, since
// manifest file names used as keys are case-sensitive on most filesystems.
// Typed views expose the `[conf]`, `[git]`, and `[images]` sections.
package palette
