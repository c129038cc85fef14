// Package cli constructs the kelm command-line interface. It wires the Cobra
// root command, the Viper-backed settings loader, and zap logging around the
// palette pipeline: load the palette, optionally check out a revision,
// rewrite manifest images, and print the summary.
package cli
