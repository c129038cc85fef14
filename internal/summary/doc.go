// Package summary records per-manifest outcomes and prints them once processing ends.
package summary
