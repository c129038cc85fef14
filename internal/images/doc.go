// Package images rewrites `image:` declarations inside manifest files.
//
// Only lines that match the image declaration pattern change; everything else
// in a manifest is written back byte for byte.
package images
