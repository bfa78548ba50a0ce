// Package version holds the build version of sobel.
package version

// Version is overridden at build time with -ldflags "-X sobel/pkg/version.Version=...".
var Version = "dev"
