// Package pymap holds build metadata shared by the pymap command and library.
package pymap

// Version is the current pymap release.
const Version = "0.3.0"
