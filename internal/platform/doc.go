// Package platform opens archive inputs without following symbolic links.
package platform

import "errors"

// ErrSymlink is returned when attempting to open a symbolic link.
var ErrSymlink = errors.New("symbolic links not supported")
