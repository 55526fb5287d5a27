// Package project locates the repository root that a devup command
// operates on.
//
// devup is location-independent: it can be invoked from anywhere inside
// the repository (or pointed at a root explicitly with --root), and it
// walks up from the current directory until it finds a recognizable
// marker — a devup configuration file or the standard sub-project layout.
package project
