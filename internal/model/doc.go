// Package model defines the domain types and value objects for the
// devup CLI.
//
// This package contains pure data structures with no external dependencies:
// package install directives (PackageSpec), sub-project descriptors
// (Subproject), and the exit-code/error machinery (ExitCode, CLIError)
// that translates provisioning failures into OS process exit codes.
//
// Everything here is transient — devup keeps no state files of its own.
// The only durable artifact it produces is the virtual environment
// directory, which is owned by the package manager, not by this tool.
package model
