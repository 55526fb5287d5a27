// Package venv implements the provisioning pipeline.
//
// A provisioning run is a strict linear sequence: remove the existing
// virtual environment, create a fresh one pinned to a Python version,
// then install — in order — each sub-project's base manifest, the
// sub-project itself in editable mode with its extras group, and the
// fixed table of additional packages. The run finishes by listing the
// installed packages and printing the activation instruction.
//
// Each step is a discrete method returning an error; the first failure
// aborts the sequence (no rollback, no retries). Earlier steps' effects
// remain on disk, which is safe because every run starts by recreating
// the environment from scratch.
package venv
