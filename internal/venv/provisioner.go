package venv

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/devup/internal/config"
	"github.com/mmr-tortoise/devup/internal/model"
	"github.com/mmr-tortoise/devup/internal/uv"
)

// Provisioner executes the provisioning sequence for one repository.
//
// All uv invocations run with the repository root as working directory
// and use paths relative to it. This makes the pipeline independent of
// where the root actually is — the same Provisioner drives a host runner
// and a container runner (where the root is mounted at /workspace)
// without any path translation.
type Provisioner struct {
	// Root is the absolute repository root on the host. Used for the
	// filesystem steps (venv removal, manifest existence checks); uv
	// invocations receive it as their working directory.
	Root string

	// Config describes what to install.
	Config *config.Config

	// Runner executes uv commands (host or container).
	Runner uv.Runner

	// Out receives progress headings, the final package listing, and the
	// activation instruction. Typically os.Stdout.
	Out io.Writer

	// KeepVenv skips the remove/create steps and installs into the
	// existing environment. The environment must already exist.
	KeepVenv bool
}

// New creates a Provisioner with output directed at out.
func New(root string, cfg *config.Config, runner uv.Runner, out io.Writer) *Provisioner {
	return &Provisioner{
		Root:   root,
		Config: cfg,
		Runner: runner,
		Out:    out,
	}
}

// VenvPath returns the absolute host path of the virtual environment.
func (p *Provisioner) VenvPath() string {
	return filepath.Join(p.Root, filepath.FromSlash(p.Config.Venv))
}

// Provision runs the full sequence. The step order is fixed:
//
//	 1. remove the existing virtual environment (idempotent)
//	 2. create a fresh environment pinned to Config.Python
//	 3. install the first sub-project's base manifest
//	 4. install the first sub-project in editable mode with its extras
//	 5. install the fixed package table
//	 6. install each remaining sub-project's manifest, then the
//	    sub-project itself in editable mode
//	 7. list installed packages
//	 8. print the activation instruction (always the final output line)
//
// The package table sits between the first and the remaining sub-projects
// so that its exact pins are already in place when the later sub-projects
// resolve their requirements.
func (p *Provisioner) Provision(ctx context.Context) error {
	if p.KeepVenv {
		if _, err := os.Stat(p.VenvPath()); err != nil {
			return model.WrapCLIError(model.ExitEnvCreationFailed,
				fmt.Sprintf("--keep-venv set but no environment exists at %s", p.Config.Venv), err)
		}
		p.heading("Reusing existing virtual environment (%s)", p.Config.Venv)
	} else {
		if err := p.removeVenv(); err != nil {
			return err
		}
		if err := p.createVenv(ctx); err != nil {
			return err
		}
	}

	if len(p.Config.Subprojects) == 0 {
		return model.NewCLIError(model.ExitConfigError, "no subprojects configured")
	}

	first := p.Config.Subprojects[0]
	if err := p.installManifest(ctx, first); err != nil {
		return err
	}
	if err := p.installEditable(ctx, first); err != nil {
		return err
	}

	if err := p.installPackages(ctx); err != nil {
		return err
	}

	for _, sp := range p.Config.Subprojects[1:] {
		if err := p.installManifest(ctx, sp); err != nil {
			return err
		}
		if err := p.installEditable(ctx, sp); err != nil {
			return err
		}
	}

	if err := p.listPackages(ctx); err != nil {
		return err
	}

	p.printActivationHint()
	return nil
}

// removeVenv deletes any existing virtual environment directory.
// os.RemoveAll is a no-op when the directory is absent, which gives the
// step its idempotence.
func (p *Provisioner) removeVenv() error {
	p.heading("Removing existing virtual environment (%s)", p.Config.Venv)

	if err := os.RemoveAll(p.VenvPath()); err != nil {
		return model.WrapCLIError(model.ExitFilesystemError,
			fmt.Sprintf("failed to remove %s", p.VenvPath()), err)
	}
	return nil
}

// createVenv creates a fresh virtual environment pinned to the configured
// Python version. uv downloads the interpreter on demand when no matching
// one is installed; a version that does not exist at all fails here.
func (p *Provisioner) createVenv(ctx context.Context) error {
	p.heading("Creating virtual environment (Python %s)", p.Config.Python)

	_, err := p.Runner.Run(ctx, p.Root, nil,
		"venv", p.Config.Venv, "--python", p.Config.Python)
	if err != nil {
		return model.WrapCLIError(model.ExitEnvCreationFailed,
			fmt.Sprintf("failed to create virtual environment with Python %s", p.Config.Python), err)
	}
	return nil
}

// installManifest installs a sub-project's base dependency manifest.
// The manifest's existence is checked on the host before invoking uv,
// so a missing file fails with a clear message rather than a package
// manager error about an unreadable requirements file.
func (p *Provisioner) installManifest(ctx context.Context, sp model.Subproject) error {
	p.heading("Installing base requirements for %s", sp.Path)

	hostPath := filepath.Join(p.Root, filepath.FromSlash(sp.ManifestPath()))
	if _, err := os.Stat(hostPath); err != nil {
		return model.WrapCLIError(model.ExitFilesystemError,
			fmt.Sprintf("dependency manifest not found: %s", sp.ManifestPath()), err)
	}

	_, err := p.Runner.Run(ctx, p.Root, p.installEnv(),
		"pip", "install", "-r", sp.ManifestPath())
	if err != nil {
		return model.WrapCLIError(model.ExitDependencyFailed,
			fmt.Sprintf("failed to install requirements for %s", sp.Path), err)
	}
	return nil
}

// installEditable installs a sub-project in editable/development mode with
// its extras group, so source changes take effect without reinstallation.
func (p *Provisioner) installEditable(ctx context.Context, sp model.Subproject) error {
	if len(sp.Extras) > 0 {
		p.heading("Installing %s in editable mode [%s]", sp.Path, strings.Join(sp.Extras, ","))
	} else {
		p.heading("Installing %s in editable mode", sp.Path)
	}

	_, err := p.Runner.Run(ctx, p.Root, p.installEnv(),
		"pip", "install", "-e", sp.EditableRequirement())
	if err != nil {
		return model.WrapCLIError(model.ExitDependencyFailed,
			fmt.Sprintf("failed to install %s in editable mode", sp.Path), err)
	}
	return nil
}

// installPackages installs the fixed package table in a single invocation,
// preserving the table order in the argument list. A single invocation
// lets the resolver see all pins at once instead of resolving each package
// against a moving target.
func (p *Provisioner) installPackages(ctx context.Context) error {
	if len(p.Config.Packages) == 0 {
		return nil
	}

	p.heading("Installing additional packages")

	args := []string{"pip", "install"}
	for _, pkg := range p.Config.Packages {
		req := pkg.Requirement()
		fmt.Fprintf(p.Out, "    %s\n", req)
		args = append(args, req)
	}

	_, err := p.Runner.Run(ctx, p.Root, p.installEnv(), args...)
	if err != nil {
		return model.WrapCLIError(model.ExitDependencyFailed,
			"failed to install additional packages", err)
	}
	return nil
}

// listPackages prints the final installed package set. Diagnostic output
// only — a failure to list does not abort provisioning semantics, but it
// still surfaces as an error because it indicates a broken environment.
func (p *Provisioner) listPackages(ctx context.Context) error {
	p.heading("Installed packages")

	out, err := p.Runner.Run(ctx, p.Root, p.installEnv(), "pip", "list")
	if err != nil {
		return model.WrapCLIError(model.ExitDependencyFailed,
			"failed to list installed packages", err)
	}
	fmt.Fprint(p.Out, out)
	return nil
}

// printActivationHint emits the closing instruction. This is always the
// final line of a successful run.
func (p *Provisioner) printActivationHint() {
	fmt.Fprintf(p.Out, "\nActivate the environment with: source %s/bin/activate\n", p.Config.Venv)
}

// installEnv returns the per-invocation environment for install and list
// commands. VIRTUAL_ENV directs uv at the target environment; the value
// stays relative so it resolves correctly against the working directory
// both on the host and inside a container.
func (p *Provisioner) installEnv() map[string]string {
	return map[string]string{"VIRTUAL_ENV": p.Config.Venv}
}

// heading prints a step heading to the progress output.
func (p *Provisioner) heading(format string, args ...interface{}) {
	fmt.Fprintf(p.Out, "==> "+format+"\n", args...)
}
