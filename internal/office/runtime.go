// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package office runs an office suite (LibreOffice) in headless mode to
// convert documents. The suite is either installed locally or run from a
// container image through docker or podman.
package office

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	binSoffice     = "soffice"
	binLibreoffice = "libreoffice"
	binDocker      = "docker"
	binPodman      = "podman"

	// Mount points inside the container.
	containerIn  = "/work/in"
	containerOut = "/work/out"
)

// Target selects the export filter passed to --convert-to.
type Target struct {
	// Format is the output extension ("pdf", "docx").
	Format string
	// Filter is the optional export filter name.
	Filter string
	// InFilter is the optional import filter (e.g. "writer_pdf_import").
	InFilter string
}

// Predefined targets for the document conversions.
var (
	TargetPDF  = Target{Format: "pdf"}
	TargetDocx = Target{Format: "docx", Filter: "MS Word 2007 XML", InFilter: "writer_pdf_import"}
)

func (t Target) convertTo() string {
	if t.Filter == "" {
		return t.Format
	}
	return t.Format + ":" + t.Filter
}

// Runtime provides office-suite operations.
type Runtime interface {
	// Name returns the runtime name ("soffice", "libreoffice", "docker" or "podman").
	Name() string

	// Available reports whether the runtime can be used.
	Available() bool

	// Convert converts input into outDir. The output file is named after
	// the input base name with the target extension.
	Convert(ctx context.Context, input, outDir string, target Target) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// headlessArgs builds the soffice argument list shared by both runtimes.
func headlessArgs(input, outDir string, target Target) []string {
	args := []string{"--headless", "--norestore"}
	if target.InFilter != "" {
		args = append(args, "--infilter="+target.InFilter)
	}
	return append(args, "--convert-to", target.convertTo(), "--outdir", outDir, input)
}

// localRuntime runs an office binary installed on the host.
type localRuntime struct {
	bin  string
	exec executor
}

func (r *localRuntime) Name() string { return r.bin }

func (r *localRuntime) Available() bool {
	_, err := r.exec.LookPath(r.bin)
	return err == nil
}

// Convert runs soffice with a throwaway profile inside outDir so that
// concurrent conversions do not contend for the user's profile lock.
func (r *localRuntime) Convert(ctx context.Context, input, outDir string, target Target) error {
	profile, err := profileURL(outDir)
	if err != nil {
		return err
	}
	args := append([]string{"-env:UserInstallation=" + profile}, headlessArgs(input, outDir, target)...)
	out, err := r.exec.Run(ctx, r.bin, args...)
	if err != nil {
		return fmt.Errorf("running %s: %w%s", r.bin, err, detail(out))
	}
	return nil
}

// profileURL returns a file URL for a profile directory under dir.
func profileURL(dir string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(dir, "profile"))
	if err != nil {
		return "", fmt.Errorf("resolving profile directory: %w", err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p, nil
}

// containerRuntime runs soffice from a container image. The input directory
// and the output directory are bind-mounted.
type containerRuntime struct {
	bin   string
	image string
	exec  executor
}

func (r *containerRuntime) Name() string { return r.bin }

func (r *containerRuntime) Available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	if r.exec.RunSilent(r.bin, "info") != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "image", "inspect", r.image) == nil
}

func (r *containerRuntime) Convert(ctx context.Context, input, outDir string, target Target) error {
	inDir, err := filepath.Abs(filepath.Dir(input))
	if err != nil {
		return fmt.Errorf("resolving %s: %w", input, err)
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", outDir, err)
	}

	args := []string{
		"run", "--rm",
		"-v", inDir + ":" + containerIn + ":ro",
		"-v", absOut + ":" + containerOut,
		r.image, binSoffice,
	}
	args = append(args, headlessArgs(containerIn+"/"+filepath.Base(input), containerOut, target)...)

	out, err := r.exec.Run(ctx, r.bin, args...)
	if err != nil {
		return fmt.Errorf("running %s container %s: %w%s", r.bin, r.image, err, detail(out))
	}
	return nil
}

// detail formats captured command output for an error message.
func detail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return ""
	}
	return ": " + s
}

var defaultExec = &osExecutor{}

// DetectRuntime returns the first usable runtime. An explicit binary wins;
// otherwise soffice, libreoffice, docker and podman are tried in order.
func DetectRuntime(binary, image string) (Runtime, error) {
	return detectRuntime(defaultExec, binary, image)
}

func detectRuntime(exec executor, binary, image string) (Runtime, error) {
	if binary != "" {
		rt := &localRuntime{bin: binary, exec: exec}
		if !rt.Available() {
			return nil, fmt.Errorf("office binary %s not found", binary)
		}
		return rt, nil
	}

	candidates := []Runtime{
		&localRuntime{bin: binSoffice, exec: exec},
		&localRuntime{bin: binLibreoffice, exec: exec},
		&containerRuntime{bin: binDocker, image: image, exec: exec},
		&containerRuntime{bin: binPodman, image: image, exec: exec},
	}
	for _, rt := range candidates {
		if rt.Available() {
			return rt, nil
		}
	}

	return nil, fmt.Errorf(
		"no office runtime available: neither %s nor %s on PATH, and image %s not found in %s or %s",
		binSoffice, binLibreoffice, image, binDocker, binPodman,
	)
}
