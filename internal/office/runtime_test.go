// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package office

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	runFunc       func(name string, args []string) ([]byte, error)
	calls         [][]string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.runFunc != nil {
		return m.runFunc(name, args)
	}
	return nil, nil
}

const testImage = "convert-master/libreoffice:latest"

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		binary   string
		exec     *mockExecutor
		wantName string
		wantErr  string
	}{
		{
			name:     "soffice on PATH",
			exec:     &mockExecutor{availableBins: map[string]bool{"soffice": true}},
			wantName: "soffice",
		},
		{
			name:     "libreoffice when soffice missing",
			exec:     &mockExecutor{availableBins: map[string]bool{"libreoffice": true}},
			wantName: "libreoffice",
		},
		{
			name: "docker with image",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds: map[string]bool{
					"docker info":                       true,
					"docker image inspect " + testImage: true,
				},
			},
			wantName: "docker",
		},
		{
			name: "docker without image falls back to podman",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds: map[string]bool{
					"docker info":                       true,
					"podman info":                       true,
					"podman image inspect " + testImage: true,
				},
			},
			wantName: "podman",
		},
		{
			name:     "explicit binary",
			binary:   "/opt/office/soffice",
			exec:     &mockExecutor{availableBins: map[string]bool{"/opt/office/soffice": true}},
			wantName: "/opt/office/soffice",
		},
		{
			name:    "explicit binary missing",
			binary:  "/opt/office/soffice",
			exec:    &mockExecutor{availableBins: map[string]bool{"soffice": true}},
			wantErr: "not found",
		},
		{
			name:    "nothing available",
			exec:    &mockExecutor{},
			wantErr: "no office runtime available",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(tt.exec, tt.binary, testImage)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rt.Name())
		})
	}
}

func TestLocalRuntimeConvert(t *testing.T) {
	exec := &mockExecutor{}
	rt := &localRuntime{bin: "soffice", exec: exec}

	err := rt.Convert(context.Background(), "downloads/a.pdf", "downloads/.office-1", TargetDocx)
	require.NoError(t, err)
	require.Len(t, exec.calls, 1)

	profile, err := filepath.Abs("downloads/.office-1/profile")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"soffice", "-env:UserInstallation=file://" + filepath.ToSlash(profile),
		"--headless", "--norestore",
		"--infilter=writer_pdf_import",
		"--convert-to", "docx:MS Word 2007 XML",
		"--outdir", "downloads/.office-1",
		"downloads/a.pdf",
	}, exec.calls[0])
}

func TestContainerRuntimeConvert(t *testing.T) {
	exec := &mockExecutor{}
	rt := &containerRuntime{bin: "podman", image: testImage, exec: exec}

	dir := t.TempDir()
	err := rt.Convert(context.Background(), filepath.Join(dir, "report.docx"), filepath.Join(dir, "out"), TargetPDF)
	require.NoError(t, err)
	require.Len(t, exec.calls, 1)

	call := strings.Join(exec.calls[0], " ")
	assert.True(t, strings.HasPrefix(call, "podman run --rm -v "+dir+":/work/in:ro"))
	assert.Contains(t, call, testImage+" soffice --headless")
	assert.Contains(t, call, "--convert-to pdf --outdir /work/out /work/in/report.docx")
}

func TestRuntimeConvertFailureIncludesOutput(t *testing.T) {
	exec := &mockExecutor{
		runFunc: func(string, []string) ([]byte, error) {
			return []byte("Error: source file could not be loaded\n"), errors.New("exit status 1")
		},
	}
	rt := &localRuntime{bin: "soffice", exec: exec}

	err := rt.Convert(context.Background(), "a.docx", "out", TargetPDF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 1")
	assert.Contains(t, err.Error(), "source file could not be loaded")
}

// writingRuntime simulates an office suite that writes its output file.
type writingRuntime struct {
	content string
	err     error
}

func (w *writingRuntime) Name() string    { return "fake" }
func (w *writingRuntime) Available() bool { return true }

func (w *writingRuntime) Convert(_ context.Context, input, outDir string, target Target) error {
	if w.err != nil {
		return w.err
	}
	if w.content == "" {
		return nil
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return os.WriteFile(filepath.Join(outDir, base+"."+target.Format), []byte(w.content), 0o644)
}

func TestConvertFile(t *testing.T) {
	tests := []struct {
		name    string
		rt      *writingRuntime
		wantErr string
	}{
		{name: "moves produced file", rt: &writingRuntime{content: "%PDF-1.7"}},
		{name: "runtime error", rt: &writingRuntime{err: errors.New("crashed")}, wantErr: "crashed"},
		{name: "no output produced", rt: &writingRuntime{}, wantErr: "produced no pdf output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := filepath.Join(dir, "in.docx")
			output := filepath.Join(dir, "out.pdf")
			require.NoError(t, os.WriteFile(input, []byte("docx"), 0o644))

			err := ConvertFile(context.Background(), tt.rt, input, output, TargetPDF)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.NoFileExists(t, output)
			} else {
				require.NoError(t, err)
				data, err := os.ReadFile(output)
				require.NoError(t, err)
				assert.Equal(t, tt.rt.content, string(data))
			}

			// The scratch directory is always removed.
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			for _, e := range entries {
				assert.False(t, strings.HasPrefix(e.Name(), ".office-"), "scratch dir %s left behind", e.Name())
			}
		})
	}
}
