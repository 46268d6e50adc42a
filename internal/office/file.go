// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package office

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConvertFile converts input and places the result at output. The office
// suite always names its output after the input, so the conversion runs in a
// scratch directory next to output and the produced file is renamed into
// place. On failure no file is left at output.
func ConvertFile(ctx context.Context, rt Runtime, input, output string, target Target) error {
	scratch, err := os.MkdirTemp(filepath.Dir(output), ".office-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	if err := rt.Convert(ctx, input, scratch, target); err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	produced := filepath.Join(scratch, base+"."+target.Format)
	if _, err := os.Stat(produced); err != nil {
		return fmt.Errorf("%s produced no %s output for %s", rt.Name(), target.Format, filepath.Base(input))
	}

	if err := os.Rename(produced, output); err != nil {
		return fmt.Errorf("moving converted file: %w", err)
	}
	return nil
}
