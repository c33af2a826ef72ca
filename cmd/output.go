package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/tabula-cli/internal/utils"
	"github.com/spf13/cobra"
)

// emit prints text to stdout, or writes it to path when set.
func emit(c *cobra.Command, path, text, what string) error {
	if path == "" {
		fmt.Fprint(c.OutOrStdout(), text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(c.OutOrStdout())
		}
		return nil
	}
	if err := utils.SafeWriteFile(path, []byte(text)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(c.OutOrStdout(), "✓ Wrote %s to %s\n", what, path)
	return nil
}

// emitJSON is emit for indented JSON.
func emitJSON(c *cobra.Command, path string, v any, what string) error {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	return emit(c, path, string(b)+"\n", what)
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported --format: %s (use %s)", format, strings.Join(allowed, "|"))
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}
