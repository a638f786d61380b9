package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

// writeJSON writes v to stdout as indented JSON. Paths are written verbatim,
// so '&', '<' and '>' in file names are not escaped.
func writeJSON(cmd *cobra.Command, v any) error {
	return encodeJSON(cmd.OutOrStdout(), v)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
