package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// render writes v in the selected output format. plain may be nil, in which case
// plain output falls back to indented JSON.
func render(w io.Writer, v any, plain func(tw *tabwriter.Writer)) error {
	switch getOutputFormat() {
	case "json":
		return writeJSON(w, v)
	case "yaml":
		return writeYAML(w, v)
	case "plain", "table", "":
		if plain == nil {
			return writeJSON(w, v)
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		plain(tw)
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format %q (json, yaml, plain)", getOutputFormat())
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML goes through JSON so field names match the API
func writeYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

// done prints a one-line result for commands that return nothing
func done(w io.Writer, msg string) error {
	switch getOutputFormat() {
	case "json":
		return writeJSON(w, map[string]any{"ok": true, "message": msg})
	case "yaml":
		return writeYAML(w, map[string]any{"ok": true, "message": msg})
	default:
		_, err := fmt.Fprintln(w, msg)
		return err
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func rwx(r, w, x bool) string {
	out := []byte("---")
	if r {
		out[0] = 'r'
	}
	if w {
		out[1] = 'w'
	}
	if x {
		out[2] = 'x'
	}
	return string(out)
}
