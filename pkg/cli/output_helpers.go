package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"osident/internal/config"
)

// format returns the effective output format for w. "auto" becomes a table on
// a terminal and JSON otherwise.
func (a *app) format(w io.Writer) string {
	if a.cfg.Output != config.OutputAuto && a.cfg.Output != "" {
		return a.cfg.Output
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return config.OutputTable
	}
	return config.OutputJSON
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// printDetail renders key/value rows aligned in two columns.
func printDetail(w io.Writer, rows [][2]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// render writes v as JSON or YAML, or rows as a table.
func (a *app) render(w io.Writer, v interface{}, rows func() [][2]string) error {
	switch a.format(w) {
	case config.OutputJSON:
		return printJSON(w, v)
	case config.OutputYAML:
		return printYAML(w, v)
	default:
		return printDetail(w, rows())
	}
}
