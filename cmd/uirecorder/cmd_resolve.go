package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"uirecorder/internal/capture"
	"uirecorder/internal/models"
)

var resolveCmd = newResolveCmd()

type resolveOptions struct {
	htmlFile string
	checked  string
	format   string
	verbose  bool
	action   capture.PageAction
}

func newResolveCmd() *cobra.Command {
	opts := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Describe and locate an action on a saved HTML page",
		Long: `Runs the same element resolution, locator synthesis and description as a live
recording, against a static HTML file. Without --target the file must be a
capture snapshot carrying the target marker attribute.`,
		Example: `  uirecorder resolve --html page.html --target "#email" --action input --value a@b.c --lang en
  uirecorder resolve --html snapshot.html --format yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.htmlFile, "html", "", "HTML file to load, - for stdin (required)")
	f.StringVar(&opts.action.Target, "target", "", "CSS selector of the event target")
	f.StringVar((*string)(&opts.action.Action), "action", string(models.ActionClick), "action kind: click, dblclick, input, change, submit, keydown, contextmenu")
	f.StringVar(&opts.action.Value, "value", "", "typed or selected value")
	f.StringVar(&opts.checked, "checked", "", "checked state after the event: true or false")
	f.StringVar(&opts.action.SelectedText, "selected-text", "", "visible text of the selected option")
	f.StringVar(&opts.action.Key, "key", "", "key name for keydown")
	f.BoolVar(&opts.action.Ctrl, "ctrl", false, "Ctrl was held")
	f.BoolVar(&opts.action.Shift, "shift", false, "Shift was held")
	f.BoolVar(&opts.action.Alt, "alt", false, "Alt was held")
	f.StringVar(&opts.action.URL, "url", "", "page URL to record")
	f.StringVar(&opts.action.Language, "lang", "", "description language (tr, en)")
	f.StringVar(&opts.format, "format", "json", "output format: json or yaml")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log locator strategy decisions to stderr")

	_ = cmd.MarkFlagRequired("html")
	return cmd
}

func runResolve(cmd *cobra.Command, opts *resolveOptions) error {
	if opts.format != "json" && opts.format != "yaml" {
		return fmt.Errorf("unknown format %q: want json or yaml", opts.format)
	}
	if opts.checked != "" {
		v, err := strconv.ParseBool(opts.checked)
		if err != nil {
			return fmt.Errorf("invalid --checked: %w", err)
		}
		opts.action.Checked = &v
	}

	src, err := readHTML(cmd.InOrStdin(), opts.htmlFile)
	if err != nil {
		return err
	}
	opts.action.HTML = src

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(logrus.WarnLevel)
	if opts.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	rec, err := capture.DescribePage(opts.action, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rec)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func readHTML(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}
	return string(data), nil
}
