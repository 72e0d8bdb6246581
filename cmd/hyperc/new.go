package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hyperdom/internal/templates"
)

func newCmd() *cobra.Command {
	var (
		template   string
		modulePath string
	)

	cmd := &cobra.Command{
		Use:   "new <dir>",
		Short: "Create a project",
		Long: `Create a project from a template.

Templates:
  ` + strings.Join(templateList(), "\n  ") + `

Examples:
  hyperc new site
  hyperc new counter --template=wasm --module=example.com/counter`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := templates.Get(template)
			if err != nil {
				return err
			}
			dir := args[0]
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			if err := tmpl.Create(dir, templates.Config{
				ProjectName: filepath.Base(dir),
				ModulePath:  modulePath,
			}); err != nil {
				return err
			}

			success("Created %s from the %s template", dir, tmpl.Name)
			fmt.Println()
			info("cd %s", dir)
			info("go mod tidy")
			info("hyperc dev")
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "server", "Template to use")
	cmd.Flags().StringVarP(&modulePath, "module", "m", "", "Go module path (default: directory name)")

	return cmd
}

func templateList() []string {
	var lines []string
	for _, name := range templates.List() {
		tmpl, _ := templates.Get(name)
		lines = append(lines, fmt.Sprintf("%-8s %s", name, tmpl.Description))
	}
	return lines
}
