package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gridwright/engine/internal/grid"
	"gridwright/engine/internal/session"
	"gridwright/engine/internal/xlsx"
)

var (
	runOpenPath string
	runSheet    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Edit a workbook interactively with natural-language instructions",
	RunE: func(cmd *cobra.Command, args []string) error {
		environment, err := bootstrap()
		if err != nil {
			return err
		}
		defer environment.cleanup()
		return runLoop(cmd, environment)
	},
}

func init() {
	runCmd.Flags().StringVar(&runOpenPath, "open", "", "open an existing .xlsx workbook")
	runCmd.Flags().StringVar(&runSheet, "sheet", "Sheet1", "sheet name for a new workbook")
}

const replHelp = `Commands:
  help           show this help
  summary        print the document summary
  save [path]    write the workbook to disk
  exit           quit without saving

Anything else is sent to the model as an editing instruction.`

func runLoop(cmd *cobra.Command, environment *env) error {
	var wb *grid.Workbook
	docPath := runOpenPath
	if docPath != "" {
		loaded, err := xlsx.Load(docPath)
		if err != nil {
			return err
		}
		wb = loaded
	} else {
		wb = grid.NewWithSheet(runSheet)
	}

	opts, err := environment.controllerOptions()
	if err != nil {
		return err
	}
	controller := session.New(wb, opts...)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "gridwright "+Version)
	fmt.Fprint(out, controller.Summary())
	fmt.Fprintln(out, `Type an instruction, or "help".`)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case line == "help":
			fmt.Fprintln(out, replHelp)
		case line == "exit" || line == "quit":
			return nil
		case line == "summary":
			fmt.Fprint(out, controller.Summary())
		case line == "save" || strings.HasPrefix(line, "save "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "save"))
			if path == "" {
				path = docPath
			}
			if path == "" {
				fmt.Fprintln(out, "no path: use save <path>")
				continue
			}
			if err := xlsx.Save(controller.Workbook(), path); err != nil {
				fmt.Fprintf(out, "save failed: %v\n", err)
				continue
			}
			docPath = path
			fmt.Fprintf(out, "saved %s\n", path)
		default:
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			report, err := controller.Apply(ctx, line)
			if err != nil {
				if info, ok := session.ErrorInfoFrom(err); ok && info.Detail != "" {
					fmt.Fprintf(out, "%s: %s\n", info.ErrorCode, info.Detail)
				} else {
					fmt.Fprintf(out, "instruction failed: %v\n", err)
				}
				continue
			}
			fmt.Fprint(out, report.Render())
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "input error: %v\n", err)
		return err
	}
	return nil
}
