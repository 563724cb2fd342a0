package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"glint"
)

var tickInterval time.Duration

var rootCmd = &cobra.Command{
	Use:   "glint-demo",
	Short: "Live component tree demo for the glint reconciliation engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("stdout is not a terminal")
		}
		return run()
	},
}

func run() error {
	app := glint.NewApplication()
	backend := glint.NewTermBackend(80, 24)

	title := glint.NewLabel("glint demo — tab cycles focus, enter activates, r refreshes, ctrl+c quits")
	clock := glint.NewLabel("")
	counter := glint.NewLabel("activations: 0")
	button := glint.NewButton("press me")

	activations := 0
	button.AddListener(glint.EventActivate, func(glint.Event) {
		activations++
		counter.Set(glint.PropText, fmt.Sprintf("activations: %d", activations))
	})

	panel := glint.NewPanel(clock, counter, button)
	app.Root().Append(title, panel)
	app.SetFocus(button)

	prog := glint.NewProgram(app, backend,
		glint.WithTick(tickInterval, func(a *glint.Application) {
			clock.Set(glint.PropText, time.Now().Format("15:04:05"))
		}),
		glint.WithKeyHandler(func(a *glint.Application, key tea.KeyMsg) bool {
			if key.String() == "r" {
				a.RequestFullRefresh()
				return true
			}
			return false
		}),
	)
	return prog.Run()
}

func main() {
	rootCmd.Flags().DurationVar(&tickInterval, "tick", time.Second, "clock update interval")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
