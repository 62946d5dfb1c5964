// Command mcc is the Mini-C compiler driver.
package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/tlog"

	"mcc/pkg/compile"
	"mcc/pkg/config"
	"mcc/pkg/util"
)

func main() {
	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "parse files and report syntax errors",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	checkCmd := &cli.Command{
		Name:        "check",
		Description: "parse and type-check files",
		Action:      checkAct,
		Args:        cli.Args{},
	}

	buildCmd := &cli.Command{
		Name:        "build",
		Description: "compile files and print the three-address-code listing",
		Action:      buildAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "mcc",
		Description: "mcc is a compiler for Mini-C source code",
		Commands: []*cli.Command{
			parseCmd,
			checkCmd,
			buildCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func rootContext() context.Context {
	return tlog.ContextWithSpan(context.Background(), tlog.Root())
}

func parseAct(c *cli.Command) error {
	ctx := rootContext()
	cfg := config.NewConfig()

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return err
		}
		if _, err := compile.Parse(ctx, cfg, a, string(text)); err != nil {
			return fail(err)
		}
	}

	return nil
}

func checkAct(c *cli.Command) error {
	ctx := rootContext()
	cfg := config.NewConfig()

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return err
		}
		if _, err := compile.Check(ctx, cfg, a, string(text)); err != nil {
			return fail(err)
		}
	}

	return nil
}

func buildAct(c *cli.Command) error {
	ctx := rootContext()
	cfg := config.NewConfig()

	for _, a := range c.Args {
		prog, err := compile.CompileFile(ctx, cfg, a)
		if err != nil {
			return fail(err)
		}

		fmt.Print(prog)
	}

	return nil
}

// fail renders the diagnostic with its source line and caret, then exits
// without letting the cli layer print it a second time.
func fail(err error) error {
	util.PrintDiagnostic(err)
	os.Exit(1)
	return err
}
