package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/repr"
	"github.com/charmbracelet/lipgloss"
	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/profile"
	"github.com/pontaoski/smplc/backend"
	"github.com/pontaoski/smplc/compiler"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/smplc", "main")

var (
	errorLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	debug      bool
)

func setLogLevel(w io.Writer, level string) error {
	lvl, err := capnslog.ParseLevel(level)
	if err != nil {
		return tracerr.Wrap(err)
	}
	debug = lvl >= capnslog.DEBUG
	capnslog.SetFormatter(capnslog.NewPrettyFormatter(w, debug))
	capnslog.SetGlobalLogLevel(lvl)
	return nil
}

func readSources(paths []string) ([]compiler.Source, error) {
	var sources []compiler.Source
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, tracerr.Wrap(err)
		}
		sources = append(sources, compiler.Source{Name: path, Text: string(data)})
	}
	return sources, nil
}

// buildSettings merges the command line over smpl.yaml. The manifest is only
// consulted when no --input is given.
func buildSettings(c *cli.Context) (inputs []string, backendID int, output string, err error) {
	inputs = c.StringSlice("input")
	backendID = c.Int("backend")
	output = c.String("output")

	if len(inputs) > 0 {
		return
	}

	m, err := readManifest(manifestFile)
	if err != nil {
		return nil, 0, "", tracerr.Errorf("no --input given and %s could not be read: %w", manifestFile, tracerr.Unwrap(err))
	}
	if m.LogLevel != "" && !c.IsSet("log-level") {
		if err = setLogLevel(c.App.ErrWriter, m.LogLevel); err != nil {
			return nil, 0, "", err
		}
	}
	plog.Debugf("using manifest for package %s", m.Package)

	inputs = m.Inputs
	if !c.IsSet("backend") {
		backendID = m.Backend
	}
	if !c.IsSet("output") {
		output = m.Output
	}
	if len(inputs) == 0 {
		err = tracerr.Errorf("%s lists no inputs", manifestFile)
	}
	return
}

func startProfile(mode string) (interface{ Stop() }, error) {
	opts := []func(*profile.Profile){profile.ProfilePath("."), profile.Quiet, profile.NoShutdownHook}
	switch mode {
	case "cpu":
		opts = append(opts, profile.CPUProfile)
	case "mem":
		opts = append(opts, profile.MemProfile)
	case "trace":
		opts = append(opts, profile.TraceProfile)
	default:
		return nil, tracerr.Errorf("unknown profile mode %q (want cpu, mem or trace)", mode)
	}
	return profile.Start(opts...), nil
}

func build(c *cli.Context) error {
	if mode := c.String("profile"); mode != "" {
		p, err := startProfile(mode)
		if err != nil {
			return err
		}
		defer p.Stop()
	}

	inputs, backendID, output, err := buildSettings(c)
	if err != nil {
		return err
	}
	sources, err := readSources(inputs)
	if err != nil {
		return err
	}

	if c.Bool("dump-ast") {
		for _, src := range sources {
			m, err := compiler.Parse(src)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, repr.String(m, repr.Indent("  ")))
		}
		return nil
	}

	out, err := compiler.Compile(sources, backendID)
	if err != nil {
		return err
	}

	if output == "" {
		_, err = c.App.Writer.Write(out)
		return tracerr.Wrap(err)
	}
	plog.Infof("writing %s", output)
	return tracerr.Wrap(os.WriteFile(output, out, 0o644))
}

func inputFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "source file to compile; repeat for more modules",
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "smplc",
		Usage: "smpl compiler",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "WARNING",
				Usage: "one of CRITICAL, ERROR, WARNING, NOTICE, INFO, DEBUG, TRACE",
			},
		},
		Before: func(c *cli.Context) error {
			return setLogLevel(c.App.ErrWriter, c.String("log-level"))
		},
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "write a smpl.yaml for a new package",
				ArgsUsage: "NAME",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return tracerr.New("no package name provided")
					}
					return writeManifest(manifestFile, manifest{
						Package: name,
						Inputs:  []string{"main.smpl"},
					})
				},
			},
			{
				Name:   "build",
				Usage:  "compile sources with a backend",
				Action: build,
				Flags: []cli.Flag{
					inputFlag(),
					&cli.IntFlag{
						Name:    "backend",
						Aliases: []string{"b"},
						Usage:   "backend id, see smplc backends",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output file; stdout when empty",
					},
					&cli.BoolFlag{
						Name:  "dump-ast",
						Usage: "print the parsed modules instead of compiling",
					},
					&cli.StringFlag{
						Name:  "profile",
						Usage: "write a cpu, mem or trace profile to the working directory",
					},
				},
			},
			{
				Name:  "check",
				Usage: "parse and analyze sources without generating code",
				Flags: []cli.Flag{inputFlag()},
				Action: func(c *cli.Context) error {
					inputs, _, _, err := buildSettings(c)
					if err != nil {
						return err
					}
					sources, err := readSources(inputs)
					if err != nil {
						return err
					}
					prog, err := compiler.Check(sources)
					if err != nil {
						return err
					}
					plog.Infof("%d modules checked", len(prog.Modules))
					return nil
				},
			},
			{
				Name:  "backends",
				Usage: "list the available backends",
				Action: func(c *cli.Context) error {
					for _, e := range backend.List() {
						fmt.Fprintf(c.App.Writer, "%d\t%s\n", e.ID, e.Generator.Name())
					}
					return nil
				},
			},
			{
				Name:      "typeinfo",
				Usage:     "dump typeinfo from a library built with the llvm backend",
				ArgsUsage: "LIB",
				Action: func(c *cli.Context) error {
					file := c.Args().Get(0)
					if file == "" {
						return tracerr.New("no library provided")
					}
					data, err := getTypeInfoFromFile(file)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, repr.String(data, repr.Indent("  ")))
					return nil
				},
			},
		},
	}
}

func report(w io.Writer, err error) {
	fmt.Fprintln(w, errorLabel.Render("error:"), tracerr.Unwrap(err))
	if debug {
		tracerr.PrintSourceColor(err)
	}
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		report(os.Stderr, err)
		os.Exit(1)
	}
}
