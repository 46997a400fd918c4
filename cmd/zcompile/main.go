// Command zcompile compiles shell scripts and functions into a single
// word-code dump file.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashwinvis/zsh/compiler"
	"github.com/ashwinvis/zsh/config"
	"github.com/ashwinvis/zsh/diag"
	"github.com/ashwinvis/zsh/dump"
	"github.com/ashwinvis/zsh/program"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		mapFlag     = flag.Bool("m", false, "Always mmap the resulting dump file on load, ignoring the size threshold")
		threshold   = flag.Int("t", 0, "Byte size at or above which a dump file is mmap'd instead of read (0: use config default)")
		reuse       = flag.Bool("r", false, "Reuse an existing dump file's entries instead of overwriting them")
		noAliases   = flag.Bool("U", false, "Ignore aliases while compiling")
		cfgPath     = flag.String("config", "", "Path to a config.toml (default: platform config dir)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] dumpfile source...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("zcompile %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}
	if *showHelp || flag.NArg() < 2 {
		flag.Usage()
		os.Exit(0)
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zcompile: %v\n", err)
		os.Exit(1)
	}

	dumpPath := flag.Arg(0)
	if filepath.Ext(dumpPath) == "" {
		dumpPath += ".zwc"
	}
	sources := flag.Args()[1:]

	var entries []dump.Entry
	if *reuse || cfg.Dump.ReuseExisting {
		if existing, err := dump.Read(dumpPath); err == nil {
			entries = existing
		}
	}

	exitCode := 0
	for _, src := range sources {
		name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		text, err := os.ReadFile(src) // #nosec G304 -- user-supplied source path, CLI argument
		if err != nil {
			fmt.Fprintf(os.Stderr, "zcompile: %v\n", err)
			exitCode = 1
			continue
		}

		result := compiler.ParseString(string(text), src, !*noAliases && !cfg.Compile.IgnoreAliases, diag.Report)

		for _, e := range result.Ctx.Errors.Errors {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		if !result.Ok {
			exitCode = 1
			continue
		}

		prog := program.Build(result.Ctx.Buf, result.Ctx.Pool, result.Ctx.Patterns)
		entries = replaceOrAppend(entries, dump.Entry{Name: name, Prog: prog})
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}

	if err := dump.Write(dumpPath, entries); err != nil {
		fmt.Fprintf(os.Stderr, "zcompile: %v\n", err)
		os.Exit(1)
	}

	if *mapFlag {
		cfg.Compile.MapThreshold = 0
	} else if *threshold > 0 {
		cfg.Compile.MapThreshold = *threshold
	} else {
		return
	}
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "zcompile: warning: could not persist map threshold: %v\n", err)
	}
}

// replaceOrAppend keeps entries unique by name, matching -r's "recompile
// just this function, keep the rest of the dump file" contract.
func replaceOrAppend(entries []dump.Entry, e dump.Entry) []dump.Entry {
	for i, existing := range entries {
		if existing.Name == e.Name {
			entries[i] = e
			return entries
		}
	}
	return append(entries, e)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}
