package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wtask/relay/internal/relay/config"
	"github.com/wtask/relay/pkg/semver"
)

var (
	// ConfigPath - path to relay config file
	ConfigPath = config.DefaultPath

	// BinaryName - name of run application binary
	BinaryName = strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))

	// Version - app version fingerprint
	Version = semver.V{Minor: 1, PreRelease: "dev"}.String()

	// buildVersion - overrides Version when set at link time:
	// -ldflags "-X main.buildVersion=v1.2.3"
	buildVersion string
)

func init() {
	out := flag.CommandLine.Output()
	printUsage := func() {
		fmt.Fprintf(out, "Launch line relay server over TCP\n\n\t%s [options]\nOptions:\n\n", BinaryName)
		flag.PrintDefaults()
		fmt.Fprint(out, "\n")
	}
	printError := func(msg string) {
		fmt.Fprintf(out, "%s (v%s) error:\n\n\t%s\n", BinaryName, Version, msg)
	}

	if buildVersion != "" {
		v, err := semver.Parse(buildVersion)
		if err != nil {
			printError(err.Error())
			os.Exit(1)
		}
		Version = v.String()
	}

	help := false
	flag.BoolVar(&help, "help", false, "Print usage help")
	flag.StringVar(&ConfigPath, "c", config.DefaultPath, "Path to relay config file (shorthand)")
	flag.StringVar(&ConfigPath, "config", config.DefaultPath, "Path to relay config file")

	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}

	if ConfigPath == "" {
		printError("config path should not be empty")
		os.Exit(1)
	}
}
