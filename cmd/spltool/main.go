// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"
	"github.com/usedbytes/log"

	"github.com/visionfive/spl-tools/lib/config"
	"github.com/visionfive/spl-tools/lib/spl"
)

// Flag values are accepted in decimal or 0x-prefixed hex, like the header
// fields are usually quoted in board documentation.
func parseUint32(name, val string) (uint32, error) {
	v, err := strconv.ParseUint(val, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: '%s' is not a valid 32-bit value", name, val)
	}

	return uint32(v), nil
}

func run(ctx *cli.Context) error {
	backupAddr, err := parseUint32("backup-addr", ctx.String("backup-addr"))
	if err != nil {
		return err
	}

	version, err := parseUint32("version", ctx.String("version"))
	if err != nil {
		return err
	}

	if cfgFile := ctx.String("config"); cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if !ctx.IsSet("backup-addr") && cfg.BackupAddr != 0 {
			backupAddr = cfg.BackupAddr
		}
		if !ctx.IsSet("version") && cfg.Version != 0 {
			version = cfg.Version
		}
	}

	fname := ctx.String("file")

	switch {
	case ctx.Bool("create-header"):
		return spl.BuildSplOutput(fname, version, backupAddr)
	case ctx.Bool("fix-header"):
		return spl.PatchImageHeader(fname, backupAddr)
	}

	// Neither mode requested - nothing to do.
	return nil
}

func main() {
	app := &cli.App{
		Name:        "spltool",
		Usage:       "A tool for working with VisionFive SPL boot headers",
		HideVersion: true,
		// Just ignore errors - we'll handle them ourselves in main()
		ExitErrHandler: func(c *cli.Context, e error) {},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "create-header",
				Aliases: []string{"c"},
				Usage:   "Create the SPL header and write <file>.normal.out",
			},
			&cli.BoolFlag{
				Name:    "fix-header",
				Aliases: []string{"i"},
				Usage:   "Fix the image header in place for eMMC boot",
			},
			&cli.StringFlag{
				Name:    "backup-addr",
				Aliases: []string{"a"},
				Usage:   "Backup SPL address (decimal or hex)",
				Value:   "0x200000",
			},
			&cli.StringFlag{
				Name:    "version",
				Aliases: []string{"V"},
				Usage:   "Header version (decimal or hex)",
				Value:   "0x01010101",
			},
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Input file name",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "TOML file supplying default backup_addr/version",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable more output",
			},
		},
		Action: run,
	}

	app.Before = func(ctx *cli.Context) error {
		log.SetUseLog(false)

		log.SetVerbose(ctx.Bool("verbose"))
		log.Verboseln("Extra output enabled.")
		return nil
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Println("ERROR:", err)
		if v, ok := err.(cli.ExitCoder); ok {
			os.Exit(v.ExitCode())
		} else {
			os.Exit(1)
		}
	}
}
