// Copyright (c) 2025 The litecoin-patched developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/btcsuite/btclog"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultDebugLevel = "info"
)

// config defines the configuration options for dcreplay.
//
// See loadConfig for details on the configuration load process.
type config struct {
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	InFile     string `short:"i" long:"infile" description:"File containing the connect/disconnect directives to replay"`
	LogFile    string `long:"logfile" description:"Also write the replay log to this file, rotated at 10 MiB"`
}

// loadConfig initializes and parses the config using command line options.
func loadConfig() (*config, error) {
	cfg := config{
		DebugLevel: defaultDebugLevel,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	if cfg.InFile == "" {
		return nil, fmt.Errorf("the --infile option is required")
	}

	if _, ok := btclog.LevelFromString(cfg.DebugLevel); !ok {
		return nil, fmt.Errorf("the specified debug level [%v] is "+
			"invalid", cfg.DebugLevel)
	}

	return &cfg, nil
}
