// Copyright (c) 2025 The litecoin-patched developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// dcreplay replays a script of block connect/disconnect directives through a
// fresh drivechain engine and prints the resulting escrow and bundle state.
// It exists to reproduce consensus traces outside a running node: feed it
// the blocks of a disputed reorg and compare the final state across
// implementations.
//
// The input file carries one directive per line:
//
//	connect <height> <blockhex>
//	disconnect <height> <blockhex>
//
// where <blockhex> is a standard wire-serialized block.  Blank lines and
// lines starting with '#' are ignored.  The first rejected connect stops
// the replay and the tool exits non-zero after printing the reason token.
package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/allsagetech/litecoin-patched/drivechain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

var (
	cfg        *config
	log        btclog.Logger
	logRotator *rotator.Rotator
)

// logWriter implements an io.Writer that outputs to standard out and, when
// configured, to the rotating log file.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// initLogRotator sets up the rotating log file sink.  It must be called
// before any log output is produced.
func initLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %w",
				err)
		}
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	logRotator = r
	return nil
}

// replay runs every directive in the input file against the given state.
// It returns the number of directives applied and the first error hit.
func replay(state *drivechain.State, fi *os.File) (int, error) {
	applied := 0
	scanner := bufio.NewScanner(fi)
	scanner.Buffer(make([]byte, 0, 1024*1024), 32*1024*1024)

	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return applied, fmt.Errorf("line %d: want "+
				"'<connect|disconnect> <height> <blockhex>', "+
				"got %d field(s)", lineNum, len(fields))
		}

		height64, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return applied, fmt.Errorf("line %d: bad height %q: %w",
				lineNum, fields[1], err)
		}
		height := int32(height64)

		blockBytes, err := hex.DecodeString(fields[2])
		if err != nil {
			return applied, fmt.Errorf("line %d: bad block hex: %w",
				lineNum, err)
		}
		block, err := btcutil.NewBlockFromBytes(blockBytes)
		if err != nil {
			return applied, fmt.Errorf("line %d: failed to "+
				"deserialize block: %w", lineNum, err)
		}

		switch fields[0] {
		case "connect":
			err := state.ConnectBlock(block, height)
			if err != nil {
				var ruleErr drivechain.RuleError
				if errors.As(err, &ruleErr) {
					return applied, fmt.Errorf("line %d: "+
						"block at height %d rejected: "+
						"%v (%v)", lineNum, height,
						ruleErr.ErrorCode, err)
				}
				return applied, fmt.Errorf("line %d: %w",
					lineNum, err)
			}
			log.Debugf("Connected block at height %d", height)

		case "disconnect":
			state.DisconnectBlock(block, height)
			log.Debugf("Disconnected block at height %d", height)

		default:
			return applied, fmt.Errorf("line %d: unknown "+
				"directive %q", lineNum, fields[0])
		}
		applied++
	}

	return applied, scanner.Err()
}

// dumpState prints the escrow and bundle state of every sidechain.
func dumpState(state *drivechain.State) {
	ids := state.SidechainIDs()
	if len(ids) == 0 {
		fmt.Println("no sidechains")
		return
	}

	for _, id := range ids {
		sc := state.Sidechain(id)
		fmt.Printf("sidechain %d: escrow %v (created at height %d, "+
			"%d bundle(s))\n", sc.ID,
			btcutil.Amount(sc.EscrowBalance), sc.CreationHeight,
			sc.NumBundles())

		for _, hash := range sc.BundleHashes() {
			bundle := sc.Bundle(&hash)
			fmt.Printf("  bundle %v: first seen %d, votes %d, "+
				"approved %v, executed %v\n", bundle.Hash,
				bundle.FirstSeenHeight, bundle.YesVotes,
				bundle.Approved, bundle.Executed)
		}
	}
}

// realMain is the real main function for the utility.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.
func realMain() error {
	tcfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = tcfg

	// Setup logging.
	if cfg.LogFile != "" {
		if err := initLogRotator(cfg.LogFile); err != nil {
			return err
		}
		defer logRotator.Close()
	}
	backendLog := btclog.NewBackend(logWriter{})
	log = backendLog.Logger("MAIN")
	dchnLog := backendLog.Logger("DCHN")
	drivechain.UseLogger(dchnLog)

	level, _ := btclog.LevelFromString(cfg.DebugLevel)
	log.SetLevel(level)
	dchnLog.SetLevel(level)

	fi, err := os.Open(cfg.InFile)
	if err != nil {
		log.Errorf("Failed to open file %v: %v", cfg.InFile, err)
		return err
	}
	defer fi.Close()

	state := drivechain.NewState()
	applied, err := replay(state, fi)
	if err != nil {
		log.Errorf("Replay stopped after %d directive(s): %v",
			applied, err)
		return err
	}

	log.Infof("Replayed %d directive(s)", applied)
	dumpState(state)
	return nil
}

func main() {
	if err := realMain(); err != nil {
		os.Exit(1)
	}
}
