// Copyright 2017 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the two-sink (console + persistent file)
// leveled logger used throughout the driver, mirroring the teacher's
// cmd/multiproduct_kati practice of mirroring everything written to
// its log file back to the terminal.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus.Logger with a persistent log file and an
// operator-facing verbose mode.
type Logger struct {
	l       *logrus.Logger
	file    *os.File
	verbose bool
}

// New creates a Logger that writes to stderr, and additionally to
// logPath if non-empty. When verbose is true, Verbose/Verbosef lines
// are emitted; otherwise they're suppressed.
func New(logPath string, verbose bool) (*Logger, error) {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var file *os.File
	out := io.Writer(os.Stderr)
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file %s: %w", logPath, err)
		}
		file = f
		out = io.MultiWriter(os.Stderr, f)
	}
	l.SetOutput(out)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}

	return &Logger{l: l, file: file, verbose: verbose}, nil
}

// Cleanup flushes and closes the log file, if any.
func (lg *Logger) Cleanup() {
	if lg.file != nil {
		lg.file.Close()
	}
}

func (lg *Logger) Println(args ...interface{}) { lg.l.Infoln(args...) }
func (lg *Logger) Printf(format string, args ...interface{}) {
	lg.l.Infof(format, args...)
}

// Fatalf logs at error level, then terminates the process with a
// non-zero exit status.
func (lg *Logger) Fatalf(format string, args ...interface{}) {
	lg.l.Errorf(format, args...)
	lg.Cleanup()
	os.Exit(1)
}

// Verbose and Verbosef are no-ops unless the logger was constructed
// with verbose=true (i.e. --verbose or --debug was passed).
func (lg *Logger) Verbose(args ...interface{}) {
	if lg.verbose {
		lg.l.Debugln(args...)
	}
}

func (lg *Logger) Verbosef(format string, args ...interface{}) {
	if lg.verbose {
		lg.l.Debugf(format, args...)
	}
}
