/*
 * kurozora-bot is a Discord bot to search and share the Kurozora catalog.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrorDetailLevel represents the level of error detail to display
type ErrorDetailLevel int

const (
	// ErrorDetailNone suppresses printing, errors still carry file and line
	ErrorDetailNone ErrorDetailLevel = iota
	// ErrorDetailSimple shows file, line and function (default)
	ErrorDetailSimple
	// ErrorDetailFull adds the full path and a stack trace
	ErrorDetailFull
)

func getErrorDetailLevel() ErrorDetailLevel {
	switch strings.ToLower(os.Getenv("ERROR_DETAIL_LEVEL")) {
	case "none":
		return ErrorDetailNone
	case "full":
		return ErrorDetailFull
	default:
		return ErrorDetailSimple
	}
}

// formatError decorates err with the location of the frame skip levels up.
func formatError(err error, skip int) error {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return fmt.Errorf("error occurred: %w", err)
	}
	fnName := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		fnName = fn.Name()
	}

	if getErrorDetailLevel() != ErrorDetailFull {
		return fmt.Errorf("%s:%d [%s]: %w", filepath.Base(file), line, filepath.Base(fnName), err)
	}

	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	stack := strings.SplitN(string(buf[:n]), "\n", 2)
	trace := ""
	if len(stack) == 2 {
		trace = stack[1]
	}

	return fmt.Errorf(`
Error Location:
  Full Path: %s
  File: %s
  Line: %d
  Function: %s
Error Details:
  %w
Stack Trace:
%s`, file, filepath.Base(file), line, fnName, err, trace)
}

// ErrorWithLocation wraps err with the caller's file, line and function.
// The original error stays reachable through errors.Is and errors.As.
func ErrorWithLocation(err error) error {
	if err == nil {
		return nil
	}
	return formatError(err, 1)
}

// PrintErrorAndReturn prints the error to stderr (if detail level is not None) and returns it
func PrintErrorAndReturn(err error) error {
	if err == nil {
		return nil
	}

	wrapped := formatError(err, 1)
	if getErrorDetailLevel() != ErrorDetailNone {
		fmt.Fprintln(os.Stderr, wrapped)
	}
	return wrapped
}
