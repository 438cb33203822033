/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// InitLogger configures the standard logrus logger. format is "text" or
// "json"; an unrecognized level falls back to info.
func InitLogger(level string, format string) *logrus.Logger {
	log := logrus.StandardLogger()

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	log.SetOutput(os.Stderr)
	if err != nil && level != "" {
		log.WithField("invalid_level", level).Warn("internal.InitLogger: invalid log level, using info")
	}

	return log
}

// Logger returns an entry tagged with the given package name.
func Logger(pkg string) *logrus.Entry {
	return logrus.WithField("pkg", pkg)
}
