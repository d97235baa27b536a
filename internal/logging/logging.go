// Package logging routes the standard logger and gin's request log to a
// rotated file in addition to stdout.
package logging

import (
	"io"
	"log"
	"os"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-gonic/gin"
)

// Setup sends log output to stdout and, when file is set, to a rotated log
// file. The returned closer flushes the file; it is a no-op without one.
func Setup(file string) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if file == "" {
		return nopCloser{}
	}
	rotated := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}
	out := io.MultiWriter(os.Stdout, rotated)
	log.SetOutput(out)
	gin.DefaultWriter = out
	gin.DefaultErrorWriter = out
	log.Printf("Logging: writing to stdout and %s", file)
	return rotated
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
