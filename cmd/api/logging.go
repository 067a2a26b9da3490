package main

import (
	stdlog "log"

	log "github.com/sirupsen/logrus"
)

// stdErrorLog routes net/http's internal errors through logrus.
func stdErrorLog(logger *log.Logger) *stdlog.Logger {
	return stdlog.New(logger.WriterLevel(log.ErrorLevel), "", 0)
}
