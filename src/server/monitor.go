package server

import (
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// startMonitor logs periodic runtime stats alongside the count of sessions
// currently connected, via a callback rather than a direct dependency on
// the session package so the server composition root can wire in whatever
// device registry it's holding.
func startMonitor(log *logrus.Entry, activeSessionCount func() int) {
	var m runtime.MemStats

	c := time.NewTicker(30 * time.Second).C

	for range c {
		runtime.ReadMemStats(&m)
		log.
			WithField("sysMem", m.Sys/1024).
			WithField("routines", runtime.NumGoroutine()).
			WithField("sessions", activeSessionCount()).
			Info("Monitoring runtime")
	}
}
