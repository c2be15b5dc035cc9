package main

import (
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	cfg "github.com/maastricht-university/heartclean/config"
)

// newLogger writes to w and, when pipeline.log_file is set, also to a
// size-rotated file.
func newLogger(c *cfg.Root, w io.Writer) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl := logrus.InfoLevel
	if c.Pipeline.LogLvl != "" {
		var err error
		if lvl, err = logrus.ParseLevel(c.Pipeline.LogLvl); err != nil {
			return nil, nil, err
		}
	}
	log.SetLevel(lvl)

	if c.Pipeline.LogFile == "" {
		log.SetOutput(w)
		return log, func() {}, nil
	}
	rot := &lumberjack.Logger{
		Filename:   c.Pipeline.LogFile,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(w, rot))
	return log, func() { _ = rot.Close() }, nil
}
