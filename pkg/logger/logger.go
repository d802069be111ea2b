package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

func New(logLevel string) *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{})

	// Логи идут в stderr, чтобы не мешать выводу команд
	log.SetOutput(os.Stderr)

	// Уровень логирования
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.WarnLevel // Уровень по умолчанию, если передан некорректный
	}
	log.SetLevel(level)
	return log
}
