// Package notify транзиентные статусные уведомления для пользователя
package notify

import "github.com/sirupsen/logrus"

// Level важность уведомления
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier получатель уведомлений; уведомления одноразовые, без истории
type Notifier interface {
	Notify(level Level, message string)
}

// LogNotifier выводит уведомления через logrus
type LogNotifier struct {
	Log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogNotifier{Log: log}
}

func (n *LogNotifier) Notify(level Level, message string) {
	switch level {
	case LevelError:
		n.Log.Error(message)
	case LevelSuccess:
		n.Log.Info(message)
	default:
		n.Log.Info(message)
	}
}

// Nop глушит уведомления
type Nop struct{}

func (Nop) Notify(Level, string) {}
