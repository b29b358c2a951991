package server

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/df07/go-sphere-animation/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by sending messages to a console channel
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	echo        io.Writer // Server-side copy of every message, may be nil
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage, echo io.Writer) core.Logger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
		echo:        echo,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	if wl.echo != nil {
		fmt.Fprintf(wl.echo, "[%s] %s", wl.renderID, message)
	}

	// Non-blocking: frames keep rendering even if the client is slow
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			RenderID:  wl.renderID,
			Message:   message,
			Timestamp: time.Now(),
			Level:     levelFor(message),
		}:
		default:
		}
	}
}

// levelFor classifies a log line by its leading word
func levelFor(message string) string {
	switch {
	case strings.HasPrefix(message, "Error"):
		return "error"
	case strings.HasPrefix(message, "Warning"), strings.HasPrefix(message, "Waiting"):
		return "warning"
	default:
		return "info"
	}
}
