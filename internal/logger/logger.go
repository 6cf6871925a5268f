package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

func (lv LogLevel) String() string {
	if name, ok := levelNames[lv]; ok {
		return name
	}
	return "INFO"
}

// ParseLevel maps LOG_LEVEL values to a level, defaulting to INFO.
func ParseLevel(s string) LogLevel {
	for lv, name := range levelNames {
		if strings.EqualFold(s, name) {
			return lv
		}
	}
	return INFO
}

type style struct {
	level    *color.Color
	category *color.Color
}

var styles = map[LogLevel]style{
	DEBUG: {color.New(color.FgCyan), color.New(color.FgCyan, color.Bold)},
	INFO:  {color.New(color.FgGreen), color.New(color.FgGreen, color.Bold)},
	WARN:  {color.New(color.FgYellow), color.New(color.FgYellow, color.Bold)},
	ERROR: {color.New(color.FgRed, color.Bold), color.New(color.FgRed, color.Bold)},
	FATAL: {color.New(color.FgRed, color.Bold), color.New(color.FgRed, color.Bold)},
}

var (
	timeColor = color.New(color.FgBlue)
	fileColor = color.New(color.FgMagenta)
)

// LogEntry is one line of the JSON log file.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
}

type Logger struct {
	mu       sync.Mutex
	terminal io.Writer
	file     io.WriteCloser
	minLevel LogLevel
}

// NewLogger writes colored lines to stdout and JSON lines to
// logs/cricketbook-YYYY-MM-DD.log.
func NewLogger() *Logger {
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Fatal("Failed to create logs directory:", err)
	}

	path := filepath.Join("logs", "cricketbook-"+time.Now().Format("2006-01-02")+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatal("Failed to open log file:", err)
	}

	l := &Logger{terminal: os.Stdout, file: f, minLevel: ParseLevel(os.Getenv("LOG_LEVEL"))}
	l.Info("LOGGER", "Writing logs to "+path)
	return l
}

// New returns a logger that only writes terminal lines to w. Tests pass
// io.Discard.
func New(w io.Writer) *Logger {
	return &Logger{terminal: w, minLevel: DEBUG}
}

func (l *Logger) log(level LogLevel, category, message string) {
	if l == nil || level < l.minLevel {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Level:     level.String(),
		Category:  strings.ToUpper(category),
		Message:   message,
	}
	if _, file, line, ok := runtime.Caller(2); ok {
		entry.File, entry.Line = filepath.Base(file), line
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.terminal, l.formatTerminalOutput(level, entry))
	if l.file != nil {
		fmt.Fprintln(l.file, l.formatJSONOutput(entry))
	}
}

func (l *Logger) formatTerminalOutput(level LogLevel, entry LogEntry) string {
	s, ok := styles[level]
	if !ok {
		s = styles[INFO]
	}

	var b strings.Builder
	b.WriteString(timeColor.Sprint(entry.Timestamp[11:19]))
	b.WriteString(" ")
	b.WriteString(s.level.Sprintf("%-5s", entry.Level))
	b.WriteString(" ")
	b.WriteString(s.category.Sprintf("[%-10s]", entry.Category))
	b.WriteString(" ")
	b.WriteString(entry.Message)
	if entry.File != "" && entry.Line > 0 {
		b.WriteString(fileColor.Sprintf(" (%s:%d)", entry.File, entry.Line))
	}
	return b.String()
}

func (l *Logger) formatJSONOutput(entry LogEntry) string {
	raw, _ := json.Marshal(entry)
	return string(raw)
}

func (l *Logger) Debug(category, message string) { l.log(DEBUG, category, message) }
func (l *Logger) Info(category, message string)  { l.log(INFO, category, message) }
func (l *Logger) Warn(category, message string)  { l.log(WARN, category, message) }
func (l *Logger) Error(category, message string) { l.log(ERROR, category, message) }

func (l *Logger) Fatal(category, message string) {
	l.log(FATAL, category, message)
	os.Exit(1)
}

// Domain helpers. Each prefixes the message with an action tag and the
// document it concerns.

func (l *Logger) LogBooking(action, bookingID, message string) {
	l.log(INFO, "BOOKING", fmt.Sprintf("[%s] %s - %s", action, bookingID, message))
}

func (l *Logger) LogPayment(action, bookingID, message string) {
	l.log(INFO, "PAYMENT", fmt.Sprintf("[%s] %s - %s", action, bookingID, message))
}

func (l *Logger) LogScan(verdict, bookingID, message string) {
	l.log(INFO, "SCAN", fmt.Sprintf("[%s] %s - %s", verdict, bookingID, message))
}

func (l *Logger) LogKafka(action, topic, message string) {
	l.log(INFO, "KAFKA", fmt.Sprintf("[%s] %s - %s", action, topic, message))
}

func (l *Logger) LogAPI(method, path, status, duration string) {
	l.log(INFO, "API", fmt.Sprintf("%s %s - %s (%s)", method, path, status, duration))
}

func (l *Logger) LogSecurity(event, message string) {
	l.log(WARN, "SECURITY", fmt.Sprintf("[%s] %s", event, message))
}

func (l *Logger) Close() {
	if l == nil || l.file == nil {
		return
	}
	l.Info("LOGGER", "Closing log file")
	l.file.Close()
}
