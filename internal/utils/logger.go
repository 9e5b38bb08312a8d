package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) effect() int {
	switch l {
	case DEBUG:
		return 0
	case INFO:
		return 2
	case WARN:
		return 5
	default:
		return 1
	}
}

func (l Level) color() int {
	switch l {
	case DEBUG:
		return 92
	case INFO:
		return 37
	case WARN:
		return 93
	default:
		return 91
	}
}

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

type logger struct {
	mu    sync.Mutex
	w     io.Writer
	min   Level
	color bool
}

var gLogger = &logger{w: os.Stderr, min: INFO, color: true}

// SetLevel drops messages below min.
func SetLevel(min Level) {
	gLogger.mu.Lock()
	gLogger.min = min
	gLogger.mu.Unlock()
}

// SetOutput redirects log lines to w. Colour codes are only written when
// color is set.
func SetOutput(w io.Writer, color bool) {
	gLogger.mu.Lock()
	gLogger.w = w
	gLogger.color = color
	gLogger.mu.Unlock()
}

func LogDebug(v ...any) {
	gLogger.log(DEBUG, v)
}

func LogInfo(v ...any) {
	gLogger.log(INFO, v)
}

func LogWarn(v ...any) {
	gLogger.log(WARN, v)
}

func LogError(v ...any) {
	gLogger.log(ERROR, v)
}

func (g *logger) log(l Level, args []any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if l < g.min {
		return
	}

	// skip log and the exported LogX wrapper
	_, file, line, _ := runtime.Caller(2)
	file = filepath.Base(file)

	var buf string
	if g.color {
		buf = fmt.Sprintf("\033[2;m%s:%d\033[0;m", file, line)
		buf += fmt.Sprintf("\033[0;%dm [%s]\033[0;m ", l.color(), l)
		buf += fmt.Sprintf("\033[%d;%dm", l.effect(), l.color())
		buf += fmt.Sprintln(args...)
		buf = buf[:len(buf)-1] + "\033[0;m\n"
	} else {
		buf = fmt.Sprintf("%s:%d [%s] ", file, line, l) + fmt.Sprintln(args...)
	}
	io.WriteString(g.w, buf)
}
