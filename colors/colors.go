package colors

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
)

var (
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
)

// HTTPStatus renders a response status for request logs. Errors are red.
func HTTPStatus(status int) string {
	if status >= http.StatusBadRequest {
		return Red(status)
	}
	return Green(status)
}

// Elapsed renders a request duration as "[1.2ms]".
func Elapsed(d time.Duration) string {
	return Yellow(fmt.Sprintf("[%v]", d))
}

// Prefix labels a log line from a background process, e.g. "[worker 1] ".
// Error lines are red.
func Prefix(kind string, id interface{}, isError bool) string {
	label := fmt.Sprintf("[%v %v] ", kind, id)
	if isError {
		return Red(label)
	}
	return Yellow(label)
}
