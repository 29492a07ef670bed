package server

import (
	"fmt"
	"net/http"
)

// ANSI escapes for the route table printed at startup
const (
	green      = "\033[32m"
	yellow     = "\033[33m"
	blue       = "\033[34m"
	magenta    = "\033[35m"
	cyan       = "\033[36m"
	gray       = "\033[90m"
	resetColor = "\033[0m"
)

var methodColors = map[string]string{
	http.MethodGet:     green,
	http.MethodPost:    blue,
	http.MethodPut:     cyan,
	http.MethodDelete:  yellow,
	http.MethodOptions: magenta,
}

// colorMethod pads the method to a fixed width and paints it, gray for anything unlisted
func colorMethod(method string) string {
	color, ok := methodColors[method]
	if !ok {
		color = gray
	}
	return color + fmt.Sprintf(" %-7s", method) + resetColor
}
