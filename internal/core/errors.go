package core

import "strings"

// browserGoneSignatures are error fragments the engine produces once the
// browser or page has been closed out from under us, typically by the human
// operating it. Any state query failing this way is normal termination.
var browserGoneSignatures = []string{
	"context canceled",
	"browser has been closed",
	"target closed",
	"page closed",
	"session closed",
	"cdp connection",
	"websocket: close",
	"use of closed network connection",
	"context or browser has been closed",
}

// IsBrowserGone reports whether err indicates the browser or page is gone.
func IsBrowserGone(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range browserGoneSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
