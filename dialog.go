package tidepool

import (
	"errors"
	"log"

	"github.com/ncruces/zenity"
)

// ErrorReporter surfaces fatal startup errors to the user. ReportFatal
// returns true when the user asked to reload.
type ErrorReporter interface {
	ReportFatal(err error) (reload bool)
}

// DialogReporter reports fatal errors in a native dialog offering a Reload
// button.
type DialogReporter struct {
	Title  string
	Logger *log.Logger
}

// ReportFatal shows err and waits for the user's answer.
func (d DialogReporter) ReportFatal(err error) bool {
	title := d.Title
	if title == "" {
		title = "Something went wrong"
	}
	derr := zenity.Question(
		"We encountered an error while setting up the interactive background.\n\nError: "+err.Error(),
		zenity.Title(title),
		zenity.ErrorIcon,
		zenity.OKLabel("Reload"),
		zenity.CancelLabel("Quit"),
	)
	switch {
	case derr == nil:
		return true
	case errors.Is(derr, zenity.ErrCanceled):
		return false
	default:
		if d.Logger != nil {
			d.Logger.Printf("error dialog: %v", derr)
		}
		return false
	}
}

// LogReporter writes fatal errors to a logger and never reloads. Used when
// no display is available.
type LogReporter struct {
	Logger *log.Logger
}

// ReportFatal logs err.
func (r LogReporter) ReportFatal(err error) bool {
	r.Logger.Printf("fatal: %v", err)
	return false
}
