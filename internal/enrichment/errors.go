package enrichment

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/spigell/eo-scorer/internal/utils"
)

// PanicError carries a value recovered while fetching or compacting a company.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("recovered: %v", e.Value)
}

func (e *PanicError) Kind() string { return "Panic" }

type kinded interface {
	Kind() string
}

// Kind names the failure class of err for diagnostics.
func Kind(err error) string {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	case errors.Is(err, context.Canceled):
		return "Canceled"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Timeout"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "RequestError"
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "Client.Timeout"), strings.Contains(msg, "deadline exceeded"):
		return "Timeout"
	case strings.Contains(msg, "context canceled"):
		return "Canceled"
	}

	return "Error"
}

// Diagnose renders err as the short "<Kind>: <message>" string stored on an
// experience. Secrets are stripped from the message and transport errors lose
// the request URL with its query.
func Diagnose(err error) string {
	if err == nil {
		return ""
	}

	return fmt.Sprintf("%s: %s", Kind(err), utils.RedactSecrets(shortMessage(err)))
}

func shortMessage(err error) string {
	msg := err.Error()

	var urlErr *url.Error
	if !errors.As(err, &urlErr) || urlErr.Err == nil {
		return msg
	}

	full := urlErr.Error()
	if strings.Contains(msg, full) {
		return strings.Replace(msg, full, urlErr.Err.Error(), 1)
	}

	return urlErr.Err.Error()
}
