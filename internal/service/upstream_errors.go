package service

import (
	"errors"

	"github.com/noah-isme/qldt-dashboard/internal/upstream"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
)

// transportFailure maps upstream transport failures onto TRANSPORT_ERROR and
// passes every other error through untouched.
func transportFailure(err error, message string) error {
	var transportErr *upstream.TransportError
	if errors.As(err, &transportErr) {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, message)
	}
	return err
}
