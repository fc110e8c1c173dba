package port

import "errors"

var (
	// ErrClosed is returned by operations on a closed Input or Output.
	ErrClosed = errors.New("port: closed")

	// ErrSessionClosed is returned when opening a port on a closed Session.
	ErrSessionClosed = errors.New("port: session closed")

	// ErrPortExists is returned when a port name is already open in the Session.
	ErrPortExists = errors.New("port: name already open")

	// ErrUnknownFilter is returned by ParseFilter for an unrecognized filter name.
	ErrUnknownFilter = errors.New("port: unknown filter")

	// ErrInvalidConfig is returned by LoadConfig/ParseConfig for out-of-range settings.
	ErrInvalidConfig = errors.New("port: invalid config")

	// ErrAlreadyListening is returned when a ReaderSource is listened to twice.
	ErrAlreadyListening = errors.New("port: source already listening")
)
