package midi

import "errors"

var (
	// ErrNilIO indicates that NewReader/NewWriter was called with a nil interface.
	ErrNilIO = errors.New("midi: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrAlreadyBuffered indicates NewReaderSize/NewWriterSize was given a bufio
	// reader or writer smaller than the requested size.
	ErrAlreadyBuffered = errors.New("midi: reader or writer is already buffered")

	// ErrUnknownOpcode indicates a message was constructed with a value that is not
	// a canonical status byte (for example 0x91, which carries a channel, or a data byte).
	ErrUnknownOpcode = errors.New("midi: unknown opcode")

	// ErrChannelRange indicates a channel outside 0-15.
	ErrChannelRange = errors.New("midi: channel out of range")

	// ErrDataLength indicates the number of data bytes does not match the opcode's arity.
	ErrDataLength = errors.New("midi: data length does not match opcode")

	// ErrDataByte indicates a data byte with its high bit set.
	ErrDataByte = errors.New("midi: data byte has high bit set")

	// ErrInvalidMessage is the panic value when serializing a Message that was not
	// built by one of the constructors.
	ErrInvalidMessage = errors.New("midi: invalid message")

	// ErrTrailingData is returned by UnmarshalBinary when the input holds more than one message.
	ErrTrailingData = errors.New("midi: trailing data after message")

	// ErrTruncatedData is returned by UnmarshalBinary when the input does not complete a message.
	ErrTruncatedData = errors.New("midi: truncated data")
)
