package parser

import "github.com/sioclient/go-socket.io-client/utils"

const (
	// ErrInvalidPacketType is returned for an unknown type discriminator.
	ErrInvalidPacketType = utils.ConstError("invalid packet type")
	// ErrMalformedPacket is returned when the header or the payload of a
	// packet cannot be read.
	ErrMalformedPacket = utils.ConstError("malformed packet")
	// ErrMalformedArray is returned when a payload is not a balanced JSON
	// array.
	ErrMalformedArray = utils.ConstError("malformed array")
	// ErrInvalidArgument is returned when an argument cannot be encoded.
	ErrInvalidArgument = utils.ConstError("invalid argument")
)
