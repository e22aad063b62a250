package utils

// ConstError is an error that can be declared as a constant, so the
// sentinel values of the codecs cannot be reassigned.
//
//	const ErrMalformedFrame = utils.ConstError("malformed frame")
type ConstError string

// Error returns the message of the error.
func (e ConstError) Error() string {
	return string(e)
}
