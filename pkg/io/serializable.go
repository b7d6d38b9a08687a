package io

// Serializable is implemented by types having a binary form. Implementations
// report failures through the Err field of the reader or writer and must be
// no-ops once Err is set, so nested calls need no error checks of their own.
type Serializable interface {
	DecodeBinary(*BinReader)
	EncodeBinary(*BinWriter)
}
