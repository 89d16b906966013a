package container

import "fmt"

// FormatError is returned when the container is not in the expected format,
// either because the magic does not match or because a length is impossible.
// Nothing is decrypted once it has been returned.
type FormatError struct {
	Offset int64
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid container at offset %d: %s", e.Offset, e.Reason)
}

// TruncatedContainerError is returned when a block declares more bytes than
// the container holds.
type TruncatedContainerError struct {
	What      string
	Offset    int64
	Declared  int64
	Available int64
}

func (e *TruncatedContainerError) Error() string {
	return fmt.Sprintf("truncated container: %s at offset %d declares %d bytes, only %d available",
		e.What, e.Offset, e.Declared, e.Available)
}

// CorruptKeyError is returned when the key blob cannot be recovered. No audio
// can be produced without it.
type CorruptKeyError struct {
	Err error
}

func (e *CorruptKeyError) Error() string {
	return fmt.Sprintf("corrupt key blob: %v", e.Err)
}

func (e *CorruptKeyError) Unwrap() error {
	return e.Err
}

// MetadataParseError reports a metadata blob that could not be fully decoded.
// It is never fatal: the container is still opened with a default record and
// the error is kept in Container.Warnings.
type MetadataParseError struct {
	// Stage is "decrypt" when the blob itself could not be recovered and
	// "parse" when the recovered text did not decode.
	Stage string
	Err   error
}

func (e *MetadataParseError) Error() string {
	return fmt.Sprintf("metadata %s: %v", e.Stage, e.Err)
}

func (e *MetadataParseError) Unwrap() error {
	return e.Err
}
