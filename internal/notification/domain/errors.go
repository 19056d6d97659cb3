package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidImageFormat      = errors.New("invalid_image_format")
	ErrInvoiceGenerationFailed = errors.New("invoice_generation_failed")
	ErrMessageAssemblyFailed   = errors.New("message_assembly_failed")
	ErrTransportFailed         = errors.New("transport_failed")
	ErrMissingRecipient        = errors.New("missing_recipient")
)

// InvalidImageFormatError is returned when a product image sniffs to a type
// outside AllowedImageTypes. No message is produced.
type InvalidImageFormatError struct {
	FileName    string
	ContentType string
}

func (e *InvalidImageFormatError) Error() string {
	return fmt.Sprintf("invalid image format %q for %s", e.ContentType, e.FileName)
}

func (e *InvalidImageFormatError) Is(target error) bool {
	return target == ErrInvalidImageFormat
}

type InvoiceGenerationError struct {
	Cause error
}

func (e *InvoiceGenerationError) Error() string {
	return fmt.Sprintf("invoice generation failed: %v", e.Cause)
}

func (e *InvoiceGenerationError) Unwrap() error { return e.Cause }

func (e *InvoiceGenerationError) Is(target error) bool {
	return target == ErrInvoiceGenerationFailed
}

type MessageAssemblyError struct {
	Cause error
}

func (e *MessageAssemblyError) Error() string {
	return fmt.Sprintf("message assembly failed: %v", e.Cause)
}

func (e *MessageAssemblyError) Unwrap() error { return e.Cause }

func (e *MessageAssemblyError) Is(target error) bool {
	return target == ErrMessageAssemblyFailed
}
