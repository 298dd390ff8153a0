// Package normalisers holds the decode backends that turn uploaded bytes
// into plain text, one subpackage per media type family.
//
// Each backend reports the media types it accepts and is handed to
// services.NewFormatDecoder in cmd/brain. Failures are returned as
// *domain.DecodeError so the cause can be shown to the user.
package normalisers
