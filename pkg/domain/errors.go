package domain

import "errors"

// ErrPageNotFound is returned by wiki ports when no page matches a lookup.
var ErrPageNotFound = errors.New("page not found")

// ErrTransport marks failures talking to the wiki (network, 5xx, bad payloads).
// Adapters wrap it so callers can tell it apart from ErrPageNotFound.
var ErrTransport = errors.New("wiki transport error")

// ErrRootPageNotFound is returned when the documentation root page is missing.
var ErrRootPageNotFound = errors.New("root page not found")

// ErrClassNotFound is returned by class providers for unknown class references.
var ErrClassNotFound = errors.New("device class not found")

// ErrNoAvailableTitle is reported when every title candidate of a template
// belongs to a page this tool does not own.
var ErrNoAvailableTitle = errors.New("no available titles")
