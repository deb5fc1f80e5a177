package ports

import "errors"

var ErrNotFound = errors.New("not found")

// ErrUnavailable: le stockage local n'est pas utilisable (fermé, non configuré).
var ErrUnavailable = errors.New("storage unavailable")
