package ids

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalid = errors.New("invalid id")

// Clean membuang suffix setelah ':' (route lama kirim "<id>:<slug>")
// lalu parse ulang sebagai UUID. uuid.Nil juga ditolak.
func Clean(raw string) (uuid.UUID, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return uuid.Nil, ErrInvalid
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalid
	}
	return id, nil
}
