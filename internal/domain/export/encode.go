package export

import (
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/valyala/bytebufferpool"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks the required top-level fields.
func Validate(p Payload) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("validate payload %q: %w", p.ID, err)
	}
	return nil
}

// Encode serializes the canonical payload for the tournament's raw blob.
func Encode(p Payload) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigStd.NewEncoder(buf).Encode(p); err != nil {
		return nil, fmt.Errorf("encode payload %q: %w", p.ID, err)
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
