package flags

import (
	"github.com/bakito/tf-provider-gen/internal/openapi"
)

// Dialect is a flag value selecting the dialect of the spec document.
type Dialect openapi.Dialect

// String is an implementation of the pflag.Value interface.
func (d *Dialect) String() string {
	if *d == 0 {
		return ""
	}
	return openapi.Dialect(*d).String()
}

// Set is an implementation of the pflag.Value interface.
func (d *Dialect) Set(value string) error {
	parsed, err := openapi.ParseDialect(value)
	if err != nil {
		return err
	}
	*d = Dialect(parsed)
	return nil
}

// Type is an implementation of the pflag.Value interface.
func (*Dialect) Type() string {
	return "dialect"
}

// Value returns the selected dialect.
func (d *Dialect) Value() openapi.Dialect {
	return openapi.Dialect(*d)
}
