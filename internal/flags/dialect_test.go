package flags

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bakito/tf-provider-gen/internal/openapi"
)

func TestDialect_Set(t *testing.T) {
	tests := []struct {
		value   string
		want    openapi.Dialect
		wantErr bool
	}{
		{value: "2.0", want: openapi.DialectV2},
		{value: "2", want: openapi.DialectV2},
		{value: "3.0", want: openapi.DialectV30},
		{value: "v3.1", want: openapi.DialectV31},
		{value: "4.0", wantErr: true},
		{value: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			var d Dialect
			err := d.Set(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, openapi.Dialect(0), d.Value())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Value())
			assert.Equal(t, tt.want.String(), d.String())
		})
	}
}

func TestDialect_FlagSet(t *testing.T) {
	var d Dialect
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Var(&d, "dialect", "dialect of the spec")

	assert.Empty(t, d.String())
	require.NoError(t, fs.Parse([]string{"--dialect", "3.1"}))
	assert.Equal(t, openapi.DialectV31, d.Value())
	assert.Equal(t, "dialect", fs.Lookup("dialect").Value.Type())

	require.Error(t, fs.Parse([]string{"--dialect", "1.0"}))
}
