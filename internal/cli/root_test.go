package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	dmerrors "github.com/rileyhilliard/dmontop/internal/errors"
)

func TestIsUnknownCommandError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unknown command error",
			err:  errors.New(`unknown command "foo" for "dmontop"`),
			want: true,
		},
		{
			name: "unknown flag error",
			err:  errors.New(`unknown flag: --foo`),
			want: true,
		},
		{
			name: "unknown shorthand",
			err:  errors.New(`unknown shorthand flag: 'z' in -z`),
			want: true,
		},
		{
			name: "other error",
			err:  errors.New("dcgmi exited"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnknownCommandError(tt.err))
		})
	}
}

func TestExtractUnknownCommand(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "standard cobra format",
			err:  errors.New(`unknown command "foo" for "dmontop"`),
			want: "foo",
		},
		{
			name: "command with hyphen",
			err:  errors.New(`unknown command "my-cmd" for "dmontop"`),
			want: "my-cmd",
		},
		{
			name: "no quotes returns empty",
			err:  errors.New("unknown command foo"),
			want: "",
		},
		{
			name: "single quote returns empty",
			err:  errors.New(`unknown command "foo`),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUnknownCommand(tt.err))
		})
	}
}

func TestFormatError(t *testing.T) {
	t.Run("structured error is printed as is", func(t *testing.T) {
		err := dmerrors.New(dmerrors.ErrSource, "Can't start dcgmi", "Install DCGM")
		assert.Equal(t, err.Error(), formatError(err))
	})

	t.Run("unknown command gets a hint", func(t *testing.T) {
		out := formatError(errors.New(`unknown command "top" for "dmontop"`))
		assert.Contains(t, out, `unknown command "top"`)
		assert.Contains(t, out, "'top' is not a dmontop command")
		assert.Contains(t, out, "dmontop --help")
	})

	t.Run("plain error ends with newline", func(t *testing.T) {
		assert.Equal(t, "boom\n", formatError(errors.New("boom")))
	})
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"init", "fields", "config", "completion", "version"} {
		assert.True(t, names[want], "missing %s", want)
	}
}

func TestRootCommandFlags(t *testing.T) {
	flags := rootCmd.Flags()
	for _, name := range []string{"config", "interval", "log", "history", "catalog", "entity-id", "input", "metrics-addr"} {
		assert.NotNil(t, flags.Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "i", flags.Lookup("interval").Shorthand)
	assert.Equal(t, "l", flags.Lookup("log").Shorthand)
}
