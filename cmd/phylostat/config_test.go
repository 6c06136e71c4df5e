package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadOptions(t *testing.T) {
	for _, file := range []struct{ name, content string }{
		{"opts.toml", "workers = 3\nlenient = true\n"},
		{"opts.yaml", "workers: 3\nlenient: true\n"},
		{"opts.yml", "workers: 3\nlenient: true\n"},
	} {
		opts, err := loadOptions(writeFile(t, file.name, file.content))
		require.NoError(t, err, file.name)
		assert.Equal(t, 3, opts.Workers, file.name)
		assert.True(t, opts.Lenient, file.name)
	}
}

func TestLoadOptionsDefaults(t *testing.T) {
	opts, err := loadOptions(writeFile(t, "opts.toml", "lenient = true\n"))
	require.NoError(t, err)
	assert.Equal(t, defaultOptions().Workers, opts.Workers)
}

func TestLoadOptionsErrors(t *testing.T) {
	_, err := loadOptions(writeFile(t, "opts.ini", "workers=3"))
	assert.Error(t, err)

	_, err = loadOptions(writeFile(t, "opts.toml", "workers = -1\n"))
	assert.Error(t, err)

	_, err = loadOptions(writeFile(t, "opts.yaml", "workers: [\n"))
	assert.Error(t, err)

	_, err = loadOptions(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestMergeKeepsFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts := &options{Workers: 1}
	flags.IntVar(&opts.Workers, "workers", 1, "")
	flags.BoolVar(&opts.Lenient, "lenient", false, "")
	require.NoError(t, flags.Parse([]string{"--workers=7"}))

	opts.merge(&options{Workers: 2, Lenient: true}, flags)
	assert.Equal(t, 7, opts.Workers)
	assert.True(t, opts.Lenient)
}
