package conda

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamaton/condax/pkg/errors"
)

func TestPlatformURLs(t *testing.T) {
	tests := []struct {
		goos, goarch   string
		wantConda      string
		wantMicromamba string
		condaErr       bool
	}{
		{"linux", "amd64",
			"https://repo.anaconda.com/pkgs/misc/conda-execs/conda-latest-linux-64.exe",
			"https://micro.mamba.pm/api/micromamba/linux-64/latest", false},
		{"darwin", "amd64",
			"https://repo.anaconda.com/pkgs/misc/conda-execs/conda-latest-osx-64.exe",
			"https://micro.mamba.pm/api/micromamba/osx-64/latest", false},
		{"windows", "amd64",
			"https://repo.anaconda.com/pkgs/misc/conda-execs/conda-latest-win-64.exe",
			"https://micro.mamba.pm/api/micromamba/win-64/latest", false},
		{"darwin", "arm64", "",
			"https://micro.mamba.pm/api/micromamba/osx-arm64/latest", true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			i := NewInstaller(t.TempDir())
			i.GOOS, i.GOARCH = tt.goos, tt.goarch

			url, err := i.CondaDownloadURL()
			if tt.condaErr {
				assert.True(t, errors.IsErrorCode(err, errors.ErrUnsupportedPlatform))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantConda, url)
			}

			url, err = i.MicromambaDownloadURL()
			require.NoError(t, err)
			assert.Equal(t, tt.wantMicromamba, url)
		})
	}

	i := NewInstaller(t.TempDir())
	i.GOOS, i.GOARCH = "plan9", "386"
	_, err := i.MicromambaDownloadURL()
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnsupportedPlatform))
	assert.Equal(t, 30, errors.ExitCode(err))
}

func TestInstallMicromamba_ExtractsExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("archive fixture is the linux layout")
	}
	archive, err := os.ReadFile(filepath.Join("testdata", "micromamba-linux-64.tar.bz2"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	i := NewInstaller(t.TempDir())
	i.MicromambaURL = srv.URL

	exe, err := i.InstallMicromamba(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(i.BinDir, "micromamba"), exe)

	data, err := os.ReadFile(exe)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho micromamba 2.0.0\n", string(data))

	info, err := os.Stat(exe)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0100)
}

func TestInstallConda_WritesDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("standalone conda"))
	}))
	defer srv.Close()

	i := NewInstaller(t.TempDir())
	i.CondaURL = srv.URL

	exe, err := i.InstallConda(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(exe)
	require.NoError(t, err)
	assert.Equal(t, "standalone conda", string(data))
}

func TestInstall_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	i := NewInstaller(t.TempDir())
	i.CondaURL = srv.URL

	_, err := i.InstallConda(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDownload))
}

func TestEnsureMicromamba_UsesExistingBinDirCopy(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	i := NewInstaller(t.TempDir())
	existing := filepath.Join(i.BinDir, i.exeName("micromamba"))
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0755))
	i.MicromambaURL = "http://127.0.0.1:1/never-fetched"

	exe, err := i.EnsureMicromamba(context.Background())
	require.NoError(t, err)
	assert.Equal(t, existing, exe)
}
