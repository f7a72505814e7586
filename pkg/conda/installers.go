package conda

import (
	"archive/tar"
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/logging"
)

const (
	condaURLTemplate      = "https://repo.anaconda.com/pkgs/misc/conda-execs/conda-latest-%s.exe"
	micromambaURLTemplate = "https://micro.mamba.pm/api/micromamba/%s/latest"
)

// Installer locates conda and micromamba, downloading them into BinDir when
// neither PATH nor BinDir has one.
type Installer struct {
	BinDir string
	GOOS   string
	GOARCH string
	Client *http.Client

	// CondaURL and MicromambaURL override the download locations.
	CondaURL      string
	MicromambaURL string

	logger zerolog.Logger
}

// NewInstaller returns an Installer for the running platform.
func NewInstaller(binDir string) *Installer {
	return &Installer{
		BinDir: binDir,
		GOOS:   runtime.GOOS,
		GOARCH: runtime.GOARCH,
		Client: &http.Client{Timeout: 10 * time.Minute},
		logger: logging.GetLogger("installer"),
	}
}

func (i *Installer) exeName(name string) string {
	if i.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// platformSubdir maps GOOS/GOARCH to the conda platform subdirectory.
func platformSubdir(goos, goarch string, allowARM bool) (string, error) {
	switch {
	case goos == "linux" && goarch == "amd64":
		return "linux-64", nil
	case goos == "darwin" && goarch == "amd64":
		return "osx-64", nil
	case goos == "windows" && goarch == "amd64":
		return "win-64", nil
	case allowARM && goos == "linux" && goarch == "arm64":
		return "linux-aarch64", nil
	case allowARM && goos == "darwin" && goarch == "arm64":
		return "osx-arm64", nil
	}
	return "", errors.Newf(errors.ErrUnsupportedPlatform, "unsupported platform %s/%s", goos, goarch).
		WithDetail("goos", goos).
		WithDetail("goarch", goarch)
}

// CondaDownloadURL is the standalone conda executable for the platform.
func (i *Installer) CondaDownloadURL() (string, error) {
	if i.CondaURL != "" {
		return i.CondaURL, nil
	}
	subdir, err := platformSubdir(i.GOOS, i.GOARCH, false)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(condaURLTemplate, subdir), nil
}

// MicromambaDownloadURL is the micromamba archive for the platform.
func (i *Installer) MicromambaDownloadURL() (string, error) {
	if i.MicromambaURL != "" {
		return i.MicromambaURL, nil
	}
	subdir, err := platformSubdir(i.GOOS, i.GOARCH, true)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(micromambaURLTemplate, subdir), nil
}

// Find returns the first of names found on PATH or in BinDir.
func (i *Installer) Find(names ...string) (string, bool) {
	for _, name := range names {
		if p, err := exec.LookPath(name); err == nil {
			if abs, err := filepath.Abs(p); err == nil {
				return abs, true
			}
			return p, true
		}
		candidate := filepath.Join(i.BinDir, i.exeName(name))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// EnsureConda returns a conda or mamba executable, downloading the
// standalone conda when none is available.
func (i *Installer) EnsureConda(ctx context.Context) (string, error) {
	if exe, ok := i.Find("conda", "mamba"); ok {
		return exe, nil
	}
	i.logger.Info().Msg("No existing conda installation found. Installing the standalone")
	return i.InstallConda(ctx)
}

// EnsureMicromamba returns a micromamba executable, downloading it when
// none is available.
func (i *Installer) EnsureMicromamba(ctx context.Context) (string, error) {
	if exe, ok := i.Find("micromamba"); ok {
		return exe, nil
	}
	i.logger.Info().Msg("No existing micromamba found. Installing it")
	return i.InstallMicromamba(ctx)
}

// InstallConda downloads the standalone conda executable into BinDir.
func (i *Installer) InstallConda(ctx context.Context) (string, error) {
	url, err := i.CondaDownloadURL()
	if err != nil {
		return "", err
	}
	body, err := i.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()

	return i.writeExecutable(i.exeName("conda"), body)
}

// InstallMicromamba downloads the micromamba archive and extracts its
// executable into BinDir.
func (i *Installer) InstallMicromamba(ctx context.Context) (string, error) {
	url, err := i.MicromambaDownloadURL()
	if err != nil {
		return "", err
	}
	body, err := i.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()

	member := "bin/micromamba"
	if i.GOOS == "windows" {
		member = "Library/bin/micromamba.exe"
	}
	r, err := findTarMember(bzip2.NewReader(body), member)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDownload, "failed to extract micromamba from %s", url)
	}
	return i.writeExecutable(i.exeName("micromamba"), r)
}

func (i *Installer) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	i.logger.Info().Str("url", url).Msg("Downloading")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDownload, "bad download url %s", url)
	}
	resp, err := i.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDownload, "failed to download %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Newf(errors.ErrDownload, "failed to download %s: %s", url, resp.Status).
			WithDetail("status", resp.StatusCode)
	}
	return resp.Body, nil
}

func (i *Installer) writeExecutable(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(i.BinDir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", i.BinDir)
	}
	target := filepath.Join(i.BinDir, name)
	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", target)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", errors.Wrapf(err, errors.ErrDownload, "failed to write %s", target)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", target)
	}
	if err := os.Chmod(target, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to chmod %s", target)
	}
	i.logger.Debug().Str("path", target).Msg("Installed executable")
	return target, nil
}

func findTarMember(r io.Reader, member string) (io.Reader, error) {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("%s not found in archive", member)
		}
		if err != nil {
			return nil, err
		}
		if filepath.ToSlash(hdr.Name) == member || filepath.ToSlash(hdr.Name) == "./"+member {
			return tr, nil
		}
	}
}
