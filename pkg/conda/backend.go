package conda

import "context"

// Backend creates, mutates and destroys environments at a prefix.
// Every call blocks until the underlying operation completes. A backend
// process that exits non-zero is reported as a BACKEND_COMMAND error.
type Backend interface {
	CreateEnv(ctx context.Context, prefix, spec string, channels []string) error
	RemoveEnv(ctx context.Context, prefix string) error
	UpdateEnv(ctx context.Context, prefix, spec string, updateSpecs bool, channels []string) error
	InstallPackages(ctx context.Context, prefix string, specs, channels []string) error
	UninstallPackages(ctx context.Context, prefix string, names []string) error
	ExportEnv(ctx context.Context, prefix, file string) error
	ImportEnv(ctx context.Context, prefix, file string, force bool) error
	Clean(ctx context.Context) error
}
