package core

import (
	"sort"

	"github.com/yamaton/condax/pkg/envinfo"
	"github.com/yamaton/condax/pkg/output"
)

// List describes every environment. Injected packages are listed when
// includeInjected is set. Apps exposed by more than one environment are
// reported in Conflicts and, unless injected packages are being shown,
// logged as a warning.
func (c *Core) List(includeInjected bool) (output.Listing, error) {
	var listing output.Listing

	envs, err := c.Environments()
	if err != nil {
		return listing, err
	}

	owners := make(map[string][]string)
	for _, name := range envs {
		env, err := c.describe(name, includeInjected)
		if err != nil {
			return listing, err
		}
		for _, app := range env.Apps {
			owners[app.Name] = append(owners[app.Name], name)
		}
		listing.Environments = append(listing.Environments, env)
	}

	for app, envs := range owners {
		if len(envs) < 2 {
			continue
		}
		if listing.Conflicts == nil {
			listing.Conflicts = make(map[string][]string)
		}
		listing.Conflicts[app] = envs
	}

	if len(listing.Conflicts) > 0 && !includeInjected {
		apps := make([]string, 0, len(listing.Conflicts))
		for app := range listing.Conflicts {
			apps = append(apps, app)
		}
		sort.Strings(apps)
		c.logger.Warn().Strs("apps", apps).Msg("The following executables conflict")
	}
	return listing, nil
}

func (c *Core) describe(name string, includeInjected bool) (output.Environment, error) {
	prefix := c.Prefix(name)
	env := output.Environment{Name: name, Prefix: prefix}

	m, err := c.store.Load(prefix)
	if err != nil {
		return env, err
	}

	env.Package = c.packageInfo(prefix, m.Main.Name)
	env.Python = envinfo.PythonVersion(c.fs, prefix)

	for _, app := range m.Main.Apps {
		env.Apps = append(env.Apps, output.App{Name: envinfo.StripExeExt(app)})
	}
	for _, p := range m.InjectedPackages() {
		if p.IncludeApps {
			for _, app := range p.Apps {
				env.Apps = append(env.Apps, output.App{Name: envinfo.StripExeExt(app), Package: p.Name})
			}
		}
		if includeInjected {
			env.Injected = append(env.Injected, c.packageInfo(prefix, p.Name))
		}
	}
	return env, nil
}

// packageInfo reads name/version/build from the manifest, falling back to
// the bare name when the package is gone.
func (c *Core) packageInfo(prefix, name string) output.PackageInfo {
	rec, err := envinfo.ReadPackage(c.fs, prefix, name)
	if err != nil {
		c.logger.Debug().Err(err).Str("package", name).Msg("No manifest for package")
		return output.PackageInfo{Name: name}
	}
	return output.PackageInfo{Name: rec.Name, Version: rec.Version, Build: rec.Build}
}
