package condax

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Install and execute applications packaged by conda"
	MsgInstallShort    = "Install packages into their own environments"
	MsgRemoveShort     = "Remove packages and their environments"
	MsgInjectShort     = "Inject packages into an existing environment"
	MsgUninjectShort   = "Uninject packages from an existing environment"
	MsgUpdateShort     = "Update packages installed by condax"
	MsgListShort       = "List packages managed by condax"
	MsgFixLinksShort   = "Repair the links in the bin directory"
	MsgExportShort     = "Export all environments installed by condax"
	MsgImportShort     = "Import environments exported by condax"
	MsgEnsurePathShort = "Ensure the links directory is on $PATH"
	MsgConfigShort     = "Print the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Output messages
	MsgInstalled       = "Installed %s"
	MsgRemoved         = "Removed %s"
	MsgInjected        = "Injected %s into %s"
	MsgUninjected      = "Uninjected %s from %s"
	MsgUpdateChanged   = "%s: %s -> %s (%s)"
	MsgUpdateUnchanged = "%s: %s (no change)"
	MsgUpdateRecreated = "%s: environment recreated"
	MsgLinksCreated    = "  linked: %s"
	MsgLinksRemoved    = "  unlinked: %s"
	MsgFixLinksPruned  = "Pruned %d stale and %d dangling links"
	MsgFixLinksLinked  = "Relinked %d apps"
	MsgRegistered      = "Registered %d environments in %s"
	MsgExported        = "Exported %d environments to %s"
	MsgImported        = "Imported %d environments from %s"
	MsgAlreadyOnPath   = "%s is already on PATH"
	MsgPathUpdated     = "Added %s to PATH in %s\nRestart your shell or source the file to use it."
	MsgPathNothingToDo = "%s is already set up in your shell startup files"
	MsgVersionFormat   = "condax version %s\n  commit: %s\n  built:  %s"

	// Error messages
	MsgErrNoPackages     = "no packages specified. To update all packages use --all"
	MsgErrPackagesAndAll = "cannot specify packages and --all"
	MsgErrLoadConfig     = "failed to load configuration: %w"
	MsgErrUnknownShell   = "unknown shell: %s"

	// Flag descriptions
	MsgFlagVerbose         = "Raise verbosity level (-v DEBUG, -vv TRACE)"
	MsgFlagQuiet           = "Decrease verbosity level (-q WARN, -qq ERROR)"
	MsgFlagConfig          = "Custom path to a condax config file in YAML or TOML"
	MsgFlagChannel         = "Use the channels specified to install, ahead of the configured ones"
	MsgFlagForce           = "Modify existing environment and files in the bin directory"
	MsgFlagFile            = "Create the environment from a conda environment file in YAML"
	MsgFlagEnvName         = "Existing environment to operate on"
	MsgFlagIncludeApps     = "Make apps from the injected packages available"
	MsgFlagAll             = "Update all packages installed by condax"
	MsgFlagUpdateSpecs     = "Update based on the provided specifications"
	MsgFlagShort           = "Print package names and versions only"
	MsgFlagIncludeInjected = "Show packages injected into each environment"
	MsgFlagFormat          = "Output format: auto, term, text or json"
	MsgFlagExportDir       = "Directory to export to"
	MsgFlagConfigFormat    = "Output format: yaml or toml"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/install-long.txt
	msgInstallLongRaw string
	MsgInstallLong    = strings.TrimSpace(msgInstallLongRaw)

	//go:embed msgs/install-example.txt
	msgInstallExampleRaw string
	MsgInstallExample    = strings.TrimRight(msgInstallExampleRaw, "\n")

	//go:embed msgs/remove-long.txt
	msgRemoveLongRaw string
	MsgRemoveLong    = strings.TrimSpace(msgRemoveLongRaw)

	//go:embed msgs/inject-long.txt
	msgInjectLongRaw string
	MsgInjectLong    = strings.TrimSpace(msgInjectLongRaw)

	//go:embed msgs/inject-example.txt
	msgInjectExampleRaw string
	MsgInjectExample    = strings.TrimRight(msgInjectExampleRaw, "\n")

	//go:embed msgs/uninject-long.txt
	msgUninjectLongRaw string
	MsgUninjectLong    = strings.TrimSpace(msgUninjectLongRaw)

	//go:embed msgs/update-long.txt
	msgUpdateLongRaw string
	MsgUpdateLong    = strings.TrimSpace(msgUpdateLongRaw)

	//go:embed msgs/update-example.txt
	msgUpdateExampleRaw string
	MsgUpdateExample    = strings.TrimRight(msgUpdateExampleRaw, "\n")

	//go:embed msgs/list-long.txt
	msgListLongRaw string
	MsgListLong    = strings.TrimSpace(msgListLongRaw)

	//go:embed msgs/fixlinks-long.txt
	msgFixLinksLongRaw string
	MsgFixLinksLong    = strings.TrimSpace(msgFixLinksLongRaw)

	//go:embed msgs/export-long.txt
	msgExportLongRaw string
	MsgExportLong    = strings.TrimSpace(msgExportLongRaw)

	//go:embed msgs/import-long.txt
	msgImportLongRaw string
	MsgImportLong    = strings.TrimSpace(msgImportLongRaw)

	//go:embed msgs/ensurepath-long.txt
	msgEnsurePathLongRaw string
	MsgEnsurePathLong    = strings.TrimSpace(msgEnsurePathLongRaw)

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
