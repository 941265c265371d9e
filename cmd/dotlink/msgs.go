package dotlink

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort       = "Deploy a dotfiles repository with profiles and templates"
	MsgLinkShort       = "Link and render the active dots"
	MsgUnlinkShort     = "Remove what link deployed"
	MsgStatusShort     = "Show what is deployed and what link would change"
	MsgVarsShort       = "Show the resolved template variables"
	MsgProfilesShort   = "List profiles and their imports"
	MsgWatchShort      = "Re-link whenever the repository changes"
	MsgInitShort       = "Write a starter configuration file"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	MsgInitWritten = "Wrote starter configuration to %s"
	MsgWatching    = "Watching the repository for changes (Ctrl-C to stop)"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Configuration file (default $DOTLINK_CONFIG or the XDG config location)"
	MsgFlagDotfilesDir = "Repository root, overriding the configuration"
	MsgFlagFormat      = "Output format: auto, term, text or json"
	MsgFlagDryRun      = "Report what would change without changing anything"
	MsgFlagForce       = "Replace regular files and foreign links at targets"
	MsgFlagNoHooks     = "Do not run any hooks"
	MsgFlagPrune       = "Remove repository links of dots that are no longer active"
	MsgFlagHookTimeout = "Limit for each hook command (0 means none)"
	MsgFlagDebounce    = "Quiet period before re-linking"
	MsgFlagIgnore      = "Glob, relative to the repository, whose changes are ignored (repeatable)"
	MsgFlagOverwrite   = "Overwrite an existing configuration file"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/link-long.txt
	msgLinkLongRaw string
	MsgLinkLong    = strings.TrimSpace(msgLinkLongRaw)

	//go:embed msgs/link-example.txt
	msgLinkExampleRaw string
	MsgLinkExample    = strings.TrimRight(msgLinkExampleRaw, "\n")

	//go:embed msgs/unlink-long.txt
	msgUnlinkLongRaw string
	MsgUnlinkLong    = strings.TrimSpace(msgUnlinkLongRaw)

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)

	//go:embed msgs/vars-long.txt
	msgVarsLongRaw string
	MsgVarsLong    = strings.TrimSpace(msgVarsLongRaw)

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/init-long.txt
	msgInitLongRaw string
	MsgInitLong    = strings.TrimSpace(msgInitLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
