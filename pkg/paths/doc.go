// Package paths provides centralized path handling for dotlink.
//
// It handles:
//
//   - Dotfiles repository root discovery
//   - Home expansion for deployment targets ("~/.vimrc", ".vimrc")
//   - Confinement of dot sources to the repository
//   - XDG locations for the configuration document
//
// # Environment Variables
//
//   - DOTFILES_ROOT: repository root when the configuration does not set dotfiles_dir
//   - DOTLINK_CONFIG: explicit configuration document path
//   - XDG_CONFIG_HOME: default configuration location ($XDG_CONFIG_HOME/dotlink/dotlink.toml)
//
// # Usage
//
//	p, err := paths.New("~/dotfiles")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	src, err := p.Source("git/gitconfig")  // /home/user/dotfiles/git/gitconfig
//	dst := p.Target(".gitconfig")           // /home/user/.gitconfig
//	managed := p.IsInDotfiles(dst)          // false
package paths
