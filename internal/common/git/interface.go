package git

// Syncer defines the repository-sync operations consumed by bucket
// add/update flows. This interface allows for mocking git in tests.
type Syncer interface {
	// Clone clones a remote repository into dest
	Clone(url, dest string) error

	// IsRepo reports whether dir is the top of a git working tree
	IsRepo(dir string) bool

	// Fetch fetches changes from the default remote
	Fetch(dir string) error

	// Pull fast-forwards the working tree from the default remote
	Pull(dir string) error

	// CommitsSinceRemote returns the subject lines of commits present on
	// the remote tracking branch but not yet in the working tree
	CommitsSinceRemote(dir string) ([]string, error)

	// Remote returns the fetch URL of the default remote, if any
	Remote(dir string) (string, error)
}
