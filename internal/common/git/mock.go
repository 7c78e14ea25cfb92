package git

// Mock implements Syncer for testing.
// Each method can be configured with a custom function to control behavior.
type Mock struct {
	CloneFunc              func(url, dest string) error
	IsRepoFunc             func(dir string) bool
	FetchFunc              func(dir string) error
	PullFunc               func(dir string) error
	CommitsSinceRemoteFunc func(dir string) ([]string, error)
	RemoteFunc             func(dir string) (string, error)
}

// NewMock creates a new Mock syncer
func NewMock() *Mock {
	return &Mock{}
}

// Clone clones a remote repository into dest
func (m *Mock) Clone(url, dest string) error {
	if m.CloneFunc != nil {
		return m.CloneFunc(url, dest)
	}
	return nil
}

// IsRepo reports whether dir is the top of a git working tree
func (m *Mock) IsRepo(dir string) bool {
	if m.IsRepoFunc != nil {
		return m.IsRepoFunc(dir)
	}
	return true
}

// Fetch fetches changes from the default remote
func (m *Mock) Fetch(dir string) error {
	if m.FetchFunc != nil {
		return m.FetchFunc(dir)
	}
	return nil
}

// Pull fast-forwards the working tree from the default remote
func (m *Mock) Pull(dir string) error {
	if m.PullFunc != nil {
		return m.PullFunc(dir)
	}
	return nil
}

// CommitsSinceRemote returns pending remote commit subjects
func (m *Mock) CommitsSinceRemote(dir string) ([]string, error) {
	if m.CommitsSinceRemoteFunc != nil {
		return m.CommitsSinceRemoteFunc(dir)
	}
	return nil, nil
}

// Remote returns the fetch URL of the default remote
func (m *Mock) Remote(dir string) (string, error) {
	if m.RemoteFunc != nil {
		return m.RemoteFunc(dir)
	}
	return "", nil
}

// Ensure Mock implements Syncer interface
var _ Syncer = (*Mock)(nil)
