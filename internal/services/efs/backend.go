package efs

import (
	"net/http"
	"sort"
	"sync"

	"github.com/asad/sandstack/internal/core"
	"github.com/asad/sandstack/internal/tagging"
)

// fileSystemNotFound is the service-specific not-found fault.
func fileSystemNotFound(id string) *core.APIError {
	return core.NewAPIError("FileSystemNotFound", http.StatusBadRequest,
		"File system '%s' does not exist.", id)
}

// Backend holds all file systems for one (account, region) pair.
type Backend struct {
	accountID string
	region    string

	mu          sync.Mutex
	fileSystems map[string]*FileSystem
	byToken     map[string]string
	tagger      *tagging.Store
}

// NewBackend creates an empty backend for one account/region scope.
func NewBackend(accountID, region string) *Backend {
	return &Backend{
		accountID:   accountID,
		region:      region,
		fileSystems: make(map[string]*FileSystem),
		byToken:     make(map[string]string),
		tagger:      tagging.NewStore(),
	}
}

type createFileSystemInput struct {
	CreationToken   string        `json:"CreationToken"`
	PerformanceMode string        `json:"PerformanceMode"`
	Encrypted       bool          `json:"Encrypted"`
	Tags            []tagging.Tag `json:"Tags"`
}

// CreateFileSystem creates a file system. The creation token is an
// idempotency key: reusing one is an already-exists fault that carries the
// existing file system id.
func (b *Backend) CreateFileSystem(in *createFileSystemInput) (*FileSystem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if in.CreationToken == "" {
		return nil, core.ValidationError("CreationToken is a required parameter.")
	}
	if existingID, ok := b.byToken[in.CreationToken]; ok {
		return nil, core.NewAPIError("FileSystemAlreadyExists", http.StatusConflict,
			"File system with creation token '%s' already exists: %s", in.CreationToken, existingID)
	}

	fs := newFileSystem(b.accountID, b.region, in)
	// Regenerate on the unlikely id collision.
	for {
		if _, taken := b.fileSystems[fs.ID]; !taken {
			break
		}
		fs.ID = newFileSystemID()
	}
	b.fileSystems[fs.ID] = fs
	b.byToken[in.CreationToken] = fs.ID
	if len(in.Tags) > 0 {
		b.tagger.Tag(fs.ID, in.Tags)
	}
	return fs, nil
}

// DescribeFileSystems returns all file systems, or the single one matching
// an id or creation-token equality filter. An unknown id is a fault; an
// unknown token yields an empty list.
func (b *Backend) DescribeFileSystems(fileSystemID, creationToken string) ([]*FileSystem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if fileSystemID != "" {
		fs, ok := b.fileSystems[fileSystemID]
		if !ok {
			return nil, fileSystemNotFound(fileSystemID)
		}
		return []*FileSystem{fs}, nil
	}

	if creationToken != "" {
		if id, ok := b.byToken[creationToken]; ok {
			return []*FileSystem{b.fileSystems[id]}, nil
		}
		return []*FileSystem{}, nil
	}

	out := make([]*FileSystem, 0, len(b.fileSystems))
	for _, fs := range b.fileSystems {
		out = append(out, fs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteFileSystem removes a file system and its tags. Deleting an unknown
// id is a fault, not a silent no-op.
func (b *Backend) DeleteFileSystem(fileSystemID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	fs, ok := b.fileSystems[fileSystemID]
	if !ok {
		return fileSystemNotFound(fileSystemID)
	}
	delete(b.fileSystems, fileSystemID)
	delete(b.byToken, fs.CreationToken)
	b.tagger.DeleteAll(fileSystemID)
	return nil
}

// PutLifecycleConfiguration replaces a file system's lifecycle policy list.
func (b *Backend) PutLifecycleConfiguration(fileSystemID string, policies []LifecyclePolicy) ([]LifecyclePolicy, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fs, ok := b.fileSystems[fileSystemID]
	if !ok {
		return nil, fileSystemNotFound(fileSystemID)
	}
	if policies == nil {
		policies = []LifecyclePolicy{}
	}
	fs.LifecyclePolicies = policies
	return fs.LifecyclePolicies, nil
}

// DescribeLifecycleConfiguration returns the current policy list, empty for
// a freshly created file system.
func (b *Backend) DescribeLifecycleConfiguration(fileSystemID string) ([]LifecyclePolicy, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fs, ok := b.fileSystems[fileSystemID]
	if !ok {
		return nil, fileSystemNotFound(fileSystemID)
	}
	return fs.LifecyclePolicies, nil
}

func (b *Backend) TagResource(fileSystemID string, tags []tagging.Tag) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.fileSystems[fileSystemID]; !ok {
		return fileSystemNotFound(fileSystemID)
	}
	b.tagger.Tag(fileSystemID, tags)
	return nil
}

func (b *Backend) UntagResource(fileSystemID string, keys []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.fileSystems[fileSystemID]; !ok {
		return fileSystemNotFound(fileSystemID)
	}
	b.tagger.Untag(fileSystemID, keys)
	return nil
}

func (b *Backend) ListTagsForResource(fileSystemID string) ([]tagging.Tag, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.fileSystems[fileSystemID]; !ok {
		return nil, fileSystemNotFound(fileSystemID)
	}
	return b.tagger.List(fileSystemID), nil
}

// tags returns a file system's tags without the existence check, for
// embedding into describe responses.
func (b *Backend) tags(fileSystemID string) []tagging.Tag {
	return b.tagger.List(fileSystemID)
}
