package efs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/asad/sandstack/internal/core"
	"github.com/asad/sandstack/internal/logging"
	"github.com/asad/sandstack/internal/tagging"
)

const serviceName = "efs"

// apiVersion prefixes every route, matching the real REST layout.
const apiVersion = "/2015-02-01"

// Backends is the per-(account, region) backend dict for this service.
type Backends struct {
	*core.BackendDict[*Backend]
}

// NewBackends creates the backend dict for this service.
func NewBackends(opts ...core.DictOption) Backends {
	return Backends{core.NewBackendDict(serviceName, NewBackend, opts...)}
}

// DumpState renders every live file system.
func (b Backends) DumpState() interface{} {
	dump := map[string][]interface{}{
		"FileSystem": {},
	}
	b.Each(func(_, _ string, backend *Backend) {
		fileSystems, err := backend.DescribeFileSystems("", "")
		if err != nil {
			return
		}
		for _, fs := range fileSystems {
			dump["FileSystem"] = append(dump["FileSystem"], fs.describe(backend.tags(fs.ID)))
		}
	})
	return dump
}

// Service is the EFS emulator. Unlike the JSON-target services it follows
// the REST shape of the real API, so routes carry the resource id in the
// path rather than an operation name in a header.
type Service struct {
	backends Backends
	logger   logging.Logger
}

// New creates the service.
func New(backends Backends, logger logging.Logger) *Service {
	return &Service{backends: backends, logger: logger}
}

// Name returns the service identifier.
func (s *Service) Name() string { return serviceName }

// Backends exposes the backend dict so callers can register it for reset.
func (s *Service) Backends() Backends { return s.backends }

// RegisterRoutes sets up the REST routes:
//   - POST   /2015-02-01/file-systems
//   - GET    /2015-02-01/file-systems
//   - DELETE /2015-02-01/file-systems/{fileSystemID}
//   - PUT    /2015-02-01/file-systems/{fileSystemID}/lifecycle-configuration
//   - GET    /2015-02-01/file-systems/{fileSystemID}/lifecycle-configuration
//   - POST   /2015-02-01/resource-tags/{fileSystemID}
//   - GET    /2015-02-01/resource-tags/{fileSystemID}
//   - DELETE /2015-02-01/resource-tags/{fileSystemID}
func (s *Service) RegisterRoutes(router chi.Router) {
	router.Post(apiVersion+"/file-systems", s.handleCreateFileSystem)
	router.Get(apiVersion+"/file-systems", s.handleDescribeFileSystems)
	router.Delete(apiVersion+"/file-systems/{fileSystemID}", s.handleDeleteFileSystem)
	router.Put(apiVersion+"/file-systems/{fileSystemID}/lifecycle-configuration", s.handlePutLifecycleConfiguration)
	router.Get(apiVersion+"/file-systems/{fileSystemID}/lifecycle-configuration", s.handleDescribeLifecycleConfiguration)
	router.Post(apiVersion+"/resource-tags/{fileSystemID}", s.handleTagResource)
	router.Get(apiVersion+"/resource-tags/{fileSystemID}", s.handleListTagsForResource)
	router.Delete(apiVersion+"/resource-tags/{fileSystemID}", s.handleUntagResource)
}

// backend resolves the caller's backend scope from the request headers.
func (s *Service) backend(r *http.Request) (*Backend, error) {
	accountID := core.ResolveAccountID(r, core.DefaultAccountID)
	region := core.ResolveRegion(r, core.DefaultRegion)
	return s.backends.Get(accountID, region)
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", logging.ErrorField(err))
	}
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	apiErr, ok := err.(*core.APIError)
	if !ok {
		s.logger.Error("request failed", logging.ErrorField(err))
		apiErr = core.NewAPIError("InternalError", http.StatusInternalServerError, "internal failure")
	}
	core.WriteFault(w, apiErr)
}

func (s *Service) handleCreateFileSystem(w http.ResponseWriter, r *http.Request) {
	backend, err := s.backend(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var in createFileSystemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, core.NewAPIError("BadRequest", http.StatusBadRequest, "malformed request body"))
		return
	}
	defer r.Body.Close()

	fs, err := backend.CreateFileSystem(&in)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("file system created",
		logging.String("file_system_id", fs.ID),
		logging.String("creation_token", fs.CreationToken),
	)
	s.writeJSON(w, http.StatusCreated, fs.describe(backend.tags(fs.ID)))
}

func (s *Service) handleDescribeFileSystems(w http.ResponseWriter, r *http.Request) {
	backend, err := s.backend(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	fileSystemID := r.URL.Query().Get("FileSystemId")
	creationToken := r.URL.Query().Get("CreationToken")

	fileSystems, err := backend.DescribeFileSystems(fileSystemID, creationToken)
	if err != nil {
		s.writeError(w, err)
		return
	}

	descriptions := make([]fileSystemDescription, 0, len(fileSystems))
	for _, fs := range fileSystems {
		descriptions = append(descriptions, fs.describe(backend.tags(fs.ID)))
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"FileSystems": descriptions})
}

func (s *Service) handleDeleteFileSystem(w http.ResponseWriter, r *http.Request) {
	backend, err := s.backend(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	fileSystemID := chi.URLParam(r, "fileSystemID")
	if err := backend.DeleteFileSystem(fileSystemID); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("file system deleted", logging.String("file_system_id", fileSystemID))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handlePutLifecycleConfiguration(w http.ResponseWriter, r *http.Request) {
	backend, err := s.backend(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	fileSystemID := chi.URLParam(r, "fileSystemID")

	var in struct {
		LifecyclePolicies []LifecyclePolicy `json:"LifecyclePolicies"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, core.NewAPIError("BadRequest", http.StatusBadRequest, "malformed request body"))
		return
	}
	defer r.Body.Close()

	policies, err := backend.PutLifecycleConfiguration(fileSystemID, in.LifecyclePolicies)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"LifecyclePolicies": policies})
}

func (s *Service) handleDescribeLifecycleConfiguration(w http.ResponseWriter, r *http.Request) {
	backend, err := s.backend(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	fileSystemID := chi.URLParam(r, "fileSystemID")
	policies, err := backend.DescribeLifecycleConfiguration(fileSystemID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"LifecyclePolicies": policies})
}

func (s *Service) handleTagResource(w http.ResponseWriter, r *http.Request) {
	backend, err := s.backend(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	fileSystemID := chi.URLParam(r, "fileSystemID")

	var in struct {
		Tags []tagging.Tag `json:"Tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, core.NewAPIError("BadRequest", http.StatusBadRequest, "malformed request body"))
		return
	}
	defer r.Body.Close()

	if err := backend.TagResource(fileSystemID, in.Tags); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleListTagsForResource(w http.ResponseWriter, r *http.Request) {
	backend, err := s.backend(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	fileSystemID := chi.URLParam(r, "fileSystemID")
	tags, err := backend.ListTagsForResource(fileSystemID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"Tags": tags})
}

func (s *Service) handleUntagResource(w http.ResponseWriter, r *http.Request) {
	backend, err := s.backend(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	fileSystemID := chi.URLParam(r, "fileSystemID")
	keys := r.URL.Query()["tagKeys"]

	if err := backend.UntagResource(fileSystemID, keys); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Ensure Service implements the core interface.
var _ core.Service = (*Service)(nil)
