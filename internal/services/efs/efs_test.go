package efs

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asad/sandstack/internal/core"
	"github.com/asad/sandstack/internal/logging"
)

func setupTestService(t *testing.T) chi.Router {
	t.Helper()
	service := New(NewBackends(), logging.NewNop())
	router := chi.NewRouter()
	service.RegisterRoutes(router)
	return router
}

func call(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createFS(t *testing.T, router chi.Router, token string) string {
	t.Helper()
	w := call(t, router, "POST", apiVersion+"/file-systems", map[string]interface{}{
		"CreationToken": token,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id, ok := decode(t, w)["FileSystemId"].(string)
	require.True(t, ok)
	return id
}

func TestCreateFileSystem(t *testing.T) {
	router := setupTestService(t)

	w := call(t, router, "POST", apiVersion+"/file-systems", map[string]interface{}{
		"CreationToken": "token-1",
		"Encrypted":     true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode(t, w)
	assert.Regexp(t, `^fs-[0-9a-f]{8}$`, resp["FileSystemId"])
	assert.Equal(t, "token-1", resp["CreationToken"])
	assert.Equal(t, "available", resp["LifeCycleState"])
	assert.Equal(t, "generalPurpose", resp["PerformanceMode"])
	assert.Equal(t, core.DefaultAccountID, resp["OwnerId"])
	assert.Equal(t, true, resp["Encrypted"])
	arn := resp["FileSystemArn"].(string)
	assert.Contains(t, arn, "arn:aws:elasticfilesystem:us-east-1:123456789012:file-system/fs-")
}

func TestCreateFileSystemRequiresToken(t *testing.T) {
	router := setupTestService(t)

	w := call(t, router, "POST", apiVersion+"/file-systems", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ValidationException", w.Header().Get("X-Amzn-Errortype"))
}

func TestCreationTokenIsIdempotencyKey(t *testing.T) {
	router := setupTestService(t)

	id := createFS(t, router, "reused")

	w := call(t, router, "POST", apiVersion+"/file-systems", map[string]interface{}{
		"CreationToken": "reused",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "FileSystemAlreadyExists", w.Header().Get("X-Amzn-Errortype"))

	resp := decode(t, w)
	assert.Equal(t, fmt.Sprintf("File system with creation token 'reused' already exists: %s", id), resp["message"])
}

func TestDescribeFileSystems(t *testing.T) {
	router := setupTestService(t)

	id1 := createFS(t, router, "t1")
	createFS(t, router, "t2")

	w := call(t, router, "GET", apiVersion+"/file-systems", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["FileSystems"].([]interface{}), 2)

	w = call(t, router, "GET", apiVersion+"/file-systems?FileSystemId="+id1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["FileSystems"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, id1, list[0].(map[string]interface{})["FileSystemId"])

	w = call(t, router, "GET", apiVersion+"/file-systems?CreationToken=t2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["FileSystems"].([]interface{}), 1)

	// Unknown token filters to empty, unknown id is a fault.
	w = call(t, router, "GET", apiVersion+"/file-systems?CreationToken=nope", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["FileSystems"])

	w = call(t, router, "GET", apiVersion+"/file-systems?FileSystemId=fs-deadbeef", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FileSystemNotFound", w.Header().Get("X-Amzn-Errortype"))
	assert.Equal(t, "File system 'fs-deadbeef' does not exist.", decode(t, w)["message"])
}

func TestDeleteFileSystem(t *testing.T) {
	router := setupTestService(t)

	id := createFS(t, router, "doomed")

	w := call(t, router, "DELETE", apiVersion+"/file-systems/"+id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = call(t, router, "GET", apiVersion+"/file-systems", nil)
	assert.Empty(t, decode(t, w)["FileSystems"])

	// Unlike the token filter, deleting twice is a fault.
	w = call(t, router, "DELETE", apiVersion+"/file-systems/"+id, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File system '"+id+"' does not exist.", decode(t, w)["message"])
}

func TestDeleteFileSystemReleasesToken(t *testing.T) {
	router := setupTestService(t)

	id := createFS(t, router, "recycled")
	w := call(t, router, "DELETE", apiVersion+"/file-systems/"+id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// The token can be reused once its file system is gone.
	createFS(t, router, "recycled")
}

func TestLifecycleConfiguration(t *testing.T) {
	router := setupTestService(t)

	id := createFS(t, router, "lc")

	w := call(t, router, "GET", apiVersion+"/file-systems/"+id+"/lifecycle-configuration", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["LifecyclePolicies"])

	w = call(t, router, "PUT", apiVersion+"/file-systems/"+id+"/lifecycle-configuration", map[string]interface{}{
		"LifecyclePolicies": []LifecyclePolicy{
			{TransitionToIA: "AFTER_30_DAYS"},
			{TransitionToPrimaryStorageClass: "AFTER_1_ACCESS"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, router, "GET", apiVersion+"/file-systems/"+id+"/lifecycle-configuration", nil)
	policies := decode(t, w)["LifecyclePolicies"].([]interface{})
	require.Len(t, policies, 2)
	assert.Equal(t, "AFTER_30_DAYS", policies[0].(map[string]interface{})["TransitionToIA"])

	// Putting an empty list clears the configuration.
	w = call(t, router, "PUT", apiVersion+"/file-systems/"+id+"/lifecycle-configuration", map[string]interface{}{
		"LifecyclePolicies": []LifecyclePolicy{},
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = call(t, router, "GET", apiVersion+"/file-systems/"+id+"/lifecycle-configuration", nil)
	assert.Empty(t, decode(t, w)["LifecyclePolicies"])

	w = call(t, router, "GET", apiVersion+"/file-systems/fs-deadbeef/lifecycle-configuration", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FileSystemNotFound", w.Header().Get("X-Amzn-Errortype"))
}

func TestResourceTags(t *testing.T) {
	router := setupTestService(t)

	id := createFS(t, router, "tagged")

	w := call(t, router, "POST", apiVersion+"/resource-tags/"+id, map[string]interface{}{
		"Tags": []map[string]string{
			{"Key": "env", "Value": "test"},
			{"Key": "team", "Value": "storage"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, router, "GET", apiVersion+"/resource-tags/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tags := decode(t, w)["Tags"].([]interface{})
	require.Len(t, tags, 2)

	w = call(t, router, "DELETE", apiVersion+"/resource-tags/"+id+"?tagKeys=env", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, router, "GET", apiVersion+"/resource-tags/"+id, nil)
	tags = decode(t, w)["Tags"].([]interface{})
	require.Len(t, tags, 1)
	assert.Equal(t, "team", tags[0].(map[string]interface{})["Key"])

	w = call(t, router, "GET", apiVersion+"/resource-tags/fs-deadbeef", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FileSystemNotFound", w.Header().Get("X-Amzn-Errortype"))
}

func TestDescribeIncludesTags(t *testing.T) {
	router := setupTestService(t)

	w := call(t, router, "POST", apiVersion+"/file-systems", map[string]interface{}{
		"CreationToken": "with-tags",
		"Tags":          []map[string]string{{"Key": "Name", "Value": "shared"}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tags := decode(t, w)["Tags"].([]interface{})
	require.Len(t, tags, 1)
	assert.Equal(t, "Name", tags[0].(map[string]interface{})["Key"])
}

func TestRegionIsolation(t *testing.T) {
	router := setupTestService(t)

	createFS(t, router, "east-only")

	req := httptest.NewRequest("GET", apiVersion+"/file-systems", nil)
	req.Header.Set(core.HeaderRegion, "eu-west-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["FileSystems"])
}
