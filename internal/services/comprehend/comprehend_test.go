package comprehend

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asad/sandstack/internal/core"
	"github.com/asad/sandstack/internal/logging"
)

// setupTestService creates a comprehend service mounted on a fresh router.
func setupTestService(t *testing.T) (chi.Router, Backends) {
	t.Helper()
	backends := NewBackends()
	service := New(backends, logging.NewNop())
	router := chi.NewRouter()
	service.RegisterRoutes(router)
	return router, backends
}

// call invokes one JSON-protocol operation against the router.
func call(t *testing.T, router chi.Router, operation string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/", bytes.NewReader(payload))
	req.Header.Set("X-Amz-Target", targetPrefix+"."+operation)
	req.Header.Set("Content-Type", "application/x-amz-json-1.1")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
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

func createRecognizer(t *testing.T, router chi.Router, name string, headers map[string]string) string {
	t.Helper()
	w := call(t, router, "CreateEntityRecognizer", map[string]interface{}{
		"RecognizerName":    name,
		"VersionName":       "terraform-20221003201727469000000002",
		"DataAccessRoleArn": "iam_role_arn",
		"LanguageCode":      "en",
		"InputDataConfig": map[string]interface{}{
			"DataFormat": "COMPREHEND_CSV",
			"EntityTypes": []map[string]string{
				{"Type": "ENGINEER"},
			},
		},
		"Tags": []map[string]string{{"Key": "k1", "Value": "v1"}},
	}, headers)
	require.Equal(t, http.StatusOK, w.Code)
	arn, ok := decode(t, w)["EntityRecognizerArn"].(string)
	require.True(t, ok)
	return arn
}

func TestCreateAndDescribeEntityRecognizer(t *testing.T) {
	router, _ := setupTestService(t)

	arn := createRecognizer(t, router, "tf-acc-test", nil)
	assert.True(t, strings.HasPrefix(arn, "arn:aws:comprehend:us-east-1:123456789012:entity-recognizer/tf-acc-test"))
	assert.True(t, strings.HasSuffix(arn, "/version/terraform-20221003201727469000000002"))

	w := call(t, router, "DescribeEntityRecognizer", map[string]string{"EntityRecognizerArn": arn}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	props, ok := decode(t, w)["EntityRecognizerProperties"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, arn, props["EntityRecognizerArn"])
	assert.Equal(t, "en", props["LanguageCode"])
	assert.Equal(t, "iam_role_arn", props["DataAccessRoleArn"])
	assert.Equal(t, StatusTrained, props["Status"])
}

func TestDescribeUnknownEntityRecognizer(t *testing.T) {
	router, _ := setupTestService(t)

	w := call(t, router, "DescribeEntityRecognizer", map[string]string{
		"EntityRecognizerArn": "arn:aws:comprehend:us-east-1:123456789012:entity-recognizer/unknown",
	}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ResourceNotFoundException", w.Header().Get("X-Amzn-Errortype"))
}

func TestListEntityRecognizersWithNameFilter(t *testing.T) {
	router, _ := setupTestService(t)

	createRecognizer(t, router, "r1", nil)
	createRecognizer(t, router, "r2", nil)

	w := call(t, router, "ListEntityRecognizers", map[string]interface{}{
		"Filter": map[string]string{"RecognizerName": "r2"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	list, ok := decode(t, w)["EntityRecognizerPropertiesList"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)

	w = call(t, router, "ListEntityRecognizers", map[string]interface{}{}, nil)
	list, ok = decode(t, w)["EntityRecognizerPropertiesList"].([]interface{})
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestDeleteEntityRecognizerIsIdempotent(t *testing.T) {
	router, _ := setupTestService(t)

	arn := createRecognizer(t, router, "doomed", nil)

	for i := 0; i < 2; i++ {
		w := call(t, router, "DeleteEntityRecognizer", map[string]string{"EntityRecognizerArn": arn}, nil)
		require.Equal(t, http.StatusOK, w.Code, "delete attempt %d", i+1)
	}

	w := call(t, router, "ListEntityRecognizers", map[string]interface{}{}, nil)
	list := decode(t, w)["EntityRecognizerPropertiesList"].([]interface{})
	assert.Empty(t, list)
}

func TestRegionIsolation(t *testing.T) {
	router, _ := setupTestService(t)

	createRecognizer(t, router, "foo", map[string]string{core.HeaderRegion: "us-east-1"})

	w := call(t, router, "ListEntityRecognizers", map[string]interface{}{}, map[string]string{
		core.HeaderRegion: "us-east-2",
	})
	list := decode(t, w)["EntityRecognizerPropertiesList"].([]interface{})
	assert.Empty(t, list)
}

func TestTagLifecycle(t *testing.T) {
	router, _ := setupTestService(t)

	arn := createRecognizer(t, router, "tagged", nil)

	w := call(t, router, "ListTagsForResource", map[string]string{"ResourceArn": arn}, nil)
	resp := decode(t, w)
	assert.Equal(t, arn, resp["ResourceArn"])
	tags := resp["Tags"].([]interface{})
	require.Len(t, tags, 1)

	w = call(t, router, "TagResource", map[string]interface{}{
		"ResourceArn": arn,
		"Tags":        []map[string]string{{"Key": "k2", "Value": "v2"}},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, router, "UntagResource", map[string]interface{}{
		"ResourceArn": arn,
		"TagKeys":     []string{"k1"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, router, "ListTagsForResource", map[string]string{"ResourceArn": arn}, nil)
	tags = decode(t, w)["Tags"].([]interface{})
	require.Len(t, tags, 1)
	tag := tags[0].(map[string]interface{})
	assert.Equal(t, "k2", tag["Key"])
	assert.Equal(t, "v2", tag["Value"])
}

func TestStopTrainingDocumentClassifier(t *testing.T) {
	router, _ := setupTestService(t)

	w := call(t, router, "CreateDocumentClassifier", map[string]interface{}{
		"DocumentClassifierName": "classy",
		"VersionName":            "v1",
		"LanguageCode":           "en",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	arn := decode(t, w)["DocumentClassifierArn"].(string)

	w = call(t, router, "DescribeDocumentClassifier", map[string]string{"DocumentClassifierArn": arn}, nil)
	props := decode(t, w)["DocumentClassifierProperties"].(map[string]interface{})
	require.Equal(t, StatusTraining, props["Status"])

	w = call(t, router, "StopTrainingDocumentClassifier", map[string]string{"DocumentClassifierArn": arn}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, router, "DescribeDocumentClassifier", map[string]string{"DocumentClassifierArn": arn}, nil)
	props = decode(t, w)["DocumentClassifierProperties"].(map[string]interface{})
	assert.Equal(t, StatusStopRequested, props["Status"])

	// A second stop is a no-op: the status precondition no longer holds.
	w = call(t, router, "StopTrainingDocumentClassifier", map[string]string{"DocumentClassifierArn": arn}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = call(t, router, "DescribeDocumentClassifier", map[string]string{"DocumentClassifierArn": arn}, nil)
	props = decode(t, w)["DocumentClassifierProperties"].(map[string]interface{})
	assert.Equal(t, StatusStopRequested, props["Status"])
}

func TestListDocumentClassifiersByStatus(t *testing.T) {
	router, _ := setupTestService(t)

	w := call(t, router, "CreateDocumentClassifier", map[string]interface{}{
		"DocumentClassifierName": "c1", "VersionName": "v1", "LanguageCode": "en",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, router, "ListDocumentClassifiers", map[string]interface{}{
		"Filter": map[string]string{"Status": StatusTraining},
	}, nil)
	list := decode(t, w)["DocumentClassifierPropertiesList"].([]interface{})
	assert.Len(t, list, 1)

	w = call(t, router, "ListDocumentClassifiers", map[string]interface{}{
		"Filter": map[string]string{"Status": StatusStopRequested},
	}, nil)
	list = decode(t, w)["DocumentClassifierPropertiesList"].([]interface{})
	assert.Empty(t, list)
}

func TestEndpointLifecycle(t *testing.T) {
	router, _ := setupTestService(t)

	w := call(t, router, "CreateEndpoint", map[string]interface{}{
		"EndpointName":          "ep1",
		"ModelArn":              "arn:aws:comprehend:us-east-1:123456789012:document-classifier/classy/v1",
		"DesiredInferenceUnits": 2,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	arn := resp["EndpointArn"].(string)
	assert.NotEmpty(t, resp["ModelArn"])

	w = call(t, router, "DescribeEndpoint", map[string]string{"EndpointArn": arn}, nil)
	props := decode(t, w)["EndpointProperties"].(map[string]interface{})
	assert.Equal(t, StatusInService, props["Status"])
	assert.Equal(t, float64(2), props["DesiredInferenceUnits"])

	w = call(t, router, "DeleteEndpoint", map[string]string{"EndpointArn": arn}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, router, "DescribeEndpoint", map[string]string{"EndpointArn": arn}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlywheelIteration(t *testing.T) {
	router, _ := setupTestService(t)

	w := call(t, router, "CreateFlywheel", map[string]interface{}{
		"FlywheelName":   "wheel",
		"ActiveModelArn": "arn:aws:comprehend:us-east-1:123456789012:document-classifier/classy/v1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	arn := decode(t, w)["FlywheelArn"].(string)

	w = call(t, router, "StartFlywheelIteration", map[string]string{"FlywheelArn": arn}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, arn, resp["FlywheelArn"])
	assert.Contains(t, resp, "FlywheelIterationId")

	w = call(t, router, "StartFlywheelIteration", map[string]string{
		"FlywheelArn": "arn:aws:comprehend:us-east-1:123456789012:flywheel/missing",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ResourceNotFoundException", w.Header().Get("X-Amzn-Errortype"))
}

func TestDetectPiiEntities(t *testing.T) {
	router, _ := setupTestService(t)

	w := call(t, router, "DetectPiiEntities", map[string]string{
		"Text": "Hello Alice", "LanguageCode": "en",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	entities := decode(t, w)["Entities"].([]interface{})
	require.Len(t, entities, 3)
	first := entities[0].(map[string]interface{})
	assert.Equal(t, "NAME", first["Type"])
}

func TestDetectPiiEntitiesRejectsUnsupportedLanguage(t *testing.T) {
	router, _ := setupTestService(t)

	w := call(t, router, "DetectPiiEntities", map[string]string{
		"Text": "Bonjour", "LanguageCode": "fr",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ValidationException", w.Header().Get("X-Amzn-Errortype"))
}

func TestDetectSentimentSizeLimit(t *testing.T) {
	router, _ := setupTestService(t)

	w := call(t, router, "DetectSentiment", map[string]string{
		"Text": strings.Repeat("a", sentimentTextSizeLimit+1), "LanguageCode": "en",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "TextSizeLimitExceededException", w.Header().Get("X-Amzn-Errortype"))

	w = call(t, router, "DetectSentiment", map[string]string{
		"Text": "fine", "LanguageCode": "en",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "NEUTRAL", decode(t, w)["Sentiment"])
}

func TestDetectKeyPhrases(t *testing.T) {
	router, _ := setupTestService(t)

	w := call(t, router, "DetectKeyPhrases", map[string]string{
		"Text": "some text", "LanguageCode": "es",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	phrases := decode(t, w)["KeyPhrases"].([]interface{})
	assert.Len(t, phrases, 3)
}

func TestBackendsDumpState(t *testing.T) {
	router, backends := setupTestService(t)

	createRecognizer(t, router, "dumped", nil)

	dump, ok := backends.DumpState().(map[string][]interface{})
	require.True(t, ok)
	assert.Len(t, dump["EntityRecognizer"], 1)
	assert.Empty(t, dump["Endpoint"])
}
