package comprehend

import (
	"github.com/go-chi/chi/v5"

	"github.com/asad/sandstack/internal/core"
	"github.com/asad/sandstack/internal/logging"
	"github.com/asad/sandstack/internal/tagging"
)

const (
	serviceName  = "comprehend"
	targetPrefix = "Comprehend_20171127"
)

// Backends is the per-(account, region) backend dict for this service.
// It satisfies the registry's reset contract and can dump its live state
// for the control API.
type Backends struct {
	*core.BackendDict[*Backend]
}

// NewBackends creates the backend dict for this service.
func NewBackends(opts ...core.DictOption) Backends {
	return Backends{core.NewBackendDict(serviceName, NewBackend, opts...)}
}

// DumpState renders every live resource grouped by resource kind.
func (b Backends) DumpState() interface{} {
	dump := map[string][]interface{}{
		"EntityRecognizer":   {},
		"DocumentClassifier": {},
		"Endpoint":           {},
		"Flywheel":           {},
	}
	b.Each(func(_, _ string, backend *Backend) {
		for _, r := range backend.ListEntityRecognizers(nil) {
			dump["EntityRecognizer"] = append(dump["EntityRecognizer"], r.properties())
		}
		for _, c := range backend.ListDocumentClassifiers(nil) {
			dump["DocumentClassifier"] = append(dump["DocumentClassifier"], c.properties())
		}
		for _, e := range backend.ListEndpoints(nil) {
			dump["Endpoint"] = append(dump["Endpoint"], e.properties())
		}
		for _, f := range backend.ListFlywheels(nil) {
			dump["Flywheel"] = append(dump["Flywheel"], f.properties())
		}
	})
	return dump
}

// Service is the Comprehend emulator: a JSON-protocol dispatcher over the
// per-scope backends.
type Service struct {
	backends   Backends
	dispatcher *core.Dispatcher
}

// New creates the service and its operation table.
func New(backends Backends, logger logging.Logger) *Service {
	s := &Service{backends: backends}
	s.dispatcher = core.NewDispatcher(targetPrefix, s.operations(), logger)
	return s
}

// Name returns the service identifier.
func (s *Service) Name() string { return serviceName }

// Backends exposes the backend dict so callers can register it for reset.
func (s *Service) Backends() Backends { return s.backends }

// RegisterRoutes mounts the JSON dispatcher. The whole service speaks
// x-amz-json-1.1 on a single POST endpoint.
func (s *Service) RegisterRoutes(router chi.Router) {
	router.Post("/", s.dispatcher.ServeHTTP)
}

// backend resolves the caller's backend scope.
func (s *Service) backend(c *core.Context) (*Backend, error) {
	return s.backends.Get(c.AccountID, c.Region)
}

// resourceFilter is the union of the equality filters supported by the list
// operations. Each operation consults only its own fields.
type resourceFilter struct {
	RecognizerName         string `json:"RecognizerName"`
	DocumentClassifierName string `json:"DocumentClassifierName"`
	ModelArn               string `json:"ModelArn"`
	Status                 string `json:"Status"`
}

type createEntityRecognizerInput struct {
	RecognizerName    string                 `json:"RecognizerName"`
	VersionName       string                 `json:"VersionName"`
	DataAccessRoleArn string                 `json:"DataAccessRoleArn"`
	Tags              []tagging.Tag          `json:"Tags"`
	InputDataConfig   map[string]interface{} `json:"InputDataConfig"`
	LanguageCode      string                 `json:"LanguageCode"`
	VolumeKmsKeyId    string                 `json:"VolumeKmsKeyId"`
	VpcConfig         map[string][]string    `json:"VpcConfig"`
	ModelKmsKeyId     string                 `json:"ModelKmsKeyId"`
	ModelPolicy       string                 `json:"ModelPolicy"`
}

type createDocumentClassifierInput struct {
	DocumentClassifierName string                 `json:"DocumentClassifierName"`
	VersionName            string                 `json:"VersionName"`
	DataAccessRoleArn      string                 `json:"DataAccessRoleArn"`
	Tags                   []tagging.Tag          `json:"Tags"`
	InputDataConfig        map[string]interface{} `json:"InputDataConfig"`
	OutputDataConfig       map[string]interface{} `json:"OutputDataConfig"`
	ClientRequestToken     string                 `json:"ClientRequestToken"`
	LanguageCode           string                 `json:"LanguageCode"`
	VolumeKmsKeyId         string                 `json:"VolumeKmsKeyId"`
	VpcConfig              map[string][]string    `json:"VpcConfig"`
	Mode                   string                 `json:"Mode"`
	ModelKmsKeyId          string                 `json:"ModelKmsKeyId"`
	ModelPolicy            string                 `json:"ModelPolicy"`
}

type createEndpointInput struct {
	EndpointName          string        `json:"EndpointName"`
	ModelArn              string        `json:"ModelArn"`
	DesiredInferenceUnits int           `json:"DesiredInferenceUnits"`
	ClientRequestToken    string        `json:"ClientRequestToken"`
	Tags                  []tagging.Tag `json:"Tags"`
	DataAccessRoleArn     string        `json:"DataAccessRoleArn"`
	FlywheelArn           string        `json:"FlywheelArn"`
}

type createFlywheelInput struct {
	FlywheelName       string                 `json:"FlywheelName"`
	ActiveModelArn     string                 `json:"ActiveModelArn"`
	DataAccessRoleArn  string                 `json:"DataAccessRoleArn"`
	TaskConfig         map[string]interface{} `json:"TaskConfig"`
	ModelType          string                 `json:"ModelType"`
	DataLakeS3Uri      string                 `json:"DataLakeS3Uri"`
	DataSecurityConfig map[string]interface{} `json:"DataSecurityConfig"`
	ClientRequestToken string                 `json:"ClientRequestToken"`
	Tags               []tagging.Tag          `json:"Tags"`
}

type arnInput struct {
	EntityRecognizerArn   string `json:"EntityRecognizerArn"`
	DocumentClassifierArn string `json:"DocumentClassifierArn"`
	EndpointArn           string `json:"EndpointArn"`
	FlywheelArn           string `json:"FlywheelArn"`
	ResourceArn           string `json:"ResourceArn"`
}

type listInput struct {
	Filter *resourceFilter `json:"Filter"`
}

type detectInput struct {
	Text         string `json:"Text"`
	LanguageCode string `json:"LanguageCode"`
}

type tagResourceInput struct {
	ResourceArn string        `json:"ResourceArn"`
	Tags        []tagging.Tag `json:"Tags"`
	TagKeys     []string      `json:"TagKeys"`
}

type updateEndpointInput struct {
	EndpointArn              string `json:"EndpointArn"`
	DesiredModelArn          string `json:"DesiredModelArn"`
	DesiredInferenceUnits    int    `json:"DesiredInferenceUnits"`
	DesiredDataAccessRoleArn string `json:"DesiredDataAccessRoleArn"`
	FlywheelArn              string `json:"FlywheelArn"`
}

type startFlywheelIterationInput struct {
	FlywheelArn        string `json:"FlywheelArn"`
	ClientRequestToken string `json:"ClientRequestToken"`
}

// operations builds the explicit operation table dispatched by target name.
func (s *Service) operations() map[string]core.OperationFunc {
	return map[string]core.OperationFunc{
		"CreateEntityRecognizer":         s.createEntityRecognizer,
		"DescribeEntityRecognizer":       s.describeEntityRecognizer,
		"ListEntityRecognizers":          s.listEntityRecognizers,
		"StopTrainingEntityRecognizer":   s.stopTrainingEntityRecognizer,
		"DeleteEntityRecognizer":         s.deleteEntityRecognizer,
		"CreateDocumentClassifier":       s.createDocumentClassifier,
		"DescribeDocumentClassifier":     s.describeDocumentClassifier,
		"ListDocumentClassifiers":        s.listDocumentClassifiers,
		"StopTrainingDocumentClassifier": s.stopTrainingDocumentClassifier,
		"DeleteDocumentClassifier":       s.deleteDocumentClassifier,
		"CreateEndpoint":                 s.createEndpoint,
		"DescribeEndpoint":               s.describeEndpoint,
		"ListEndpoints":                  s.listEndpoints,
		"UpdateEndpoint":                 s.updateEndpoint,
		"DeleteEndpoint":                 s.deleteEndpoint,
		"CreateFlywheel":                 s.createFlywheel,
		"DescribeFlywheel":               s.describeFlywheel,
		"ListFlywheels":                  s.listFlywheels,
		"StartFlywheelIteration":         s.startFlywheelIteration,
		"DeleteFlywheel":                 s.deleteFlywheel,
		"TagResource":                    s.tagResource,
		"UntagResource":                  s.untagResource,
		"ListTagsForResource":            s.listTagsForResource,
		"DetectPiiEntities":              s.detectPiiEntities,
		"DetectKeyPhrases":               s.detectKeyPhrases,
		"DetectSentiment":                s.detectSentiment,
	}
}

func (s *Service) createEntityRecognizer(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in createEntityRecognizerInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	arn := backend.CreateEntityRecognizer(&in)
	return map[string]string{"EntityRecognizerArn": arn}, nil
}

func (s *Service) describeEntityRecognizer(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in arnInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	recognizer, err := backend.DescribeEntityRecognizer(in.EntityRecognizerArn)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"EntityRecognizerProperties": recognizer.properties()}, nil
}

func (s *Service) listEntityRecognizers(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in listInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	recognizers := backend.ListEntityRecognizers(in.Filter)
	props := make([]entityRecognizerProperties, 0, len(recognizers))
	for _, r := range recognizers {
		props = append(props, r.properties())
	}
	return map[string]interface{}{"EntityRecognizerPropertiesList": props}, nil
}

func (s *Service) stopTrainingEntityRecognizer(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in arnInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	if err := backend.StopTrainingEntityRecognizer(in.EntityRecognizerArn); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Service) deleteEntityRecognizer(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in arnInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	backend.DeleteEntityRecognizer(in.EntityRecognizerArn)
	return nil, nil
}

func (s *Service) createDocumentClassifier(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in createDocumentClassifierInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	arn := backend.CreateDocumentClassifier(&in)
	return map[string]string{"DocumentClassifierArn": arn}, nil
}

func (s *Service) describeDocumentClassifier(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in arnInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	classifier, err := backend.DescribeDocumentClassifier(in.DocumentClassifierArn)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"DocumentClassifierProperties": classifier.properties()}, nil
}

func (s *Service) listDocumentClassifiers(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in listInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	classifiers := backend.ListDocumentClassifiers(in.Filter)
	props := make([]documentClassifierProperties, 0, len(classifiers))
	for _, cl := range classifiers {
		props = append(props, cl.properties())
	}
	return map[string]interface{}{
		"DocumentClassifierPropertiesList": props,
		"NextToken":                        nil,
	}, nil
}

func (s *Service) stopTrainingDocumentClassifier(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in arnInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	if err := backend.StopTrainingDocumentClassifier(in.DocumentClassifierArn); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Service) deleteDocumentClassifier(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in arnInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	backend.DeleteDocumentClassifier(in.DocumentClassifierArn)
	return nil, nil
}

func (s *Service) createEndpoint(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in createEndpointInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	arn, modelARN := backend.CreateEndpoint(&in)
	return map[string]string{"EndpointArn": arn, "ModelArn": modelARN}, nil
}

func (s *Service) describeEndpoint(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in arnInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	endpoint, err := backend.DescribeEndpoint(in.EndpointArn)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"EndpointProperties": endpoint.properties()}, nil
}

func (s *Service) listEndpoints(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in listInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	endpoints := backend.ListEndpoints(in.Filter)
	props := make([]endpointProperties, 0, len(endpoints))
	for _, e := range endpoints {
		props = append(props, e.properties())
	}
	return map[string]interface{}{
		"EndpointPropertiesList": props,
		"NextToken":              nil,
	}, nil
}

func (s *Service) updateEndpoint(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in updateEndpointInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	desired := backend.UpdateEndpoint(in.EndpointArn, in.DesiredModelArn)
	return map[string]string{"DesiredModelArn": desired}, nil
}

func (s *Service) deleteEndpoint(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in arnInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	backend.DeleteEndpoint(in.EndpointArn)
	return nil, nil
}

func (s *Service) createFlywheel(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in createFlywheelInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	arn, activeModelARN := backend.CreateFlywheel(&in)
	return map[string]string{"FlywheelArn": arn, "ActiveModelArn": activeModelARN}, nil
}

func (s *Service) describeFlywheel(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in arnInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	flywheel, err := backend.DescribeFlywheel(in.FlywheelArn)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"FlywheelProperties": flywheel.properties()}, nil
}

func (s *Service) listFlywheels(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in listInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	flywheels := backend.ListFlywheels(in.Filter)
	props := make([]flywheelProperties, 0, len(flywheels))
	for _, f := range flywheels {
		props = append(props, f.properties())
	}
	return map[string]interface{}{
		"FlywheelSummaryList": props,
		"NextToken":           nil,
	}, nil
}

func (s *Service) startFlywheelIteration(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in startFlywheelIterationInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	iterationID, err := backend.StartFlywheelIteration(in.FlywheelArn)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"FlywheelArn":         in.FlywheelArn,
		"FlywheelIterationId": iterationID,
	}, nil
}

func (s *Service) deleteFlywheel(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in arnInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	backend.DeleteFlywheel(in.FlywheelArn)
	return nil, nil
}

func (s *Service) tagResource(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in tagResourceInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	backend.TagResource(in.ResourceArn, in.Tags)
	return nil, nil
}

func (s *Service) untagResource(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in tagResourceInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	backend.UntagResource(in.ResourceArn, in.TagKeys)
	return nil, nil
}

func (s *Service) listTagsForResource(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in arnInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	tags := backend.ListTagsForResource(in.ResourceArn)
	return map[string]interface{}{
		"ResourceArn": in.ResourceArn,
		"Tags":        tags,
	}, nil
}

func (s *Service) detectPiiEntities(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in detectInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	entities, err := backend.DetectPiiEntities(in.Text, in.LanguageCode)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"Entities": entities}, nil
}

func (s *Service) detectKeyPhrases(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in detectInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	phrases, err := backend.DetectKeyPhrases(in.Text, in.LanguageCode)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"KeyPhrases": phrases}, nil
}

func (s *Service) detectSentiment(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in detectInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	result, err := backend.DetectSentiment(in.Text, in.LanguageCode)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Ensure Service implements the core interface.
var _ core.Service = (*Service)(nil)
