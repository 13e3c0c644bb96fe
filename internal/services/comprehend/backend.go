package comprehend

import (
	"math/rand"
	"sync"

	"github.com/asad/sandstack/internal/core"
	"github.com/asad/sandstack/internal/tagging"
)

// Supported language codes per detection operation.
var (
	keyPhraseLanguages = []string{
		"ar", "hi", "ko", "zh-TW", "ja", "zh", "de", "pt", "en", "it", "fr", "es",
	}
	piiEntityLanguages = []string{"en"}
)

// Input byte limits per detection operation.
const (
	detectTextSizeLimit    = 100000
	sentimentTextSizeLimit = 5000
)

// Backend holds all text-analysis resources for one (account, region) pair.
// Resources are keyed by ARN; identifiers are unique within one backend.
type Backend struct {
	accountID string
	region    string

	mu          sync.Mutex
	recognizers map[string]*EntityRecognizer
	classifiers map[string]*DocumentClassifier
	endpoints   map[string]*Endpoint
	flywheels   map[string]*Flywheel
	tagger      *tagging.Store
}

// NewBackend creates an empty backend for one account/region scope.
func NewBackend(accountID, region string) *Backend {
	return &Backend{
		accountID:   accountID,
		region:      region,
		recognizers: make(map[string]*EntityRecognizer),
		classifiers: make(map[string]*DocumentClassifier),
		endpoints:   make(map[string]*Endpoint),
		flywheels:   make(map[string]*Flywheel),
		tagger:      tagging.NewStore(),
	}
}

func (b *Backend) CreateEntityRecognizer(in *createEntityRecognizerInput) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	recognizer := newEntityRecognizer(b.accountID, b.region, in)
	b.recognizers[recognizer.ARN] = recognizer
	b.tagger.Tag(recognizer.ARN, in.Tags)
	return recognizer.ARN
}

func (b *Backend) DescribeEntityRecognizer(arn string) (*EntityRecognizer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	recognizer, ok := b.recognizers[arn]
	if !ok {
		return nil, core.ResourceNotFound("RESOURCE_NOT_FOUND: Could not find specified resource.")
	}
	return recognizer, nil
}

// ListEntityRecognizers supports an equality filter on the recognizer name.
// Pagination and the Status/SubmitTime filters are not implemented.
func (b *Backend) ListEntityRecognizers(filter *resourceFilter) []*EntityRecognizer {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*EntityRecognizer, 0, len(b.recognizers))
	for _, recognizer := range b.recognizers {
		if filter != nil && filter.RecognizerName != "" && recognizer.Name != filter.RecognizerName {
			continue
		}
		out = append(out, recognizer)
	}
	return out
}

// StopTrainingEntityRecognizer transitions TRAINING to STOP_REQUESTED; any
// other current status is left untouched.
func (b *Backend) StopTrainingEntityRecognizer(arn string) error {
	recognizer, err := b.DescribeEntityRecognizer(arn)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if recognizer.Status == StatusTraining {
		recognizer.Status = StatusStopRequested
	}
	return nil
}

// DeleteEntityRecognizer is idempotent: deleting an unknown ARN is a no-op.
func (b *Backend) DeleteEntityRecognizer(arn string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.recognizers[arn]; ok {
		delete(b.recognizers, arn)
		b.tagger.DeleteAll(arn)
	}
}

func (b *Backend) CreateDocumentClassifier(in *createDocumentClassifierInput) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	classifier := newDocumentClassifier(b.accountID, b.region, in)
	b.classifiers[classifier.ARN] = classifier
	b.tagger.Tag(classifier.ARN, in.Tags)
	return classifier.ARN
}

func (b *Backend) DescribeDocumentClassifier(arn string) (*DocumentClassifier, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	classifier, ok := b.classifiers[arn]
	if !ok {
		return nil, core.ResourceNotFound("RESOURCE_NOT_FOUND: Could not find specified resource.")
	}
	return classifier, nil
}

// ListDocumentClassifiers supports equality filters on name or status.
func (b *Backend) ListDocumentClassifiers(filter *resourceFilter) []*DocumentClassifier {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*DocumentClassifier, 0, len(b.classifiers))
	for _, classifier := range b.classifiers {
		if filter != nil {
			if filter.DocumentClassifierName != "" && classifier.Name != filter.DocumentClassifierName {
				continue
			}
			if filter.Status != "" && classifier.Status != filter.Status {
				continue
			}
		}
		out = append(out, classifier)
	}
	return out
}

func (b *Backend) StopTrainingDocumentClassifier(arn string) error {
	classifier, err := b.DescribeDocumentClassifier(arn)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if classifier.Status == StatusTraining {
		classifier.Status = StatusStopRequested
	}
	return nil
}

func (b *Backend) DeleteDocumentClassifier(arn string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.classifiers[arn]; ok {
		delete(b.classifiers, arn)
		b.tagger.DeleteAll(arn)
	}
}

func (b *Backend) CreateEndpoint(in *createEndpointInput) (string, string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	endpoint := newEndpoint(b.accountID, b.region, in)
	b.endpoints[endpoint.ARN] = endpoint
	b.tagger.Tag(endpoint.ARN, in.Tags)
	return endpoint.ARN, endpoint.ModelARN
}

func (b *Backend) DescribeEndpoint(arn string) (*Endpoint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	endpoint, ok := b.endpoints[arn]
	if !ok {
		return nil, core.ResourceNotFound("RESOURCE_NOT_FOUND: Could not find specified resource.")
	}
	return endpoint, nil
}

// ListEndpoints supports equality filters on model ARN or status.
func (b *Backend) ListEndpoints(filter *resourceFilter) []*Endpoint {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*Endpoint, 0, len(b.endpoints))
	for _, endpoint := range b.endpoints {
		if filter != nil {
			if filter.ModelArn != "" && endpoint.ModelARN != filter.ModelArn {
				continue
			}
			if filter.Status != "" && endpoint.Status != filter.Status {
				continue
			}
		}
		out = append(out, endpoint)
	}
	return out
}

// UpdateEndpoint echoes the desired model ARN; no state is mutated.
func (b *Backend) UpdateEndpoint(arn, desiredModelARN string) string {
	return desiredModelARN
}

func (b *Backend) DeleteEndpoint(arn string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.endpoints[arn]; ok {
		delete(b.endpoints, arn)
		b.tagger.DeleteAll(arn)
	}
}

func (b *Backend) CreateFlywheel(in *createFlywheelInput) (string, string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	flywheel := newFlywheel(b.accountID, b.region, in)
	b.flywheels[flywheel.ARN] = flywheel
	b.tagger.Tag(flywheel.ARN, in.Tags)
	return flywheel.ARN, flywheel.ActiveModelARN
}

func (b *Backend) DescribeFlywheel(arn string) (*Flywheel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	flywheel, ok := b.flywheels[arn]
	if !ok {
		return nil, core.ResourceNotFound("RESOURCE_NOT_FOUND: Could not find specified resource.")
	}
	return flywheel, nil
}

// ListFlywheels supports an equality filter on status.
func (b *Backend) ListFlywheels(filter *resourceFilter) []*Flywheel {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*Flywheel, 0, len(b.flywheels))
	for _, flywheel := range b.flywheels {
		if filter != nil && filter.Status != "" && flywheel.Status != filter.Status {
			continue
		}
		out = append(out, flywheel)
	}
	return out
}

// StartFlywheelIteration returns a fresh iteration id for a known flywheel.
func (b *Backend) StartFlywheelIteration(arn string) (int, error) {
	if _, err := b.DescribeFlywheel(arn); err != nil {
		return 0, err
	}
	return rand.Intn(1000000), nil
}

func (b *Backend) DeleteFlywheel(arn string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.flywheels[arn]; ok {
		delete(b.flywheels, arn)
		b.tagger.DeleteAll(arn)
	}
}

func (b *Backend) TagResource(arn string, tags []tagging.Tag) {
	b.tagger.Tag(arn, tags)
}

func (b *Backend) UntagResource(arn string, keys []string) {
	b.tagger.Untag(arn, keys)
}

func (b *Backend) ListTagsForResource(arn string) []tagging.Tag {
	return b.tagger.List(arn)
}

// DetectPiiEntities returns the canned entity table after validating the
// language code and input size.
func (b *Backend) DetectPiiEntities(text, language string) ([]piiEntity, error) {
	if !containsString(piiEntityLanguages, language) {
		return nil, core.UnsupportedLanguage(language, piiEntityLanguages)
	}
	if len(text) > detectTextSizeLimit {
		return nil, core.TextSizeLimitExceeded(len(text))
	}
	return cannedPIIEntities, nil
}

// DetectKeyPhrases returns the canned phrase table after validation.
func (b *Backend) DetectKeyPhrases(text, language string) ([]keyPhrase, error) {
	if !containsString(keyPhraseLanguages, language) {
		return nil, core.UnsupportedLanguage(language, keyPhraseLanguages)
	}
	if len(text) > detectTextSizeLimit {
		return nil, core.TextSizeLimitExceeded(len(text))
	}
	return cannedKeyPhrases, nil
}

// DetectSentiment returns the canned sentiment result after validation.
// Sentiment has a tighter input limit than the other detect operations.
func (b *Backend) DetectSentiment(text, language string) (*sentimentResult, error) {
	if !containsString(keyPhraseLanguages, language) {
		return nil, core.UnsupportedLanguage(language, keyPhraseLanguages)
	}
	if len(text) > sentimentTextSizeLimit {
		return nil, core.TextSizeLimitExceeded(len(text))
	}
	result := cannedSentiment
	return &result, nil
}

func containsString(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
