package comprehend

import (
	"github.com/asad/sandstack/internal/core"
)

// Resource status values. Transitions are service-specific and shallow: the
// emulator never advances a status on its own.
const (
	StatusTrained       = "TRAINED"
	StatusTraining      = "TRAINING"
	StatusStopRequested = "STOP_REQUESTED"
	StatusInService     = "IN_SERVICE"
	StatusActive        = "ACTIVE"
)

// EntityRecognizer is one custom entity-recognition model.
type EntityRecognizer struct {
	Name              string
	ARN               string
	LanguageCode      string
	Status            string
	InputDataConfig   map[string]interface{}
	DataAccessRoleARN string
	VersionName       string
	VolumeKmsKeyID    string
	VpcConfig         map[string][]string
	ModelKmsKeyID     string
	ModelPolicy       string
}

func newEntityRecognizer(accountID, region string, in *createEntityRecognizerInput) *EntityRecognizer {
	suffix := "entity-recognizer/" + in.RecognizerName
	if in.VersionName != "" {
		suffix += "/version/" + in.VersionName
	}
	return &EntityRecognizer{
		Name:              in.RecognizerName,
		ARN:               core.ARN("comprehend", region, accountID, suffix),
		LanguageCode:      in.LanguageCode,
		Status:            StatusTrained,
		InputDataConfig:   in.InputDataConfig,
		DataAccessRoleARN: in.DataAccessRoleArn,
		VersionName:       in.VersionName,
		VolumeKmsKeyID:    in.VolumeKmsKeyId,
		VpcConfig:         in.VpcConfig,
		ModelKmsKeyID:     in.ModelKmsKeyId,
		ModelPolicy:       in.ModelPolicy,
	}
}

// entityRecognizerProperties is the external-facing representation.
type entityRecognizerProperties struct {
	EntityRecognizerArn string                 `json:"EntityRecognizerArn"`
	LanguageCode        string                 `json:"LanguageCode"`
	Status              string                 `json:"Status"`
	InputDataConfig     map[string]interface{} `json:"InputDataConfig"`
	DataAccessRoleArn   string                 `json:"DataAccessRoleArn"`
	VersionName         string                 `json:"VersionName"`
	VolumeKmsKeyId      string                 `json:"VolumeKmsKeyId"`
	VpcConfig           map[string][]string    `json:"VpcConfig"`
	ModelKmsKeyId       string                 `json:"ModelKmsKeyId"`
	ModelPolicy         string                 `json:"ModelPolicy"`
}

func (r *EntityRecognizer) properties() entityRecognizerProperties {
	return entityRecognizerProperties{
		EntityRecognizerArn: r.ARN,
		LanguageCode:        r.LanguageCode,
		Status:              r.Status,
		InputDataConfig:     r.InputDataConfig,
		DataAccessRoleArn:   r.DataAccessRoleARN,
		VersionName:         r.VersionName,
		VolumeKmsKeyId:      r.VolumeKmsKeyID,
		VpcConfig:           r.VpcConfig,
		ModelKmsKeyId:       r.ModelKmsKeyID,
		ModelPolicy:         r.ModelPolicy,
	}
}

// DocumentClassifier is one custom document-classification model.
type DocumentClassifier struct {
	Name               string
	ARN                string
	LanguageCode       string
	Status             string
	VersionName        string
	InputDataConfig    map[string]interface{}
	OutputDataConfig   map[string]interface{}
	DataAccessRoleARN  string
	VolumeKmsKeyID     string
	ClientRequestToken string
	Mode               string
	VpcConfig          map[string][]string
	ModelKmsKeyID      string
	ModelPolicy        string
}

func newDocumentClassifier(accountID, region string, in *createDocumentClassifierInput) *DocumentClassifier {
	suffix := "document-classifier/" + in.DocumentClassifierName + "/" + in.VersionName
	return &DocumentClassifier{
		Name:               in.DocumentClassifierName,
		ARN:                core.ARN("comprehend", region, accountID, suffix),
		LanguageCode:       in.LanguageCode,
		Status:             StatusTraining,
		VersionName:        in.VersionName,
		InputDataConfig:    in.InputDataConfig,
		OutputDataConfig:   in.OutputDataConfig,
		DataAccessRoleARN:  in.DataAccessRoleArn,
		VolumeKmsKeyID:     in.VolumeKmsKeyId,
		ClientRequestToken: in.ClientRequestToken,
		Mode:               in.Mode,
		VpcConfig:          in.VpcConfig,
		ModelKmsKeyID:      in.ModelKmsKeyId,
		ModelPolicy:        in.ModelPolicy,
	}
}

type documentClassifierProperties struct {
	DocumentClassifierArn string                 `json:"DocumentClassifierArn"`
	LanguageCode          string                 `json:"LanguageCode"`
	Status                string                 `json:"Status"`
	InputDataConfig       map[string]interface{} `json:"InputDataConfig"`
	DataAccessRoleArn     string                 `json:"DataAccessRoleArn"`
	VolumeKmsKeyId        string                 `json:"VolumeKmsKeyId"`
	Mode                  string                 `json:"Mode"`
	VpcConfig             map[string][]string    `json:"VpcConfig"`
	ModelKmsKeyId         string                 `json:"ModelKmsKeyId"`
	ModelPolicy           string                 `json:"ModelPolicy"`
}

func (c *DocumentClassifier) properties() documentClassifierProperties {
	return documentClassifierProperties{
		DocumentClassifierArn: c.ARN,
		LanguageCode:          c.LanguageCode,
		Status:                c.Status,
		InputDataConfig:       c.InputDataConfig,
		DataAccessRoleArn:     c.DataAccessRoleARN,
		VolumeKmsKeyId:        c.VolumeKmsKeyID,
		Mode:                  c.Mode,
		VpcConfig:             c.VpcConfig,
		ModelKmsKeyId:         c.ModelKmsKeyID,
		ModelPolicy:           c.ModelPolicy,
	}
}

// Endpoint is one inference endpoint attached to a model.
type Endpoint struct {
	Name                  string
	ARN                   string
	ModelARN              string
	ClientRequestToken    string
	DataAccessRoleARN     string
	FlywheelARN           string
	DesiredInferenceUnits int
	Status                string
}

func newEndpoint(accountID, region string, in *createEndpointInput) *Endpoint {
	suffix := "endpoint/" + in.EndpointName + "/" + in.ModelArn
	return &Endpoint{
		Name:                  in.EndpointName,
		ARN:                   core.ARN("comprehend", region, accountID, suffix),
		ModelARN:              in.ModelArn,
		ClientRequestToken:    in.ClientRequestToken,
		DataAccessRoleARN:     in.DataAccessRoleArn,
		FlywheelARN:           in.FlywheelArn,
		DesiredInferenceUnits: in.DesiredInferenceUnits,
		Status:                StatusInService,
	}
}

type endpointProperties struct {
	EndpointArn           string `json:"EndpointArn"`
	ModelArn              string `json:"ModelArn"`
	ClientRequestToken    string `json:"ClientRequestToken"`
	DataAccessRoleArn     string `json:"DataAccessRoleArn"`
	FlywheelArn           string `json:"FlywheelArn"`
	DesiredInferenceUnits int    `json:"DesiredInferenceUnits"`
	Status                string `json:"Status"`
}

func (e *Endpoint) properties() endpointProperties {
	return endpointProperties{
		EndpointArn:           e.ARN,
		ModelArn:              e.ModelARN,
		ClientRequestToken:    e.ClientRequestToken,
		DataAccessRoleArn:     e.DataAccessRoleARN,
		FlywheelArn:           e.FlywheelARN,
		DesiredInferenceUnits: e.DesiredInferenceUnits,
		Status:                e.Status,
	}
}

// Flywheel is one model-retraining flywheel.
type Flywheel struct {
	Name               string
	ARN                string
	ActiveModelARN     string
	DataAccessRoleARN  string
	TaskConfig         map[string]interface{}
	ModelType          string
	DataLakeS3URI      string
	DataSecurityConfig map[string]interface{}
	ClientRequestToken string
	Status             string
}

func newFlywheel(accountID, region string, in *createFlywheelInput) *Flywheel {
	return &Flywheel{
		Name:               in.FlywheelName,
		ARN:                core.ARN("comprehend", region, accountID, "flywheel/"+in.FlywheelName),
		ActiveModelARN:     in.ActiveModelArn,
		DataAccessRoleARN:  in.DataAccessRoleArn,
		TaskConfig:         in.TaskConfig,
		ModelType:          in.ModelType,
		DataLakeS3URI:      in.DataLakeS3Uri,
		DataSecurityConfig: in.DataSecurityConfig,
		ClientRequestToken: in.ClientRequestToken,
		Status:             StatusActive,
	}
}

type flywheelProperties struct {
	FlywheelArn        string                 `json:"FlywheelArn"`
	ActiveModelArn     string                 `json:"ActiveModelArn"`
	DataAccessRoleArn  string                 `json:"DataAccessRoleArn"`
	TaskConfig         map[string]interface{} `json:"TaskConfig"`
	ModelType          string                 `json:"ModelType"`
	DataLakeS3Uri      string                 `json:"DataLakeS3Uri"`
	DataSecurityConfig map[string]interface{} `json:"DataSecurityConfig"`
	ClientRequestToken string                 `json:"ClientRequestToken"`
	Status             string                 `json:"Status"`
}

func (f *Flywheel) properties() flywheelProperties {
	return flywheelProperties{
		FlywheelArn:        f.ARN,
		ActiveModelArn:     f.ActiveModelARN,
		DataAccessRoleArn:  f.DataAccessRoleARN,
		TaskConfig:         f.TaskConfig,
		ModelType:          f.ModelType,
		DataLakeS3Uri:      f.DataLakeS3URI,
		DataSecurityConfig: f.DataSecurityConfig,
		ClientRequestToken: f.ClientRequestToken,
		Status:             f.Status,
	}
}

// Canned detection results. These are static tables returned verbatim; they
// are never re-derived per call.

type piiEntity struct {
	Score       float64 `json:"Score"`
	Type        string  `json:"Type"`
	BeginOffset int     `json:"BeginOffset"`
	EndOffset   int     `json:"EndOffset"`
}

type keyPhrase struct {
	Score       float64 `json:"Score"`
	BeginOffset int     `json:"BeginOffset"`
	EndOffset   int     `json:"EndOffset"`
}

type sentimentScore struct {
	Positive float64 `json:"Positive"`
	Negative float64 `json:"Negative"`
	Neutral  float64 `json:"Neutral"`
	Mixed    float64 `json:"Mixed"`
}

type sentimentResult struct {
	Sentiment      string         `json:"Sentiment"`
	SentimentScore sentimentScore `json:"SentimentScore"`
}

var cannedPIIEntities = []piiEntity{
	{Score: 0.9999890923500061, Type: "NAME", BeginOffset: 50, EndOffset: 58},
	{Score: 0.9999966621398926, Type: "EMAIL", BeginOffset: 230, EndOffset: 259},
	{Score: 0.9999954700469971, Type: "BANK_ACCOUNT_NUMBER", BeginOffset: 334, EndOffset: 349},
}

var cannedKeyPhrases = []keyPhrase{
	{Score: 0.9999890923500061, BeginOffset: 50, EndOffset: 58},
	{Score: 0.9999966621398926, BeginOffset: 230, EndOffset: 259},
	{Score: 0.9999954700469971, BeginOffset: 334, EndOffset: 349},
}

var cannedSentiment = sentimentResult{
	Sentiment: "NEUTRAL",
	SentimentScore: sentimentScore{
		Positive: 0.008101312443614006,
		Negative: 0.0002824589901138097,
		Neutral:  0.9916020035743713,
		Mixed:    1.4156351426208857e-05,
	},
}
