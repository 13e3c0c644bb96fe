package events

import (
	"github.com/go-chi/chi/v5"

	"github.com/asad/sandstack/internal/core"
	"github.com/asad/sandstack/internal/logging"
	"github.com/asad/sandstack/internal/tagging"
)

const (
	serviceName  = "events"
	targetPrefix = "AWSEvents"
)

// Backends is the per-(account, region) backend dict for this service.
type Backends struct {
	*core.BackendDict[*Backend]
}

// NewBackends creates the backend dict for this service.
func NewBackends(opts ...core.DictOption) Backends {
	return Backends{core.NewBackendDict(serviceName, NewBackend, opts...)}
}

// DumpState renders every live bus and rule grouped by resource kind.
func (b Backends) DumpState() interface{} {
	dump := map[string][]interface{}{
		"EventBus": {},
		"Rule":     {},
	}
	b.Each(func(_, _ string, backend *Backend) {
		for _, bus := range backend.ListEventBuses("") {
			dump["EventBus"] = append(dump["EventBus"], bus.describe())
			rules, err := backend.ListRules(bus.Name, "")
			if err != nil {
				continue
			}
			for _, rule := range rules {
				dump["Rule"] = append(dump["Rule"], rule.describe())
			}
		}
	})
	return dump
}

// Service is the EventBridge emulator.
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

// RegisterRoutes mounts the JSON dispatcher.
func (s *Service) RegisterRoutes(router chi.Router) {
	router.Post("/", s.dispatcher.ServeHTTP)
}

func (s *Service) backend(c *core.Context) (*Backend, error) {
	return s.backends.Get(c.AccountID, c.Region)
}

type busInput struct {
	Name         string `json:"Name"`
	NamePrefix   string `json:"NamePrefix"`
	EventBusName string `json:"EventBusName"`
}

type ruleInput struct {
	Name         string `json:"Name"`
	Rule         string `json:"Rule"`
	EventBusName string `json:"EventBusName"`
	NamePrefix   string `json:"NamePrefix"`
	Force        bool   `json:"Force"`
}

type putTargetsInput struct {
	Rule         string   `json:"Rule"`
	EventBusName string   `json:"EventBusName"`
	Targets      []Target `json:"Targets"`
	Ids          []string `json:"Ids"`
}

type putEventsInput struct {
	Entries []putEventsEntry `json:"Entries"`
}

type tagInput struct {
	ResourceARN string        `json:"ResourceARN"`
	Tags        []tagging.Tag `json:"Tags"`
	TagKeys     []string      `json:"TagKeys"`
}

func (s *Service) operations() map[string]core.OperationFunc {
	return map[string]core.OperationFunc{
		"CreateEventBus":      s.createEventBus,
		"DescribeEventBus":    s.describeEventBus,
		"ListEventBuses":      s.listEventBuses,
		"DeleteEventBus":      s.deleteEventBus,
		"PutRule":             s.putRule,
		"DescribeRule":        s.describeRule,
		"DeleteRule":          s.deleteRule,
		"EnableRule":          s.enableRule,
		"DisableRule":         s.disableRule,
		"ListRules":           s.listRules,
		"PutTargets":          s.putTargets,
		"RemoveTargets":       s.removeTargets,
		"ListTargetsByRule":   s.listTargetsByRule,
		"PutEvents":           s.putEvents,
		"TagResource":         s.tagResource,
		"UntagResource":       s.untagResource,
		"ListTagsForResource": s.listTagsForResource,
	}
}

func (s *Service) createEventBus(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in busInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	arn, err := backend.CreateEventBus(in.Name)
	if err != nil {
		return nil, err
	}
	return map[string]string{"EventBusArn": arn}, nil
}

func (s *Service) describeEventBus(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in busInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	bus, err := backend.DescribeEventBus(in.Name)
	if err != nil {
		return nil, err
	}
	return bus.describe(), nil
}

func (s *Service) listEventBuses(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in busInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	buses := backend.ListEventBuses(in.NamePrefix)
	descriptions := make([]eventBusDescription, 0, len(buses))
	for _, bus := range buses {
		descriptions = append(descriptions, bus.describe())
	}
	return map[string]interface{}{"EventBuses": descriptions}, nil
}

func (s *Service) deleteEventBus(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in busInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	if err := backend.DeleteEventBus(in.Name); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Service) putRule(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in putRuleInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	arn, err := backend.PutRule(&in)
	if err != nil {
		return nil, err
	}
	return map[string]string{"RuleArn": arn}, nil
}

func (s *Service) describeRule(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in ruleInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	rule, err := backend.DescribeRule(in.EventBusName, in.Name)
	if err != nil {
		return nil, err
	}
	return rule.describe(), nil
}

func (s *Service) deleteRule(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in ruleInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	if err := backend.DeleteRule(in.EventBusName, in.Name, in.Force); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Service) enableRule(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in ruleInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	if err := backend.EnableRule(in.EventBusName, in.Name); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Service) disableRule(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in ruleInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	if err := backend.DisableRule(in.EventBusName, in.Name); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Service) listRules(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in ruleInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	rules, err := backend.ListRules(in.EventBusName, in.NamePrefix)
	if err != nil {
		return nil, err
	}
	descriptions := make([]ruleDescription, 0, len(rules))
	for _, rule := range rules {
		descriptions = append(descriptions, rule.describe())
	}
	return map[string]interface{}{"Rules": descriptions}, nil
}

func (s *Service) putTargets(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in putTargetsInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	if err := backend.PutTargets(in.EventBusName, in.Rule, in.Targets); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"FailedEntryCount": 0,
		"FailedEntries":    []interface{}{},
	}, nil
}

func (s *Service) removeTargets(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in putTargetsInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	if err := backend.RemoveTargets(in.EventBusName, in.Rule, in.Ids); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"FailedEntryCount": 0,
		"FailedEntries":    []interface{}{},
	}, nil
}

func (s *Service) listTargetsByRule(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in ruleInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	targets, err := backend.ListTargetsByRule(in.EventBusName, in.Rule)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"Targets": targets}, nil
}

func (s *Service) putEvents(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in putEventsInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	failed, results := backend.PutEvents(in.Entries)
	return map[string]interface{}{
		"FailedEntryCount": failed,
		"Entries":          results,
	}, nil
}

func (s *Service) tagResource(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in tagInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	if err := backend.TagResource(in.ResourceARN, in.Tags); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Service) untagResource(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in tagInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	if err := backend.UntagResource(in.ResourceARN, in.TagKeys); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Service) listTagsForResource(c *core.Context) (interface{}, error) {
	backend, err := s.backend(c)
	if err != nil {
		return nil, err
	}
	var in tagInput
	if err := c.Decode(&in); err != nil {
		return nil, err
	}
	tags, err := backend.ListTagsForResource(in.ResourceARN)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"Tags": tags}, nil
}

// Ensure Service implements the core interface.
var _ core.Service = (*Service)(nil)
