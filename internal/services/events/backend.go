package events

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/asad/sandstack/internal/core"
	"github.com/asad/sandstack/internal/tagging"
)

// Backend holds all event buses and rules for one (account, region) pair.
type Backend struct {
	accountID string
	region    string

	mu     sync.Mutex
	buses  map[string]*EventBus
	tagger *tagging.Store
}

// NewBackend creates a backend pre-populated with the default event bus.
func NewBackend(accountID, region string) *Backend {
	b := &Backend{
		accountID: accountID,
		region:    region,
		buses:     make(map[string]*EventBus),
		tagger:    tagging.NewStore(),
	}
	b.buses[DefaultEventBusName] = newEventBus(accountID, region, DefaultEventBusName)
	return b
}

// normalizeBusName resolves the bus referenced by a request: empty means the
// default bus, and a full event-bus ARN is reduced to its bare name.
func normalizeBusName(name string) string {
	if name == "" {
		return DefaultEventBusName
	}
	if strings.HasPrefix(name, "arn:") {
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			return name[idx+1:]
		}
	}
	return name
}

func (b *Backend) bus(name string) (*EventBus, error) {
	name = normalizeBusName(name)
	bus, ok := b.buses[name]
	if !ok {
		return nil, core.ResourceNotFound("Event bus " + name + " does not exist.")
	}
	return bus, nil
}

// CreateEventBus creates a custom bus. Creating a bus whose name is taken, or
// shadowing the default bus, is an already-exists fault.
func (b *Backend) CreateEventBus(name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if name == DefaultEventBusName {
		return "", core.ValidationError("The specified event bus name can't contain 'default'.")
	}
	if _, exists := b.buses[name]; exists {
		return "", core.ResourceAlreadyExists("Event bus " + name + " already exists.")
	}
	bus := newEventBus(b.accountID, b.region, name)
	b.buses[name] = bus
	return bus.ARN, nil
}

func (b *Backend) DescribeEventBus(name string) (*EventBus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus(name)
}

// ListEventBuses returns all buses, optionally filtered by name prefix,
// ordered by name.
func (b *Backend) ListEventBuses(namePrefix string) []*EventBus {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*EventBus, 0, len(b.buses))
	for _, bus := range b.buses {
		if namePrefix != "" && !strings.HasPrefix(bus.Name, namePrefix) {
			continue
		}
		out = append(out, bus)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DeleteEventBus removes a custom bus and all its rules. The default bus
// cannot be deleted; deleting an unknown bus is a no-op.
func (b *Backend) DeleteEventBus(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	name = normalizeBusName(name)
	if name == DefaultEventBusName {
		return core.ValidationError("Cannot delete event bus default.")
	}
	if bus, ok := b.buses[name]; ok {
		for _, rule := range bus.rules {
			b.tagger.DeleteAll(rule.ARN)
		}
		delete(b.buses, name)
	}
	return nil
}

type putRuleInput struct {
	Name               string        `json:"Name"`
	ScheduleExpression string        `json:"ScheduleExpression"`
	EventPattern       string        `json:"EventPattern"`
	State              string        `json:"State"`
	Description        string        `json:"Description"`
	RoleArn            string        `json:"RoleArn"`
	EventBusName       string        `json:"EventBusName"`
	Tags               []tagging.Tag `json:"Tags"`
}

// PutRule creates or updates a rule on a bus. Schedule expressions are only
// valid on the default bus. An update keeps the rule's existing targets.
func (b *Backend) PutRule(in *putRuleInput) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bus, err := b.bus(in.EventBusName)
	if err != nil {
		return "", err
	}
	if in.ScheduleExpression != "" && bus.Name != DefaultEventBusName {
		return "", core.ValidationError("ScheduleExpression is supported only on the default event bus.")
	}

	rule, exists := bus.rules[in.Name]
	if !exists {
		rule = &Rule{
			Name:         in.Name,
			ARN:          ruleARN(b.accountID, b.region, bus.Name, in.Name),
			State:        StateEnabled,
			EventBusName: bus.Name,
			CreatedBy:    b.accountID,
		}
		bus.rules[in.Name] = rule
	}
	rule.ScheduleExpression = in.ScheduleExpression
	rule.EventPattern = in.EventPattern
	rule.Description = in.Description
	rule.RoleARN = in.RoleArn
	if in.State != "" {
		rule.State = in.State
	}
	if len(in.Tags) > 0 {
		b.tagger.Tag(rule.ARN, in.Tags)
	}
	return rule.ARN, nil
}

func (b *Backend) rule(busName, ruleName string) (*Rule, error) {
	bus, err := b.bus(busName)
	if err != nil {
		return nil, err
	}
	rule, ok := bus.rules[ruleName]
	if !ok {
		return nil, core.ResourceNotFound("Rule " + ruleName + " does not exist.")
	}
	return rule, nil
}

func (b *Backend) DescribeRule(busName, ruleName string) (*Rule, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rule(busName, ruleName)
}

// DeleteRule removes a rule. A rule that still has targets is only deleted
// when force is set; deleting an unknown rule is a no-op.
func (b *Backend) DeleteRule(busName, ruleName string, force bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bus, err := b.bus(busName)
	if err != nil {
		return err
	}
	rule, ok := bus.rules[ruleName]
	if !ok {
		return nil
	}
	if len(rule.Targets) > 0 && !force {
		return core.ValidationError("Rule can't be deleted since it has targets.")
	}
	b.tagger.DeleteAll(rule.ARN)
	delete(bus.rules, ruleName)
	return nil
}

func (b *Backend) setRuleState(busName, ruleName, state string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rule, err := b.rule(busName, ruleName)
	if err != nil {
		return err
	}
	rule.State = state
	return nil
}

func (b *Backend) EnableRule(busName, ruleName string) error {
	return b.setRuleState(busName, ruleName, StateEnabled)
}

func (b *Backend) DisableRule(busName, ruleName string) error {
	return b.setRuleState(busName, ruleName, StateDisabled)
}

// ListRules returns the rules on a bus, optionally filtered by name prefix,
// ordered by name.
func (b *Backend) ListRules(busName, namePrefix string) ([]*Rule, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bus, err := b.bus(busName)
	if err != nil {
		return nil, err
	}
	out := make([]*Rule, 0, len(bus.rules))
	for _, rule := range bus.rules {
		if namePrefix != "" && !strings.HasPrefix(rule.Name, namePrefix) {
			continue
		}
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// PutTargets adds or replaces targets on a rule, matched by target id.
func (b *Backend) PutTargets(busName, ruleName string, targets []Target) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rule, err := b.rule(busName, ruleName)
	if err != nil {
		return err
	}
	for _, target := range targets {
		replaced := false
		for i := range rule.Targets {
			if rule.Targets[i].ID == target.ID {
				rule.Targets[i] = target
				replaced = true
				break
			}
		}
		if !replaced {
			rule.Targets = append(rule.Targets, target)
		}
	}
	return nil
}

// RemoveTargets removes targets by id. Unknown ids are ignored.
func (b *Backend) RemoveTargets(busName, ruleName string, ids []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rule, err := b.rule(busName, ruleName)
	if err != nil {
		return err
	}
	remove := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}
	kept := rule.Targets[:0]
	for _, target := range rule.Targets {
		if _, drop := remove[target.ID]; !drop {
			kept = append(kept, target)
		}
	}
	rule.Targets = kept
	return nil
}

func (b *Backend) ListTargetsByRule(busName, ruleName string) ([]Target, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rule, err := b.rule(busName, ruleName)
	if err != nil {
		return nil, err
	}
	out := make([]Target, len(rule.Targets))
	copy(out, rule.Targets)
	return out, nil
}

type putEventsEntry struct {
	Source       string `json:"Source"`
	DetailType   string `json:"DetailType"`
	Detail       string `json:"Detail"`
	EventBusName string `json:"EventBusName"`
}

type putEventsResult struct {
	EventID      string `json:"EventId,omitempty"`
	ErrorCode    string `json:"ErrorCode,omitempty"`
	ErrorMessage string `json:"ErrorMessage,omitempty"`
}

// PutEvents accepts a batch of entries with per-entry success/failure
// accounting. Valid entries are assigned a fresh event id; the events
// themselves are not delivered anywhere.
func (b *Backend) PutEvents(entries []putEventsEntry) (int, []putEventsResult) {
	failed := 0
	results := make([]putEventsResult, 0, len(entries))
	for _, entry := range entries {
		switch {
		case entry.Source == "":
			failed++
			results = append(results, putEventsResult{
				ErrorCode:    "InvalidArgument",
				ErrorMessage: "Parameter Source is not valid. Reason: Source is a required argument.",
			})
		case entry.DetailType == "":
			failed++
			results = append(results, putEventsResult{
				ErrorCode:    "InvalidArgument",
				ErrorMessage: "Parameter DetailType is not valid. Reason: DetailType is a required argument.",
			})
		case entry.Detail == "":
			failed++
			results = append(results, putEventsResult{
				ErrorCode:    "InvalidArgument",
				ErrorMessage: "Parameter Detail is not valid. Reason: Detail is a required argument.",
			})
		default:
			results = append(results, putEventsResult{EventID: uuid.NewString()})
		}
	}
	return failed, results
}

// findRuleByARN locates a rule across all buses for the tag operations.
func (b *Backend) findRuleByARN(arn string) (*Rule, error) {
	for _, bus := range b.buses {
		for _, rule := range bus.rules {
			if rule.ARN == arn {
				return rule, nil
			}
		}
	}
	return nil, core.ResourceNotFound("Rule " + arn + " does not exist on EventBus default.")
}

func (b *Backend) TagResource(arn string, tags []tagging.Tag) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.findRuleByARN(arn); err != nil {
		return err
	}
	b.tagger.Tag(arn, tags)
	return nil
}

func (b *Backend) UntagResource(arn string, keys []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.findRuleByARN(arn); err != nil {
		return err
	}
	b.tagger.Untag(arn, keys)
	return nil
}

func (b *Backend) ListTagsForResource(arn string) ([]tagging.Tag, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.findRuleByARN(arn); err != nil {
		return nil, err
	}
	return b.tagger.List(arn), nil
}
