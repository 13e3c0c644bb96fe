package events

import (
	"github.com/asad/sandstack/internal/core"
)

// Rule states.
const (
	StateEnabled  = "ENABLED"
	StateDisabled = "DISABLED"
)

// DefaultEventBusName is the bus every backend starts with. It cannot be
// deleted, and it is the only bus that accepts schedule expressions.
const DefaultEventBusName = "default"

// EventBus is one named event bus holding its rules by name.
type EventBus struct {
	Name string
	ARN  string

	rules map[string]*Rule
}

func newEventBus(accountID, region, name string) *EventBus {
	return &EventBus{
		Name:  name,
		ARN:   core.ARN("events", region, accountID, "event-bus/"+name),
		rules: make(map[string]*Rule),
	}
}

type eventBusDescription struct {
	Name string `json:"Name"`
	Arn  string `json:"Arn"`
}

func (b *EventBus) describe() eventBusDescription {
	return eventBusDescription{Name: b.Name, Arn: b.ARN}
}

// Target is one rule target.
type Target struct {
	ID        string `json:"Id"`
	ARN       string `json:"Arn"`
	Input     string `json:"Input,omitempty"`
	InputPath string `json:"InputPath,omitempty"`
	RoleARN   string `json:"RoleArn,omitempty"`
}

// Rule is one event rule on a bus. The ARN embeds the bus name for custom
// buses and omits it for the default bus.
type Rule struct {
	Name               string
	ARN                string
	ScheduleExpression string
	EventPattern       string
	State              string
	Description        string
	RoleARN            string
	EventBusName       string
	CreatedBy          string
	Targets            []Target
}

func ruleARN(accountID, region, busName, ruleName string) string {
	suffix := "rule/" + ruleName
	if busName != DefaultEventBusName {
		suffix = "rule/" + busName + "/" + ruleName
	}
	return core.ARN("events", region, accountID, suffix)
}

type ruleDescription struct {
	Name               string `json:"Name"`
	Arn                string `json:"Arn"`
	EventPattern       string `json:"EventPattern,omitempty"`
	ScheduleExpression string `json:"ScheduleExpression,omitempty"`
	State              string `json:"State"`
	Description        string `json:"Description,omitempty"`
	RoleArn            string `json:"RoleArn,omitempty"`
	EventBusName       string `json:"EventBusName"`
	CreatedBy          string `json:"CreatedBy"`
}

func (r *Rule) describe() ruleDescription {
	return ruleDescription{
		Name:               r.Name,
		Arn:                r.ARN,
		EventPattern:       r.EventPattern,
		ScheduleExpression: r.ScheduleExpression,
		State:              r.State,
		Description:        r.Description,
		RoleArn:            r.RoleARN,
		EventBusName:       r.EventBusName,
		CreatedBy:          r.CreatedBy,
	}
}
