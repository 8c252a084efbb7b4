package dialogue

import (
	"HospitalKiosk/pkg/simulator"
	"context"
	"fmt"
)

type Outcome int

const (
	// OutcomeAny is used by steps that take the utterance as data.
	OutcomeAny Outcome = iota
	OutcomeAffirmative
	OutcomeNegative
	OutcomeUnclear
)

func outcomeOf(c Confirmation) Outcome {
	switch c {
	case Affirmative:
		return OutcomeAffirmative
	case Negative:
		return OutcomeNegative
	default:
		return OutcomeUnclear
	}
}

type effect int

const (
	effectNone effect = iota
	// effectRetry counts a rejected confirmation and escalates at MaxRetries.
	effectRetry
	// effectResetToMain ends the flow once the reply is spoken.
	effectResetToMain
)

type turn struct {
	ctx  context.Context
	ctrl *Controller
	mode Mode
	flow *Flow
	text string
}

type transition struct {
	next   Step
	effect effect
	say    func(t *turn) string
}

type rule struct {
	service Service
	confirm bool
	store   func(f *Flow, text string)
	on      map[Outcome]transition
}

var families = map[Service][]Step{
	ServiceReception: {
		StepName, StepConfirmName,
		StepPhone, StepConfirmPhone,
		StepAddress, StepConfirmAddress,
		StepSymptom, StepConfirmTriage,
		StepFinish,
	},
	ServiceLookup:    {StepLookupName, StepLookupPhone, StepShowResult},
	ServiceDirection: {StepDirection, StepShowDirection},
}

// Steps lists the steps of a service in order.
func Steps(service Service) []Step {
	return append([]Step(nil), families[service]...)
}

var table = map[Step]rule{
	StepName: {
		service: ServiceReception,
		store:   func(f *Flow, text string) { f.Patient.Name = text },
		on: map[Outcome]transition{
			OutcomeAny: {next: StepConfirmName, say: quote("%s님, 맞습니까?")},
		},
	},
	StepConfirmName: {
		service: ServiceReception,
		confirm: true,
		on: map[Outcome]transition{
			OutcomeAffirmative: {next: StepPhone, say: say(PromptAskPhone)},
			OutcomeNegative:    {next: StepName, effect: effectRetry, say: say(PromptRetryName)},
			OutcomeUnclear:     {say: say(PromptUnclearConfirm)},
		},
	},
	StepPhone: {
		service: ServiceReception,
		store:   func(f *Flow, text string) { f.Patient.Phone = text },
		on: map[Outcome]transition{
			OutcomeAny: {next: StepConfirmPhone, say: quote("%s 번호가 맞습니까?")},
		},
	},
	StepConfirmPhone: {
		service: ServiceReception,
		confirm: true,
		on: map[Outcome]transition{
			OutcomeAffirmative: {next: StepAddress, say: say(PromptAskAddress)},
			OutcomeNegative:    {next: StepPhone, effect: effectRetry, say: say(PromptRetryPhone)},
			OutcomeUnclear:     {say: say(PromptUnclearConfirm)},
		},
	},
	StepAddress: {
		service: ServiceReception,
		store:   func(f *Flow, text string) { f.Patient.Address = text },
		on: map[Outcome]transition{
			OutcomeAny: {next: StepConfirmAddress, say: quote("%s 주소가 맞습니까?")},
		},
	},
	StepConfirmAddress: {
		service: ServiceReception,
		confirm: true,
		on: map[Outcome]transition{
			OutcomeAffirmative: {next: StepSymptom, say: say(PromptAskSymptom)},
			OutcomeNegative:    {next: StepAddress, effect: effectRetry, say: say(PromptRetryAddress)},
			OutcomeUnclear:     {say: say(PromptUnclearConfirm)},
		},
	},
	StepSymptom: {
		service: ServiceReception,
		store:   func(f *Flow, text string) { f.Patient.Symptom = text },
		on: map[Outcome]transition{
			OutcomeAny: {next: StepConfirmTriage, say: suggestDepartment},
		},
	},
	StepConfirmTriage: {
		service: ServiceReception,
		confirm: true,
		on: map[Outcome]transition{
			OutcomeAffirmative: {next: StepFinish, say: completeReception},
			OutcomeNegative:    {effect: effectResetToMain, say: say(PromptReceptionDeclined)},
			OutcomeUnclear:     {say: say(PromptUnclearTriage)},
		},
	},
	StepFinish: {
		service: ServiceReception,
		on: map[Outcome]transition{
			OutcomeAny: {say: askBackend(simulator.TagTriageStep2, "%s")},
		},
	},
	StepLookupName: {
		service: ServiceLookup,
		store:   func(f *Flow, text string) { f.Lookup.Name = text },
		on: map[Outcome]transition{
			OutcomeAny: {next: StepLookupPhone, say: quote("%s님, 전화번호를 말씀해주세요.")},
		},
	},
	StepLookupPhone: {
		service: ServiceLookup,
		store:   func(f *Flow, text string) { f.Lookup.Phone = text },
		on: map[Outcome]transition{
			OutcomeAny: {next: StepShowResult, say: lookupReception},
		},
	},
	StepShowResult: {
		service: ServiceLookup,
		on: map[Outcome]transition{
			OutcomeAny: {effect: effectResetToMain, say: say(PromptMain)},
		},
	},
	StepDirection: {
		service: ServiceDirection,
		on: map[Outcome]transition{
			OutcomeAny: {next: StepShowDirection, say: askBackend(simulator.TagDirection, "%s 어디에 있나요?")},
		},
	},
	StepShowDirection: {
		service: ServiceDirection,
		on: map[Outcome]transition{
			OutcomeAny: {effect: effectResetToMain, say: say(PromptMain)},
		},
	},
}

func say(text string) func(*turn) string {
	return func(*turn) string { return text }
}

func quote(format string) func(*turn) string {
	return func(t *turn) string { return fmt.Sprintf(format, t.text) }
}

func askBackend(tag simulator.Tag, format string) func(*turn) string {
	return func(t *turn) string {
		return t.ctrl.ask(t.ctx, t.mode, fmt.Sprintf(format, t.text), tag)
	}
}

func suggestDepartment(t *turn) string {
	triage := t.ctrl.ask(t.ctx, t.mode, "증상: "+t.text, simulator.TagTriageStep1)
	t.flow.PredictedDepartment = ExtractDepartment(triage)
	return triage + "\n\n이 진료과로 접수해 드릴까요?"
}

func completeReception(t *turn) string {
	dept := t.flow.PredictedDepartment
	date, at := t.ctrl.scheduler.Schedule(dept)
	t.flow.Reception = &ReceptionResult{Department: dept, Date: date, Time: at}
	return t.ctrl.ask(t.ctx, t.mode, fmt.Sprintf("%s님 %s로 접수해 주세요", t.flow.Patient.Name, dept), simulator.TagTriageStep2)
}

func lookupReception(t *turn) string {
	query := fmt.Sprintf("이름: %s, 전화번호: %s", t.flow.Lookup.Name, t.flow.Lookup.Phone)
	return t.ctrl.ask(t.ctx, t.mode, query, simulator.TagLookup)
}
