package dialogue

import "strings"

// routes are checked in order. Lookup comes first so "접수내역" is not taken for reception.
var routes = []struct {
	service  Service
	keywords []string
}{
	{ServiceLookup, []string{"접수내역", "내역"}},
	{ServiceReception, []string{"접수"}},
	{ServiceDirection, []string{"길찾기", "길찾"}},
}

// RouteIntent picks the service an utterance on the main screen asks for.
func RouteIntent(text string) (Service, bool) {
	compact := strings.Join(strings.Fields(text), "")
	for _, r := range routes {
		for _, kw := range r.keywords {
			if strings.Contains(compact, kw) {
				return r.service, true
			}
		}
	}
	return ServiceNone, false
}

func firstStep(service Service) Step {
	switch service {
	case ServiceReception:
		return StepName
	case ServiceLookup:
		return StepLookupName
	case ServiceDirection:
		return StepDirection
	default:
		return StepNone
	}
}

func ParseService(v string) (Service, bool) {
	switch Service(v) {
	case ServiceReception, ServiceLookup, ServiceDirection:
		return Service(v), true
	default:
		return ServiceNone, false
	}
}
