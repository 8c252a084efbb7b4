package dialogue

import (
	"HospitalKiosk/pkg/simulator"
	"regexp"
)

var departmentPattern = regexp.MustCompile(`[가-힣]+과`)

// ExtractDepartment finds the first department name in a triage answer.
// A reply without one is accepted with the generic department.
func ExtractDepartment(text string) string {
	if dept := departmentPattern.FindString(text); dept != "" {
		return dept
	}
	return simulator.DefaultDepartment
}

type Scheduler interface {
	Schedule(department string) (date string, time string)
}

// FixedScheduler hands out the same slot to everyone until a scheduling backend exists.
type FixedScheduler struct {
	Date string
	Time string
}

func NewFixedScheduler() FixedScheduler {
	return FixedScheduler{Date: "2025년 7월 29일", Time: "오전 10시"}
}

func (f FixedScheduler) Schedule(string) (string, string) {
	return f.Date, f.Time
}
