package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

type Tag string

const (
	TagServiceSelection Tag = "service_selection"
	TagTriageStep1      Tag = "triage_step1"
	TagTriageStep2      Tag = "triage_step2"
	TagLookup           Tag = "lookup"
	TagDirection        Tag = "direction"
	TagClassify         Tag = "classify"
)

// Classification labels the backend answers a classify request with.
const (
	LabelAffirmative = "긍정"
	LabelNegative    = "부정"
	LabelUnknown     = "모르겠음"
)

const (
	DefaultDelay      = 2 * time.Second
	DefaultDepartment = "해당 진료과"
	FallbackReply     = "죄송합니다. 다시 한 번 말씀해주세요."
)

var (
	positiveWords = []string{"네", "예", "맞아", "맞습니다", "응", "좋아", "해줘", "그래"}
	negativeWords = []string{"아니", "아니오", "틀려", "틀렸어", "싫어", "안돼"}

	sampleTranscripts = []string{
		"김철수",
		"네",
		"010-1234-5678",
		"서울시 강남구",
		"머리가 아파요",
		"접수 문의드립니다",
		"내과 어디에 있나요",
	}

	departmentPattern = regexp.MustCompile(`[가-힣]+과`)
)

type IResponder interface {
	Respond(ctx context.Context, text string, tag Tag) string
}

// Responder answers every backend request offline after a fixed delay.
type Responder struct {
	delay time.Duration
}

func New(delay time.Duration) *Responder {
	if delay < 0 {
		delay = 0
	}
	return &Responder{delay: delay}
}

func (r *Responder) Respond(ctx context.Context, text string, tag Tag) string {
	if r.delay > 0 {
		timer := time.NewTimer(r.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}
	return Reply(text, tag)
}

// Reply is the canned answer for (text, tag) without any delay.
func Reply(text string, tag Tag) string {
	switch tag {
	case TagServiceSelection:
		return serviceSelection(text)
	case TagTriageStep1:
		return triage(text)
	case TagTriageStep2:
		return fmt.Sprintf("접수가 완료되었습니다. %s는 본관 3층에 위치해 있으며, 예상 대기시간은 약 20분입니다. 대기번호는 5번입니다.", requestedDepartment(text))
	case TagLookup:
		return fmt.Sprintf("%s님은 2025년 7월 29일 오전 10시에 내과로 접수되어 있습니다. 현재 대기번호는 3번이며, 예상 대기시간은 약 15분입니다.", lookupName(text))
	case TagDirection:
		return direction(text)
	case TagClassify:
		return Classify(text)
	default:
		return FallbackReply
	}
}

// Classify labels text by keyword containment. Positive words win when both sets match.
func Classify(text string) string {
	if containsAny(text, positiveWords) {
		return LabelAffirmative
	}
	if containsAny(text, negativeWords) {
		return LabelNegative
	}
	return LabelUnknown
}

// Transcript stands in for speech recognition when no recognizer is reachable.
func Transcript(rng *rand.Rand) string {
	if rng == nil {
		return sampleTranscripts[rand.Intn(len(sampleTranscripts))]
	}
	return sampleTranscripts[rng.Intn(len(sampleTranscripts))]
}

func serviceSelection(text string) string {
	compact := strings.Join(strings.Fields(text), "")
	switch {
	case strings.Contains(compact, "내역"):
		return "접수 내역을 확인하겠습니다. 이름을 말씀해주세요."
	case strings.Contains(compact, "접수"):
		return "접수를 시작하겠습니다. 이름을 말씀해주세요."
	case strings.Contains(compact, "길찾"):
		return "어느 곳으로 가시나요?"
	default:
		return FallbackReply
	}
}

func triage(text string) string {
	switch {
	case containsAny(text, []string{"머리", "두통"}):
		return "그런 증상은 신경과가 적절합니다."
	case containsAny(text, []string{"배", "복통"}):
		return "내과를 추천드립니다."
	case containsAny(text, []string{"다리", "무릎"}):
		return "정형외과를 추천드립니다."
	default:
		return "내과를 추천드립니다."
	}
}

func direction(text string) string {
	switch {
	case strings.Contains(text, "내과"):
		return "내과는 본관 2층에 위치해 있습니다. 엘리베이터를 타고 2층에서 내려서 오른쪽으로 가시면 됩니다."
	case strings.Contains(text, "수납"):
		return "수납창구는 1층 로비 왼쪽에 있습니다."
	case strings.Contains(text, "주차"):
		return "주차장은 지하 1층과 2층에 있습니다. 지하 주차장 입구는 병원 뒤편에 있습니다."
	default:
		return "죄송합니다. 구체적인 위치를 말씀해주시면 더 정확한 안내를 드릴 수 있습니다."
	}
}

// requestedDepartment reads the department out of "{name}님 {dept}로 접수해 주세요".
func requestedDepartment(text string) string {
	if i := strings.Index(text, "님 "); i >= 0 {
		text = text[i+len("님 "):]
	}
	if dept := departmentPattern.FindString(text); dept != "" {
		return dept
	}
	return DefaultDepartment
}

// lookupName reads the name out of "이름: {name}, 전화번호: {phone}".
func lookupName(text string) string {
	rest, ok := strings.CutPrefix(strings.TrimSpace(text), "이름:")
	if !ok {
		return "고객"
	}
	name, _, _ := strings.Cut(rest, ",")
	name = strings.TrimSpace(name)
	if name == "" {
		return "고객"
	}
	return name
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
