package simulator

import (
	"context"
	"math/rand"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestReplyTriage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want string
	}{
		{"증상: 두통이 심해요", "그런 증상은 신경과가 적절합니다."},
		{"증상: 머리가 아파요", "그런 증상은 신경과가 적절합니다."},
		{"증상: 복통", "내과를 추천드립니다."},
		{"증상: 무릎이 시려요", "정형외과를 추천드립니다."},
		{"증상: 기침", "내과를 추천드립니다."},
	}

	for _, tc := range cases {
		if got := Reply(tc.text, TagTriageStep1); got != tc.want {
			t.Fatalf("triage(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestReplyTriageCompletionUsesRequestedDepartment(t *testing.T) {
	t.Parallel()

	got := Reply("김철수님 신경과로 접수해 주세요", TagTriageStep2)
	if !strings.HasPrefix(got, "접수가 완료되었습니다. 신경과는 본관 3층") {
		t.Fatalf("unexpected completion: %q", got)
	}

	got = Reply("감사합니다", TagTriageStep2)
	if !strings.Contains(got, DefaultDepartment) {
		t.Fatalf("expected default department, got %q", got)
	}
}

func TestReplyLookupQuotesName(t *testing.T) {
	t.Parallel()

	got := Reply("이름: 김철수, 전화번호: 010-1234-5678", TagLookup)
	if !strings.HasPrefix(got, "김철수님은 2025년 7월 29일 오전 10시에 내과로") {
		t.Fatalf("unexpected lookup reply: %q", got)
	}
}

func TestReplyDirection(t *testing.T) {
	t.Parallel()

	if got := Reply("수납 어디에 있나요?", TagDirection); got != "수납창구는 1층 로비 왼쪽에 있습니다." {
		t.Fatalf("unexpected direction: %q", got)
	}
	if got := Reply("화장실 어디에 있나요?", TagDirection); !strings.HasPrefix(got, "죄송합니다.") {
		t.Fatalf("unexpected fallback direction: %q", got)
	}
}

func TestReplyServiceSelection(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"접수":       "접수를 시작하겠습니다. 이름을 말씀해주세요.",
		"접수 내역 확인": "접수 내역을 확인하겠습니다. 이름을 말씀해주세요.",
		"길찾기":      "어느 곳으로 가시나요?",
	}
	for text, want := range cases {
		if got := Reply(text, TagServiceSelection); got != want {
			t.Fatalf("service selection %q = %q, want %q", text, got, want)
		}
	}
}

func TestReplyUnknownTag(t *testing.T) {
	t.Parallel()

	if got := Reply("안녕하세요", Tag("weather")); got != FallbackReply {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want string
	}{
		{"네 맞아요", LabelAffirmative},
		{"그래요", LabelAffirmative},
		{"아니오", LabelNegative},
		{"틀렸어요", LabelNegative},
		{"네 아니", LabelAffirmative},
		{"글쎄요", LabelUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.text); got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.text, got, tc.want)
		}
		if got := Reply(tc.text, TagClassify); got != tc.want {
			t.Fatalf("Reply classify(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestRespondHonorsCancellation(t *testing.T) {
	t.Parallel()

	r := New(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	got := r.Respond(ctx, "증상: 두통", TagTriageStep1)
	if time.Since(start) > time.Second {
		t.Fatalf("respond did not return promptly after cancellation")
	}
	if got != "그런 증상은 신경과가 적절합니다." {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestTranscriptIsSample(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		if got := Transcript(rng); !slices.Contains(sampleTranscripts, got) {
			t.Fatalf("unexpected transcript %q", got)
		}
	}
}
