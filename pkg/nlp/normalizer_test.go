package nlp

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		pick Pick
		in   string
		want string
	}{
		{"plain", PickRight, "접수하고 싶어요", "접수하고 싶어요"},
		{"dual form right", PickRight, "(2시)/(두 시)에 왔어요", "두 시에 왔어요"},
		{"dual form left", PickLeft, "(2시)/(두 시)에 왔어요", "2시에 왔어요"},
		{"leading noise", PickRight, "n/ 네 맞아요", "네 맞아요"},
		{"annotation", PickRight, "머리가 [기침] 아파요", "머리가 아파요"},
		{"break markers", PickRight, "내+과 어/디", "내과 어디"},
		{"whitespace", PickRight, "  김철수 \n 입니다 ", "김철수 입니다"},
		{"decomposed hangul", PickRight, "\u1100\u1161", "\uac00"},
		{"empty", PickRight, "", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NewNormalizer(tc.pick).Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
