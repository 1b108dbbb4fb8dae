package posts

import "testing"

func TestTimeframeInterval(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"day":   "1 day",
		"week":  "7 days",
		"month": "30 days",
		"all":   "",
		"":      "",
	}
	for timeframe, want := range cases {
		if got := timeframeInterval(timeframe); got != want {
			t.Fatalf("timeframe %q: expected %q, got %q", timeframe, want, got)
		}
	}
}
