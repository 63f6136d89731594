package probe

import "testing"

func TestParseDuration(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"612.480000\n", 612.48, false},
		{"  9.97  ", 9.97, false},
		{"0.000000", 0, true},
		{"-3.5", 0, true},
		{"N/A", 0, true},
		{"", 0, true},
	} {
		got, err := ParseDuration(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: want error, got %.3f", tc.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: got %.3f, want %.3f", tc.raw, got, tc.want)
		}
	}
}
