package store

import "testing"

func TestNormalizeRUT(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12.345.678-5", "123456785"},
		{"123456785", "123456785"},
		{"12345678-5", "123456785"},
		{" 12.345.678-5 ", "123456785"},
		{"11111112-k", "11111112K"},
		{"11111112-K", "11111112K"},
	}
	for _, tc := range cases {
		got, err := NormalizeRUT(tc.in)
		if err != nil {
			t.Fatalf("NormalizeRUT(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeRUT(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeRUT_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"12.345.678-4", // 校验位错
		"1234567",      // 太短
		"abcdefgh-5",
		"12 345 678-5", // 空格不是合法分隔符
		"11111112-0",
	} {
		if got, err := NormalizeRUT(in); err == nil {
			t.Fatalf("NormalizeRUT(%q) = %q, want error", in, got)
		}
	}
}
