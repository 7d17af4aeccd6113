package deeplink

import (
	"errors"
	"testing"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{
			name:   "domain only",
			params: Params{AppName: "@some_bot"},
			want:   "tg://resolve?domain=some_bot",
		},
		{
			name:   "variant and ref",
			params: Params{AppName: "some_bot", AppVariant: "app", RefToken: "ref_123"},
			want:   "tg://resolve?appname=app&domain=some_bot&startapp=ref_123",
		},
		{
			name:   "ref from link",
			params: Params{AppName: "some_bot", RefToken: "https://t.me/some_bot/app?startapp=abc"},
			want:   "tg://resolve?domain=some_bot&startapp=abc",
		},
		{
			name:   "link without start parameter",
			params: Params{AppName: "some_bot", RefToken: "https://t.me/some_bot"},
			want:   "tg://resolve?domain=some_bot",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.params)
			if err != nil {
				t.Fatalf("Build error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Build = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildRejectsBadNames(t *testing.T) {
	if _, err := Build(Params{}); !errors.Is(err, ErrNoAppName) {
		t.Fatalf("expected ErrNoAppName, got %v", err)
	}
	if _, err := Build(Params{AppName: "bad name&x=1"}); !errors.Is(err, ErrInvalidAppName) {
		t.Fatalf("expected ErrInvalidAppName, got %v", err)
	}
}

func TestParseShuffle(t *testing.T) {
	for _, v := range []string{"yes", " YES ", "true", "1"} {
		if !ParseShuffle(v) {
			t.Fatalf("ParseShuffle(%q) = false", v)
		}
	}
	for _, v := range []string{"", "no", "maybe"} {
		if ParseShuffle(v) {
			t.Fatalf("ParseShuffle(%q) = true", v)
		}
	}
}
