package main

import (
	"strings"
	"testing"

	appmodel "github.com/jianyuhu/TinyLink/internal/app/model"
)

func TestWarmerConsumerNameIsPerInstance(t *testing.T) {
	name := warmerConsumerName("cache-warmer")
	if !strings.HasPrefix(name, "cache-warmer-") {
		t.Fatalf("consumer name %q does not carry the configured prefix", name)
	}
	if name == "cache-warmer-" {
		t.Fatalf("consumer name %q carries no instance suffix", name)
	}
	if strings.ContainsAny(name, ". *>\t") {
		t.Fatalf("consumer name %q contains characters JetStream rejects", name)
	}
}

func TestWarmerConsumerNameEmptyPrefixFallsBack(t *testing.T) {
	name := warmerConsumerName("")
	if !strings.HasPrefix(name, appmodel.LinkConsumerName+"-") {
		t.Fatalf("expected the default prefix, got %q", name)
	}
}

func TestSanitizeConsumerName(t *testing.T) {
	cases := map[string]string{
		"host.example.com": "host-example-com",
		"pod_a-1":          "pod_a-1",
		"ip 10.0.0.3":      "ip-10-0-0-3",
	}
	for in, want := range cases {
		if got := sanitizeConsumerName(in); got != want {
			t.Errorf("sanitizeConsumerName(%q) = %q, want %q", in, got, want)
		}
	}
}
