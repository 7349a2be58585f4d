package backend

import (
	"context"
	"sync"
	"testing"
)

func TestRegistryCachesClients(t *testing.T) {
	r := NewRegistry(Settings{
		Provider:        ProviderAnthropic,
		AnthropicAPIKey: "k",
	})

	first, err := r.Default(context.Background())
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	second, err := r.Get(context.Background(), ProviderAnthropic)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first != second {
		t.Error("registry should return the same client instance")
	}
}

func TestRegistryConcurrentGet(t *testing.T) {
	r := NewRegistry(Settings{AnthropicAPIKey: "k"})

	const n = 16
	clients := make([]Client, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := r.Get(context.Background(), ProviderAnthropic)
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			clients[i] = c
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if clients[i] != clients[0] {
			t.Fatal("concurrent gets should share one client")
		}
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	r := NewRegistry(Settings{})
	if _, err := r.Get(context.Background(), Provider("cohere")); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRegistryMissingKey(t *testing.T) {
	r := NewRegistry(Settings{})
	if _, err := r.Get(context.Background(), ProviderAnthropic); err != ErrNotConfigured {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestParseProvider(t *testing.T) {
	if p, err := ParseProvider("gemini"); err != nil || p != ProviderGemini {
		t.Errorf("ParseProvider(gemini) = %v, %v", p, err)
	}
	if _, err := ParseProvider("openai"); err == nil {
		t.Error("expected error for unsupported provider")
	}
}
